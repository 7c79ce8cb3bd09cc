package ports

import "context"

// TokenPair is the identity provider's answer to a successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// IdentityProvider authenticates users against the backend.
// Rejected credentials are reported as *domain.CredentialsError; any other
// error is a transport fault.
type IdentityProvider interface {
	Login(ctx context.Context, username, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}
