package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrSessionExpired     = errors.New("session expired")
	ErrForbidden          = errors.New("access forbidden")
	ErrMalformedToken     = errors.New("malformed token")
	ErrInvalidTransition  = errors.New("invalid session transition")
	ErrUnknownResource    = errors.New("unknown resource")
	ErrNoRefreshToken     = errors.New("no refresh token")
	ErrUpstream           = errors.New("upstream unavailable")
)

// CredentialsError is returned by an identity provider that rejected the
// supplied credentials. Message is the provider's human-readable reason.
type CredentialsError struct {
	Message string
}

func (e *CredentialsError) Error() string {
	if e.Message == "" {
		return ErrInvalidCredentials.Error()
	}
	return e.Message
}

func (e *CredentialsError) Unwrap() error { return ErrInvalidCredentials }
