package ports

import (
	"context"
	"time"

	"github.com/cmips/portal-gateway/internal/core/domain"
)

// LoginResult is the discriminated outcome of a login attempt. Expected
// failures (bad credentials) set Success=false and Error; they are not errors.
type LoginResult struct {
	Success     bool                 `json:"success"`
	Error       string               `json:"error,omitempty"`
	Role        domain.DashboardType `json:"role,omitempty"`
	RedirectURL string               `json:"redirectUrl,omitempty"`
	User        *domain.User         `json:"user,omitempty"`
	SessionID   string               `json:"-"`
	ExpiresAt   time.Time            `json:"-"`
}

// SessionService owns the session lifecycle.
type SessionService interface {
	Restore(ctx context.Context, sessionID string) (*domain.Session, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Refresh(ctx context.Context, sessionID string) (*domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
}
