package ports

import (
	"context"

	"github.com/cmips/portal-gateway/internal/core/domain"
)

// SessionEventRepository persists the session audit trail.
type SessionEventRepository interface {
	Insert(ctx context.Context, event *domain.SessionEvent) error
}
