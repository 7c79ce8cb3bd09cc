package ports

import (
	"context"
	"time"
)

// SessionRecord is the raw persisted form of a session. Fields are kept as
// stored so the service can detect malformed entries and purge them.
type SessionRecord struct {
	Token        string
	RefreshToken string
	User         []byte // JSON encoded domain.User
}

// SessionStore persists session records. Purge removes every key of a
// session in a single atomic operation.
type SessionStore interface {
	Save(ctx context.Context, sessionID string, rec SessionRecord, ttl time.Duration) error
	Load(ctx context.Context, sessionID string) (*SessionRecord, error)
	Purge(ctx context.Context, sessionID string) error
}
