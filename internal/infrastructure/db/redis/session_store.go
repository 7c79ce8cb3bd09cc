package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cmips/portal-gateway/internal/core/ports"
)

// Persisted session fields. Key format: session:<id>:<field>
const (
	fieldToken   = "token"
	fieldUser    = "user"
	fieldRefresh = "refresh_token"
)

// SessionStore implements ports.SessionStore backed by Redis.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

var _ ports.SessionStore = (*SessionStore)(nil)

// Save writes every field of rec with the same TTL in one transaction.
// An empty refresh token removes any previously stored one.
func (s *SessionStore) Save(ctx context.Context, sessionID string, rec ports.SessionRecord, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key(sessionID, fieldToken), rec.Token, ttl)
		pipe.Set(ctx, key(sessionID, fieldUser), rec.User, ttl)
		if rec.RefreshToken != "" {
			pipe.Set(ctx, key(sessionID, fieldRefresh), rec.RefreshToken, ttl)
		} else {
			pipe.Del(ctx, key(sessionID, fieldRefresh))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load reads the session fields. It returns nil, nil when no field exists;
// partially present records are returned as found.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*ports.SessionRecord, error) {
	vals, err := s.client.MGet(ctx, keys(sessionID)...).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	token, hasToken := vals[0].(string)
	user, hasUser := vals[1].(string)
	refresh, hasRefresh := vals[2].(string)
	if !hasToken && !hasUser && !hasRefresh {
		return nil, nil
	}

	return &ports.SessionRecord{
		Token:        token,
		RefreshToken: refresh,
		User:         []byte(user),
	}, nil
}

// Purge deletes every field of the session atomically.
func (s *SessionStore) Purge(ctx context.Context, sessionID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys(sessionID)...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("purge session: %w", err)
	}
	return nil
}

func key(sessionID, field string) string {
	return fmt.Sprintf("session:%s:%s", sessionID, field)
}

func keys(sessionID string) []string {
	return []string{
		key(sessionID, fieldToken),
		key(sessionID, fieldUser),
		key(sessionID, fieldRefresh),
	}
}
