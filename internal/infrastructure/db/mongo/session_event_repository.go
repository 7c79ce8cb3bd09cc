package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cmips/portal-gateway/internal/core/domain"
	"github.com/cmips/portal-gateway/internal/core/ports"
)

const sessionEventsCollection = "session_events"

// SessionEventRepository implements ports.SessionEventRepository using MongoDB.
type SessionEventRepository struct {
	coll *mongo.Collection
}

// NewSessionEventRepository creates a new SessionEventRepository.
func NewSessionEventRepository(db *mongo.Database) *SessionEventRepository {
	return &SessionEventRepository{coll: db.Collection(sessionEventsCollection)}
}

var _ ports.SessionEventRepository = (*SessionEventRepository)(nil)

type mongoSessionEvent struct {
	SessionID  string    `bson:"session_id,omitempty"`
	Kind       string    `bson:"kind"`
	Username   string    `bson:"username,omitempty"`
	Role       string    `bson:"role,omitempty"`
	Detail     string    `bson:"detail,omitempty"`
	Timestamp  time.Time `bson:"timestamp"`
	RecordedAt time.Time `bson:"recorded_at"`
}

func toSessionEventDoc(e *domain.SessionEvent, now time.Time) mongoSessionEvent {
	return mongoSessionEvent{
		SessionID:  e.SessionID,
		Kind:       string(e.Kind),
		Username:   e.Username,
		Role:       string(e.Role),
		Detail:     e.Detail,
		Timestamp:  e.Timestamp.UTC(),
		RecordedAt: now.UTC(),
	}
}

// Insert appends an event to the session_events audit collection.
func (r *SessionEventRepository) Insert(ctx context.Context, event *domain.SessionEvent) error {
	if _, err := r.coll.InsertOne(ctx, toSessionEventDoc(event, time.Now())); err != nil {
		return fmt.Errorf("insert session event: %w", err)
	}
	return nil
}

// EnsureIndexes creates the lookup index by username and a TTL index that
// expires entries after retention. A zero retention keeps entries forever.
func (r *SessionEventRepository) EnsureIndexes(ctx context.Context, retention time.Duration) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}, {Key: "timestamp", Value: -1}}},
	}
	if retention > 0 {
		models = append(models, mongo.IndexModel{
			Keys:    bson.D{{Key: "recorded_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(retention.Seconds())),
		})
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create session event indexes: %w", err)
	}
	return nil
}
