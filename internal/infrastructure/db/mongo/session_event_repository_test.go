package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/cmips/portal-gateway/internal/core/domain"
)

func TestToSessionEventDoc(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("PST", -8*3600))
	now := time.Date(2026, 3, 1, 17, 30, 1, 0, time.UTC)

	doc := toSessionEventDoc(&domain.SessionEvent{
		SessionID: "s1",
		Kind:      domain.EventLogin,
		Username:  "jdoe",
		Role:      domain.DashboardAdmin,
		Timestamp: ts,
	}, now)

	if doc.Kind != "login" || doc.Role != "ADMIN" {
		t.Errorf("unexpected kind/role: %+v", doc)
	}
	if doc.Timestamp.Location() != time.UTC || !doc.Timestamp.Equal(ts) {
		t.Errorf("expected timestamp normalised to UTC, got %v", doc.Timestamp)
	}
	if !doc.RecordedAt.Equal(now) {
		t.Errorf("unexpected recorded_at: %v", doc.RecordedAt)
	}
}

func TestToSessionEventDoc_OmitsEmptyFields(t *testing.T) {
	doc := toSessionEventDoc(&domain.SessionEvent{Kind: domain.EventLoginFailed, Timestamp: time.Now()}, time.Now())

	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, field := range []string{"session_id", "username", "role", "detail"} {
		if _, ok := m[field]; ok {
			t.Errorf("expected %s to be omitted", field)
		}
	}
	if m["kind"] != "login_failed" {
		t.Errorf("unexpected kind: %v", m["kind"])
	}
}
