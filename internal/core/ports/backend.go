package ports

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/cmips/portal-gateway/internal/core/domain"
)

// Every backend call takes the caller's bearer token and returns the raw
// response where the gateway does not interpret it.

// RecordSource fetches list pages of backend resources.
type RecordSource interface {
	GetPage(ctx context.Context, token, path string, query url.Values) (json.RawMessage, error)
}

// NotificationClient is the notification center backend.
type NotificationClient interface {
	ListNotifications(ctx context.Context, token, userID string) (json.RawMessage, error)
	UnreadCount(ctx context.Context, token, userID string) (int, error)
	MarkRead(ctx context.Context, token, notificationID string) error
	MarkAllRead(ctx context.Context, token, userID string) error
}

// TaskClient reads the workspace task tally.
type TaskClient interface {
	TaskCounts(ctx context.Context, token, username string) (*domain.TaskCounts, error)
}

// AnalyticsClient reads analytics summaries.
type AnalyticsClient interface {
	AnalyticsSummary(ctx context.Context, token string) (json.RawMessage, error)
}

// FieldMaskingClient manages field-level authorization rules.
type FieldMaskingClient interface {
	FieldMaskingInterface(ctx context.Context, token, role string) (json.RawMessage, error)
	UpdateFieldMaskingRules(ctx context.Context, token string, rules json.RawMessage) (json.RawMessage, error)
	AvailableFields(ctx context.Context, token string) (json.RawMessage, error)
	AvailableRoles(ctx context.Context, token string) (json.RawMessage, error)
}

// RelayResponse is an upstream answer forwarded unchanged.
type RelayResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// Relayer forwards a request body and bearer token to a backend path.
type Relayer interface {
	Relay(ctx context.Context, method, path, token string, body []byte) (*RelayResponse, error)
}
