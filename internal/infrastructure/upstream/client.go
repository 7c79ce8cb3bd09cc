package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cmips/portal-gateway/internal/core/domain"
	"github.com/cmips/portal-gateway/internal/core/ports"
)

// ServiceBackend labels calls to the case-management backend.
const ServiceBackend = "backend"

// Client is the case-management backend client.
type Client struct {
	t *Transport
}

// NewClient returns a Client for the backend API rooted at baseURL
// (e.g. http://localhost:8081/api).
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{t: NewTransport(ServiceBackend, baseURL, timeout, log)}
}

var (
	_ ports.IdentityProvider   = (*Client)(nil)
	_ ports.RecordSource       = (*Client)(nil)
	_ ports.NotificationClient = (*Client)(nil)
	_ ports.TaskClient         = (*Client)(nil)
	_ ports.AnalyticsClient    = (*Client)(nil)
	_ ports.FieldMaskingClient = (*Client)(nil)
	_ ports.Relayer            = (*Client)(nil)
)

// ── Authentication ────────────────────────────────────────────────────────────

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Login exchanges credentials for a token pair. 400 and 401 answers, and
// answers without an access token, are *domain.CredentialsError.
func (c *Client) Login(ctx context.Context, username, password string) (*ports.TokenPair, error) {
	return c.tokens(ctx, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
}

// Refresh exchanges a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	return c.tokens(ctx, "/auth/refresh", map[string]string{"refresh_token": refreshToken})
}

func (c *Client) tokens(ctx context.Context, path string, payload any) (*ports.TokenPair, error) {
	raw, err := c.t.Send(ctx, http.MethodPost, path, "", payload)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && (se.Status == http.StatusBadRequest || se.Status == http.StatusUnauthorized) {
			return nil, &domain.CredentialsError{Message: se.Message}
		}
		return nil, err
	}

	var tr tokenResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &tr); err != nil {
			return nil, fmt.Errorf("%w: decode token response: %v", domain.ErrUpstream, err)
		}
	}
	if tr.AccessToken == "" {
		return nil, &domain.CredentialsError{Message: "no access token received"}
	}
	return &ports.TokenPair{AccessToken: tr.AccessToken, RefreshToken: tr.RefreshToken}, nil
}

// ── Records ───────────────────────────────────────────────────────────────────

// GetPage fetches a list page of the resource at path.
func (c *Client) GetPage(ctx context.Context, token, path string, query url.Values) (json.RawMessage, error) {
	return c.t.Get(ctx, path, query, token)
}

// AnalyticsSummary returns the real-time analytics metrics.
func (c *Client) AnalyticsSummary(ctx context.Context, token string) (json.RawMessage, error) {
	return c.t.Get(ctx, "/analytics/realtime-metrics", nil, token)
}

// TaskCounts returns the open/in-progress/closed tally for username.
// Missing counters are zero.
func (c *Client) TaskCounts(ctx context.Context, token, username string) (*domain.TaskCounts, error) {
	raw, err := c.t.Get(ctx, "/tasks/count/"+PathSegment(username), nil, token)
	if err != nil {
		return nil, err
	}
	var counts domain.TaskCounts
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &counts); err != nil {
			return nil, fmt.Errorf("%w: decode task counts: %v", domain.ErrUpstream, err)
		}
	}
	return &counts, nil
}

// ── Notifications ─────────────────────────────────────────────────────────────

// ListNotifications returns the notifications of userID.
func (c *Client) ListNotifications(ctx context.Context, token, userID string) (json.RawMessage, error) {
	return c.t.Get(ctx, "/notifications/user/"+PathSegment(userID), nil, token)
}

// UnreadCount returns the unread notification count of userID. The backend
// answers a bare number, {"count": n} or {"unreadCount": n}.
func (c *Client) UnreadCount(ctx context.Context, token, userID string) (int, error) {
	raw, err := c.t.Get(ctx, "/notifications/unread-count/"+PathSegment(userID), nil, token)
	if err != nil {
		return 0, err
	}
	return parseCount(raw)
}

// MarkRead marks one notification as read.
func (c *Client) MarkRead(ctx context.Context, token, notificationID string) error {
	_, err := c.t.Send(ctx, http.MethodPut, "/notifications/"+PathSegment(notificationID)+"/read", token, nil)
	return err
}

// MarkAllRead marks every notification of userID as read.
func (c *Client) MarkAllRead(ctx context.Context, token, userID string) error {
	_, err := c.t.Send(ctx, http.MethodPut, "/notifications/user/"+PathSegment(userID)+"/read-all", token, nil)
	return err
}

func parseCount(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	if n, err := strconv.Atoi(strings.Trim(string(raw), `"`)); err == nil {
		return n, nil
	}
	var obj struct {
		Count       *int `json:"count"`
		UnreadCount *int `json:"unreadCount"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, fmt.Errorf("%w: decode unread count: %v", domain.ErrUpstream, err)
	}
	switch {
	case obj.Count != nil:
		return *obj.Count, nil
	case obj.UnreadCount != nil:
		return *obj.UnreadCount, nil
	}
	return 0, nil
}

// ── Field masking ─────────────────────────────────────────────────────────────

const fieldMaskingPath = "/field-masking"

// FieldMaskingInterface returns the masking rules of role.
func (c *Client) FieldMaskingInterface(ctx context.Context, token, role string) (json.RawMessage, error) {
	return c.t.Get(ctx, fieldMaskingPath+"/interface/"+PathSegment(role), nil, token)
}

// UpdateFieldMaskingRules replaces masking rules.
func (c *Client) UpdateFieldMaskingRules(ctx context.Context, token string, rules json.RawMessage) (json.RawMessage, error) {
	return c.t.Send(ctx, http.MethodPost, fieldMaskingPath+"/update-rules", token, rules)
}

// AvailableFields lists the maskable fields.
func (c *Client) AvailableFields(ctx context.Context, token string) (json.RawMessage, error) {
	return c.t.Get(ctx, fieldMaskingPath+"/available-fields", nil, token)
}

// AvailableRoles lists the roles masking rules can target.
func (c *Client) AvailableRoles(ctx context.Context, token string) (json.RawMessage, error) {
	return c.t.Get(ctx, fieldMaskingPath+"/available-roles", nil, token)
}

// ── Relay ─────────────────────────────────────────────────────────────────────

// Relay forwards body and token to path and returns the answer unchanged,
// whatever its status.
func (c *Client) Relay(ctx context.Context, method, path, token string, body []byte) (*ports.RelayResponse, error) {
	resp, err := c.t.Do(ctx, method, path, nil, token, body)
	if err != nil {
		return nil, err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	return &ports.RelayResponse{Status: resp.Status, ContentType: contentType, Body: resp.Body}, nil
}
