package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cmips/portal-gateway/internal/core/domain"
	"github.com/cmips/portal-gateway/internal/infrastructure/poller"
	"github.com/cmips/portal-gateway/internal/infrastructure/upstream"
)

type stubNotifications struct {
	counts   []int
	err      error
	calls    int
	onCall   func(n int)
	userID   string
	markedID string
	allRead  string
}

func (s *stubNotifications) ListNotifications(_ context.Context, _, userID string) (json.RawMessage, error) {
	s.userID = userID
	return json.RawMessage(`[{"id":"n-1","read":false}]`), nil
}

func (s *stubNotifications) UnreadCount(ctx context.Context, _, userID string) (int, error) {
	s.userID = userID
	s.calls++
	if s.onCall != nil {
		s.onCall(s.calls)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.err != nil {
		return 0, s.err
	}
	i := s.calls - 1
	if i >= len(s.counts) {
		i = len(s.counts) - 1
	}
	return s.counts[i], nil
}

func (s *stubNotifications) MarkRead(_ context.Context, _, id string) error {
	s.markedID = id
	return nil
}

func (s *stubNotifications) MarkAllRead(_ context.Context, _, userID string) error {
	s.allRead = userID
	return nil
}

func newNotificationHandler(s *stubNotifications) *NotificationHandler {
	return NewNotificationHandler(s, poller.Config{Interval: time.Millisecond}, zerolog.Nop())
}

func TestNotificationHandler_List(t *testing.T) {
	stub := &stubNotifications{}
	h := newNotificationHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/api/notifications", "")
	withSession(c, "CASE_WORKER")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.userID != "user-123" || rec.Body.String() != `[{"id":"n-1","read":false}]` {
		t.Fatalf("unexpected result: %s %s", stub.userID, rec.Body.String())
	}
}

func TestNotificationHandler_UnreadCount(t *testing.T) {
	h := newNotificationHandler(&stubNotifications{counts: []int{4}})

	c, rec := newTestContext(http.MethodGet, "/api/notifications/unread-count", "")
	withSession(c, "PROVIDER")
	if err := h.UnreadCount(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Body.String() != "{\"count\":4}\n" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestNotificationHandler_MarkRead(t *testing.T) {
	stub := &stubNotifications{}
	h := newNotificationHandler(stub)

	c, rec := newTestContext(http.MethodPut, "/api/notifications/n-1/read", "")
	c.SetParamNames("id")
	c.SetParamValues("n-1")
	withSession(c, "RECIPIENT")
	if err := h.MarkRead(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.markedID != "n-1" || rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected result: %q %d", stub.markedID, rec.Code)
	}

	c, rec = newTestContext(http.MethodPut, "/api/notifications/read-all", "")
	withSession(c, "RECIPIENT")
	if err := h.MarkAllRead(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.allRead != "user-123" || rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected result: %q %d", stub.allRead, rec.Code)
	}
}

func TestNotificationHandler_Stream_SendsOnChange(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/api/notifications/stream", "")
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	c.SetRequest(c.Request().WithContext(ctx))
	withSession(c, "CASE_WORKER")

	stub := &stubNotifications{
		counts: []int{2, 2, 5, 5},
		onCall: func(n int) {
			if n == 5 {
				cancel()
			}
		},
	}
	h := newNotificationHandler(stub)

	if err := h.Stream(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	body := rec.Body.String()
	if got := strings.Count(body, "event: unread-count\n"); got != 2 {
		t.Fatalf("expected 2 events, got %d:\n%s", got, body)
	}
	if !strings.Contains(body, `data: {"count":2}`) || !strings.Contains(body, `data: {"count":5}`) {
		t.Fatalf("unexpected events:\n%s", body)
	}
}

func TestNotificationHandler_Stream_Unauthenticated(t *testing.T) {
	h := newNotificationHandler(&stubNotifications{})

	c, rec := newTestContext(http.MethodGet, "/api/notifications/stream", "")
	if err := h.Stream(c); err != domain.ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if rec.Header().Get("Content-Type") == "text/event-stream" {
		t.Fatalf("stream must not open without a session")
	}
}

func TestNotificationHandler_Stream_RevokedToken(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/api/notifications/stream", "")
	ctx, cancel := context.WithTimeout(c.Request().Context(), 300*time.Millisecond)
	defer cancel()
	c.SetRequest(c.Request().WithContext(ctx))
	withSession(c, "CASE_WORKER")

	stub := &stubNotifications{err: &upstream.StatusError{Service: "backend", Status: http.StatusUnauthorized, Message: "token revoked"}}
	h := newNotificationHandler(stub)

	if err := h.Stream(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	body := rec.Body.String()
	if stub.calls != 1 {
		t.Fatalf("expected a single upstream call, got %d", stub.calls)
	}
	if !strings.Contains(body, "event: error\ndata: {\"status\":401,\"message\":\"token revoked\"}") {
		t.Fatalf("expected error event, got:\n%s", body)
	}
	if strings.Contains(body, "event: unread-count") {
		t.Fatalf("unexpected count event:\n%s", body)
	}
}
