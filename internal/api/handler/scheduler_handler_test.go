package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cmips/portal-gateway/internal/core/domain"
	"github.com/cmips/portal-gateway/internal/core/ports"
	"github.com/cmips/portal-gateway/internal/infrastructure/poller"
	"github.com/cmips/portal-gateway/internal/infrastructure/upstream"
)

type stubScheduler struct {
	ports.Scheduler

	jobID    int64
	action   string
	body     json.RawMessage
	deleted  int64
	statuses []string
	calls    int

	statusErr   error
	statusCalls int
}

func (s *stubScheduler) GetJob(_ context.Context, _ string, id int64) (json.RawMessage, error) {
	s.jobID = id
	if id == 404 {
		return nil, &upstream.StatusError{Service: "scheduler", Status: http.StatusNotFound, Message: "job not found"}
	}
	return json.RawMessage(`{"id":7,"jobName":"PAYROLL"}`), nil
}

func (s *stubScheduler) JobAction(_ context.Context, _ string, id int64, action string) (json.RawMessage, error) {
	s.jobID, s.action = id, action
	return json.RawMessage(`{"status":"ON_HOLD"}`), nil
}

func (s *stubScheduler) CreateJob(_ context.Context, _ string, body json.RawMessage) (json.RawMessage, error) {
	s.body = body
	return json.RawMessage(`{"id":9}`), nil
}

func (s *stubScheduler) DeleteJob(_ context.Context, _ string, id int64) error {
	s.deleted = id
	return nil
}

func (s *stubScheduler) Trigger(_ context.Context, _ string, id int64, body json.RawMessage) (json.RawMessage, error) {
	s.jobID, s.body = id, body
	return json.RawMessage(`{"triggerId":"trg-1","status":"QUEUED"}`), nil
}

func (s *stubScheduler) TriggerStatus(_ context.Context, _ string, triggerID string) (json.RawMessage, error) {
	s.statusCalls++
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	st := s.statuses[s.calls]
	if s.calls < len(s.statuses)-1 {
		s.calls++
	}
	if st == "" {
		return nil, nil
	}
	return json.RawMessage(`{"triggerId":"` + triggerID + `","status":"` + st + `"}`), nil
}

func newSchedulerHandler(s *stubScheduler) *SchedulerHandler {
	return NewSchedulerHandler(s, poller.Config{Interval: time.Millisecond}, zerolog.Nop())
}

func TestSchedulerHandler_GetJob(t *testing.T) {
	stub := &stubScheduler{}
	h := newSchedulerHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/api/scheduler/jobs/7", "")
	c.SetParamNames("id")
	c.SetParamValues("7")
	withSession(c, "SUPERVISOR")
	if err := h.GetJob(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.jobID != 7 || rec.Code != http.StatusOK || rec.Body.String() != `{"id":7,"jobName":"PAYROLL"}` {
		t.Fatalf("unexpected result: id=%d code=%d body=%s", stub.jobID, rec.Code, rec.Body.String())
	}
}

func TestSchedulerHandler_GetJob_BadID(t *testing.T) {
	h := newSchedulerHandler(&stubScheduler{})

	c, _ := newTestContext(http.MethodGet, "/api/scheduler/jobs/abc", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	withSession(c, "SUPERVISOR")

	err := h.GetJob(c)
	if err == nil || !strings.Contains(err.Error(), "positive integer") {
		t.Fatalf("expected id validation error, got %v", err)
	}
}

func TestSchedulerHandler_GetJob_UpstreamStatus(t *testing.T) {
	h := newSchedulerHandler(&stubScheduler{})

	c, _ := newTestContext(http.MethodGet, "/api/scheduler/jobs/404", "")
	c.SetParamNames("id")
	c.SetParamValues("404")
	withSession(c, "ADMIN")

	if err := h.GetJob(c); !upstream.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected upstream 404, got %v", err)
	}
}

func TestSchedulerHandler_JobAction(t *testing.T) {
	stub := &stubScheduler{}
	h := newSchedulerHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/api/scheduler/jobs/7/hold", "")
	c.SetParamNames("id", "action")
	c.SetParamValues("7", "hold")
	withSession(c, "ADMIN")
	if err := h.JobAction(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.jobID != 7 || stub.action != "hold" || rec.Code != http.StatusOK {
		t.Fatalf("unexpected call: %d %s %d", stub.jobID, stub.action, rec.Code)
	}
}

func TestSchedulerHandler_JobAction_Unknown(t *testing.T) {
	stub := &stubScheduler{}
	h := newSchedulerHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/api/scheduler/jobs/7/explode", "")
	c.SetParamNames("id", "action")
	c.SetParamValues("7", "explode")
	withSession(c, "ADMIN")

	err := h.JobAction(c)
	if err == nil || !strings.Contains(err.Error(), "must be one of") {
		t.Fatalf("expected validation error, got %v", err)
	}
	if stub.action != "" {
		t.Fatalf("scheduler must not be called for unknown actions")
	}
}

func TestSchedulerHandler_CreateJob(t *testing.T) {
	stub := &stubScheduler{}
	h := newSchedulerHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/api/scheduler/jobs", `{"jobName":"NIGHTLY"}`)
	withSession(c, "ADMIN")
	if err := h.CreateJob(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated || string(stub.body) != `{"jobName":"NIGHTLY"}` {
		t.Fatalf("unexpected result: %d %s", rec.Code, stub.body)
	}

	c, _ = newTestContext(http.MethodPost, "/api/scheduler/jobs", "")
	withSession(c, "ADMIN")
	if err := h.CreateJob(c); err == nil {
		t.Fatalf("expected error for empty body")
	}
}

func TestSchedulerHandler_DeleteJob(t *testing.T) {
	stub := &stubScheduler{}
	h := newSchedulerHandler(stub)

	c, rec := newTestContext(http.MethodDelete, "/api/scheduler/jobs/3", "")
	c.SetParamNames("id")
	c.SetParamValues("3")
	withSession(c, "ADMIN")
	if err := h.DeleteJob(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.deleted != 3 || rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected result: %d %d", stub.deleted, rec.Code)
	}
}

func TestSchedulerHandler_Trigger_EmptyBody(t *testing.T) {
	stub := &stubScheduler{}
	h := newSchedulerHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/api/scheduler/trigger/5", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	withSession(c, "SUPERVISOR")
	if err := h.Trigger(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.jobID != 5 || stub.body != nil || !strings.Contains(rec.Body.String(), "trg-1") {
		t.Fatalf("unexpected trigger call: %d %s %s", stub.jobID, stub.body, rec.Body.String())
	}
}

func TestSchedulerHandler_TriggerStatusStream_StopsOnTerminal(t *testing.T) {
	stub := &stubScheduler{statuses: []string{"QUEUED", "RUNNING", "RUNNING", "COMPLETED"}}
	h := newSchedulerHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/api/scheduler/trigger/status/trg-1/stream", "")
	c.SetParamNames("triggerId")
	c.SetParamValues("trg-1")
	withSession(c, "SUPERVISOR")

	if err := h.TriggerStatusStream(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	body := rec.Body.String()
	if got := strings.Count(body, "event: status\n"); got != 3 {
		t.Fatalf("expected 3 distinct status events, got %d:\n%s", got, body)
	}
	if !strings.Contains(body, "event: done\ndata: {\"triggerId\":\"trg-1\",\"status\":\"COMPLETED\"}") {
		t.Fatalf("expected done event, got:\n%s", body)
	}
	if rec.Header().Get("Content-Type") != "text/event-stream" {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
}

func TestSchedulerHandler_TriggerStatusStream_ClientGone(t *testing.T) {
	stub := &stubScheduler{statuses: []string{"RUNNING"}}
	h := newSchedulerHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/", "")
	ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Millisecond)
	defer cancel()
	c.SetRequest(c.Request().WithContext(ctx))
	c.SetParamNames("triggerId")
	c.SetParamValues("trg-2")
	withSession(c, "ADMIN")

	if err := h.TriggerStatusStream(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if strings.Contains(rec.Body.String(), "event: done") {
		t.Fatalf("a cancelled stream must not report completion")
	}
}

func TestSchedulerHandler_TriggerStatusStream_Rejected(t *testing.T) {
	stub := &stubScheduler{statusErr: &upstream.StatusError{Service: "scheduler", Status: http.StatusNotFound, Message: "trigger not found"}}
	h := newSchedulerHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/", "")
	ctx, cancel := context.WithTimeout(c.Request().Context(), 300*time.Millisecond)
	defer cancel()
	c.SetRequest(c.Request().WithContext(ctx))
	c.SetParamNames("triggerId")
	c.SetParamValues("missing")
	withSession(c, "ADMIN")

	if err := h.TriggerStatusStream(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	body := rec.Body.String()
	if stub.statusCalls != 1 {
		t.Fatalf("expected a single upstream call, got %d", stub.statusCalls)
	}
	if !strings.Contains(body, "event: error\ndata: {\"status\":404,\"message\":\"trigger not found\"}") {
		t.Fatalf("expected error event, got:\n%s", body)
	}
	if strings.Contains(body, "event: done") {
		t.Fatalf("a rejected stream must not report completion:\n%s", body)
	}
	if ctx.Err() != nil {
		t.Fatalf("stream should end before the client gives up")
	}
}

func TestSchedulerHandler_TriggerStatusStream_RetriesServerErrors(t *testing.T) {
	stub := &stubScheduler{statusErr: &upstream.StatusError{Service: "scheduler", Status: http.StatusBadGateway, Message: "bad gateway"}}
	h := newSchedulerHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/", "")
	ctx, cancel := context.WithTimeout(c.Request().Context(), 50*time.Millisecond)
	defer cancel()
	c.SetRequest(c.Request().WithContext(ctx))
	c.SetParamNames("triggerId")
	c.SetParamValues("trg-3")
	withSession(c, "ADMIN")

	if err := h.TriggerStatusStream(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.statusCalls < 2 {
		t.Fatalf("expected the 502 to be retried, got %d calls", stub.statusCalls)
	}
	if strings.Contains(rec.Body.String(), "event: error") {
		t.Fatalf("server errors must not end the stream:\n%s", rec.Body.String())
	}
}

func TestSchedulerHandler_TriggerStatusStream_EmptyBodyIsNoChange(t *testing.T) {
	stub := &stubScheduler{statuses: []string{"", "", "COMPLETED"}}
	h := newSchedulerHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/", "")
	ctx, cancel := context.WithTimeout(c.Request().Context(), 300*time.Millisecond)
	defer cancel()
	c.SetRequest(c.Request().WithContext(ctx))
	c.SetParamNames("triggerId")
	c.SetParamValues("trg-4")
	withSession(c, "ADMIN")

	if err := h.TriggerStatusStream(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	body := rec.Body.String()
	if stub.statusCalls != 3 {
		t.Fatalf("expected 3 polls, got %d", stub.statusCalls)
	}
	if got := strings.Count(body, "event: status\n"); got != 1 {
		t.Fatalf("expected 1 status event, got %d:\n%s", got, body)
	}
	if !strings.Contains(body, "event: done\n") {
		t.Fatalf("expected done event, got:\n%s", body)
	}
}

func TestSchedulerHandler_RequiresSession(t *testing.T) {
	h := newSchedulerHandler(&stubScheduler{})

	c, _ := newTestContext(http.MethodGet, "/api/scheduler/jobs/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.GetJob(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
