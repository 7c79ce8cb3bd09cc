// Package scheduler is the client of the batch-job scheduler REST API.
// Payloads are passed through as raw JSON.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/cmips/portal-gateway/internal/core/ports"
	"github.com/cmips/portal-gateway/internal/infrastructure/upstream"
)

// ServiceName labels calls to the scheduler in metrics and errors.
const ServiceName = "scheduler"

// Job state actions accepted by JobAction.
var jobActions = map[string]bool{
	"hold":    true,
	"ice":     true,
	"resume":  true,
	"enable":  true,
	"disable": true,
}

// ValidJobAction reports whether action is a known job state action.
func ValidJobAction(action string) bool {
	return jobActions[action]
}

// Client implements ports.Scheduler over HTTP.
type Client struct {
	t *upstream.Transport
}

// NewClient returns a Client for the scheduler API rooted at baseURL
// (e.g. http://localhost:8084/api/scheduler).
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{t: upstream.NewTransport(ServiceName, baseURL, timeout, log)}
}

var _ ports.Scheduler = (*Client)(nil)

func id(n int64) string { return strconv.FormatInt(n, 10) }

// ── Jobs ──────────────────────────────────────────────────────────────────────

func (c *Client) ListJobs(ctx context.Context, token string, query url.Values) (json.RawMessage, error) {
	return c.t.Get(ctx, "/jobs", query, token)
}

func (c *Client) SearchJobs(ctx context.Context, token string, query url.Values) (json.RawMessage, error) {
	return c.t.Get(ctx, "/jobs/search", query, token)
}

func (c *Client) FilterJobs(ctx context.Context, token string, query url.Values) (json.RawMessage, error) {
	return c.t.Get(ctx, "/jobs/filter", query, token)
}

func (c *Client) JobTypes(ctx context.Context, token string) (json.RawMessage, error) {
	return c.t.Get(ctx, "/jobs/types", nil, token)
}

func (c *Client) GetJob(ctx context.Context, token string, jobID int64) (json.RawMessage, error) {
	return c.t.Get(ctx, "/jobs/"+id(jobID), nil, token)
}

func (c *Client) GetJobByName(ctx context.Context, token, name string) (json.RawMessage, error) {
	return c.t.Get(ctx, "/jobs/name/"+upstream.PathSegment(name), nil, token)
}

func (c *Client) CreateJob(ctx context.Context, token string, body json.RawMessage) (json.RawMessage, error) {
	return c.t.Send(ctx, http.MethodPost, "/jobs", token, body)
}

func (c *Client) UpdateJob(ctx context.Context, token string, jobID int64, body json.RawMessage) (json.RawMessage, error) {
	return c.t.Send(ctx, http.MethodPut, "/jobs/"+id(jobID), token, body)
}

func (c *Client) DeleteJob(ctx context.Context, token string, jobID int64) error {
	_, err := c.t.Send(ctx, http.MethodDelete, "/jobs/"+id(jobID), token, nil)
	return err
}

// JobAction applies a state action (hold, ice, resume, enable, disable).
func (c *Client) JobAction(ctx context.Context, token string, jobID int64, action string) (json.RawMessage, error) {
	if !ValidJobAction(action) {
		return nil, fmt.Errorf("scheduler: unknown job action %q", action)
	}
	return c.t.Send(ctx, http.MethodPost, "/jobs/"+id(jobID)+"/"+action, token, nil)
}

func (c *Client) Dependencies(ctx context.Context, token string, jobID int64) (json.RawMessage, error) {
	return c.t.Get(ctx, "/jobs/"+id(jobID)+"/dependencies", nil, token)
}

func (c *Client) Dependents(ctx context.Context, token string, jobID int64) (json.RawMessage, error) {
	return c.t.Get(ctx, "/jobs/"+id(jobID)+"/dependents", nil, token)
}

func (c *Client) AddDependency(ctx context.Context, token string, jobID int64, body json.RawMessage) (json.RawMessage, error) {
	return c.t.Send(ctx, http.MethodPost, "/jobs/"+id(jobID)+"/dependencies", token, body)
}

func (c *Client) RemoveDependency(ctx context.Context, token string, jobID, dependsOn int64) error {
	_, err := c.t.Send(ctx, http.MethodDelete, "/jobs/"+id(jobID)+"/dependencies/"+id(dependsOn), token, nil)
	return err
}

func (c *Client) Executions(ctx context.Context, token string, jobID int64, query url.Values) (json.RawMessage, error) {
	return c.t.Get(ctx, "/jobs/"+id(jobID)+"/executions", query, token)
}

// ── Triggers ──────────────────────────────────────────────────────────────────

// Trigger starts a job run. A nil body sends an empty trigger request.
func (c *Client) Trigger(ctx context.Context, token string, jobID int64, body json.RawMessage) (json.RawMessage, error) {
	if len(body) == 0 {
		body = json.RawMessage(`{}`)
	}
	return c.t.Send(ctx, http.MethodPost, "/trigger/"+id(jobID), token, body)
}

func (c *Client) StopTrigger(ctx context.Context, token, triggerID string) error {
	_, err := c.t.Send(ctx, http.MethodPost, "/trigger/stop/"+upstream.PathSegment(triggerID), token, nil)
	return err
}

func (c *Client) TriggerStatus(ctx context.Context, token, triggerID string) (json.RawMessage, error) {
	return c.t.Get(ctx, "/trigger/status/"+upstream.PathSegment(triggerID), nil, token)
}

func (c *Client) RunningTriggers(ctx context.Context, token string) (json.RawMessage, error) {
	return c.t.Get(ctx, "/trigger/running", nil, token)
}

// ── Dashboard ─────────────────────────────────────────────────────────────────

func (c *Client) DashboardStats(ctx context.Context, token string) (json.RawMessage, error) {
	return c.t.Get(ctx, "/dashboard/stats", nil, token)
}

func (c *Client) RecentExecutions(ctx context.Context, token string, query url.Values) (json.RawMessage, error) {
	return c.t.Get(ctx, "/dashboard/recent", query, token)
}

func (c *Client) RunningExecutions(ctx context.Context, token string) (json.RawMessage, error) {
	return c.t.Get(ctx, "/dashboard/running", nil, token)
}

// ── Graph ─────────────────────────────────────────────────────────────────────

func (c *Client) Graph(ctx context.Context, token string) (json.RawMessage, error) {
	return c.t.Get(ctx, "/graph", nil, token)
}

func (c *Client) Subgraph(ctx context.Context, token string, jobID int64, query url.Values) (json.RawMessage, error) {
	return c.t.Get(ctx, "/graph/subgraph/"+id(jobID), query, token)
}

func (c *Client) ExecutionOrder(ctx context.Context, token string, query url.Values) (json.RawMessage, error) {
	return c.t.Get(ctx, "/graph/execution-order", query, token)
}

// ── Calendars ─────────────────────────────────────────────────────────────────

func (c *Client) ListCalendars(ctx context.Context, token string) (json.RawMessage, error) {
	return c.t.Get(ctx, "/calendars", nil, token)
}

func (c *Client) GetCalendar(ctx context.Context, token string, calendarID int64) (json.RawMessage, error) {
	return c.t.Get(ctx, "/calendars/"+id(calendarID), nil, token)
}

func (c *Client) CreateCalendar(ctx context.Context, token string, body json.RawMessage) (json.RawMessage, error) {
	return c.t.Send(ctx, http.MethodPost, "/calendars", token, body)
}

func (c *Client) CalendarDates(ctx context.Context, token string, calendarID int64, query url.Values) (json.RawMessage, error) {
	return c.t.Get(ctx, "/calendars/"+id(calendarID)+"/dates", query, token)
}

func (c *Client) AddCalendarDate(ctx context.Context, token string, calendarID int64, body json.RawMessage) error {
	_, err := c.t.Send(ctx, http.MethodPost, "/calendars/"+id(calendarID)+"/dates", token, body)
	return err
}

func (c *Client) CalendarsForJob(ctx context.Context, token string, jobID int64) (json.RawMessage, error) {
	return c.t.Get(ctx, "/calendars/job/"+id(jobID), nil, token)
}

// ── Audit ─────────────────────────────────────────────────────────────────────

func (c *Client) EntityHistory(ctx context.Context, token, entityType string, entityID int64, query url.Values) (json.RawMessage, error) {
	return c.t.Get(ctx, "/audit/entity/"+upstream.PathSegment(entityType)+"/"+id(entityID), query, token)
}

func (c *Client) RecentOperations(ctx context.Context, token string, query url.Values) (json.RawMessage, error) {
	return c.t.Get(ctx, "/audit/operations/recent", query, token)
}

// ── Admin ─────────────────────────────────────────────────────────────────────

func (c *Client) AdminStatus(ctx context.Context, token string) (json.RawMessage, error) {
	return c.t.Get(ctx, "/admin/status", nil, token)
}

func (c *Client) AdminPause(ctx context.Context, token string) (json.RawMessage, error) {
	return c.t.Send(ctx, http.MethodPost, "/admin/pause", token, nil)
}

func (c *Client) AdminResume(ctx context.Context, token string) (json.RawMessage, error) {
	return c.t.Send(ctx, http.MethodPost, "/admin/resume", token, nil)
}

func (c *Client) BackendHealth(ctx context.Context, token string) (json.RawMessage, error) {
	return c.t.Get(ctx, "/admin/health/cmips-backend", nil, token)
}
