package ports

import (
	"context"
	"encoding/json"
	"net/url"
)

// Scheduler is the batch-job scheduler API. Payloads pass through as raw JSON.
type Scheduler interface {
	// jobs
	ListJobs(ctx context.Context, token string, query url.Values) (json.RawMessage, error)
	SearchJobs(ctx context.Context, token string, query url.Values) (json.RawMessage, error)
	FilterJobs(ctx context.Context, token string, query url.Values) (json.RawMessage, error)
	JobTypes(ctx context.Context, token string) (json.RawMessage, error)
	GetJob(ctx context.Context, token string, id int64) (json.RawMessage, error)
	GetJobByName(ctx context.Context, token, name string) (json.RawMessage, error)
	CreateJob(ctx context.Context, token string, body json.RawMessage) (json.RawMessage, error)
	UpdateJob(ctx context.Context, token string, id int64, body json.RawMessage) (json.RawMessage, error)
	DeleteJob(ctx context.Context, token string, id int64) error
	JobAction(ctx context.Context, token string, id int64, action string) (json.RawMessage, error)
	Dependencies(ctx context.Context, token string, id int64) (json.RawMessage, error)
	Dependents(ctx context.Context, token string, id int64) (json.RawMessage, error)
	AddDependency(ctx context.Context, token string, id int64, body json.RawMessage) (json.RawMessage, error)
	RemoveDependency(ctx context.Context, token string, id, dependsOn int64) error
	Executions(ctx context.Context, token string, id int64, query url.Values) (json.RawMessage, error)

	// triggers
	Trigger(ctx context.Context, token string, jobID int64, body json.RawMessage) (json.RawMessage, error)
	StopTrigger(ctx context.Context, token, triggerID string) error
	TriggerStatus(ctx context.Context, token, triggerID string) (json.RawMessage, error)
	RunningTriggers(ctx context.Context, token string) (json.RawMessage, error)

	// dashboard
	DashboardStats(ctx context.Context, token string) (json.RawMessage, error)
	RecentExecutions(ctx context.Context, token string, query url.Values) (json.RawMessage, error)
	RunningExecutions(ctx context.Context, token string) (json.RawMessage, error)

	// graph
	Graph(ctx context.Context, token string) (json.RawMessage, error)
	Subgraph(ctx context.Context, token string, jobID int64, query url.Values) (json.RawMessage, error)
	ExecutionOrder(ctx context.Context, token string, query url.Values) (json.RawMessage, error)

	// calendars
	ListCalendars(ctx context.Context, token string) (json.RawMessage, error)
	GetCalendar(ctx context.Context, token string, id int64) (json.RawMessage, error)
	CreateCalendar(ctx context.Context, token string, body json.RawMessage) (json.RawMessage, error)
	CalendarDates(ctx context.Context, token string, id int64, query url.Values) (json.RawMessage, error)
	AddCalendarDate(ctx context.Context, token string, id int64, body json.RawMessage) error
	CalendarsForJob(ctx context.Context, token string, jobID int64) (json.RawMessage, error)

	// audit
	EntityHistory(ctx context.Context, token, entityType string, entityID int64, query url.Values) (json.RawMessage, error)
	RecentOperations(ctx context.Context, token string, query url.Values) (json.RawMessage, error)

	// admin
	AdminStatus(ctx context.Context, token string) (json.RawMessage, error)
	AdminPause(ctx context.Context, token string) (json.RawMessage, error)
	AdminResume(ctx context.Context, token string) (json.RawMessage, error)
	BackendHealth(ctx context.Context, token string) (json.RawMessage, error)
}
