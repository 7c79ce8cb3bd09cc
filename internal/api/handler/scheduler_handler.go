package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cmips/portal-gateway/internal/core/domain"
	"github.com/cmips/portal-gateway/internal/core/ports"
	"github.com/cmips/portal-gateway/internal/infrastructure/poller"
)

// SchedulerHandler proxies the batch scheduler for staff dashboards. Payloads
// are passed through unchanged; the gateway only checks ids and actions.
type SchedulerHandler struct {
	scheduler ports.Scheduler
	poll      poller.Config
	log       zerolog.Logger
}

func NewSchedulerHandler(scheduler ports.Scheduler, poll poller.Config, log zerolog.Logger) *SchedulerHandler {
	poll.Name = "trigger_status"
	return &SchedulerHandler{scheduler: scheduler, poll: poll, log: log}
}

type jobActionRequest struct {
	ID     int64  `param:"id" validate:"required,min=1"`
	Action string `param:"action" validate:"required,oneof=hold ice resume enable disable"`
}

type executionStatus struct {
	TriggerID string `json:"triggerId"`
	Status    string `json:"status"`
}

type rawCall func(ctx context.Context, token string) (json.RawMessage, error)

// pass runs call with the caller's token and relays the payload.
func (h *SchedulerHandler) pass(c echo.Context, status int, call rawCall) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	body, err := call(c.Request().Context(), sess.Token)
	if err != nil {
		return err
	}
	return rawJSON(c, status, body)
}

// passID is pass for routes keyed by the :id path parameter.
func (h *SchedulerHandler) passID(c echo.Context, call func(ctx context.Context, token string, id int64) (json.RawMessage, error)) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	return h.pass(c, http.StatusOK, func(ctx context.Context, token string) (json.RawMessage, error) {
		return call(ctx, token, id)
	})
}

func (h *SchedulerHandler) noContent(c echo.Context, call func(ctx context.Context, token string) error) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := call(c.Request().Context(), sess.Token); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func requiredBody(c echo.Context) (json.RawMessage, error) {
	body, err := jsonBody(c)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "request body is required")
	}
	return body, nil
}

// --- Jobs ---

// ListJobs handles GET /api/scheduler/jobs.
//
// @Summary      List scheduler jobs
// @Tags         scheduler
// @Produce      json
// @Param        page  query     int  false  "Page number"
// @Param        size  query     int  false  "Page size"
// @Success      200   {object}  object
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /api/scheduler/jobs [get]
func (h *SchedulerHandler) ListJobs(c echo.Context) error {
	return h.pass(c, http.StatusOK, func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.scheduler.ListJobs(ctx, token, c.QueryParams())
	})
}

func (h *SchedulerHandler) SearchJobs(c echo.Context) error {
	return h.pass(c, http.StatusOK, func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.scheduler.SearchJobs(ctx, token, c.QueryParams())
	})
}

func (h *SchedulerHandler) FilterJobs(c echo.Context) error {
	return h.pass(c, http.StatusOK, func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.scheduler.FilterJobs(ctx, token, c.QueryParams())
	})
}

func (h *SchedulerHandler) JobTypes(c echo.Context) error {
	return h.pass(c, http.StatusOK, h.scheduler.JobTypes)
}

// GetJob handles GET /api/scheduler/jobs/:id.
//
// @Summary      Get a scheduler job
// @Tags         scheduler
// @Produce      json
// @Param        id   path      int  true  "Job id"
// @Success      200  {object}  object
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/scheduler/jobs/{id} [get]
func (h *SchedulerHandler) GetJob(c echo.Context) error {
	return h.passID(c, h.scheduler.GetJob)
}

func (h *SchedulerHandler) GetJobByName(c echo.Context) error {
	name := c.Param("name")
	return h.pass(c, http.StatusOK, func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.scheduler.GetJobByName(ctx, token, name)
	})
}

// CreateJob handles POST /api/scheduler/jobs.
//
// @Summary      Create a scheduler job
// @Tags         scheduler
// @Accept       json
// @Produce      json
// @Success      201  {object}  object
// @Failure      400  {object}  map[string]string
// @Router       /api/scheduler/jobs [post]
func (h *SchedulerHandler) CreateJob(c echo.Context) error {
	body, err := requiredBody(c)
	if err != nil {
		return err
	}
	return h.pass(c, http.StatusCreated, func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.scheduler.CreateJob(ctx, token, body)
	})
}

func (h *SchedulerHandler) UpdateJob(c echo.Context) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	body, err := requiredBody(c)
	if err != nil {
		return err
	}
	return h.pass(c, http.StatusOK, func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.scheduler.UpdateJob(ctx, token, id, body)
	})
}

func (h *SchedulerHandler) DeleteJob(c echo.Context) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	return h.noContent(c, func(ctx context.Context, token string) error {
		return h.scheduler.DeleteJob(ctx, token, id)
	})
}

// JobAction handles POST /api/scheduler/jobs/:id/:action for the lifecycle
// actions hold, ice, resume, enable and disable.
//
// @Summary      Apply a lifecycle action to a job
// @Tags         scheduler
// @Produce      json
// @Param        id      path      int     true  "Job id"
// @Param        action  path      string  true  "hold | ice | resume | enable | disable"
// @Success      200     {object}  object
// @Failure      400     {object}  map[string]string
// @Router       /api/scheduler/jobs/{id}/{action} [post]
func (h *SchedulerHandler) JobAction(c echo.Context) error {
	var req jobActionRequest
	if err := (&echo.DefaultBinder{}).BindPathParams(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be a positive integer")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	return h.pass(c, http.StatusOK, func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.scheduler.JobAction(ctx, token, req.ID, req.Action)
	})
}

func (h *SchedulerHandler) Dependencies(c echo.Context) error {
	return h.passID(c, h.scheduler.Dependencies)
}

func (h *SchedulerHandler) Dependents(c echo.Context) error {
	return h.passID(c, h.scheduler.Dependents)
}

func (h *SchedulerHandler) AddDependency(c echo.Context) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	body, err := requiredBody(c)
	if err != nil {
		return err
	}
	return h.pass(c, http.StatusCreated, func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.scheduler.AddDependency(ctx, token, id, body)
	})
}

func (h *SchedulerHandler) RemoveDependency(c echo.Context) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	dependsOn, err := int64Param(c, "dependsOn")
	if err != nil {
		return err
	}
	return h.noContent(c, func(ctx context.Context, token string) error {
		return h.scheduler.RemoveDependency(ctx, token, id, dependsOn)
	})
}

func (h *SchedulerHandler) Executions(c echo.Context) error {
	return h.passID(c, func(ctx context.Context, token string, id int64) (json.RawMessage, error) {
		return h.scheduler.Executions(ctx, token, id, c.QueryParams())
	})
}

// --- Triggers ---

// Trigger handles POST /api/scheduler/trigger/:id.
//
// @Summary      Trigger a job run
// @Tags         scheduler
// @Accept       json
// @Produce      json
// @Param        id   path      int  true  "Job id"
// @Success      200  {object}  object
// @Router       /api/scheduler/trigger/{id} [post]
func (h *SchedulerHandler) Trigger(c echo.Context) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	body, err := jsonBody(c)
	if err != nil {
		return err
	}
	return h.pass(c, http.StatusOK, func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.scheduler.Trigger(ctx, token, id, body)
	})
}

func (h *SchedulerHandler) StopTrigger(c echo.Context) error {
	triggerID := c.Param("triggerId")
	return h.noContent(c, func(ctx context.Context, token string) error {
		return h.scheduler.StopTrigger(ctx, token, triggerID)
	})
}

func (h *SchedulerHandler) TriggerStatus(c echo.Context) error {
	triggerID := c.Param("triggerId")
	return h.pass(c, http.StatusOK, func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.scheduler.TriggerStatus(ctx, token, triggerID)
	})
}

// TriggerStatusStream handles GET /api/scheduler/trigger/status/:triggerId/stream.
// A "status" event is sent whenever the execution changes; the stream ends
// with a "done" event once the execution reaches a terminal status, or with an
// "error" event when the scheduler rejects the request. An empty status body
// counts as no change.
//
// @Summary      Stream a triggered execution's status
// @Tags         scheduler
// @Produce      text/event-stream
// @Param        triggerId  path  string  true  "Trigger id"
// @Router       /api/scheduler/trigger/status/{triggerId}/stream [get]
func (h *SchedulerHandler) TriggerStatusStream(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	triggerID := c.Param("triggerId")

	stream := openEventStream(c)
	var last json.RawMessage
	var final executionStatus
	failed := false
	err = poller.New(h.poll, h.log).Run(c.Request().Context(), func(ctx context.Context) error {
		body, err := h.scheduler.TriggerStatus(ctx, sess.Token, triggerID)
		if se, ok := rejected(err); ok {
			failed = true
			if err := stream.fail(se); err != nil {
				return err
			}
			return poller.ErrStop
		}
		if err != nil {
			return err
		}
		if body = bytes.TrimSpace(body); len(body) == 0 || string(body) == "null" {
			return nil
		}
		var st executionStatus
		if err := json.Unmarshal(body, &st); err != nil {
			return err
		}
		if !bytes.Equal(body, last) {
			last = body
			if err := stream.send("status", body); err != nil {
				return err
			}
		}
		if domain.ExecutionFinished(st.Status) {
			final = st
			return poller.ErrStop
		}
		return nil
	})
	switch {
	case err == nil && !failed:
		if final.TriggerID == "" {
			final.TriggerID = triggerID
		}
		_ = stream.send("done", final)
	case err != nil && !errors.Is(err, context.Canceled):
		h.log.Warn().Err(err).Str("trigger_id", triggerID).Msg("trigger status stream ended")
	}
	return nil
}

func (h *SchedulerHandler) RunningTriggers(c echo.Context) error {
	return h.pass(c, http.StatusOK, h.scheduler.RunningTriggers)
}

// --- Dashboard ---

func (h *SchedulerHandler) DashboardStats(c echo.Context) error {
	return h.pass(c, http.StatusOK, h.scheduler.DashboardStats)
}

func (h *SchedulerHandler) RecentExecutions(c echo.Context) error {
	return h.pass(c, http.StatusOK, func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.scheduler.RecentExecutions(ctx, token, c.QueryParams())
	})
}

func (h *SchedulerHandler) RunningExecutions(c echo.Context) error {
	return h.pass(c, http.StatusOK, h.scheduler.RunningExecutions)
}

// --- Graph ---

func (h *SchedulerHandler) Graph(c echo.Context) error {
	return h.pass(c, http.StatusOK, h.scheduler.Graph)
}

func (h *SchedulerHandler) Subgraph(c echo.Context) error {
	return h.passID(c, func(ctx context.Context, token string, id int64) (json.RawMessage, error) {
		return h.scheduler.Subgraph(ctx, token, id, c.QueryParams())
	})
}

func (h *SchedulerHandler) ExecutionOrder(c echo.Context) error {
	return h.pass(c, http.StatusOK, func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.scheduler.ExecutionOrder(ctx, token, c.QueryParams())
	})
}

// --- Calendars ---

func (h *SchedulerHandler) ListCalendars(c echo.Context) error {
	return h.pass(c, http.StatusOK, h.scheduler.ListCalendars)
}

func (h *SchedulerHandler) GetCalendar(c echo.Context) error {
	return h.passID(c, h.scheduler.GetCalendar)
}

func (h *SchedulerHandler) CreateCalendar(c echo.Context) error {
	body, err := requiredBody(c)
	if err != nil {
		return err
	}
	return h.pass(c, http.StatusCreated, func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.scheduler.CreateCalendar(ctx, token, body)
	})
}

func (h *SchedulerHandler) CalendarDates(c echo.Context) error {
	return h.passID(c, func(ctx context.Context, token string, id int64) (json.RawMessage, error) {
		return h.scheduler.CalendarDates(ctx, token, id, c.QueryParams())
	})
}

func (h *SchedulerHandler) AddCalendarDate(c echo.Context) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	body, err := requiredBody(c)
	if err != nil {
		return err
	}
	return h.noContent(c, func(ctx context.Context, token string) error {
		return h.scheduler.AddCalendarDate(ctx, token, id, body)
	})
}

func (h *SchedulerHandler) CalendarsForJob(c echo.Context) error {
	return h.passID(c, h.scheduler.CalendarsForJob)
}

// --- Audit ---

func (h *SchedulerHandler) EntityHistory(c echo.Context) error {
	entityType := c.Param("entityType")
	id, err := int64Param(c, "entityId")
	if err != nil {
		return err
	}
	return h.pass(c, http.StatusOK, func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.scheduler.EntityHistory(ctx, token, entityType, id, c.QueryParams())
	})
}

func (h *SchedulerHandler) RecentOperations(c echo.Context) error {
	return h.pass(c, http.StatusOK, func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.scheduler.RecentOperations(ctx, token, c.QueryParams())
	})
}

// --- Admin ---

func (h *SchedulerHandler) AdminStatus(c echo.Context) error {
	return h.pass(c, http.StatusOK, h.scheduler.AdminStatus)
}

func (h *SchedulerHandler) AdminPause(c echo.Context) error {
	return h.pass(c, http.StatusOK, h.scheduler.AdminPause)
}

func (h *SchedulerHandler) AdminResume(c echo.Context) error {
	return h.pass(c, http.StatusOK, h.scheduler.AdminResume)
}

func (h *SchedulerHandler) BackendHealth(c echo.Context) error {
	return h.pass(c, http.StatusOK, h.scheduler.BackendHealth)
}
