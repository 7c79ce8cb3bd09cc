package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/cmips/portal-gateway/docs"
	"github.com/cmips/portal-gateway/internal/api/handler"
	"github.com/cmips/portal-gateway/internal/api/middleware"
	"github.com/cmips/portal-gateway/internal/core/domain"
	"github.com/cmips/portal-gateway/internal/core/ports"
	"github.com/cmips/portal-gateway/internal/infrastructure/poller"
	"github.com/cmips/portal-gateway/internal/pkg/config"
)

// Backend is the case-management backend as seen by the HTTP layer.
type Backend interface {
	ports.RecordSource
	ports.NotificationClient
	ports.AnalyticsClient
	ports.FieldMaskingClient
	ports.Relayer
}

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config     *config.Config
	Log        zerolog.Logger
	Sessions   ports.SessionService
	Dashboards ports.DashboardService
	Backend    Backend
	Scheduler  ports.Scheduler
	Health     map[string]handler.HealthCheck
	// Metrics receives the echo request collectors. Nil means the default
	// Prometheus registerer.
	Metrics prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	cfg := d.Config
	cookie := middleware.Cookie{Name: cfg.Session.CookieName, Secure: cfg.Session.Secure}
	poll := poller.Config{Interval: cfg.Poll.Interval, MaxBackoff: cfg.Poll.MaxBackoff}

	registerer := d.Metrics
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORS.Origins,
		AllowCredentials: true,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, middleware.HeaderSessionID,
		},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "portal",
		Registerer: registerer,
		Skipper:    operationalPath,
	}))

	// --- Operational endpoints (no session) ---
	health := handler.NewHealthHandler(d.Health)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	sessionMW := middleware.Session(d.Sessions, cookie)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Sessions, cookie, d.Log.With().Str("component", "auth").Logger())
	authGroup := e.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.GET("/session", authHandler.Session, sessionMW)

	// --- Portal API (authenticated) ---
	apiGroup := e.Group("/api", sessionMW, middleware.RequireAuth())

	nav := handler.NewNavigationHandler(d.Dashboards)
	apiGroup.GET("/navigation", nav.Navigation)
	apiGroup.GET("/navigation/access/:dashboard", nav.Access)
	apiGroup.GET("/home", nav.Home)
	apiGroup.GET("/dashboard/summary", nav.Summary)

	records := handler.NewRecordHandler(d.Backend, d.Backend)
	apiGroup.GET("/records", records.Resources)
	apiGroup.GET("/records/:resource", records.List)
	apiGroup.GET("/analytics/summary", records.Analytics,
		middleware.RequireDashboard(domain.DashboardSupervisor, domain.DashboardAdmin))

	notifications := handler.NewNotificationHandler(d.Backend, poll, d.Log.With().Str("component", "notifications").Logger())
	apiGroup.GET("/notifications", notifications.List)
	apiGroup.GET("/notifications/unread-count", notifications.UnreadCount)
	apiGroup.GET("/notifications/stream", notifications.Stream)
	apiGroup.PUT("/notifications/read-all", notifications.MarkAllRead)
	apiGroup.PUT("/notifications/:id/read", notifications.MarkRead)

	cases := handler.NewCaseHandler(d.Backend)
	apiGroup.POST("/case/create", cases.Create, middleware.RequireDashboard(domain.DashboardCaseWorker))

	masking := handler.NewFieldMaskingHandler(d.Backend)
	maskingGroup := apiGroup.Group("/admin/field-masking", middleware.RequireDashboard(domain.DashboardAdmin))
	maskingGroup.GET("/interface/:role", masking.Interface)
	maskingGroup.POST("/rules", masking.UpdateRules)
	maskingGroup.GET("/fields", masking.Fields)
	maskingGroup.GET("/roles", masking.Roles)

	sched := handler.NewSchedulerHandler(d.Scheduler, poll, d.Log.With().Str("component", "scheduler").Logger())
	registerSchedulerRoutes(
		apiGroup.Group("/scheduler", middleware.RequireDashboard(domain.DashboardAdmin, domain.DashboardSupervisor)),
		sched,
	)

	return e
}

func registerSchedulerRoutes(g *echo.Group, h *handler.SchedulerHandler) {
	g.GET("/jobs", h.ListJobs)
	g.POST("/jobs", h.CreateJob)
	g.GET("/jobs/search", h.SearchJobs)
	g.GET("/jobs/filter", h.FilterJobs)
	g.GET("/jobs/types", h.JobTypes)
	g.GET("/jobs/name/:name", h.GetJobByName)
	g.GET("/jobs/:id", h.GetJob)
	g.PUT("/jobs/:id", h.UpdateJob)
	g.DELETE("/jobs/:id", h.DeleteJob)
	g.POST("/jobs/:id/:action", h.JobAction)
	g.GET("/jobs/:id/dependencies", h.Dependencies)
	g.POST("/jobs/:id/dependencies", h.AddDependency)
	g.DELETE("/jobs/:id/dependencies/:dependsOn", h.RemoveDependency)
	g.GET("/jobs/:id/dependents", h.Dependents)
	g.GET("/jobs/:id/executions", h.Executions)
	g.GET("/jobs/:id/calendars", h.CalendarsForJob)
	g.GET("/jobs/:id/subgraph", h.Subgraph)

	g.POST("/trigger/:id", h.Trigger)
	g.POST("/trigger/stop/:triggerId", h.StopTrigger)
	g.GET("/trigger/status/:triggerId", h.TriggerStatus)
	g.GET("/trigger/status/:triggerId/stream", h.TriggerStatusStream)
	g.GET("/trigger/running", h.RunningTriggers)

	g.GET("/dashboard/stats", h.DashboardStats)
	g.GET("/dashboard/recent", h.RecentExecutions)
	g.GET("/dashboard/running", h.RunningExecutions)

	g.GET("/graph", h.Graph)
	g.GET("/graph/execution-order", h.ExecutionOrder)

	g.GET("/calendars", h.ListCalendars)
	g.POST("/calendars", h.CreateCalendar)
	g.GET("/calendars/:id", h.GetCalendar)
	g.GET("/calendars/:id/dates", h.CalendarDates)
	g.POST("/calendars/:id/dates", h.AddCalendarDate)

	g.GET("/audit/recent", h.RecentOperations)
	g.GET("/audit/:entityType/:entityId", h.EntityHistory)

	g.GET("/admin/status", h.AdminStatus)
	g.POST("/admin/pause", h.AdminPause)
	g.POST("/admin/resume", h.AdminResume)
	g.GET("/admin/health", h.BackendHealth)
}

// operationalPath skips request metrics for probes, scrapes and docs.
func operationalPath(c echo.Context) bool {
	p := c.Path()
	return strings.HasPrefix(p, "/health") || p == "/metrics" || strings.HasPrefix(p, "/swagger")
}

// requestLogger logs one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper:      operationalPath,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
