package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/cmips/portal-gateway/internal/api/handler"
	"github.com/cmips/portal-gateway/internal/core/domain"
	"github.com/cmips/portal-gateway/internal/core/ports"
	"github.com/cmips/portal-gateway/internal/pkg/config"
)

type routerSessions struct {
	ports.SessionService
	byID map[string][]string
}

func (s *routerSessions) Restore(_ context.Context, id string) (*domain.Session, error) {
	roles, ok := s.byID[id]
	if !ok {
		return &domain.Session{ID: id, State: domain.SessionUnauthenticated}, nil
	}
	return &domain.Session{
		ID:    id,
		State: domain.SessionAuthenticated,
		Token: "access",
		User:  &domain.User{Username: "jdoe", Roles: roles, Role: domain.DashboardForRoles(roles)},
	}, nil
}

type routerBackend struct{ Backend }

type routerScheduler struct{ ports.Scheduler }

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	cfg := &config.Config{
		Session: config.SessionConfig{CookieName: "portal_session"},
		CORS:    config.CORSConfig{Origins: []string{"http://localhost:3000"}},
	}
	return NewRouter(Deps{
		Config: cfg,
		Log:    zerolog.Nop(),
		Sessions: &routerSessions{byID: map[string][]string{
			"provider": {"PROVIDER"},
			"worker":   {"CASE_WORKER"},
		}},
		Backend:   routerBackend{},
		Scheduler: routerScheduler{},
		Health: map[string]handler.HealthCheck{
			"redis": func(context.Context) error { return nil },
		},
		Metrics: prometheus.NewRegistry(),
	})
}

func serve(e *echo.Echo, method, target, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "portal_session", Value: sessionID})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	e := newTestRouter(t)

	if rec := serve(e, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected ready, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_AnonymousRedirectHint(t *testing.T) {
	e := newTestRouter(t)

	rec := serve(e, http.MethodGet, "/api/navigation", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"redirect":"/login"`) {
		t.Fatalf("expected login redirect hint, got %s", rec.Body.String())
	}
}

func TestRouter_SessionEndpointIsPublic(t *testing.T) {
	e := newTestRouter(t)

	rec := serve(e, http.MethodGet, "/auth/session", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"state":"unauthenticated"`) {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_SchedulerForbiddenForProvider(t *testing.T) {
	e := newTestRouter(t)

	rec := serve(e, http.MethodGet, "/api/scheduler/jobs", "provider")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRouter_FieldMaskingForbiddenForCaseWorker(t *testing.T) {
	e := newTestRouter(t)

	rec := serve(e, http.MethodGet, "/api/admin/field-masking/roles", "worker")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRouter_UnknownRecordResource(t *testing.T) {
	e := newTestRouter(t)

	rec := serve(e, http.MethodGet, "/api/records/secrets", "worker")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_HomeRedirect(t *testing.T) {
	e := newTestRouter(t)

	rec := serve(e, http.MethodGet, "/api/home", "provider")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/provider/dashboard" {
		t.Fatalf("expected 302 to /provider/dashboard, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}
