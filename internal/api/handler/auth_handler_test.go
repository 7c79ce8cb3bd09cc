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

	"github.com/cmips/portal-gateway/internal/api/middleware"
	"github.com/cmips/portal-gateway/internal/core/domain"
	"github.com/cmips/portal-gateway/internal/core/ports"
)

type stubSessionService struct {
	loginFn   func(ctx context.Context, username, password string) (*ports.LoginResult, error)
	refreshFn func(ctx context.Context, id string) (*domain.Session, error)
	logoutFn  func(ctx context.Context, id string) error
}

func (s *stubSessionService) Restore(_ context.Context, id string) (*domain.Session, error) {
	return &domain.Session{ID: id, State: domain.SessionUnauthenticated}, nil
}

func (s *stubSessionService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubSessionService) Refresh(ctx context.Context, id string) (*domain.Session, error) {
	return s.refreshFn(ctx, id)
}

func (s *stubSessionService) Logout(ctx context.Context, id string) error {
	return s.logoutFn(ctx, id)
}

var authCookie = middleware.Cookie{Name: "portal_session"}

func TestAuthHandler_Login_Success(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	stub := &stubSessionService{
		loginFn: func(ctx context.Context, username, password string) (*ports.LoginResult, error) {
			if username != "jdoe" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &ports.LoginResult{
				Success:     true,
				Role:        domain.DashboardCaseWorker,
				RedirectURL: "/my-workspace",
				User:        &domain.User{Username: "jdoe", Role: domain.DashboardCaseWorker},
				SessionID:   "sess-42",
				ExpiresAt:   exp,
			}, nil
		},
	}
	h := NewAuthHandler(stub, authCookie, zerolog.Nop())

	c, rec := newTestContext(http.MethodPost, "/auth/login", `{"username":"jdoe","password":"secret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if set := rec.Header().Get("Set-Cookie"); !strings.Contains(set, "portal_session=sess-42") {
		t.Fatalf("expected session cookie, got %q", set)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["success"] != true || resp["redirectUrl"] != "/my-workspace" || resp["role"] != "CASE_WORKER" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if _, leaked := resp["sessionId"]; leaked {
		t.Fatalf("session id must only travel in the cookie")
	}
}

func TestAuthHandler_Login_Rejected(t *testing.T) {
	stub := &stubSessionService{
		loginFn: func(ctx context.Context, username, password string) (*ports.LoginResult, error) {
			return &ports.LoginResult{Success: false, Error: "Invalid user credentials"}, nil
		},
	}
	h := NewAuthHandler(stub, authCookie, zerolog.Nop())

	c, rec := newTestContext(http.MethodPost, "/auth/login", `{"username":"jdoe","password":"bad"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("Set-Cookie") != "" {
		t.Fatalf("rejected login must not set a cookie")
	}
	if !strings.Contains(rec.Body.String(), `"error":"Invalid user credentials"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthHandler_Login_TransportError(t *testing.T) {
	boom := errors.New("dial tcp: refused")
	stub := &stubSessionService{
		loginFn: func(ctx context.Context, username, password string) (*ports.LoginResult, error) {
			return nil, boom
		},
	}
	h := NewAuthHandler(stub, authCookie, zerolog.Nop())

	c, _ := newTestContext(http.MethodPost, "/auth/login", `{"username":"jdoe","password":"x"}`)
	if err := h.Login(c); !errors.Is(err, boom) {
		t.Fatalf("expected transport error to reach the error handler, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	h := NewAuthHandler(&stubSessionService{}, authCookie, zerolog.Nop())

	c, rec := newTestContext(http.MethodPost, "/auth/login", `{"username":`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	var purged string
	stub := &stubSessionService{
		logoutFn: func(ctx context.Context, id string) error {
			purged = id
			return nil
		},
	}
	h := NewAuthHandler(stub, authCookie, zerolog.Nop())

	c, rec := newTestContext(http.MethodPost, "/auth/logout", "")
	c.Request().AddCookie(&http.Cookie{Name: "portal_session", Value: "sess-42"})
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if purged != "sess-42" {
		t.Fatalf("expected sess-42 purged, got %q", purged)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected 303 to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if set := rec.Header().Get("Set-Cookie"); !strings.Contains(set, "Max-Age=0") {
		t.Fatalf("expected cleared cookie, got %q", set)
	}
}

func TestAuthHandler_Logout_PurgeFailureStillRedirects(t *testing.T) {
	stub := &stubSessionService{
		logoutFn: func(ctx context.Context, id string) error { return errors.New("redis down") },
	}
	h := NewAuthHandler(stub, authCookie, zerolog.Nop())

	c, rec := newTestContext(http.MethodPost, "/auth/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	exp := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	stub := &stubSessionService{
		refreshFn: func(ctx context.Context, id string) (*domain.Session, error) {
			return &domain.Session{
				ID:    id,
				State: domain.SessionAuthenticated,
				Token: "new-access",
				User:  &domain.User{Username: "jdoe", Role: domain.DashboardSupervisor, TokenExpiry: exp},
			}, nil
		},
	}
	h := NewAuthHandler(stub, authCookie, zerolog.Nop())

	c, rec := newTestContext(http.MethodPost, "/auth/refresh", "")
	c.Request().AddCookie(&http.Cookie{Name: "portal_session", Value: "sess-42"})
	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.State != domain.SessionAuthenticated || resp.RedirectURL != "/supervisor/dashboard" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp.ExpiresAt == nil || !resp.ExpiresAt.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, resp.ExpiresAt)
	}
}

func TestAuthHandler_Refresh_ExpiredClearsCookie(t *testing.T) {
	stub := &stubSessionService{
		refreshFn: func(ctx context.Context, id string) (*domain.Session, error) {
			return nil, domain.ErrSessionExpired
		},
	}
	h := NewAuthHandler(stub, authCookie, zerolog.Nop())

	c, rec := newTestContext(http.MethodPost, "/auth/refresh", "")
	if err := h.Refresh(c); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if set := rec.Header().Get("Set-Cookie"); !strings.Contains(set, "Max-Age=0") {
		t.Fatalf("expected cleared cookie, got %q", set)
	}
}

func TestAuthHandler_Session(t *testing.T) {
	h := NewAuthHandler(&stubSessionService{}, authCookie, zerolog.Nop())

	c, rec := newTestContext(http.MethodGet, "/auth/session", "")
	c.Set(middleware.SessionKey, &domain.Session{State: domain.SessionUnauthenticated})
	if err := h.Session(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"state":"unauthenticated"`) || !strings.Contains(rec.Body.String(), `"redirectUrl":"/login"`) {
		t.Fatalf("unexpected anonymous payload: %s", rec.Body.String())
	}

	c, rec = newTestContext(http.MethodGet, "/auth/session", "")
	withSession(c, "ADMIN", "CASE_WORKER")
	if err := h.Session(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Role != domain.DashboardAdmin || resp.RedirectURL != "/admin/dashboard" || resp.User.Username != "jdoe" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
