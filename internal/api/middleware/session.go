package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cmips/portal-gateway/internal/core/domain"
	"github.com/cmips/portal-gateway/internal/core/ports"
)

// SessionKey is the echo context key holding the restored *domain.Session.
const SessionKey = "session"

// HeaderSessionID lets non-browser clients pass the session id explicitly.
const HeaderSessionID = "X-Session-ID"

// Cookie describes the session cookie issued to the browser.
type Cookie struct {
	Name   string
	Secure bool
}

// Read returns the session id carried by the request, cookie first.
func (ck Cookie) Read(c echo.Context) string {
	if cookie, err := c.Cookie(ck.Name); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return strings.TrimSpace(c.Request().Header.Get(HeaderSessionID))
}

// Set issues the session cookie.
func (ck Cookie) Set(c echo.Context, sessionID string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     ck.Name,
		Value:    sessionID,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   ck.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie in the browser.
func (ck Cookie) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     ck.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   ck.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Session restores the caller's session and injects it into the context.
// Requests without a usable session continue with an unauthenticated
// snapshot; a stale cookie is cleared.
func Session(sessions ports.SessionService, ck Cookie) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ck.Read(c)

			sess, err := sessions.Restore(c.Request().Context(), id)
			if err != nil {
				return err
			}
			if id != "" && !sess.Authenticated() {
				ck.Clear(c)
			}

			c.Set(SessionKey, sess)
			return next(c)
		}
	}
}

// CurrentSession returns the snapshot injected by Session, or nil.
func CurrentSession(c echo.Context) *domain.Session {
	sess, _ := c.Get(SessionKey).(*domain.Session)
	return sess
}

// RequireAuth rejects requests without an authenticated session.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CurrentSession(c).Authenticated() {
				return domain.ErrUnauthenticated
			}
			return next(c)
		}
	}
}
