package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cmips/portal-gateway/internal/api/middleware"
	"github.com/cmips/portal-gateway/internal/core/domain"
	"github.com/cmips/portal-gateway/internal/core/ports"
)

type AuthHandler struct {
	sessions ports.SessionService
	cookie   middleware.Cookie
	log      zerolog.Logger
}

func NewAuthHandler(sessions ports.SessionService, cookie middleware.Cookie, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, cookie: cookie, log: log}
}

type loginRequest struct {
	Username string `json:"username" validate:"max=256"`
	Password string `json:"password" validate:"max=256"`
}

type sessionResponse struct {
	State       domain.SessionState  `json:"state"`
	User        *domain.User         `json:"user,omitempty"`
	Role        domain.DashboardType `json:"role,omitempty"`
	RedirectURL string               `json:"redirectUrl"`
	ExpiresAt   *time.Time           `json:"expiresAt,omitempty"`
}

func newSessionResponse(sess *domain.Session) sessionResponse {
	if !sess.Authenticated() {
		return sessionResponse{State: domain.SessionUnauthenticated, RedirectURL: domain.LoginURL}
	}
	exp := sess.User.TokenExpiry
	return sessionResponse{
		State:       sess.State,
		User:        sess.User,
		Role:        sess.Dashboard(),
		RedirectURL: sess.Dashboard().URL(),
		ExpiresAt:   &exp,
	}
}

// Login authenticates against the identity provider and opens a session.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest       true  "Credentials"
// @Success      200   {object}  ports.LoginResult
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  ports.LoginResult
// @Failure      502   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.sessions.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	if !result.Success {
		return c.JSON(http.StatusUnauthorized, result)
	}

	h.cookie.Set(c, result.SessionID, result.ExpiresAt)
	return c.JSON(http.StatusOK, result)
}

// Logout ends the session and sends the browser to the login page.
//
// @Summary      Log out
// @Tags         auth
// @Success      303
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.Logout(c.Request().Context(), h.cookie.Read(c)); err != nil {
		h.log.Warn().Err(err).Msg("logout: session purge failed")
	}
	h.cookie.Clear(c)
	return c.Redirect(http.StatusSeeOther, domain.LoginURL)
}

// Refresh exchanges the stored refresh token for a new access token.
//
// @Summary      Refresh the session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	sess, err := h.sessions.Refresh(c.Request().Context(), h.cookie.Read(c))
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) || errors.Is(err, domain.ErrNoRefreshToken) {
			h.cookie.Clear(c)
		}
		return err
	}

	h.cookie.Set(c, sess.ID, sess.User.TokenExpiry)
	return c.JSON(http.StatusOK, newSessionResponse(sess))
}

// Session reports the caller's session state. Anonymous callers get the
// unauthenticated state, not an error.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, newSessionResponse(middleware.CurrentSession(c)))
}
