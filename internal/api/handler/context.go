package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cmips/portal-gateway/internal/api/middleware"
	"github.com/cmips/portal-gateway/internal/core/domain"
)

// maxBodyBytes bounds request bodies forwarded upstream.
const maxBodyBytes = 1 << 20

// ctxSession extracts the session injected by the Session middleware and
// fails fast when it carries no usable principal:
//   - no session or not authenticated -> ErrUnauthenticated.
//   - authenticated but token missing -> ErrSessionExpired; the backend
//     would reject the call anyway.
func ctxSession(c echo.Context) (*domain.Session, error) {
	sess := middleware.CurrentSession(c)
	if !sess.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if sess.Token == "" {
		return nil, domain.ErrSessionExpired
	}
	return sess, nil
}

func int64Param(c echo.Context, name string) (int64, error) {
	n, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || n <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a positive integer")
	}
	return n, nil
}

// jsonBody reads the request body as raw JSON. An empty body is returned as nil.
func jsonBody(c echo.Context) (json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(body) == 0 {
		return nil, nil
	}
	if !json.Valid(body) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return body, nil
}

// rawJSON writes an upstream payload unchanged.
func rawJSON(c echo.Context, status int, body json.RawMessage) error {
	if len(body) == 0 {
		body = json.RawMessage("null")
	}
	return c.JSONBlob(status, body)
}
