package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cmips/portal-gateway/internal/core/domain"
	"github.com/cmips/portal-gateway/internal/infrastructure/upstream"
)

// errorResponse is the canonical error envelope for all API errors. Redirect
// tells the browser where to go when the session can no longer be used.
type errorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Passes backend status codes through unchanged.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, validation).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	// Session failures send the browser back to the login page.
	switch {
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrSessionExpired),
		errors.Is(err, domain.ErrNoRefreshToken),
		errors.Is(err, domain.ErrMalformedToken):
		return http.StatusUnauthorized, errorResponse{Error: unwrapMessage(err), Redirect: domain.LoginURL}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden"}
	case errors.Is(err, domain.ErrUnknownResource):
		return http.StatusNotFound, errorResponse{Error: "unknown resource"}
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	}

	var se *upstream.StatusError
	if errors.As(err, &se) {
		resp := errorResponse{Error: se.Message}
		if se.Status == http.StatusUnauthorized {
			resp.Redirect = domain.LoginURL
		}
		return se.Status, resp
	}

	switch {
	case errors.Is(err, domain.ErrUpstream):
		log.Warn().Err(err).Str("path", c.Path()).Msg("upstream unavailable")
		return http.StatusBadGateway, errorResponse{Error: "upstream unavailable"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorResponse{Error: "upstream timed out"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

// unwrapMessage returns the message of the innermost known session error.
func unwrapMessage(err error) string {
	for _, known := range []error{domain.ErrSessionExpired, domain.ErrNoRefreshToken, domain.ErrMalformedToken} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return domain.ErrUnauthenticated.Error()
}
