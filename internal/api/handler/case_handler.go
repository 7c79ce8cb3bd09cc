package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cmips/portal-gateway/internal/core/ports"
)

// casesPath is the backend endpoint new cases are created at.
const casesPath = "/cases"

// CaseHandler relays case creation to the backend without interpreting it.
type CaseHandler struct {
	relay ports.Relayer
}

func NewCaseHandler(relay ports.Relayer) *CaseHandler {
	return &CaseHandler{relay: relay}
}

// Create handles POST /api/case/create. The body and bearer token are
// forwarded; the backend status and body come back unchanged.
//
// @Summary      Create a case
// @Tags         cases
// @Accept       json
// @Produce      json
// @Success      201  {object}  object
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/case/create [post]
func (h *CaseHandler) Create(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	resp, err := h.relay.Relay(c.Request().Context(), http.MethodPost, casesPath, sess.Token, body)
	if err != nil {
		return err
	}
	return c.Blob(resp.Status, resp.ContentType, resp.Body)
}
