package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cmips/portal-gateway/internal/core/ports"
)

// FieldMaskingHandler exposes the field masking administration screens.
type FieldMaskingHandler struct {
	client ports.FieldMaskingClient
}

func NewFieldMaskingHandler(client ports.FieldMaskingClient) *FieldMaskingHandler {
	return &FieldMaskingHandler{client: client}
}

type fieldMaskingRulesRequest struct {
	UserRole       string            `json:"userRole" validate:"required"`
	Rules          []json.RawMessage `json:"rules" validate:"required"`
	SelectedFields []string          `json:"selectedFields"`
}

// Interface handles GET /api/admin/field-masking/interface/:role.
//
// @Summary      Field masking rules for a role
// @Tags         field-masking
// @Produce      json
// @Param        role  path      string  true  "Role name"
// @Success      200   {object}  object
// @Failure      403   {object}  map[string]string
// @Router       /api/admin/field-masking/interface/{role} [get]
func (h *FieldMaskingHandler) Interface(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	body, err := h.client.FieldMaskingInterface(c.Request().Context(), sess.Token, c.Param("role"))
	if err != nil {
		return err
	}
	return rawJSON(c, http.StatusOK, body)
}

// UpdateRules handles POST /api/admin/field-masking/rules. The body is
// checked for a role and a rule list, then forwarded as sent.
//
// @Summary      Update field masking rules
// @Tags         field-masking
// @Accept       json
// @Produce      json
// @Param        body  body      fieldMaskingRulesRequest  true  "Rules"
// @Success      200   {object}  object
// @Failure      400   {object}  map[string]string
// @Router       /api/admin/field-masking/rules [post]
func (h *FieldMaskingHandler) UpdateRules(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	body, err := requiredBody(c)
	if err != nil {
		return err
	}
	var req fieldMaskingRulesRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.client.UpdateFieldMaskingRules(c.Request().Context(), sess.Token, body)
	if err != nil {
		return err
	}
	return rawJSON(c, http.StatusOK, resp)
}

func (h *FieldMaskingHandler) Fields(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	body, err := h.client.AvailableFields(c.Request().Context(), sess.Token)
	if err != nil {
		return err
	}
	return rawJSON(c, http.StatusOK, body)
}

func (h *FieldMaskingHandler) Roles(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	body, err := h.client.AvailableRoles(c.Request().Context(), sess.Token)
	if err != nil {
		return err
	}
	return rawJSON(c, http.StatusOK, body)
}
