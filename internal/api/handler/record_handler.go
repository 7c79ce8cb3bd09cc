package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cmips/portal-gateway/internal/core/domain"
	"github.com/cmips/portal-gateway/internal/core/fieldview"
	"github.com/cmips/portal-gateway/internal/core/ports"
)

// RecordHandler renders backend list pages through the field visibility
// rules.
type RecordHandler struct {
	records   ports.RecordSource
	analytics ports.AnalyticsClient
}

func NewRecordHandler(records ports.RecordSource, analytics ports.AnalyticsClient) *RecordHandler {
	return &RecordHandler{records: records, analytics: analytics}
}

type resourcesResponse struct {
	Resources []string `json:"resources"`
}

// Resources handles GET /api/records.
//
// @Summary      List renderable resources
// @Tags         records
// @Produce      json
// @Success      200  {object}  resourcesResponse
// @Router       /api/records [get]
func (h *RecordHandler) Resources(c echo.Context) error {
	return c.JSON(http.StatusOK, resourcesResponse{Resources: fieldview.Resources()})
}

// List handles GET /api/records/:resource. Paging and filter parameters
// are forwarded to the backend unchanged.
//
// @Summary      Rendered page of a backend resource
// @Tags         records
// @Produce      json
// @Param        resource  path      string  true   "Resource name"
// @Param        page      query     int     false  "Page number"
// @Param        size      query     int     false  "Page size"
// @Success      200       {object}  fieldview.RenderedPage
// @Failure      401       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Failure      502       {object}  map[string]string
// @Router       /api/records/{resource} [get]
func (h *RecordHandler) List(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	view, ok := fieldview.LookupView(c.Param("resource"))
	if !ok {
		return domain.ErrUnknownResource
	}

	raw, err := h.records.GetPage(c.Request().Context(), sess.Token, view.Path, c.QueryParams())
	if err != nil {
		return err
	}
	page, err := fieldview.DecodePage(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "unreadable "+view.Resource+" page")
	}
	return c.JSON(http.StatusOK, fieldview.RenderPage(page, view.Columns))
}

// Analytics handles GET /api/analytics/summary.
//
// @Summary      Analytics summary
// @Tags         records
// @Produce      json
// @Success      200  {object}  object
// @Router       /api/analytics/summary [get]
func (h *RecordHandler) Analytics(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	body, err := h.analytics.AnalyticsSummary(c.Request().Context(), sess.Token)
	if err != nil {
		return err
	}
	return rawJSON(c, http.StatusOK, body)
}
