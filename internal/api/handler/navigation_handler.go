package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cmips/portal-gateway/internal/core/domain"
	"github.com/cmips/portal-gateway/internal/core/ports"
)

// NavigationHandler serves the role-derived landing route, navigation and
// dashboard summary.
type NavigationHandler struct {
	dashboards ports.DashboardService
}

func NewNavigationHandler(dashboards ports.DashboardService) *NavigationHandler {
	return &NavigationHandler{dashboards: dashboards}
}

type navigationResponse struct {
	Dashboard   domain.DashboardType `json:"dashboard"`
	RedirectURL string               `json:"redirectUrl"`
	Shortcuts   []domain.NavItem     `json:"shortcuts"`
	Tabs        []domain.NavItem     `json:"tabs"`
	ActiveTab   string               `json:"activeTab,omitempty"`
}

type accessResponse struct {
	Dashboard domain.DashboardType `json:"dashboard"`
	Allowed   bool                 `json:"allowed"`
}

// Navigation handles GET /api/navigation.
//
// @Summary      Navigation for the current session
// @Tags         navigation
// @Produce      json
// @Param        path  query     string  false  "Current route, used to pick the active tab"
// @Success      200   {object}  navigationResponse
// @Failure      401   {object}  map[string]string
// @Router       /api/navigation [get]
func (h *NavigationHandler) Navigation(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	roles := sess.Roles()
	resp := navigationResponse{
		Dashboard:   sess.Dashboard(),
		RedirectURL: sess.Dashboard().URL(),
		Shortcuts:   domain.VisibleShortcuts(roles),
		Tabs:        domain.VisibleTabs(roles),
	}
	if path := c.QueryParam("path"); path != "" {
		resp.ActiveTab, _ = domain.TabForPath(roles, path)
	}
	return c.JSON(http.StatusOK, resp)
}

// Access handles GET /api/navigation/access/:dashboard.
//
// @Summary      Check dashboard access
// @Tags         navigation
// @Produce      json
// @Param        dashboard  path      string  true  "ADMIN | SUPERVISOR | CASE_WORKER | PROVIDER | RECIPIENT | USER"
// @Success      200        {object}  accessResponse
// @Failure      404        {object}  map[string]string
// @Router       /api/navigation/access/{dashboard} [get]
func (h *NavigationHandler) Access(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	d := domain.DashboardType(c.Param("dashboard"))
	if !d.Valid() {
		return domain.ErrUnknownResource
	}
	allowed := d == domain.DashboardUser || domain.CanAccessDashboard(sess.Roles(), d)
	return c.JSON(http.StatusOK, accessResponse{Dashboard: d, Allowed: allowed})
}

// Home handles GET /api/home by redirecting to the session's landing route.
//
// @Summary      Redirect to the landing dashboard
// @Tags         navigation
// @Success      302
// @Router       /api/home [get]
func (h *NavigationHandler) Home(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, sess.Dashboard().URL())
}

// Summary handles GET /api/dashboard/summary.
//
// @Summary      Landing dashboard summary
// @Tags         navigation
// @Produce      json
// @Success      200  {object}  ports.DashboardSummary
// @Failure      401  {object}  map[string]string
// @Router       /api/dashboard/summary [get]
func (h *NavigationHandler) Summary(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	summary, err := h.dashboards.Summary(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
