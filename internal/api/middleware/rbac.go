package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cmips/portal-gateway/internal/core/domain"
)

// RequireDashboard enforces dashboard-based access control: the session must
// be allowed to open at least one of the given dashboards. USER is open to
// every authenticated session.
func RequireDashboard(dashboards ...domain.DashboardType) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := CurrentSession(c)
			if !sess.Authenticated() {
				return domain.ErrUnauthenticated
			}
			for _, d := range dashboards {
				if d == domain.DashboardUser || domain.CanAccessDashboard(sess.Roles(), d) {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
