package postengine

import (
	"crypto/subtle"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

// handleAdminLogin only counts failed attempts against the limiter.
func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleAdminReload drops the snapshot and loads the content directory again
// so that load errors surface here instead of on the next public request.
func (a *App) handleAdminReload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.Cache.Invalidate()
	snap, err := a.Cache.Snapshot(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("reload content: %v", err)
		return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape("Reload failed: "+err.Error()))
	}
	msg := "Reloaded " + pluralize(len(snap.Posts), "post")
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	ctx := c.Request().Context()
	snap, err := a.Cache.Snapshot(ctx)
	if err != nil {
		return err
	}
	var views map[string]int
	if a.analyticsStore != nil {
		if views, err = a.analyticsStore.ViewCounts(ctx, 0); err != nil {
			c.Logger().Errorf("view counts: %v", err)
		}
	}
	rows := make([]DashboardRow, 0, len(snap.Posts))
	for _, p := range snap.Posts {
		rows = append(rows, DashboardRow{Post: p, Views: views[p.Slug]})
	}
	return Render(c, a.Views.AdminDashboard(DashboardPage{
		Rows:             rows,
		Collisions:       snap.Collisions,
		LoadedAt:         snap.LoadedAt,
		AnalyticsEnabled: a.analyticsStore != nil,
		Message:          msg,
		CSRFToken:        CsrfToken(c),
	}))
}
