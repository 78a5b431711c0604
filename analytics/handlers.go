package analytics

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler serves aggregated view statistics to the admin area.
type Handler struct {
	store *Store
}

// NewHandler creates a new analytics handler.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// parsePeriod maps the period query parameter to a window in days.
func parsePeriod(period string) (string, int) {
	switch period {
	case "today":
		return period, 1
	case "month":
		return period, 30
	case "year":
		return period, 365
	case "all":
		return period, 0
	default:
		return "week", 7
	}
}

// StatsResponse is the JSON body of the stats endpoint.
type StatsResponse struct {
	Period string   `json:"period"`
	Stats  *Summary `json:"stats"`
}

// GetStats returns view statistics as JSON.
func (h *Handler) GetStats(c echo.Context) error {
	period, days := parsePeriod(c.QueryParam("period"))
	sum, err := h.store.Summarize(c.Request().Context(), days)
	if err != nil {
		c.Logger().Errorf("Failed to get stats: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, StatsResponse{Period: period, Stats: sum})
}

// RegisterRoutes registers the admin stats API behind authMiddleware.
func (h *Handler) RegisterRoutes(e *echo.Echo, authMiddleware echo.MiddlewareFunc) {
	admin := e.Group("/admin/analytics")
	admin.Use(authMiddleware)
	admin.GET("/api/stats/", h.GetStats)
}
