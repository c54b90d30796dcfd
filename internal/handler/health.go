package handler

import (
	"net/http"

	"marketplace-api/internal/dto"
	"marketplace-api/internal/fallback"

	"github.com/labstack/echo/v4"
)

type DBStatus interface {
	Connected() bool
}

type TierStats interface {
	ServedCounts() map[fallback.Tier]int64
}

type HealthHandler struct {
	db    DBStatus
	stats TierStats
}

func NewHealthHandler(db DBStatus, stats TierStats) *HealthHandler {
	return &HealthHandler{
		db:    db,
		stats: stats,
	}
}

// Health reports "degraded" while the database is down; the API keeps
// serving through the lower tiers either way.
func (h *HealthHandler) Health(c echo.Context) error {
	served := make(map[string]int64)
	for tier, n := range h.stats.ServedCounts() {
		served[string(tier)] = n
	}

	connected := h.db.Connected()
	status := "ok"
	if !connected {
		status = "degraded"
	}

	return c.JSON(http.StatusOK, dto.HealthResponse{
		Status:   status,
		Database: connected,
		Served:   served,
	})
}
