package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/teamdesk/teamdesk/internal/config"
	"github.com/teamdesk/teamdesk/internal/services"
	"github.com/teamdesk/teamdesk/internal/utils"
	"gorm.io/gorm"
)

// StatsHandler handles the platform rollup and the health probe.
type StatsHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// Overview handles GET /api/stats/overview
// @Summary Platform-wide statistics (admin)
// @Tags Stats
// @Produce json
// @Security Bearer
// @Success 200 {object} services.OverviewStats
// @Router /stats/overview [get]
func (h *StatsHandler) Overview(c *fiber.Ctx) error {
	stats, err := services.Overview(h.DB)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, stats, fiber.StatusOK)
}

// Health handles GET /api/health
// @Summary Health probe
// @Description Pings the database and, when mail is configured, the SMTP relay
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *StatsHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Cfg, h.DB)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
