package handler

import (
	"qubitgyan/internal/domain"
	"qubitgyan/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// HealthHandler reports liveness of the service and its collaborators
type HealthHandler struct {
	db    *sqlx.DB
	cache domain.Cache
}

func NewHealthHandler(db *sqlx.DB, cache domain.Cache) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Check godoc
// @Summary Health check
// @Description Reports the health of the service, database and cache
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := fiber.Map{"status": "ok", "database": "ok", "cache": "ok"}
	healthy := true

	if err := h.db.PingContext(c.Context()); err != nil {
		logger.Get().Warn("database health check failed", zap.Error(err))
		status["database"] = "unavailable"
		healthy = false
	}
	if err := h.cache.Ping(c.Context()); err != nil {
		logger.Get().Warn("cache health check failed", zap.Error(err))
		status["cache"] = "unavailable"
		healthy = false
	}

	if !healthy {
		status["status"] = "degraded"
		return c.Status(fiber.StatusServiceUnavailable).JSON(status)
	}
	return c.JSON(status)
}
