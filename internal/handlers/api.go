package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"status-aggregator/internal/models"
	"status-aggregator/internal/status"
)

// Service is the status core behind the HTTP surface.
type Service interface {
	Summary(ctx context.Context) models.StatusSummary
	Regions(ctx context.Context) models.RegionTable
}

var _ Service = (*status.Service)(nil)

type Handlers struct {
	Service Service
}

// GetStatus handles GET / and GET /api. The core never fails, so the answer
// is always 200.
func (h *Handlers) GetStatus(c *fiber.Ctx) error {
	return c.JSON(h.Service.Summary(c.UserContext()))
}

// GetRegions handles GET /regions.
func (h *Handlers) GetRegions(c *fiber.Ctx) error {
	return c.JSON(h.Service.Regions(c.UserContext()))
}

// Healthz reports liveness only; it does not touch any upstream.
func (h *Handlers) Healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
