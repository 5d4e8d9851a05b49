package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/middleware"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/service"
)

type StatsHandler struct {
	svc *service.ProfileService
}

func NewStatsHandler(svc *service.ProfileService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(c fiber.Ctx) error {
	stats, err := h.svc.Stats(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch statistics")
	}

	return c.JSON(stats)
}
