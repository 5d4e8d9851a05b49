package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/middleware"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/repository"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/service"
)

type OutreachHandler struct {
	svc *service.ProfileService
}

func NewOutreachHandler(svc *service.ProfileService) *OutreachHandler {
	return &OutreachHandler{svc: svc}
}

// Targets handles GET /api/outreach/targets?limit=N&min_score=X
func (h *OutreachHandler) Targets(c fiber.Ctx) error {
	limit, errMsg := middleware.ValidateLimit(fiber.Query[string](c, "limit"),
		repository.DefaultOutreachLimit, repository.MaxOutreachLimit)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", errMsg)
	}

	minScore, errMsg := middleware.ValidateMinScore(fiber.Query[string](c, "min_score"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", errMsg)
	}

	targets, err := h.svc.OutreachTargets(c.Context(), limit, minScore)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch outreach targets")
	}

	return c.JSON(fiber.Map{
		"count":   len(targets),
		"targets": targets,
	})
}
