package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/middleware"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/model"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/service"
)

type DiscoveryHandler struct {
	svc *service.DiscoveryService
}

func NewDiscoveryHandler(svc *service.DiscoveryService) *DiscoveryHandler {
	return &DiscoveryHandler{svc: svc}
}

// Run handles POST /api/discovery/run
func (h *DiscoveryHandler) Run(c fiber.Ctx) error {
	var req model.DiscoveryRunRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	// Validate keywords
	keywords, errMsg := middleware.ValidateKeywords(req.Keywords)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.Keywords = keywords

	// Validate context keyword
	req.ContextKeyword = strings.TrimSpace(req.ContextKeyword)
	if len(req.ContextKeyword) > middleware.MaxKeywordLen {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "context_keyword must be at most 100 characters")
	}

	// Validate run bounds
	target, errMsg := middleware.ValidatePerKeywordTarget(req.PerKeywordTarget)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.PerKeywordTarget = target

	conc, errMsg := middleware.ValidateConcurrency(req.Concurrency)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.Concurrency = conc

	if err := h.svc.Trigger(req); err != nil {
		if errors.Is(err, service.ErrDiscoveryRunning) {
			return middleware.ErrorResponse(c, fiber.StatusConflict, "DISCOVERY_RUNNING", "A discovery run is already in progress")
		}
		if errors.Is(err, service.ErrDiscoveryUnavailable) {
			return middleware.ErrorResponse(c, fiber.StatusServiceUnavailable, "DISCOVERY_UNAVAILABLE", "Discovery requires a configured YouTube API key")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to start discovery run")
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Discovery run started",
	})
}

// Status handles GET /api/discovery/status
func (h *DiscoveryHandler) Status(c fiber.Ctx) error {
	return c.JSON(h.svc.Status())
}
