package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"

	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/middleware"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/repository"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/service"
)

type InfluencerHandler struct {
	svc *service.ProfileService
}

func NewInfluencerHandler(svc *service.ProfileService) *InfluencerHandler {
	return &InfluencerHandler{svc: svc}
}

// List handles GET /api/influencers
func (h *InfluencerHandler) List(c fiber.Ctx) error {
	page, errMsg := middleware.ValidatePage(fiber.Query[string](c, "page"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", errMsg)
	}

	limit, errMsg := middleware.ValidateLimit(fiber.Query[string](c, "limit"),
		repository.DefaultPageLimit, repository.MaxPageLimit)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", errMsg)
	}

	minScore, errMsg := middleware.ValidateMinScore(fiber.Query[string](c, "min_score"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", errMsg)
	}

	sortBy := fiber.Query[string](c, "sort_by")
	if sortBy == "" {
		sortBy = repository.DefaultSortKey
	}
	if !repository.ValidSortKeys[sortBy] {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM",
			"sort_by must be one of: inma_score, subscribers, avg_views, last_analyzed")
	}

	params := repository.ListParams{
		Page:     page,
		Limit:    limit,
		MinScore: minScore,
		Category: middleware.SanitizeQuery(fiber.Query[string](c, "category")),
		Search:   middleware.SanitizeQuery(fiber.Query[string](c, "search")),
		SortBy:   sortBy,
	}

	resp, err := h.svc.List(c.Context(), params)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list influencers")
	}

	return c.JSON(resp)
}

// GetByID handles GET /api/influencers/:id
func (h *InfluencerHandler) GetByID(c fiber.Ctx) error {
	channelID, errMsg := middleware.ValidateChannelID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	profile, err := h.svc.Lookup(c.Context(), channelID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "PROFILE_NOT_FOUND", "Influencer profile not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to lookup influencer")
	}

	return c.JSON(profile)
}
