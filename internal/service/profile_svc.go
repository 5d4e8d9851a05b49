package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/model"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/repository"
)

type ProfileService struct {
	repo  *repository.ProfileRepo
	cache *CacheService
}

func NewProfileService(repo *repository.ProfileRepo, cache *CacheService) *ProfileService {
	return &ProfileService{repo: repo, cache: cache}
}

// Lookup returns the stored profile for a channel ID.
// Uses cache-aside: check Redis first, fall back to DB, then populate cache.
func (s *ProfileService) Lookup(ctx context.Context, channelID string) (*model.ChannelProfile, error) {
	// Try cache first
	if s.cache != nil && s.cache.Enabled() {
		cached, err := s.cache.GetProfile(ctx, channelID)
		if err != nil {
			log.Printf("cache: profile get error: %v", err)
		} else if cached != nil {
			var p model.ChannelProfile
			if err := json.Unmarshal(cached, &p); err == nil {
				CacheMetrics.Hits.Inc()
				return &p, nil
			}
		}
		CacheMetrics.Misses.Inc()
	}

	// Cache miss — fetch from DB
	p, err := s.repo.FindByID(ctx, channelID)
	if err != nil {
		return nil, err
	}

	// Populate cache
	if s.cache != nil {
		if err := s.cache.SetProfile(ctx, channelID, p); err != nil {
			log.Printf("cache: profile set error: %v", err)
		}
	}

	return p, nil
}

// List returns one page of the directory. Paging is echoed back with the
// same clamping the repository applies, so the response matches the rows.
func (s *ProfileService) List(ctx context.Context, params repository.ListParams) (*model.ProfileListResponse, error) {
	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit <= 0 {
		limit = repository.DefaultPageLimit
	}
	if limit > repository.MaxPageLimit {
		limit = repository.MaxPageLimit
	}

	return &model.ProfileListResponse{
		Total: total,
		Page:  page,
		Limit: limit,
		Items: items,
	}, nil
}

// Stats returns the aggregate directory stats, cached for a few minutes.
func (s *ProfileService) Stats(ctx context.Context) (*model.DirectoryStats, error) {
	if s.cache != nil && s.cache.Enabled() {
		cached, err := s.cache.GetStats(ctx)
		if err != nil {
			log.Printf("cache: stats get error: %v", err)
		} else if cached != nil {
			var stats model.DirectoryStats
			if err := json.Unmarshal(cached, &stats); err == nil {
				CacheMetrics.Hits.Inc()
				return &stats, nil
			}
		}
		CacheMetrics.Misses.Inc()
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetStats(ctx, stats); err != nil {
			log.Printf("cache: stats set error: %v", err)
		}
	}

	return stats, nil
}

// OutreachTargets returns contactable profiles at or above minScore, best first.
func (s *ProfileService) OutreachTargets(ctx context.Context, limit int, minScore float64) ([]model.OutreachTarget, error) {
	return s.repo.OutreachTargets(ctx, limit, minScore)
}
