package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/discovery"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/model"
)

var (
	// ErrDiscoveryRunning means a run is already active. Runs are not
	// queued: a second trigger while one is in flight is rejected.
	ErrDiscoveryRunning = errors.New("discovery run already in progress")

	// ErrDiscoveryUnavailable means the server has no YouTube API key,
	// so discovery cannot be triggered at all.
	ErrDiscoveryUnavailable = errors.New("discovery is not configured")
)

// DiscoveryDefaults fills request fields the caller left zero-valued.
type DiscoveryDefaults struct {
	Keywords         []string
	ContextKeyword   string
	PerKeywordTarget int
	Concurrency      int
}

// DiscoveryService owns manual and scheduled discovery runs. At most one
// run is active at a time; concurrent triggers fail fast instead of
// stacking quota-burning sessions.
type DiscoveryService struct {
	orch     *discovery.Orchestrator // nil when no API key is configured
	cache    *CacheService
	defaults DiscoveryDefaults

	mu      sync.Mutex
	running bool
	lastRun *model.RunSummary
}

func NewDiscoveryService(orch *discovery.Orchestrator, cache *CacheService, defaults DiscoveryDefaults) *DiscoveryService {
	return &DiscoveryService{orch: orch, cache: cache, defaults: defaults}
}

// Available reports whether discovery can run on this server.
func (s *DiscoveryService) Available() bool {
	return s.orch != nil
}

// Status reports whether a run is active and summarizes the last one.
func (s *DiscoveryService) Status() model.RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.RunStatus{Running: s.running, LastRun: s.lastRun}
}

// Trigger starts a discovery run in the background and returns as soon
// as the run is claimed. The run outlives the triggering request.
func (s *DiscoveryService) Trigger(req model.DiscoveryRunRequest) error {
	if s.orch == nil {
		return ErrDiscoveryUnavailable
	}
	if !s.begin() {
		return ErrDiscoveryRunning
	}
	go func() {
		s.finish(s.execute(context.Background(), req))
	}()
	return nil
}

// Run executes a discovery run synchronously. Used by the periodic
// worker; the HTTP layer goes through Trigger instead.
func (s *DiscoveryService) Run(ctx context.Context, req model.DiscoveryRunRequest) (*model.RunSummary, error) {
	if s.orch == nil {
		return nil, ErrDiscoveryUnavailable
	}
	if !s.begin() {
		return nil, ErrDiscoveryRunning
	}
	sum := s.execute(ctx, req)
	s.finish(sum)
	return sum, nil
}

// begin claims the single run slot. Returns false if a run is active.
func (s *DiscoveryService) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

// finish releases the run slot and records the summary.
func (s *DiscoveryService) finish(sum *model.RunSummary) {
	s.mu.Lock()
	s.running = false
	s.lastRun = sum
	s.mu.Unlock()
}

// execute performs one run and builds its summary. Stats and rescored
// profiles are evicted from cache so the dashboard sees fresh numbers.
func (s *DiscoveryService) execute(ctx context.Context, req model.DiscoveryRunRequest) *model.RunSummary {
	dreq := s.applyDefaults(req)
	started := time.Now()

	res, err := s.orch.RunDiscovery(ctx, dreq)

	sum := &model.RunSummary{
		StartedAt:  started,
		FinishedAt: time.Now(),
		Profiles:   len(res.Profiles),
		QuotaUnits: res.QuotaUnits,
	}
	if err != nil {
		sum.Error = err.Error()
	}

	// Outcomes in first-appearance keyword order; the orchestrator
	// collapsed duplicates, so skip repeats here too.
	seen := make(map[string]struct{}, len(dreq.Keywords))
	for _, kw := range dreq.Keywords {
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out, ok := res.Outcomes[kw]
		if !ok {
			continue
		}
		sum.Keywords = append(sum.Keywords, kw)
		ko := model.KeywordOutcome{Keyword: kw, Qualified: out.Qualified}
		if out.Err != nil {
			ko.Error = out.Err.Error()
		}
		sum.Outcomes = append(sum.Outcomes, ko)
	}

	if s.cache != nil && len(res.Profiles) > 0 {
		if err := s.cache.InvalidateStats(ctx); err != nil {
			log.Printf("discovery: stats cache invalidate error: %v", err)
		}
		for _, p := range res.Profiles {
			if err := s.cache.InvalidateProfile(ctx, p.ID); err != nil {
				log.Printf("discovery: profile cache invalidate error for %s: %v", p.ID, err)
			}
		}
	}

	return sum
}

// applyDefaults maps the API request onto an orchestrator request,
// filling zero-valued fields from the server configuration.
func (s *DiscoveryService) applyDefaults(req model.DiscoveryRunRequest) discovery.Request {
	dreq := discovery.Request{
		Keywords:         req.Keywords,
		ContextKeyword:   req.ContextKeyword,
		PerKeywordTarget: req.PerKeywordTarget,
		Concurrency:      req.Concurrency,
	}
	if len(dreq.Keywords) == 0 {
		dreq.Keywords = s.defaults.Keywords
	}
	if dreq.ContextKeyword == "" {
		dreq.ContextKeyword = s.defaults.ContextKeyword
	}
	if dreq.PerKeywordTarget <= 0 {
		dreq.PerKeywordTarget = s.defaults.PerKeywordTarget
	}
	if dreq.Concurrency <= 0 {
		dreq.Concurrency = s.defaults.Concurrency
	}
	return dreq
}
