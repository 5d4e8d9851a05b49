package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/model"
)

// Defaults for a run when the request leaves the knobs zero.
const (
	DefaultPerKeywordTarget = 3
	DefaultConcurrency      = 3
)

// ClientFactory hands each worker its own DirectoryClient. Clients from
// one factory share rate limiting, since API quota is per project, not
// per worker.
type ClientFactory func() (DirectoryClient, error)

// Request describes one discovery run.
type Request struct {
	Keywords         []string
	ContextKeyword   string
	PerKeywordTarget int
	Concurrency      int
}

// KeywordOutcome is one keyword session's summary inside a Result.
type KeywordOutcome struct {
	Qualified int
	Err       error
}

// Result aggregates a finished run.
type Result struct {
	Profiles   []model.ChannelProfile
	Outcomes   map[string]KeywordOutcome
	QuotaUnits int64
	Elapsed    time.Duration
}

// Failed reports how many sessions ended in a WorkerFailure.
func (r Result) Failed() int {
	n := 0
	for _, out := range r.Outcomes {
		if out.Err != nil {
			n++
		}
	}
	return n
}

// Orchestrator fans keywords out to concurrent sessions that share one
// dedup set and one persistence sink.
type Orchestrator struct {
	factory ClientFactory
	store   ProfileStore
	filters *FilterChain
	scorer  *ActivityScorer
	log     zerolog.Logger
}

func NewOrchestrator(factory ClientFactory, store ProfileStore, filters *FilterChain, scorer *ActivityScorer, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		factory: factory,
		store:   store,
		filters: filters,
		scorer:  scorer,
		log:     logger,
	}
}

// RunDiscovery executes one session per keyword on a bounded worker pool
// and blocks until all of them finish. A session's panic or error is
// confined to its keyword's outcome; sibling sessions run to completion.
func (o *Orchestrator) RunDiscovery(ctx context.Context, req Request) (Result, error) {
	keywords := dedupKeywords(req.Keywords)
	if len(keywords) == 0 {
		return Result{}, &ConfigError{Field: "keywords", Reason: "at least one keyword is required"}
	}
	target := req.PerKeywordTarget
	if target <= 0 {
		target = DefaultPerKeywordTarget
	}
	width := req.Concurrency
	if width <= 0 {
		width = DefaultConcurrency
	}
	if width > len(keywords) {
		width = len(keywords)
	}

	o.log.Info().
		Strs("keywords", keywords).
		Str("context", req.ContextKeyword).
		Int("target", target).
		Int("concurrency", width).
		Msg("discovery run starting")

	start := time.Now()
	dedup := NewDedupSet()
	tasks := make(chan string)

	var (
		mu       sync.Mutex
		profiles []model.ChannelProfile
		outcomes = make(map[string]KeywordOutcome, len(keywords))
		quota    atomic.Int64
		wg       sync.WaitGroup
	)

	for i := 0; i < width; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for kw := range tasks {
				found, err := o.runSession(ctx, kw, req.ContextKeyword, target, dedup, &quota)
				mu.Lock()
				profiles = append(profiles, found...)
				outcomes[kw] = KeywordOutcome{Qualified: len(found), Err: err}
				mu.Unlock()
			}
		}()
	}
	for _, kw := range keywords {
		tasks <- kw
	}
	close(tasks)
	wg.Wait()

	res := Result{
		Profiles:   profiles,
		Outcomes:   outcomes,
		QuotaUnits: quota.Load(),
		Elapsed:    time.Since(start),
	}
	o.log.Info().
		Int("profiles", len(res.Profiles)).
		Int("failed_sessions", res.Failed()).
		Int64("quota_units", res.QuotaUnits).
		Dur("elapsed", res.Elapsed).
		Msg("discovery run finished")
	return res, nil
}

// runSession isolates one keyword session: its panics and errors become a
// WorkerFailure in the outcome instead of taking down the run.
func (o *Orchestrator) runSession(ctx context.Context, keyword, contextKeyword string, target int, dedup *DedupSet, quota *atomic.Int64) (profiles []model.ChannelProfile, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &WorkerFailure{Keyword: keyword, Err: fmt.Errorf("panic: %v", r)}
			o.log.Error().Str("keyword", keyword).Interface("panic", r).Msg("session panicked")
		}
	}()

	timer := prometheus.NewTimer(Metrics.SessionDuration)
	defer timer.ObserveDuration()

	client, err := o.factory()
	if err != nil {
		return nil, &WorkerFailure{Keyword: keyword, Err: err}
	}

	session := NewSession(SessionConfig{
		Keyword:        keyword,
		ContextKeyword: contextKeyword,
		Target:         target,
		Client:         client,
		Filters:        o.filters,
		Scorer:         o.scorer,
		Store:          o.store,
		Dedup:          dedup,
		Logger:         o.log,
	})
	profiles, runErr := session.Run(ctx)

	if qr, ok := client.(QuotaReporter); ok {
		quota.Add(qr.QuotaUsed())
	}
	if runErr != nil {
		return profiles, &WorkerFailure{Keyword: keyword, Err: runErr}
	}
	return profiles, nil
}

// dedupKeywords trims, drops empties, and keeps the first occurrence of
// each keyword.
func dedupKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, kw := range in {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}
