package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/model"
)

// DiscoveryWorker triggers scheduled discovery runs with the server's
// configured keyword defaults. Disabled unless an interval is set.
type DiscoveryWorker struct {
	svc      *DiscoveryService
	interval time.Duration
	stopCh   chan struct{}
}

// NewDiscoveryWorker creates a worker that ticks every interval.
func NewDiscoveryWorker(svc *DiscoveryService, interval time.Duration) *DiscoveryWorker {
	return &DiscoveryWorker{
		svc:      svc,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic discovery loop. The first run happens one
// full interval after startup, so a crash-looping server does not burn
// API quota on every boot.
func (w *DiscoveryWorker) Start(ctx context.Context) {
	log.Printf("discovery-worker: starting (interval=%s)", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			log.Println("discovery-worker: stopping (context cancelled)")
			return
		case <-w.stopCh:
			log.Println("discovery-worker: stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop.
func (w *DiscoveryWorker) Stop() {
	close(w.stopCh)
}

// tick runs one scheduled discovery with the configured defaults. A run
// already in flight (for example a manual trigger) skips the tick.
func (w *DiscoveryWorker) tick(ctx context.Context) {
	sum, err := w.svc.Run(ctx, model.DiscoveryRunRequest{})
	if err != nil {
		if errors.Is(err, ErrDiscoveryRunning) {
			log.Println("discovery-worker: run already in progress, skipping tick")
			return
		}
		log.Printf("discovery-worker: error: %v", err)
		return
	}

	log.Printf("discovery-worker: tick complete — %d profiles from %d keywords, %d quota units (%s)",
		sum.Profiles, len(sum.Keywords), sum.QuotaUnits,
		sum.FinishedAt.Sub(sum.StartedAt).Round(time.Millisecond))
}
