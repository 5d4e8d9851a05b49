package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func newTestOrchestrator(fake *fakeDirectory, store ProfileStore) *Orchestrator {
	factory := func() (DirectoryClient, error) { return fake, nil }
	return NewOrchestrator(factory, store, NewFilterChain(nil, 0, 0), NewActivityScorer(), zerolog.Nop())
}

func TestOrchestrator_AggregatesAcrossKeywords(t *testing.T) {
	fake := newFakeDirectory()
	fake.addQualifying("UC_fashion")
	fake.addQualifying("UC_fitness")
	fake.setPage("패션", "", fakePage{ids: []string{"UC_fashion"}})
	fake.setPage("운동", "", fakePage{ids: []string{"UC_fitness"}})

	store := &fakeStore{}
	res, err := newTestOrchestrator(fake, store).RunDiscovery(context.Background(), Request{
		Keywords:    []string{"패션", "운동"},
		Concurrency: 2,
	})
	if err != nil {
		t.Fatalf("RunDiscovery() error = %v", err)
	}

	if len(res.Profiles) != 2 {
		t.Fatalf("profiles = %d, want 2", len(res.Profiles))
	}
	if store.count() != 2 {
		t.Errorf("upserts = %d, want 2", store.count())
	}
	for _, kw := range []string{"패션", "운동"} {
		out, ok := res.Outcomes[kw]
		if !ok {
			t.Fatalf("missing outcome for %q", kw)
		}
		if out.Err != nil {
			t.Errorf("outcome[%q].Err = %v, want nil", kw, out.Err)
		}
		if out.Qualified != 1 {
			t.Errorf("outcome[%q].Qualified = %d, want 1", kw, out.Qualified)
		}
	}
}

func TestOrchestrator_SharedDedupAcrossKeywords(t *testing.T) {
	fake := newFakeDirectory()
	fake.addQualifying("UC_shared")
	fake.addQualifying("UC_fashion")
	fake.addQualifying("UC_fitness")
	fake.setPage("패션", "", fakePage{ids: []string{"UC_shared", "UC_fashion"}})
	fake.setPage("운동", "", fakePage{ids: []string{"UC_shared", "UC_fitness"}})

	store := &fakeStore{}
	res, err := newTestOrchestrator(fake, store).RunDiscovery(context.Background(), Request{
		Keywords:    []string{"패션", "운동"},
		Concurrency: 2,
	})
	if err != nil {
		t.Fatalf("RunDiscovery() error = %v", err)
	}

	if len(res.Profiles) != 3 {
		t.Fatalf("profiles = %d, want 3 (shared channel counted once)", len(res.Profiles))
	}
	fetched := 0
	for _, batch := range fake.batchRequests() {
		for _, id := range batch {
			if id == "UC_shared" {
				fetched++
			}
		}
	}
	if fetched != 1 {
		t.Errorf("UC_shared fetched %d times, want exactly 1", fetched)
	}
}

func TestOrchestrator_WorkerFailureIsolated(t *testing.T) {
	fake := newFakeDirectory()
	fake.addQualifying("UC_fashion")
	fake.setPage("패션", "", fakePage{ids: []string{"UC_fashion"}})
	fake.panicOn = "운동"

	res, err := newTestOrchestrator(fake, &fakeStore{}).RunDiscovery(context.Background(), Request{
		Keywords:    []string{"패션", "운동"},
		Concurrency: 2,
	})
	if err != nil {
		t.Fatalf("RunDiscovery() error = %v, want panics confined to outcomes", err)
	}

	var wf *WorkerFailure
	if out := res.Outcomes["운동"]; !errors.As(out.Err, &wf) {
		t.Errorf("outcome[운동].Err = %v, want WorkerFailure", out.Err)
	}
	if out := res.Outcomes["패션"]; out.Err != nil || out.Qualified != 1 {
		t.Errorf("outcome[패션] = %+v, want 1 qualified and no error", out)
	}
	if res.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", res.Failed())
	}
}

func TestOrchestrator_FactoryErrorFailsEachSession(t *testing.T) {
	factory := func() (DirectoryClient, error) {
		return nil, errors.New("no api key")
	}
	orch := NewOrchestrator(factory, &fakeStore{}, NewFilterChain(nil, 0, 0), NewActivityScorer(), zerolog.Nop())

	res, err := orch.RunDiscovery(context.Background(), Request{Keywords: []string{"패션", "운동"}})
	if err != nil {
		t.Fatalf("RunDiscovery() error = %v, want failures in outcomes", err)
	}
	if res.Failed() != 2 {
		t.Fatalf("Failed() = %d, want 2", res.Failed())
	}
	for kw, out := range res.Outcomes {
		var wf *WorkerFailure
		if !errors.As(out.Err, &wf) {
			t.Errorf("outcome[%q].Err = %v, want WorkerFailure", kw, out.Err)
		}
	}
}

func TestOrchestrator_NoKeywords(t *testing.T) {
	_, err := newTestOrchestrator(newFakeDirectory(), &fakeStore{}).RunDiscovery(context.Background(), Request{})
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("RunDiscovery() error = %v, want ConfigError", err)
	}
}

func TestOrchestrator_BlankKeywordsDropped(t *testing.T) {
	_, err := newTestOrchestrator(newFakeDirectory(), &fakeStore{}).RunDiscovery(context.Background(), Request{
		Keywords: []string{"  ", ""},
	})
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("RunDiscovery() error = %v, want ConfigError for all-blank keywords", err)
	}
}

func TestOrchestrator_DuplicateKeywordsCollapsed(t *testing.T) {
	fake := newFakeDirectory()
	fake.addQualifying("UC_fashion")
	fake.setPage("패션", "", fakePage{ids: []string{"UC_fashion"}})

	res, err := newTestOrchestrator(fake, &fakeStore{}).RunDiscovery(context.Background(), Request{
		Keywords: []string{"패션", "패션", " 패션 "},
	})
	if err != nil {
		t.Fatalf("RunDiscovery() error = %v", err)
	}
	if len(res.Outcomes) != 1 {
		t.Fatalf("outcomes = %d, want 1 (duplicates collapsed)", len(res.Outcomes))
	}
	if got := fake.searches("패션"); got != 1 {
		t.Errorf("search calls = %d, want 1", got)
	}
}

func TestOrchestrator_QuotaAggregated(t *testing.T) {
	// Like the real client factory, each session gets its own metered
	// client; the orchestrator sums the per-client spend.
	factory := func() (DirectoryClient, error) {
		fake := newFakeDirectory()
		fake.addQualifying("UC_fashion")
		fake.addQualifying("UC_fitness")
		fake.setPage("패션", "", fakePage{ids: []string{"UC_fashion"}})
		fake.setPage("운동", "", fakePage{ids: []string{"UC_fitness"}})
		return fake, nil
	}
	orch := NewOrchestrator(factory, &fakeStore{}, NewFilterChain(nil, 0, 0), NewActivityScorer(), zerolog.Nop())

	res, err := orch.RunDiscovery(context.Background(), Request{
		Keywords:    []string{"패션", "운동"},
		Concurrency: 1,
	})
	if err != nil {
		t.Fatalf("RunDiscovery() error = %v", err)
	}
	// Each keyword costs one search page (100) plus the channel batch,
	// uploads, and video stats lookups (1 each): 103 per keyword.
	if res.QuotaUnits != 206 {
		t.Errorf("quota units = %d, want 206", res.QuotaUnits)
	}
}

func TestOrchestrator_DefaultsApplied(t *testing.T) {
	fake := newFakeDirectory()
	fake.addQualifying("UC_fashion")
	fake.setPage("패션", "", fakePage{ids: []string{"UC_fashion"}})

	res, err := newTestOrchestrator(fake, &fakeStore{}).RunDiscovery(context.Background(), Request{
		Keywords: []string{"패션"},
	})
	if err != nil {
		t.Fatalf("RunDiscovery() error = %v", err)
	}
	if out := res.Outcomes["패션"]; out.Qualified != 1 {
		t.Errorf("qualified = %d, want 1", out.Qualified)
	}
}
