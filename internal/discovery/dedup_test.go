package discovery

import (
	"sync"
	"testing"
)

func TestDedupSet_ClaimOnce(t *testing.T) {
	s := NewDedupSet()

	if !s.Claim("UC_a") {
		t.Fatal("first claim should win")
	}
	if s.Claim("UC_a") {
		t.Fatal("second claim of the same id should lose")
	}
	if !s.Claim("UC_b") {
		t.Fatal("claim of a different id should win")
	}
	if got := s.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestDedupSet_ConcurrentClaimSingleWinner(t *testing.T) {
	s := NewDedupSet()

	const goroutines = 64
	var (
		wg   sync.WaitGroup
		wins int64
		mu   sync.Mutex
	)
	start := make(chan struct{})
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if s.Claim("UC_contested") {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	if wins != 1 {
		t.Errorf("winners = %d, want exactly 1", wins)
	}
	if got := s.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestDedupSet_ConcurrentDistinctIDs(t *testing.T) {
	s := NewDedupSet()

	ids := []string{"UC_1", "UC_2", "UC_3", "UC_4", "UC_5", "UC_6", "UC_7", "UC_8"}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if !s.Claim(id) {
				t.Errorf("claim of distinct id %s should win", id)
			}
		}(id)
	}
	wg.Wait()

	if got := s.Len(); got != len(ids) {
		t.Errorf("Len() = %d, want %d", got, len(ids))
	}
}
