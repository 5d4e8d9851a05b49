package discovery

import "sync"

// DedupSet tracks the channel IDs already routed into the filter chain
// during one orchestrator run, so overlapping keyword sessions never
// evaluate (or re-fetch) the same channel twice.
type DedupSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewDedupSet() *DedupSet {
	return &DedupSet{seen: make(map[string]struct{})}
}

// Claim atomically marks id as taken. Exactly one caller wins any given
// id for the lifetime of the set.
func (s *DedupSet) Claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	return true
}

// Len returns the number of claimed IDs.
func (s *DedupSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
