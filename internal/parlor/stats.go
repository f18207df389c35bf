package parlor

import (
	"sync"

	"github.com/nix24/ChipMinigameParlor/internal/session"
)

// Stats counts finished games. Each session increments its variant
// exactly once, when its terminal update is applied, regardless of
// outcome.
type Stats struct {
	mu       sync.Mutex
	finished map[session.Variant]uint64
	outcomes map[session.Variant]map[string]uint64
}

func newStats() *Stats {
	return &Stats{
		finished: make(map[session.Variant]uint64),
		outcomes: make(map[session.Variant]map[string]uint64),
	}
}

// Finished records one completed session.
func (s *Stats) Finished(variant session.Variant, outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.finished[variant]++
	byOutcome, ok := s.outcomes[variant]
	if !ok {
		byOutcome = make(map[string]uint64)
		s.outcomes[variant] = byOutcome
	}
	byOutcome[outcome]++
}

// Snapshot copies the per-variant finished counters.
func (s *Stats) Snapshot() map[session.Variant]uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[session.Variant]uint64, len(s.finished))
	for v, n := range s.finished {
		out[v] = n
	}
	return out
}

// Outcomes copies the outcome breakdown for one variant.
func (s *Stats) Outcomes(variant session.Variant) map[string]uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]uint64, len(s.outcomes[variant]))
	for o, n := range s.outcomes[variant] {
		out[o] = n
	}
	return out
}
