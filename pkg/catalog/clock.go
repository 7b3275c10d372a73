package catalog

import (
	"sync"
	"time"
)

// stamper issues UTC timestamps truncated to microseconds. Every stamp is
// strictly later than the previous one it issued and than the floor passed in,
// so updatedAt always advances and insertion order matches createdAt order
// within a process.
type stamper struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func newStamper(now func() time.Time) *stamper {
	if now == nil {
		now = time.Now
	}
	return &stamper{now: now}
}

func (s *stamper) next(floor time.Time) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.now().UTC().Truncate(time.Microsecond)
	if s.last.After(floor) {
		floor = s.last
	}
	if !t.After(floor) {
		t = floor.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
	}
	s.last = t
	return t
}
