package detector

import (
	"sync"
	"time"
)

// DefaultMaxAge is how long a pushed snapshot stays valid.
const DefaultMaxAge = 500 * time.Millisecond

// PushSource holds the latest snapshot pushed by an external tracker.
// A snapshot older than the max age reads as no hands, so a tracker that
// stops sending does not leave a hand parked inside a zone.
type PushSource struct {
	mu       sync.Mutex
	hands    []HandLandmarks
	pushedAt time.Time
	maxAge   time.Duration
	closed   bool
	now      func() time.Time
}

// NewPushSource creates a PushSource. A non-positive maxAge uses DefaultMaxAge.
func NewPushSource(maxAge time.Duration) *PushSource {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &PushSource{
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Push replaces the current snapshot.
func (s *PushSource) Push(hands []HandLandmarks) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSourceClosed
	}

	s.hands = append(s.hands[:0], hands...)
	s.pushedAt = s.now()
	return nil
}

// Snapshot returns a copy of the latest snapshot, or nothing when it is stale.
func (s *PushSource) Snapshot() ([]HandLandmarks, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSourceClosed
	}
	if len(s.hands) == 0 || s.now().Sub(s.pushedAt) > s.maxAge {
		return nil, nil
	}

	out := make([]HandLandmarks, len(s.hands))
	copy(out, s.hands)
	return out, nil
}

// Close stops accepting pushes.
func (s *PushSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.hands = nil
	return nil
}
