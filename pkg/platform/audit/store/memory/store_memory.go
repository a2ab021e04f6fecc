package memory

import (
	"context"
	"sync"

	audit "echoid/pkg/platform/audit"
)

// InMemory retains the most recent events in a bounded ring. It backs local
// development and tests; production deployments publish to Kafka instead.
type InMemory struct {
	mu     sync.RWMutex
	events []audit.Event
	max    int
}

// NewInMemory creates a store retaining at most max events (0 means 1024).
func NewInMemory(max int) *InMemory {
	if max <= 0 {
		max = 1024
	}
	return &InMemory{max: max}
}

func (s *InMemory) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if len(s.events) > s.max {
		s.events = s.events[len(s.events)-s.max:]
	}
	return nil
}

// Events returns a snapshot of retained events, oldest first.
func (s *InMemory) Events() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event(nil), s.events...)
}
