package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"sitepulse/api/models"
)

// MemoryEventLog keeps events in process memory. It is meant for local
// development and tests; nothing survives a restart.
type MemoryEventLog struct {
	mu     sync.RWMutex
	events []models.Event
}

func NewMemoryEventLog() *MemoryEventLog {
	return &MemoryEventLog{}
}

func (s *MemoryEventLog) Append(_ context.Context, ev models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *MemoryEventLog) Range(_ context.Context, since, until time.Time) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Event{}
	for _, ev := range s.events {
		if ev.Timestamp.Before(since) || ev.Timestamp.After(until) {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (s *MemoryEventLog) Ping(context.Context) error {
	return nil
}

// Len reports how many events have been appended.
func (s *MemoryEventLog) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
