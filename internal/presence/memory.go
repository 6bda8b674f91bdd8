package presence

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process Store used by tests and single-node setups.
type MemoryStore struct {
	mu   sync.RWMutex
	last map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{last: make(map[string]time.Time)}
}

func (s *MemoryStore) Touch(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	s.last[userID] = at
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) LastActive(_ context.Context, userID string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last[userID], nil
}
