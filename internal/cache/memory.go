package cache

import (
	"context"
	"sync"
	"time"

	"showbook/internal/models"
)

// SnapshotStore caches the events list with derived availability for the
// read-only query surface. A miss is (nil, nil), not an error.
type SnapshotStore interface {
	Get(ctx context.Context) ([]models.EventWithAvailability, error)
	Set(ctx context.Context, events []models.EventWithAvailability) error
	Invalidate(ctx context.Context) error
}

type MemorySnapshotStore struct {
	mu        sync.RWMutex
	events    []models.EventWithAvailability
	expiresAt time.Time
	ttl       time.Duration
}

func NewMemorySnapshotStore(ttl time.Duration) *MemorySnapshotStore {
	return &MemorySnapshotStore{ttl: ttl}
}

func (s *MemorySnapshotStore) Get(ctx context.Context) ([]models.EventWithAvailability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.events == nil || time.Now().After(s.expiresAt) {
		return nil, nil
	}
	out := make([]models.EventWithAvailability, len(s.events))
	copy(out, s.events)
	return out, nil
}

func (s *MemorySnapshotStore) Set(ctx context.Context, events []models.EventWithAvailability) error {
	stored := make([]models.EventWithAvailability, len(events))
	copy(stored, events)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = stored
	s.expiresAt = time.Now().Add(s.ttl)
	return nil
}

func (s *MemorySnapshotStore) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	return nil
}
