package cache

import (
	"context"
	"sync/atomic"
	"time"

	"showbook/internal/models"

	"github.com/rs/zerolog"
)

// FailoverSnapshotStore prefers the primary (redis) store and falls back to
// the in-memory store while the primary is down, probing it again after a
// minute.
type FailoverSnapshotStore struct {
	primary   SnapshotStore
	fallback  SnapshotStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos of the last failed probe
}

func NewFailoverSnapshotStore(primary, fallback SnapshotStore, logger *zerolog.Logger) *FailoverSnapshotStore {
	return &FailoverSnapshotStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (s *FailoverSnapshotStore) Get(ctx context.Context) ([]models.EventWithAvailability, error) {
	if !s.isDown.Load() {
		events, err := s.primary.Get(ctx)
		if err == nil {
			return events, nil
		}
		s.markDown(err)
	}

	if s.shouldProbe() {
		events, err := s.primary.Get(ctx)
		if err == nil {
			s.isDown.Store(false)
			return events, nil
		}
		s.lastCheck.Store(time.Now().UnixNano())
	}

	return s.fallback.Get(ctx)
}

func (s *FailoverSnapshotStore) Set(ctx context.Context, events []models.EventWithAvailability) error {
	if !s.isDown.Load() {
		if err := s.primary.Set(ctx, events); err != nil {
			s.markDown(err)
		} else {
			return nil
		}
	}
	return s.fallback.Set(ctx, events)
}

func (s *FailoverSnapshotStore) Invalidate(ctx context.Context) error {
	// Drop both copies; a stale fallback must not outlive a write.
	if !s.isDown.Load() {
		if err := s.primary.Invalidate(ctx); err != nil {
			s.markDown(err)
		}
	}
	return s.fallback.Invalidate(ctx)
}

func (s *FailoverSnapshotStore) markDown(err error) {
	s.logger.Error().Err(err).Msg("primary snapshot store failed, falling back to memory")
	s.isDown.Store(true)
	s.lastCheck.Store(time.Now().UnixNano())
}

func (s *FailoverSnapshotStore) shouldProbe() bool {
	return s.isDown.Load() && time.Since(time.Unix(0, s.lastCheck.Load())) > time.Minute
}
