package service

import (
	"context"
	"errors"
	"time"

	"showbook/internal/cache"
	"showbook/internal/database"
	"showbook/internal/events"
	"showbook/internal/metrics"
	"showbook/internal/models"

	"github.com/rs/zerolog"
)

// BookingService fronts the reservation engine: it validates input,
// delegates the atomic work to the store, keeps the availability snapshot
// fresh and publishes domain events for subscribers (notifier etc.).
type BookingService struct {
	db        *database.DB
	bus       *events.EventBus
	snapshots cache.SnapshotStore
	logger    *zerolog.Logger
}

func NewBookingService(db *database.DB, bus *events.EventBus, snapshots cache.SnapshotStore, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		db:        db,
		bus:       bus,
		snapshots: snapshots,
		logger:    logger,
	}
}

func (s *BookingService) Reserve(ctx context.Context, eventID int64, userName string, seats int64) (*models.Booking, error) {
	booking, err := s.db.ReserveSeats(ctx, eventID, userName, seats)
	switch {
	case err == nil:
		metrics.IncReservation("pending")
		s.invalidateSnapshot(ctx)
		s.publishBooking(events.EventBookingReserved, booking)
	case errors.Is(err, database.ErrInsufficientCapacity):
		metrics.IncReservation("insufficient")
		s.publishBooking(events.EventBookingRejected, booking)
	case errors.Is(err, database.ErrInvalidArgument), errors.Is(err, database.ErrEventNotFound):
		// client errors, not engine failures
	default:
		metrics.IncReservation("error")
	}
	return booking, err
}

func (s *BookingService) Confirm(ctx context.Context, bookingID int64) (*models.Booking, error) {
	booking, err := s.db.ConfirmBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.publishBooking(events.EventBookingConfirmed, booking)
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.db.GetBooking(ctx, id)
}

func (s *BookingService) CreateEvent(ctx context.Context, event *models.Event) error {
	if err := s.db.CreateEvent(ctx, event); err != nil {
		return err
	}
	s.invalidateSnapshot(ctx)
	_ = s.bus.PublishJSON(events.EventCreated, event)
	return nil
}

// ListEvents serves the availability snapshot from cache when fresh,
// falling back to the store. Slightly stale reads are acceptable here.
func (s *BookingService) ListEvents(ctx context.Context) ([]models.EventWithAvailability, error) {
	if s.snapshots != nil {
		if cached, err := s.snapshots.Get(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	listed, err := s.db.ListEvents(ctx)
	if err != nil {
		return nil, err
	}

	if s.snapshots != nil {
		if err := s.snapshots.Set(ctx, listed); err != nil {
			s.logger.Warn().Err(err).Msg("store events snapshot")
		}
	}
	return listed, nil
}

func (s *BookingService) BookingsByDateRange(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	return s.db.GetBookingsByDateRange(ctx, from, to)
}

// ReclaimExpired runs one reclaim pass and keeps the snapshot and metrics
// in sync with the released capacity.
func (s *BookingService) ReclaimExpired(ctx context.Context, ttl time.Duration) (int, error) {
	reclaimed, err := s.db.ReclaimExpired(ctx, ttl)
	if reclaimed > 0 {
		metrics.AddReclaimed(reclaimed)
		s.invalidateSnapshot(ctx)
	}
	return reclaimed, err
}

func (s *BookingService) publishBooking(eventType string, booking *models.Booking) {
	if booking == nil {
		return
	}
	_ = s.bus.PublishJSON(eventType, events.BookingEventPayload{
		BookingID: booking.ID,
		EventID:   booking.EventID,
		UserName:  booking.UserName,
		Seats:     booking.Seats,
		Status:    booking.Status,
		CreatedAt: booking.CreatedAt,
	})
}

func (s *BookingService) invalidateSnapshot(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("invalidate events snapshot")
	}
}
