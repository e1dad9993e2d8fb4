package service

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"
	"time"

	"showbook/internal/cache"
	"showbook/internal/database"
	"showbook/internal/events"
	"showbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) (*BookingService, *events.EventBus) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	bus := events.NewEventBus()
	snapshots := cache.NewMemorySnapshotStore(time.Minute)
	return NewBookingService(db, bus, snapshots, &logger), bus
}

func createEvent(t *testing.T, svc *BookingService, name string, capacity int64) *models.Event {
	t.Helper()
	event := &models.Event{
		Name:          name,
		StartTime:     time.Now().Add(24 * time.Hour),
		TotalCapacity: capacity,
	}
	require.NoError(t, svc.CreateEvent(context.Background(), event))
	return event
}

func TestBookingService_ReservePublishes(t *testing.T) {
	svc, bus := setupService(t)
	ctx := context.Background()
	event := createEvent(t, svc, "Show", 10)

	var published []events.BookingEventPayload
	bus.Subscribe(events.EventBookingReserved, func(e *events.Event) error {
		var p events.BookingEventPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return err
		}
		published = append(published, p)
		return nil
	})

	booking, err := svc.Reserve(ctx, event.ID, "alice", 3)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, booking.Status)

	require.Len(t, published, 1)
	assert.Equal(t, booking.ID, published[0].BookingID)
	assert.Equal(t, int64(3), published[0].Seats)
}

func TestBookingService_ReserveRejectedPublishes(t *testing.T) {
	svc, bus := setupService(t)
	ctx := context.Background()
	event := createEvent(t, svc, "Show", 2)

	var rejected int
	bus.Subscribe(events.EventBookingRejected, func(e *events.Event) error {
		rejected++
		return nil
	})

	_, err := svc.Reserve(ctx, event.ID, "alice", 2)
	require.NoError(t, err)

	booking, err := svc.Reserve(ctx, event.ID, "bob", 1)
	assert.ErrorIs(t, err, database.ErrInsufficientCapacity)
	require.NotNil(t, booking)
	assert.Equal(t, models.StatusFailed, booking.Status)
	assert.Equal(t, 1, rejected)
}

func TestBookingService_ConfirmPublishes(t *testing.T) {
	svc, bus := setupService(t)
	ctx := context.Background()
	event := createEvent(t, svc, "Show", 10)

	var confirmed []events.BookingEventPayload
	bus.Subscribe(events.EventBookingConfirmed, func(e *events.Event) error {
		var p events.BookingEventPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return err
		}
		confirmed = append(confirmed, p)
		return nil
	})

	booking, err := svc.Reserve(ctx, event.ID, "alice", 2)
	require.NoError(t, err)

	got, err := svc.Confirm(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)

	require.Len(t, confirmed, 1)
	assert.Equal(t, "CONFIRMED", confirmed[0].Status)
}

func TestBookingService_ListEventsCached(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	createEvent(t, svc, "Show A", 10)
	createEvent(t, svc, "Show B", 20)

	listed, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// Повторный вызов идет из кеша и совпадает
	cached, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, listed, cached)
}

func TestBookingService_ReserveInvalidatesSnapshot(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	event := createEvent(t, svc, "Show", 10)

	listed, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), listed[0].AvailableSeats)

	_, err = svc.Reserve(ctx, event.ID, "alice", 4)
	require.NoError(t, err)

	// Снапшот сброшен, вычитываем свежую доступность
	listed, err = svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), listed[0].AvailableSeats)
}

func TestBookingService_ReclaimExpired(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	event := createEvent(t, svc, "Show", 10)

	_, err := svc.Reserve(ctx, event.ID, "alice", 3)
	require.NoError(t, err)

	// Свежие брони не трогаем
	reclaimed, err := svc.ReclaimExpired(ctx, 2*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, reclaimed)
}
