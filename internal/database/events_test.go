package database

import (
	"context"
	"testing"
	"time"

	"showbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreateEvent(t *testing.T, db *DB, name string, capacity int64) *models.Event {
	t.Helper()
	event := &models.Event{
		Name:          name,
		StartTime:     time.Now().Add(24 * time.Hour),
		TotalCapacity: capacity,
	}
	require.NoError(t, db.CreateEvent(context.Background(), event))
	return event
}

func TestCreateEvent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	event := mustCreateEvent(t, db, "Evening Show", 100)
	assert.NotZero(t, event.ID)
	assert.Equal(t, int64(0), event.ReservedCount)

	got, err := db.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Evening Show", got.Name)
	assert.Equal(t, int64(100), got.TotalCapacity)
	assert.Equal(t, int64(0), got.ReservedCount)
}

func TestCreateEvent_Validation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("EmptyName", func(t *testing.T) {
		err := db.CreateEvent(ctx, &models.Event{StartTime: time.Now(), TotalCapacity: 10})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("ZeroStartTime", func(t *testing.T) {
		err := db.CreateEvent(ctx, &models.Event{Name: "x", TotalCapacity: 10})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("NegativeCapacity", func(t *testing.T) {
		err := db.CreateEvent(ctx, &models.Event{Name: "x", StartTime: time.Now(), TotalCapacity: -1})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("ZeroCapacityAllowed", func(t *testing.T) {
		err := db.CreateEvent(ctx, &models.Event{Name: "empty", StartTime: time.Now(), TotalCapacity: 0})
		assert.NoError(t, err)
	})
}

func TestGetEvent_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetEvent(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestGetEventByName(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created := mustCreateEvent(t, db, "Named Show", 50)

	got, err := db.GetEventByName(ctx, "Named Show")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = db.GetEventByName(ctx, "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestListEvents(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	later := &models.Event{Name: "Later", StartTime: time.Now().Add(48 * time.Hour), TotalCapacity: 10}
	require.NoError(t, db.CreateEvent(ctx, later))
	earlier := &models.Event{Name: "Earlier", StartTime: time.Now().Add(1 * time.Hour), TotalCapacity: 20}
	require.NoError(t, db.CreateEvent(ctx, earlier))

	_, err := db.ReserveSeats(ctx, earlier.ID, "alice", 5)
	require.NoError(t, err)

	listed, err := db.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// Ordered by start_time, available derived from the counts
	assert.Equal(t, "Earlier", listed[0].Name)
	assert.Equal(t, int64(15), listed[0].AvailableSeats)
	assert.Equal(t, "Later", listed[1].Name)
	assert.Equal(t, int64(10), listed[1].AvailableSeats)
}
