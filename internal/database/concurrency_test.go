package database

import (
	"context"
	"sync"
	"testing"

	"showbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveSeats_Concurrent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	event := mustCreateEvent(t, db, "Big Show", 100)

	const workers = 100

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.ReserveSeats(ctx, event.ID, "user", 1)
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	got, err := db.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.ReservedCount)
}

func TestReserveSeats_ConcurrentLastSeat(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	event := mustCreateEvent(t, db, "Tiny Show", 1)

	const workers = 10

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.ReserveSeats(ctx, event.ID, "user", 1)
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, ErrInsufficientCapacity):
			rejected++
		}
	}

	// Место одно, победитель ровно один
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, rejected)

	got, err := db.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ReservedCount)

	bookings, err := db.GetBookingsByDateRange(ctx, got.CreatedAt.AddDate(0, 0, -1), got.CreatedAt.AddDate(0, 0, 1))
	require.NoError(t, err)

	var failedAudits int
	for _, b := range bookings {
		if b.Status == models.StatusFailed {
			failedAudits++
		}
	}
	assert.Equal(t, workers-1, failedAudits)
}
