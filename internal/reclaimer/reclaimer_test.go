package reclaimer

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"showbook/internal/cache"
	"showbook/internal/database"
	"showbook/internal/events"
	"showbook/internal/models"
	"showbook/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Reclaimer, *database.DB, *service.BookingService) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := service.NewBookingService(db, events.NewEventBus(), cache.NewMemorySnapshotStore(time.Minute), &logger)
	return New(svc, 10*time.Millisecond, 2*time.Minute, &logger), db, svc
}

func TestRunOnce(t *testing.T) {
	r, db, svc := setup(t)
	ctx := context.Background()

	event := &models.Event{Name: "Show", StartTime: time.Now().Add(time.Hour), TotalCapacity: 10}
	require.NoError(t, svc.CreateEvent(ctx, event))

	booking, err := svc.Reserve(ctx, event.ID, "alice", 3)
	require.NoError(t, err)

	// Свежая бронь не освобождается
	assert.Equal(t, 0, r.RunOnce(ctx))

	_, err = db.Exec("UPDATE bookings SET created_at = ? WHERE id = ?",
		time.Now().Add(-5*time.Minute), booking.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, r.RunOnce(ctx))

	got, err := db.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.ReservedCount)
}

func TestRunOnce_SchemaMissing(t *testing.T) {
	r, db, _ := setup(t)
	ctx := context.Background()

	_, err := db.Exec("DROP TABLE bookings")
	require.NoError(t, err)

	// Отсутствие схемы не валит тик
	assert.Equal(t, 0, r.RunOnce(ctx))
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	r, _, _ := setup(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reclaimer did not stop after context cancellation")
	}
}
