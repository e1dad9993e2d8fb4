package database

import (
	"context"
	"testing"
	"time"

	"showbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClosedDB(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	event := mustCreateEvent(t, db, "Show", 10)
	require.NoError(t, db.Close())

	_, err := db.GetEvent(ctx, event.ID)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrEventNotFound)

	_, err = db.ReserveSeats(ctx, event.ID, "alice", 1)
	assert.Error(t, err)

	_, err = db.ReclaimExpired(ctx, 2*time.Minute)
	assert.Error(t, err)

	err = db.CreateEvent(ctx, &models.Event{Name: "Other", StartTime: time.Now(), TotalCapacity: 1})
	assert.Error(t, err)

	assert.Error(t, db.Ping(ctx))
}
