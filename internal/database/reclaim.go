package database

import (
	"context"
	"fmt"
	"time"

	"showbook/internal/models"
)

// staleBooking is the slice of a booking the reclaimer needs.
type staleBooking struct {
	ID      int64
	EventID int64
	Seats   int64
}

// ReclaimExpired fails every PENDING booking older than ttl and releases
// its seats back to the owning event. The scan runs without locks; each
// booking is then re-checked and flipped under its event's lock, one
// transaction per booking, so the status change commits atomically with
// the count decrement. Returns the number of bookings reclaimed.
func (db *DB) ReclaimExpired(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().Add(-ttl)

	rows, err := db.QueryContext(ctx,
		`SELECT id, event_id, seats FROM bookings WHERE status = ? AND created_at < ?`,
		models.StatusPending, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to scan stale bookings: %w", err)
	}

	var stale []staleBooking
	for rows.Next() {
		var b staleBooking
		if err := rows.Scan(&b.ID, &b.EventID, &b.Seats); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan stale booking: %w", err)
		}
		stale = append(stale, b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("failed to iterate stale bookings: %w", err)
	}
	rows.Close()

	reclaimed := 0
	for _, b := range stale {
		ok, err := db.reclaimOne(ctx, b)
		if err != nil {
			return reclaimed, err
		}
		if ok {
			reclaimed++
		}
	}
	return reclaimed, nil
}

func (db *DB) reclaimOne(ctx context.Context, b staleBooking) (bool, error) {
	unlock := db.lockEvent(b.EventID)
	defer unlock()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin reclaim transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// The booking may have been confirmed since the scan; only flip it if
	// it is still PENDING.
	result, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = ?`,
		models.StatusFailed, b.ID, models.StatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to fail stale booking: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	// Clamped at zero: a pre-existing inconsistency must never drive the
	// reserved count negative.
	_, err = tx.ExecContext(ctx,
		`UPDATE events SET reserved_count = MAX(reserved_count - ?, 0) WHERE id = ?`,
		b.Seats, b.EventID)
	if err != nil {
		return false, fmt.Errorf("failed to release seats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit reclaim: %w", err)
	}

	db.logger.Info().
		Int64("booking_id", b.ID).
		Int64("event_id", b.EventID).
		Int64("seats", b.Seats).
		Msg("stale booking reclaimed")
	return true, nil
}
