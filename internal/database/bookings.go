package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"showbook/internal/models"
)

// ReserveSeats atomically claims seats on an event. It holds the event's
// lock for the whole read-modify-write so that no concurrent reserve,
// confirm or reclaim on the same event can interleave.
//
// When capacity is insufficient the booking is still committed with status
// FAILED as an audit record, and the booking is returned together with
// ErrInsufficientCapacity.
func (db *DB) ReserveSeats(ctx context.Context, eventID int64, userName string, seats int64) (*models.Booking, error) {
	if seats <= 0 {
		return nil, fmt.Errorf("%w: seats must be a positive integer", ErrInvalidArgument)
	}
	if strings.TrimSpace(userName) == "" {
		return nil, fmt.Errorf("%w: user_name is required", ErrInvalidArgument)
	}

	unlock := db.lockEvent(eventID)
	defer unlock()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var totalCapacity, reservedCount int64
	err = tx.QueryRowContext(ctx,
		`SELECT total_capacity, reserved_count FROM events WHERE id = ?`, eventID,
	).Scan(&totalCapacity, &reservedCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read event in tx: %w", err)
	}

	available := totalCapacity - reservedCount
	now := time.Now()

	if available < seats {
		booking, err := insertBooking(ctx, tx, eventID, userName, seats, models.StatusFailed, now)
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit failed booking: %w", err)
		}
		return booking, ErrInsufficientCapacity
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE events SET reserved_count = reserved_count + ? WHERE id = ?`, seats, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to update reserved count: %w", err)
	}

	booking, err := insertBooking(ctx, tx, eventID, userName, seats, models.StatusPending, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}
	return booking, nil
}

func insertBooking(ctx context.Context, tx *sql.Tx, eventID int64, userName string, seats int64, status string, now time.Time) (*models.Booking, error) {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (event_id, user_name, seats, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		eventID, userName, seats, status, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking in tx: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	return &models.Booking{
		ID:        id,
		EventID:   eventID,
		UserName:  userName,
		Seats:     seats,
		Status:    status,
		CreatedAt: now,
	}, nil
}

// ConfirmBooking transitions a PENDING booking to CONFIRMED. Capacity was
// already committed at reserve time, so the event's reserved count is left
// untouched; the event lock is still taken to keep the state transition
// ordered with reserve and reclaim on the same event.
func (db *DB) ConfirmBooking(ctx context.Context, bookingID int64) (*models.Booking, error) {
	// event_id is immutable, reading it outside the lock is safe
	var eventID int64
	err := db.QueryRowContext(ctx,
		`SELECT event_id FROM bookings WHERE id = ?`, bookingID,
	).Scan(&eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read booking: %w", err)
	}

	unlock := db.lockEvent(eventID)
	defer unlock()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var booking models.Booking
	err = tx.QueryRowContext(ctx,
		`SELECT id, event_id, user_name, seats, status, created_at FROM bookings WHERE id = ?`, bookingID,
	).Scan(&booking.ID, &booking.EventID, &booking.UserName, &booking.Seats, &booking.Status, &booking.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read booking in tx: %w", err)
	}

	if booking.Status != models.StatusPending {
		return nil, &InvalidStateError{Status: booking.Status}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ?`, models.StatusConfirmed, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit confirmation: %w", err)
	}

	booking.Status = models.StatusConfirmed
	return &booking, nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	query := `SELECT id, event_id, user_name, seats, status, created_at FROM bookings WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&booking.ID, &booking.EventID, &booking.UserName, &booking.Seats, &booking.Status, &booking.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// GetBookingsByDateRange returns bookings created inside [from, to],
// ordered by creation time. Used by the admin export.
func (db *DB) GetBookingsByDateRange(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	query := `SELECT id, event_id, user_name, seats, status, created_at
              FROM bookings WHERE created_at >= ? AND created_at <= ?
              ORDER BY created_at`
	rows, err := db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings by date range: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		err := rows.Scan(&b.ID, &b.EventID, &b.UserName, &b.Seats, &b.Status, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}
