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

func (db *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	if strings.TrimSpace(event.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	if event.StartTime.IsZero() {
		return fmt.Errorf("%w: start_time is required", ErrInvalidArgument)
	}
	if event.TotalCapacity < 0 {
		return fmt.Errorf("%w: total_capacity must be non-negative", ErrInvalidArgument)
	}

	query := `INSERT INTO events (name, start_time, total_capacity, reserved_count, created_at)
              VALUES (?, ?, ?, 0, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query, event.Name, event.StartTime, event.TotalCapacity, now)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	event.ID = id
	event.ReservedCount = 0
	event.CreatedAt = now

	return nil
}

func (db *DB) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	query := `SELECT id, name, start_time, total_capacity, reserved_count, created_at
              FROM events WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&event.ID, &event.Name, &event.StartTime, &event.TotalCapacity, &event.ReservedCount, &event.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

func (db *DB) GetEventByName(ctx context.Context, name string) (*models.Event, error) {
	var event models.Event
	query := `SELECT id, name, start_time, total_capacity, reserved_count, created_at
              FROM events WHERE name = ? LIMIT 1`
	err := db.QueryRowContext(ctx, query, name).Scan(
		&event.ID, &event.Name, &event.StartTime, &event.TotalCapacity, &event.ReservedCount, &event.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event by name: %w", err)
	}
	return &event, nil
}

// ListEvents returns all events with the derived available_seats field.
// Plain read, no locking; concurrent writers may make the snapshot
// slightly stale, which the query surface tolerates.
func (db *DB) ListEvents(ctx context.Context) ([]models.EventWithAvailability, error) {
	query := `SELECT id, name, start_time, total_capacity, reserved_count,
                     (total_capacity - reserved_count) AS available_seats, created_at
              FROM events ORDER BY start_time`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []models.EventWithAvailability
	for rows.Next() {
		var e models.EventWithAvailability
		err := rows.Scan(
			&e.ID, &e.Name, &e.StartTime, &e.TotalCapacity, &e.ReservedCount, &e.AvailableSeats, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
