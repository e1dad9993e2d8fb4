package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrFlagNotFound возвращается, когда флаг не задан
var ErrFlagNotFound = errors.New("feature flag not found")

func (db *DB) GetFeatureFlag(ctx context.Context, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM feature_flags WHERE key = ?`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrFlagNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get feature flag: %w", err)
	}
	return value, nil
}

func (db *DB) SetFeatureFlag(ctx context.Context, key, value string) error {
	query := `INSERT INTO feature_flags (key, value, updated_at) VALUES (?, ?, ?)
              ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := db.ExecContext(ctx, query, key, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set feature flag: %w", err)
	}
	return nil
}
