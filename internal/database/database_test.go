package database

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	logger := zerolog.Nop()
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
}

func TestNewDB_SchemaIdempotent(t *testing.T) {
	logger := zerolog.Nop()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	db.Close()

	// Повторное открытие не должно падать на существующей схеме
	db2, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db2.Close()
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)

	err := db.Ping(context.Background())
	assert.NoError(t, err)
}
