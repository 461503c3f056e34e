// Package testdb provides an in-memory SQLite database for tests.
package testdb

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/helixml/tasklist/infrastructure/persistence"
	"github.com/helixml/tasklist/internal/database"
)

// New creates an in-memory SQLite database with all migrations applied.
// The database is automatically closed when the test finishes.
func New(t *testing.T) database.Database {
	t.Helper()
	db := NewPlain(t)
	if err := persistence.AutoMigrate(db); err != nil {
		t.Fatalf("testdb.New: auto migrate: %v", err)
	}
	return db
}

// NewPlain creates an in-memory SQLite database without running migrations.
func NewPlain(t *testing.T) database.Database {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := database.NewDatabase(context.Background(), "sqlite:///:memory:", database.WithLogger(quiet))
	if err != nil {
		t.Fatalf("testdb.NewPlain: open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
