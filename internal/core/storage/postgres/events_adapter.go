package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/aevon-lab/event-worker/internal/core/storage"
	_ "github.com/lib/pq" // Register postgres driver
)

// Adapter implements storage.ProcessedEventStore for PostgreSQL.
type Adapter struct {
	db *sql.DB
}

// NewAdapter wraps an already connected database handle.
// Use Connect to open one with startup retry.
func NewAdapter(db *sql.DB) *Adapter {
	return &Adapter{db: db}
}

// ValidateSchema checks that the processed_events table exists.
// Returns an error if the table is missing (migrations not run).
func (a *Adapter) ValidateSchema(ctx context.Context) error {
	var exists bool
	if err := a.db.QueryRowContext(ctx, querySchemaExists).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	if !exists {
		return fmt.Errorf("processed_events table does not exist")
	}
	return nil
}

// SaveProcessedEvent inserts one processed event inside its own transaction.
// Any failure rolls the transaction back, so a row is either fully written or absent.
// Returns storage.ErrDuplicate if a record with the same id was already committed.
func (a *Adapter) SaveProcessedEvent(ctx context.Context, event *storage.ProcessedEvent) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("processed_events insert: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, queryInsertProcessedEvent,
		event.ID,
		event.EventType,
		event.ResourceID,
		nullString(event.TaskID),
		event.Action,
		string(event.Payload),
		event.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("processed_events insert: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("processed_events insert: rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("processed_events insert: commit: %w", err)
	}

	if inserted == 0 {
		return storage.ErrDuplicate
	}

	slog.Debug("[Postgres] Saved processed event",
		"id", event.ID,
		"event_type", event.EventType,
		"resource_id", event.ResourceID)
	return nil
}

// Ping reports database reachability for the health endpoint.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// DB returns the underlying *sql.DB (used by migrations).
func (a *Adapter) DB() *sql.DB {
	return a.db
}

// Close closes the database connection.
// Should be called during graceful shutdown.
func (a *Adapter) Close() error {
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	slog.Info("[Postgres] Adapter closed gracefully")
	return nil
}
