package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/college-essay-ai/essay-platform/internal/model"
)

// PostgresBackend persists the thread collection as a single row keyed by a
// fixed store key, mirroring the file backend's one-record layout.
type PostgresBackend struct {
	db  *sql.DB
	key string
}

const createThreadStateTable = `
CREATE TABLE IF NOT EXISTS thread_state (
	store_key  TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// NewPostgresBackend connects to Postgres and ensures the state table exists.
func NewPostgresBackend(ctx context.Context, dsn, storeKey string) (*PostgresBackend, error) {
	if storeKey == "" {
		return nil, fmt.Errorf("store key is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, createThreadStateTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create thread_state table: %w", err)
	}

	return &PostgresBackend{db: db, key: storeKey}, nil
}

// Load reads the serialized collection. A missing row is an empty collection.
func (b *PostgresBackend) Load(ctx context.Context) ([]model.Thread, error) {
	var payload []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT payload FROM thread_state WHERE store_key = $1`, b.key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read thread state: %w", err)
	}

	var threads []model.Thread
	if err := json.Unmarshal(payload, &threads); err != nil {
		return nil, fmt.Errorf("failed to parse thread state: %w", err)
	}
	return threads, nil
}

// Save upserts the whole collection under the store key.
func (b *PostgresBackend) Save(ctx context.Context, threads []model.Thread) error {
	payload, err := json.Marshal(threads)
	if err != nil {
		return fmt.Errorf("failed to marshal thread state: %w", err)
	}

	_, err = b.db.ExecContext(ctx, `
		INSERT INTO thread_state (store_key, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (store_key)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		b.key, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to write thread state: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (b *PostgresBackend) Close() error {
	return b.db.Close()
}
