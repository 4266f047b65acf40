// Package store archives enriched records in Postgres.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS enriched_records (
	id            UUID PRIMARY KEY,
	run_id        UUID NOT NULL,
	period        TEXT NOT NULL,
	position      INT NOT NULL,
	created_on    TEXT NOT NULL,
	email         TEXT NOT NULL,
	location      TEXT NOT NULL,
	chat_duration DOUBLE PRECISION,
	conversation  TEXT NOT NULL,
	type          TEXT NOT NULL,
	summarization TEXT NOT NULL,
	degraded      TEXT[] NOT NULL DEFAULT '{}',
	stored_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (period, position)
)`

// EnsureSchema creates the archive table if it is missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
