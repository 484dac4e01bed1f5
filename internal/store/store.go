// Package store is an optional Postgres ledger of downloaded audio chunks,
// used for usage reporting across days and months.
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
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the ledger table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS audio_chunks (
			id         uuid PRIMARY KEY,
			run_id     uuid NOT NULL,
			day        date NOT NULL,
			label      text NOT NULL,
			start_at   timestamptz NOT NULL,
			end_at     timestamptz NOT NULL,
			status     text NOT NULL,
			bytes      bigint NOT NULL DEFAULT 0,
			created_at timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create audio_chunks: %w", err)
	}
	return nil
}
