// Package postgres stores the library in PostgreSQL through a pgx pool and,
// with the pgvector extension, serves the semantic index from the same
// database.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
)

const videosSchema = `
CREATE TABLE IF NOT EXISTS videos (
    video_id      TEXT PRIMARY KEY,
    title         TEXT NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    channel       TEXT NOT NULL DEFAULT '',
    duration      DOUBLE PRECISION NOT NULL DEFAULT 0,
    thumbnail_url TEXT NOT NULL DEFAULT '',
    chapters      JSONB NOT NULL DEFAULT '[]',
    transcript    JSONB NOT NULL DEFAULT '[]',
    tags          JSONB NOT NULL DEFAULT '[]',
    added_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_videos_added_at ON videos (added_at DESC);
`

// Store owns the connection pool shared by the video and fragment stores.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to url and ensures the videos table exists.
func NewStore(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, videosSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating videos table: %w", err)
	}
	return &Store{pool: pool}, nil
}

// VideoStore returns the VideoStore backed by this pool.
func (s *Store) VideoStore() driven.VideoStore {
	return &VideoStore{pool: s.pool}
}

// FragmentStore prepares the pgvector schema for dims-sized embeddings and
// returns a FragmentStore on this pool.
func (s *Store) FragmentStore(ctx context.Context, dims int) (driven.FragmentStore, error) {
	return NewFragmentStore(ctx, s.pool, dims)
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
