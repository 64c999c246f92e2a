package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
)

// Ensure FragmentStore implements the interface.
var _ driven.FragmentStore = (*FragmentStore)(nil)

// fragmentBatchSize bounds one pgx batch.
const fragmentBatchSize = 500

// FragmentStore keeps fragments in a pgvector column and ranks them with
// the cosine distance operator (<=>) behind an HNSW index.
type FragmentStore struct {
	pool *pgxpool.Pool
	dims int
}

// NewFragmentStore creates the vector extension, table and index if needed.
func NewFragmentStore(ctx context.Context, pool *pgxpool.Pool, dims int) (*FragmentStore, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("%w: embedding dimensions must be positive", domain.ErrInvalidInput)
	}

	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS fragments (
			fragment_id TEXT PRIMARY KEY,
			video_id    TEXT NOT NULL,
			text        TEXT NOT NULL,
			start_s     DOUBLE PRECISION NOT NULL,
			end_s       DOUBLE PRECISION NOT NULL,
			position    INTEGER NOT NULL,
			embedding   vector(%d) NOT NULL
		)`, dims),
		"CREATE INDEX IF NOT EXISTS idx_fragments_video ON fragments (video_id)",
		"CREATE INDEX IF NOT EXISTS idx_fragments_embedding ON fragments USING hnsw (embedding vector_cosine_ops)",
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("preparing pgvector schema: %w", err)
		}
	}
	return &FragmentStore{pool: pool, dims: dims}, nil
}

// Upsert writes fragments in a single batch inside a transaction.
func (s *FragmentStore) Upsert(ctx context.Context, fragments []domain.Fragment) error {
	if len(fragments) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i := range fragments {
			f := &fragments[i]
			if len(f.Embedding) != s.dims {
				return fmt.Errorf("fragment %s has %d dimensions, index expects %d", f.Key, len(f.Embedding), s.dims)
			}
			batch.Queue(`
				INSERT INTO fragments (fragment_id, video_id, text, start_s, end_s, position, embedding)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (fragment_id) DO UPDATE SET
					video_id = EXCLUDED.video_id,
					text = EXCLUDED.text,
					start_s = EXCLUDED.start_s,
					end_s = EXCLUDED.end_s,
					position = EXCLUDED.position,
					embedding = EXCLUDED.embedding
			`, f.Key, f.VideoID, f.Text, f.Start, f.End, f.Position, pgvector.NewVector(f.Embedding))
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upserting fragments: %w", err)
		}
		return nil
	})
}

// DeleteVideo removes every fragment of a video.
func (s *FragmentStore) DeleteVideo(ctx context.Context, videoID string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM fragments WHERE video_id = $1", videoID); err != nil {
		return fmt.Errorf("deleting fragments: %w", err)
	}
	return nil
}

// Search returns the k nearest fragments by cosine distance.
func (s *FragmentStore) Search(ctx context.Context, query []float32, videoID string, k int) ([]domain.SearchHit, error) {
	var sb strings.Builder
	sb.WriteString("SELECT video_id, text, start_s, end_s, position, embedding <=> $1 AS distance FROM fragments")
	args := []any{pgvector.NewVector(query)}
	if videoID != "" {
		sb.WriteString(" WHERE video_id = $2")
		args = append(args, videoID)
	}
	fmt.Fprintf(&sb, " ORDER BY embedding <=> $1 LIMIT %d", max(k, 1))

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("searching fragments: %w", err)
	}
	defer rows.Close()

	hits := []domain.SearchHit{}
	for rows.Next() {
		var h domain.SearchHit
		if err := rows.Scan(&h.VideoID, &h.Text, &h.Start, &h.End, &h.Position, &h.Score); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Count returns the fragments of one video, or all when videoID is empty.
func (s *FragmentStore) Count(ctx context.Context, videoID string) (int, error) {
	var n int
	if videoID == "" {
		err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM fragments").Scan(&n)
		return n, err
	}
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM fragments WHERE video_id = $1", videoID).Scan(&n)
	return n, err
}

// MaxBatchSize returns the batch ceiling.
func (s *FragmentStore) MaxBatchSize() int {
	return fragmentBatchSize
}

// Close is a no-op; the owning Store closes the pool.
func (s *FragmentStore) Close() error {
	return nil
}
