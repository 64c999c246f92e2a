package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/mcptube/internal/adapters/driven/vector"
	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
)

// Ensure fragmentStore implements the interface.
var _ driven.FragmentStore = (*fragmentStore)(nil)

// maxBatchSize bounds one upsert transaction.
const maxBatchSize = 500

// fragmentStore keeps embeddings as float32 blobs and ranks them with an
// exact cosine scan. Libraries of a few thousand videos stay well within
// interactive latency.
type fragmentStore struct {
	db *sql.DB
}

// Upsert writes fragments in one transaction.
func (s *fragmentStore) Upsert(ctx context.Context, fragments []domain.Fragment) error {
	if len(fragments) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fragments (fragment_id, video_id, text, start_s, end_s, position, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fragment_id) DO UPDATE SET
			video_id = excluded.video_id,
			text = excluded.text,
			start_s = excluded.start_s,
			end_s = excluded.end_s,
			position = excluded.position,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for i := range fragments {
		f := &fragments[i]
		if _, err := stmt.ExecContext(ctx, f.Key, f.VideoID, f.Text, f.Start, f.End,
			f.Position, float32SliceToBytes(f.Embedding)); err != nil {
			return fmt.Errorf("upserting fragment %s: %w", f.Key, err)
		}
	}
	return tx.Commit()
}

// DeleteVideo removes every fragment of a video.
func (s *fragmentStore) DeleteVideo(ctx context.Context, videoID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM fragments WHERE video_id = ?", videoID); err != nil {
		return fmt.Errorf("deleting fragments: %w", err)
	}
	return nil
}

// Search scans candidate fragments and returns the k nearest.
func (s *fragmentStore) Search(ctx context.Context, query []float32, videoID string, k int) ([]domain.SearchHit, error) {
	q := "SELECT video_id, text, start_s, end_s, position, embedding FROM fragments"
	var args []any
	if videoID != "" {
		q += " WHERE video_id = ?"
		args = append(args, videoID)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying fragments: %w", err)
	}
	defer rows.Close()

	ranker := vector.NewRanker(query)
	for rows.Next() {
		var (
			f    domain.Fragment
			blob []byte
		)
		if err := rows.Scan(&f.VideoID, &f.Text, &f.Start, &f.End, &f.Position, &blob); err != nil {
			return nil, fmt.Errorf("scanning fragment: %w", err)
		}
		f.Embedding = bytesToFloat32Slice(blob)
		ranker.Add(&f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ranker.Top(k), nil
}

// Count returns the fragments of one video, or all when videoID is empty.
func (s *fragmentStore) Count(ctx context.Context, videoID string) (int, error) {
	var n int
	var err error
	if videoID == "" {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fragments").Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fragments WHERE video_id = ?", videoID).Scan(&n)
	}
	return n, err
}

// MaxBatchSize returns the upsert ceiling.
func (s *fragmentStore) MaxBatchSize() int {
	return maxBatchSize
}

// Close is a no-op; the owning Store closes the connection.
func (s *fragmentStore) Close() error {
	return nil
}
