package driven

import (
	"context"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

// VideoStore persists video records keyed by video ID.
// Backed by SQLite by default; Postgres and in-memory variants exist.
type VideoStore interface {
	// Save inserts or overwrites a video by ID.
	// An existing record keeps its original AddedAt.
	Save(ctx context.Context, video *domain.Video) error

	// Get retrieves a full video record.
	// Returns domain.ErrNotFound if the ID is unknown.
	Get(ctx context.Context, id string) (*domain.Video, error)

	// List returns every video newest first (AddedAt descending).
	// Transcript and chapters are not loaded.
	List(ctx context.Context) ([]domain.Video, error)

	// Delete removes a video. Returns domain.ErrNotFound if the ID is unknown.
	Delete(ctx context.Context, id string) error

	// Exists reports whether a video with the ID is stored.
	Exists(ctx context.Context, id string) (bool, error)
}
