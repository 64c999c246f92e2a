package driven

import (
	"context"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

// FragmentStore stores embedded transcript fragments and answers
// nearest-neighbour queries over them. It knows nothing about tags.
type FragmentStore interface {
	// Upsert writes fragments keyed by Fragment.Key.
	// Callers never pass more than MaxBatchSize fragments at once.
	Upsert(ctx context.Context, fragments []domain.Fragment) error

	// DeleteVideo removes every fragment owned by the video.
	// Deleting a video with no fragments is not an error.
	DeleteVideo(ctx context.Context, videoID string) error

	// Search returns the k nearest fragments to the query vector ordered
	// by ascending cosine distance. videoID scopes the search when non-empty.
	Search(ctx context.Context, query []float32, videoID string, k int) ([]domain.SearchHit, error)

	// Count returns the number of fragments owned by the video.
	Count(ctx context.Context, videoID string) (int, error)

	// MaxBatchSize is the largest number of fragments one Upsert accepts.
	MaxBatchSize() int

	// Close releases resources.
	Close() error
}
