package driving

import (
	"context"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

// LibraryService manages the video library.
// Every query argument accepts a video ID, a 1-based list position or
// a title/channel substring.
type LibraryService interface {
	// Add ingests a video from a URL or bare video ID.
	Add(ctx context.Context, url string) (*domain.Video, error)

	// List returns all videos newest first, without transcripts.
	List(ctx context.Context) ([]domain.Video, error)

	// Get resolves a query to one full video record.
	Get(ctx context.Context, query string) (*domain.Video, error)

	// Remove deletes a video and its index fragments.
	Remove(ctx context.Context, query string) (*domain.Video, error)

	// Classify replaces the tags of a video with freshly generated ones.
	Classify(ctx context.Context, query string) (*domain.Video, error)
}

// FrameService extracts still frames from library videos.
type FrameService interface {
	// Frame captures the frame at timestamp seconds and returns the image path.
	Frame(ctx context.Context, query string, timestamp float64) (string, error)

	// FrameByQuery captures the frame where the transcript best matches text.
	FrameByQuery(ctx context.Context, query, text string) (*FrameMatch, error)

	// FrameData captures the frame at timestamp seconds and returns the JPEG bytes.
	FrameData(ctx context.Context, query string, timestamp float64) ([]byte, error)
}

// FrameMatch is the result of a frame-by-query capture.
type FrameMatch struct {
	// Path is the captured image.
	Path string

	// Hit is the transcript fragment the frame was taken at.
	Hit domain.SearchHit
}
