package driven

import (
	"context"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

// Extractor fetches metadata, chapters and transcript for a video URL.
// Failures are reported as *domain.CollaboratorError of kind extraction.
type Extractor interface {
	// VideoID parses the video ID out of a URL or bare ID without network access.
	VideoID(url string) (string, error)

	// Extract downloads metadata, chapters and the transcript.
	Extract(ctx context.Context, url string) (*domain.Video, error)
}

// FrameCapturer grabs a single still from a video.
// Results are cached on disk by (videoID, timestamp).
type FrameCapturer interface {
	// Capture returns the path of a JPEG showing the frame at timestamp seconds.
	Capture(ctx context.Context, videoID string, timestamp float64) (string, error)
}

// Classifier produces topic tags from video metadata.
type Classifier interface {
	Classify(ctx context.Context, title, description, channel string) ([]string, error)
}

// VideoSearcher searches the video platform for candidates to add.
type VideoSearcher interface {
	SearchVideos(ctx context.Context, query string, limit int) ([]domain.Candidate, error)
}
