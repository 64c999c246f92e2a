package search

import "errors"

// Error definitions for the search view.
var (
	// ErrNoSearchService indicates that no search service was provided.
	ErrNoSearchService = errors.New("search is not configured: set an embedding provider")

	// ErrNoFrameService indicates that frame extraction is unavailable.
	ErrNoFrameService = errors.New("frame extraction not available")
)
