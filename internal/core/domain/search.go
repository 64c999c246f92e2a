package domain

import "fmt"

// Fragment is one indexed transcript segment in the semantic index.
// It points back at its owning video and original offsets.
type Fragment struct {
	// Key is "{VideoID}_{Position}", unique within the index.
	Key string

	// VideoID is the owning video.
	VideoID string

	// Text is the segment text that was embedded.
	Text string

	// Start is the segment start offset in seconds.
	Start float64

	// End is the segment end offset in seconds.
	End float64

	// Position is the index of the segment in the video transcript.
	Position int

	// Embedding is the vector representation of Text.
	Embedding []float32
}

// FragmentKey builds the index key for a segment position.
func FragmentKey(videoID string, position int) string {
	return fmt.Sprintf("%s_%d", videoID, position)
}

// SearchOptions configures a semantic index query.
type SearchOptions struct {
	// VideoID scopes the search to one video when non-empty.
	VideoID string

	// Limit is the maximum number of hits.
	Limit int
}

// SearchRequest configures a library-level search.
type SearchRequest struct {
	// Video is resolved to a single video and scopes the search. Optional.
	Video string

	// Tags keeps only hits whose video carries at least one of these tags.
	Tags []string

	// Limit is the maximum number of hits.
	Limit int
}

// SearchHit is one matching fragment.
type SearchHit struct {
	// VideoID is the owning video.
	VideoID string `json:"video_id"`

	// Title is the owning video title. Filled in by the library service.
	Title string `json:"title,omitempty"`

	// Text is the matched segment text.
	Text string `json:"text"`

	// Start is the segment start offset in seconds.
	Start float64 `json:"start"`

	// End is the segment end offset in seconds.
	End float64 `json:"end"`

	// Position is the segment index within the transcript.
	Position int `json:"segment_index"`

	// Score is a distance: lower means more similar.
	Score float64 `json:"score"`
}

// DefaultSearchLimit is used when a caller passes a non-positive limit.
const DefaultSearchLimit = 10
