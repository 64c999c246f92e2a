package domain

import (
	"fmt"
	"strings"
	"time"
)

// Video is a stored library entry: metadata, transcript, chapters and tags.
// ID is the 11-character YouTube video id and never changes.
type Video struct {
	// ID is the stable external identifier.
	ID string `json:"video_id"`

	// Title is the video title.
	Title string `json:"title"`

	// Description is the full video description.
	Description string `json:"description"`

	// Channel is the owning channel name.
	Channel string `json:"channel"`

	// Duration is the video length in seconds.
	Duration float64 `json:"duration"`

	// ThumbnailURL points at the video thumbnail.
	ThumbnailURL string `json:"thumbnail_url"`

	// Chapters are the chapter markers in start order.
	Chapters []Chapter `json:"chapters"`

	// Transcript is the ordered caption segments.
	Transcript []Segment `json:"transcript"`

	// Tags are the classification labels. Re-classification replaces them.
	Tags []string `json:"tags"`

	// AddedAt is when the video entered the library (UTC).
	// Assigned once on insertion and never updated.
	AddedAt time.Time `json:"added_at"`
}

// Chapter is a chapter marker within a video.
type Chapter struct {
	Title string  `json:"title"`
	Start float64 `json:"start"`
}

// Segment is one caption line of a transcript.
// Segments are ordered by Start but may overlap.
type Segment struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

// End returns the segment end offset in seconds.
func (s Segment) End() float64 {
	return s.Start + s.Duration
}

// URL returns the watch URL for the video.
func (v *Video) URL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

// HasTranscript reports whether the video has any caption segments.
func (v *Video) HasTranscript() bool {
	return len(v.Transcript) > 0
}

// TranscriptText joins all segment text with spaces.
func (v *Video) TranscriptText() string {
	parts := make([]string, 0, len(v.Transcript))
	for _, s := range v.Transcript {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}

// HasTag reports whether the video carries the tag, ignoring case.
func (v *Video) HasTag(tag string) bool {
	for _, t := range v.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Summary returns the metadata-only projection of the video.
// Transcript and chapters are dropped.
func (v *Video) Summary() Video {
	s := *v
	s.Transcript = nil
	s.Chapters = nil
	s.Tags = append([]string(nil), v.Tags...)
	return s
}

// NormaliseTags trims, drops empty values and removes case-insensitive
// duplicates while keeping first-seen order.
func NormaliseTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// FormatTimestamp renders seconds as MM:SS, or H:MM:SS past one hour.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
