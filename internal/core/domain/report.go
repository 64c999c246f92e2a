package domain

import "time"

// ReportFormat selects a report renderer.
type ReportFormat string

// Available report formats.
const (
	ReportFormatMarkdown ReportFormat = "markdown"
	ReportFormatHTML     ReportFormat = "html"
)

// IsValid returns true if the format is recognised.
func (f ReportFormat) IsValid() bool {
	return f == ReportFormatMarkdown || f == ReportFormatHTML
}

// Report is an LLM-written report over one or more videos.
type Report struct {
	// ID identifies the generated report.
	ID string `json:"id"`

	Title        string          `json:"title"`
	Summary      string          `json:"summary"`
	Sections     []ReportSection `json:"sections"`
	KeyTakeaways []string        `json:"key_takeaways"`

	// Videos lists the source videos in the order they were given to the model.
	Videos []Video `json:"-"`

	// Focus is the optional user-supplied angle for the report.
	Focus string `json:"-"`

	GeneratedAt time.Time `json:"-"`
}

// ReportSection is one headed section of a report.
type ReportSection struct {
	Heading string        `json:"heading"`
	Content string        `json:"content"`
	Frames  []ReportFrame `json:"frames"`
}

// ReportFrame is a frame the model suggested for illustration.
type ReportFrame struct {
	VideoID   string  `json:"video_id"`
	Timestamp float64 `json:"timestamp"`
	Reason    string  `json:"reason"`

	// Path and Image are the captured JPEG, filled in at render time.
	Path  string `json:"-"`
	Image []byte `json:"-"`
}
