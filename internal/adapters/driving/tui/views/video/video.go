// Package video provides the single-video view: metadata, chapters and a
// scrollable transcript.
package video

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/mcptube/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/mcptube/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driving"
)

// ErrFramesUnavailable is shown when frame capture is not configured.
var ErrFramesUnavailable = errors.New("frame extraction not available")

// View is the video detail view.
type View struct {
	styles  *styles.Styles
	library driving.LibraryService
	frames  driving.FrameService

	video        *domain.Video
	at           float64
	cursor       int
	scrollOffset int
	width        int
	height       int
	loading      bool
	notice       string
	err          error
}

// NewView creates a new video view. frames may be nil.
func NewView(s *styles.Styles, library driving.LibraryService, frames driving.FrameService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		library: library,
		frames:  frames,
		at:      -1,
		width:   80,
		height:  24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Open loads a video and positions the transcript cursor at offset at
// seconds. A negative offset starts at the top.
func (v *View) Open(videoID string, at float64) tea.Cmd {
	v.video = nil
	v.at = at
	v.cursor = 0
	v.scrollOffset = 0
	v.notice = ""
	v.err = nil
	v.loading = true

	library := v.library
	return func() tea.Msg {
		if library == nil {
			return messages.VideoLoaded{Err: fmt.Errorf("library service not available")}
		}
		video, err := library.Get(context.Background(), videoID)
		return messages.VideoLoaded{Video: video, Err: err}
	}
}

// Update handles messages for the video view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.VideoLoaded:
		v.loading = false
		v.err = msg.Err
		v.video = msg.Video
		if v.video != nil && v.at >= 0 {
			v.cursor = SegmentAt(v.video.Transcript, v.at)
			v.adjustScroll()
		}
		return v, nil

	case messages.FrameCaptured:
		if msg.Err != nil {
			v.err = msg.Err
			v.notice = ""
		} else {
			v.err = nil
			v.notice = "Frame saved: " + msg.Path
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == "esc" {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewLibrary}
		}
	}
	if v.video == nil {
		return v, nil
	}

	last := len(v.video.Transcript) - 1
	switch msg.String() {
	case "up", "k":
		v.moveCursor(v.cursor - 1)
	case "down", "j":
		v.moveCursor(v.cursor + 1)
	case "pgup":
		v.moveCursor(v.cursor - v.transcriptHeight())
	case "pgdown":
		v.moveCursor(v.cursor + v.transcriptHeight())
	case "g", "home":
		v.moveCursor(0)
	case "G", "end":
		v.moveCursor(last)
	case "f":
		return v, v.captureFrame()
	case "/":
		id, title := v.video.ID, v.video.Title
		return v, func() tea.Msg {
			return messages.SearchRequested{VideoID: id, Title: title}
		}
	}
	return v, nil
}

func (v *View) moveCursor(to int) {
	if v.video == nil || len(v.video.Transcript) == 0 {
		return
	}
	v.cursor = max(0, min(to, len(v.video.Transcript)-1))
	v.adjustScroll()
}

func (v *View) captureFrame() tea.Cmd {
	if v.frames == nil {
		v.err = ErrFramesUnavailable
		return nil
	}

	at := v.CursorTime()
	id := v.video.ID
	frames := v.frames
	v.notice = fmt.Sprintf("Capturing frame at %s", domain.FormatTimestamp(at))
	return func() tea.Msg {
		path, err := frames.Frame(context.Background(), id, at)
		return messages.FrameCaptured{Path: path, Err: err}
	}
}

// SegmentAt returns the index of the last segment starting at or before
// offset seconds.
func SegmentAt(segments []domain.Segment, offset float64) int {
	idx := 0
	for i, seg := range segments {
		if seg.Start > offset {
			break
		}
		idx = i
	}
	return idx
}

// CursorTime returns the start offset of the highlighted segment, or zero
// when there is no transcript.
func (v *View) CursorTime() float64 {
	if v.video == nil || v.cursor >= len(v.video.Transcript) {
		return 0
	}
	return v.video.Transcript[v.cursor].Start
}

func (v *View) headerHeight() int {
	// Title, meta, url, tags, chapters block, spacing
	h := 6
	if v.video != nil && len(v.video.Chapters) > 0 {
		h += min(len(v.video.Chapters), 5) + 2
	}
	return h
}

func (v *View) transcriptHeight() int {
	return max(v.height-v.headerHeight()-4, 1)
}

func (v *View) adjustScroll() {
	visible := v.transcriptHeight()
	if v.cursor < v.scrollOffset {
		v.scrollOffset = v.cursor
	} else if v.cursor >= v.scrollOffset+visible {
		v.scrollOffset = v.cursor - visible + 1
	}
}

// View renders the video view.
func (v *View) View() string {
	var b strings.Builder

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading video..."))
		return b.String()
	}
	if v.video == nil {
		if v.err != nil {
			b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
			b.WriteString("\n\n")
		}
		b.WriteString(v.styles.Help.Render("[esc] back"))
		return b.String()
	}

	video := v.video
	b.WriteString(v.styles.Title.Render(video.Title))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%s | %s | %s",
		video.Channel, domain.FormatTimestamp(video.Duration), video.ID)))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(video.URL()))
	b.WriteString("\n")
	if len(video.Tags) > 0 {
		tags := make([]string, len(video.Tags))
		for i, t := range video.Tags {
			tags[i] = v.styles.Tag.Render(t)
		}
		b.WriteString(strings.Join(tags, " "))
		b.WriteString("\n")
	}

	if len(video.Chapters) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Chapters"))
		b.WriteString("\n")
		for i, ch := range video.Chapters {
			if i == 5 {
				b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  ... %d more", len(video.Chapters)-5)))
				b.WriteString("\n")
				break
			}
			b.WriteString("  " + v.styles.Timestamp.Render("["+domain.FormatTimestamp(ch.Start)+"]") +
				" " + v.styles.Normal.Render(ch.Title))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Transcript (%d segments)", len(video.Transcript))))
	b.WriteString("\n")
	if !video.HasTranscript() {
		b.WriteString(v.styles.Muted.Render("  No transcript available."))
		b.WriteString("\n")
	}

	visible := v.transcriptHeight()
	maxText := max(v.width-14, 20)
	for i := v.scrollOffset; i < len(video.Transcript) && i < v.scrollOffset+visible; i++ {
		seg := video.Transcript[i]
		text := seg.Text
		if r := []rune(text); len(r) > maxText {
			text = string(r[:maxText-3]) + "..."
		}
		stamp := "[" + domain.FormatTimestamp(seg.Start) + "]"
		if i == v.cursor {
			b.WriteString(v.styles.Selected.Render("> " + stamp + " " + text))
		} else {
			b.WriteString("  " + v.styles.Timestamp.Render(stamp) + " " + v.styles.Normal.Render(text))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case v.notice != "":
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render("[↑/↓] scroll  [g/G] top/bottom  [f] frame  [/] search video  [esc] back"))

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.adjustScroll()
}

// Video returns the loaded video, or nil.
func (v *View) Video() *domain.Video {
	return v.video
}

// Cursor returns the highlighted transcript segment index.
func (v *View) Cursor() int {
	return v.cursor
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
