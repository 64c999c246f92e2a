// Package library provides the library list view for the TUI.
package library

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/mcptube/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/mcptube/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/mcptube/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driving"
)

// View is the library list view.
type View struct {
	styles  *styles.Styles
	library driving.LibraryService
	input   *input.TextInput

	videos       []domain.Video
	selected     int
	scrollOffset int
	width        int
	height       int
	loading      bool
	adding       bool
	notice       string
	err          error
}

// NewView creates a new library view.
func NewView(s *styles.Styles, library driving.LibraryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	in := input.NewTextInput(s, "URL", "https://www.youtube.com/watch?v=...")
	in.Blur()

	return &View{
		styles:  s,
		library: library,
		input:   in,
		width:   80,
		height:  24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Load returns a command that fetches the library listing.
func (v *View) Load() tea.Cmd {
	v.loading = true
	library := v.library
	return func() tea.Msg {
		if library == nil {
			return messages.LibraryLoaded{Err: fmt.Errorf("library service not available")}
		}
		videos, err := library.List(context.Background())
		return messages.LibraryLoaded{Videos: videos, Err: err}
	}
}

// Update handles messages for the library view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.adding {
			return v.handleAddKey(msg)
		}
		return v.handleKey(msg)

	case messages.LibraryLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.videos = msg.Videos
			if v.selected >= len(v.videos) {
				v.selected = max(len(v.videos)-1, 0)
			}
			v.adjustScroll()
		}
		return v, nil

	case messages.VideoAdded:
		return v, v.afterChange("Added", msg.Video, msg.Err)

	case messages.VideoRemoved:
		return v, v.afterChange("Removed", msg.Video, msg.Err)

	case messages.VideoClassified:
		if msg.Err == nil && msg.Video != nil {
			v.err = nil
			v.notice = fmt.Sprintf("Tags for %s: %s", msg.Video.Title, strings.Join(msg.Video.Tags, ", "))
			return v, v.Load()
		}
		return v, v.afterChange("Classified", msg.Video, msg.Err)
	}

	return v, nil
}

func (v *View) afterChange(verb string, video *domain.Video, err error) tea.Cmd {
	v.loading = false
	if err != nil {
		v.err = err
		v.notice = ""
		return nil
	}
	v.err = nil
	if video != nil {
		v.notice = fmt.Sprintf("%s: %s", verb, video.Title)
	}
	return v.Load()
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.videos)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if video := v.SelectedVideo(); video != nil {
			id := video.ID
			return v, func() tea.Msg {
				return messages.VideoSelected{VideoID: id, At: -1}
			}
		}
	case "a":
		v.adding = true
		v.notice = ""
		v.input.Reset()
		return v, v.input.Focus()
	case "d":
		if video := v.SelectedVideo(); video != nil {
			return v, v.remove(video.ID)
		}
	case "c":
		if video := v.SelectedVideo(); video != nil {
			return v, v.classify(video.ID)
		}
	case "r":
		return v, v.Load()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	return v, nil
}

func (v *View) handleAddKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.adding = false
		v.input.Blur()
		return v, nil
	case "enter":
		url := strings.TrimSpace(v.input.Value())
		if url == "" {
			return v, nil
		}
		v.adding = false
		v.input.Blur()
		return v, v.add(url)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) add(url string) tea.Cmd {
	v.loading = true
	v.notice = "Adding " + url
	library := v.library
	return func() tea.Msg {
		video, err := library.Add(context.Background(), url)
		return messages.VideoAdded{Video: video, Err: err}
	}
}

func (v *View) remove(id string) tea.Cmd {
	library := v.library
	return func() tea.Msg {
		video, err := library.Remove(context.Background(), id)
		return messages.VideoRemoved{Video: video, Err: err}
	}
}

func (v *View) classify(id string) tea.Cmd {
	v.loading = true
	v.notice = "Classifying"
	library := v.library
	return func() tea.Msg {
		video, err := library.Classify(context.Background(), id)
		return messages.VideoClassified{Video: video, Err: err}
	}
}

// adjustScroll keeps the selected item visible.
func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	// Title, input or notice, help, padding
	available := v.height - 10
	if available < 1 {
		available = 1
	}
	return available
}

// View renders the library view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Library (%d)", len(v.videos))))
	b.WriteString("\n\n")

	if v.adding {
		b.WriteString(v.input.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Help.Render("[enter] add  [esc] cancel"))
		return b.String()
	}

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	case v.notice != "":
		if v.loading {
			b.WriteString(v.styles.Muted.Render(v.notice + "..."))
		} else {
			b.WriteString(v.styles.Success.Render(v.notice))
		}
		b.WriteString("\n\n")
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading library..."))
		b.WriteString("\n\n")
	}

	if len(v.videos) == 0 && !v.loading {
		b.WriteString(v.styles.Muted.Render("Library is empty. Press [a] to add a video."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	visible := v.visibleItemCount()
	for i := v.scrollOffset; i < len(v.videos) && i < v.scrollOffset+visible; i++ {
		b.WriteString(v.renderVideo(i, &v.videos[i]))
		b.WriteString("\n")
	}

	if len(v.videos) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visible, len(v.videos)),
			len(v.videos))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) renderVideo(index int, video *domain.Video) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	title := video.Title
	maxTitleLen := v.width/2 - 4
	if maxTitleLen < 10 {
		maxTitleLen = 10
	}
	if r := []rune(title); len(r) > maxTitleLen {
		title = string(r[:maxTitleLen-3]) + "..."
	}

	length := domain.FormatTimestamp(video.Duration)
	tags := strings.Join(video.Tags, ", ")

	if index == v.selected {
		return v.styles.Selected.Render(
			fmt.Sprintf("%s%2d. %8s  %-*s  %s", indicator, index+1, length, maxTitleLen, title, video.Channel))
	}

	line := v.styles.Normal.Render(fmt.Sprintf("%s%2d. ", indicator, index+1)) +
		v.styles.Timestamp.Render(fmt.Sprintf("%8s", length)) + "  " +
		v.styles.Normal.Render(fmt.Sprintf("%-*s  ", maxTitleLen, title)) +
		v.styles.Muted.Render(video.Channel)
	if tags != "" {
		line += "  " + v.styles.Muted.Render("["+tags+"]")
	}
	return line
}

func (v *View) renderHelp() string {
	return v.styles.Help.Render(
		"[↑/↓] navigate  [enter] open  [a] add  [d] remove  [c] classify  [r] reload  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
}

// Videos returns the current listing.
func (v *View) Videos() []domain.Video {
	return v.videos
}

// SelectedIndex returns the currently selected index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedVideo returns the highlighted video, or nil when the list is empty.
func (v *View) SelectedVideo() *domain.Video {
	if v.selected < 0 || v.selected >= len(v.videos) {
		return nil
	}
	return &v.videos[v.selected]
}

// IsAdding reports whether the URL prompt is open.
func (v *View) IsAdding() bool {
	return v.adding
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
