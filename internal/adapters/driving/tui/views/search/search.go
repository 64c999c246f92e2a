// Package search provides the transcript search view for the TUI.
package search

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/mcptube/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/mcptube/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/mcptube/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/mcptube/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/mcptube/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/mcptube/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driving"
)

// Limit is the number of hits requested per search.
const Limit = 20

const (
	actionOpen   = "Open at timestamp"
	actionFrame  = "Capture frame"
	actionCancel = "Cancel"
)

// ActionMenu is the action overlay for a selected hit.
type ActionMenu struct {
	actions  []string
	selected int
	hit      domain.SearchHit
}

// View represents the search view with input, hit list, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.TextInput
	list      *list.HitList
	statusbar *status.Bar

	search driving.SearchService
	frames driving.FrameService
	ctx    context.Context

	scopeID    string
	scopeTitle string

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing, false = navigating hits
	actionMenu *ActionMenu
}

// NewView creates a new search view. search and frames may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	search driving.SearchService,
	frames driving.FrameService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewTextInput(s, "Search", "what are you looking for?"),
		list:       list.NewHitList(s),
		statusbar:  status.NewBar(s, km),
		search:     search,
		frames:     frames,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Scope restricts searches to one video. An empty id searches the library.
func (v *View) Scope(videoID, title string) {
	v.scopeID = videoID
	v.scopeTitle = title
	if videoID == "" {
		v.input.SetLabel("Search")
	} else {
		v.input.SetLabel("Search in " + title)
	}
	v.input.SetWidth(v.width)
}

// ScopeID returns the video the search is scoped to, or "".
func (v *View) ScopeID() string {
	return v.scopeID
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.FrameCaptured:
		if msg.Err != nil {
			v.err = msg.Err
			v.statusbar.SetState(status.StateError, msg.Err.Error())
		} else {
			v.statusbar.SetState(status.StateInfo, "Frame saved: "+msg.Path)
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError, msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.actionMenu != nil {
		return v.handleActionMenuKey(msg)
	}

	if msg.Type == tea.KeyEsc {
		back := messages.ViewMenu
		if v.scopeID != "" {
			back = messages.ViewVideo
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: back}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			query := strings.TrimSpace(v.input.Value())
			if query == "" {
				return v, nil
			}
			v.statusbar.SetState(status.StateWorking, "Searching")
			v.focusInput = false
			v.input.Blur()
			return v, v.performSearch(query)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch msg.String() {
	case "enter":
		if hit := v.list.SelectedHit(); hit != nil {
			v.actionMenu = &ActionMenu{
				actions: []string{actionOpen, actionFrame, actionCancel},
				hit:     *hit,
			}
		}
	case "f":
		if hit := v.list.SelectedHit(); hit != nil {
			return v, v.captureFrame(*hit)
		}
	case "n":
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	default:
		v.list, _ = v.list.Update(msg)
	}

	return v, nil
}

func (v *View) handleActionMenuKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.actionMenu.selected > 0 {
			v.actionMenu.selected--
		}
	case "down", "j":
		if v.actionMenu.selected < len(v.actionMenu.actions)-1 {
			v.actionMenu.selected++
		}
	case "enter":
		action := v.actionMenu.actions[v.actionMenu.selected]
		hit := v.actionMenu.hit
		v.actionMenu = nil
		return v.executeAction(action, hit)
	case "esc":
		v.actionMenu = nil
	}
	return v, nil
}

func (v *View) executeAction(action string, hit domain.SearchHit) (*View, tea.Cmd) {
	switch action {
	case actionOpen:
		return v, func() tea.Msg {
			return messages.VideoSelected{VideoID: hit.VideoID, At: hit.Start}
		}
	case actionFrame:
		return v, v.captureFrame(hit)
	}
	return v, nil
}

func (v *View) captureFrame(hit domain.SearchHit) tea.Cmd {
	if v.frames == nil {
		v.statusbar.SetState(status.StateError, ErrNoFrameService.Error())
		return nil
	}
	v.statusbar.SetState(status.StateWorking, "Capturing frame")
	frames, ctx := v.frames, v.ctx
	return func() tea.Msg {
		path, err := frames.Frame(ctx, hit.VideoID, hit.Start)
		return messages.FrameCaptured{Path: path, Err: err}
	}
}

func (v *View) performSearch(query string) tea.Cmd {
	search, ctx := v.search, v.ctx
	req := domain.SearchRequest{Video: v.scopeID, Limit: Limit}
	return func() tea.Msg {
		if search == nil {
			return messages.SearchCompleted{Err: ErrNoSearchService}
		}
		hits, err := search.Search(ctx, query, req)
		return messages.SearchCompleted{Hits: hits, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError, msg.Err.Error())
		v.focusInput = true
		v.input.Focus()
		return
	}

	v.err = nil
	v.list.SetHits(msg.Hits)
	v.statusbar.SetState(status.StateReady, "")
	v.statusbar.SetHints(v.keymap.ResultsHelp())
	v.focusInput = false
	v.input.Blur()
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("mcptube"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View())

	if v.actionMenu != nil {
		sections = append(sections, "", v.renderActionMenu())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderActionMenu() string {
	lines := make([]string, 0, len(v.actionMenu.actions))
	for i, action := range v.actionMenu.actions {
		if i == v.actionMenu.selected {
			lines = append(lines, v.styles.Selected.Render("> "+action))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+action))
		}
	}
	return v.styles.Border.Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // header, input, status
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the search query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Hits returns the current hits.
func (v *View) Hits() []domain.SearchHit {
	return v.list.Hits()
}

// SelectedHit returns the currently selected hit.
func (v *View) SelectedHit() *domain.SearchHit {
	return v.list.SelectedHit()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// IsShowingActions reports whether the action overlay is open.
func (v *View) IsShowingActions() bool {
	return v.actionMenu != nil
}

// Reset returns the view to input mode with no hits.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetHits(nil)
	v.actionMenu = nil
	v.err = nil
	v.statusbar.Clear()
	v.statusbar.SetHints(nil)
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
