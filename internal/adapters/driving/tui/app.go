package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/mcptube/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/mcptube/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/mcptube/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mcptube/internal/adapters/driving/tui/views/library"
	"github.com/custodia-labs/mcptube/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/mcptube/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/mcptube/internal/adapters/driving/tui/views/video"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView    *menu.View
	libraryView *library.View
	videoView   *video.View
	searchView  *search.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		menuView:    menu.NewView(s),
		libraryView: library.NewView(s, ports.Library),
		videoView:   video.NewView(s, ports.Library, ports.Frame),
		searchView:  search.NewView(s, km, ports.Search, ports.Frame),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// The library is loaded up front so the menu can show its size.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("mcptube"),
		a.libraryView.Load(),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.routeKey(msg)

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.LibraryLoaded:
		if msg.Err == nil {
			a.menuView.SetLibraryCount(len(msg.Videos))
		} else {
			a.err = msg.Err
		}
		a.libraryView, cmd = a.libraryView.Update(msg)
		return a, cmd

	case messages.VideoAdded, messages.VideoRemoved, messages.VideoClassified:
		a.libraryView, cmd = a.libraryView.Update(msg)
		return a, cmd

	case messages.VideoSelected:
		a.currentView = messages.ViewVideo
		return a, a.videoView.Open(msg.VideoID, msg.At)

	case messages.VideoLoaded:
		a.videoView, cmd = a.videoView.Update(msg)
		return a, cmd

	case messages.SearchRequested:
		a.currentView = messages.ViewSearch
		a.searchView.Reset()
		a.searchView.Scope(msg.VideoID, msg.Title)
		return a, a.searchView.Init()

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.FrameCaptured:
		if a.currentView == messages.ViewSearch {
			a.searchView, cmd = a.searchView.Update(msg)
		} else {
			a.videoView, cmd = a.videoView.Update(msg)
		}
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (cursor blink etc.) to the active view
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewLibrary:
		a.libraryView, cmd = a.libraryView.Update(msg)
	case messages.ViewVideo, messages.ViewHelp:
	}
	return a, cmd
}

func (a *App) routeKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewLibrary:
		a.libraryView, cmd = a.libraryView.Update(msg)
	case messages.ViewVideo:
		a.videoView, cmd = a.videoView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc || keymap.Matches(msg.String(), a.keymap.Quit) {
			a.currentView = messages.ViewMenu
		}
	}
	return cmd
}

func (a *App) switchView(view messages.ViewType) tea.Cmd {
	a.currentView = view

	switch view {
	case messages.ViewLibrary:
		return a.libraryView.Load()
	case messages.ViewSearch:
		a.searchView.Reset()
		a.searchView.Scope("", "")
		return a.searchView.Init()
	case messages.ViewMenu, messages.ViewVideo, messages.ViewHelp:
		// Video keeps its loaded state when returning from a scoped search
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewLibrary:
		return a.libraryView.View()
	case messages.ViewVideo:
		return a.videoView.View()
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewMenu:
	}
	return a.menuView.View()
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

Library:
  enter       Open video
  a           Add a video by URL or ID
  d           Remove video
  c           Re-classify tags
  r           Reload
  esc         Back to menu

Video:
  j/k, ↑/↓    Scroll transcript
  g/G         Top / bottom
  f           Capture frame at the highlighted line
  /           Search inside this video
  esc         Back to library

Search:
  enter       Submit query, then open actions for a hit
  f           Capture frame at the highlighted hit
  n           New search
  esc         Back

ctrl+c quits from anywhere.

` + a.styles.Help.Render("[esc] back to menu")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.libraryView.SetDimensions(width, height)
	a.videoView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
}
