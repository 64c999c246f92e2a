package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mcptube/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/mcptube/internal/core/domain"
)

func newTestApp(t *testing.T, lib *MockLibraryService, search *MockSearchService) *App {
	t.Helper()
	ports := &Ports{Library: lib, Frame: &MockFrameService{}}
	if search != nil {
		ports.Search = search
	}
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(120, 40)
	return app
}

// drain runs cmd and feeds the resulting message back to the app.
func drain(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	app.Update(cmd())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	_, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingLibraryService)
}

func TestApp_InitialState(t *testing.T) {
	app, err := NewApp(&Ports{Library: &MockLibraryService{}})
	require.NoError(t, err)

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())
	assert.NotNil(t, app.Init())
}

func TestApp_WindowSize(t *testing.T) {
	app, err := NewApp(&Ports{Library: &MockLibraryService{}})
	require.NoError(t, err)

	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "mcptube")
}

func TestApp_LibraryLoaded_UpdatesMenuCount(t *testing.T) {
	app := newTestApp(t, &MockLibraryService{Videos: testVideos()}, nil)

	app.Update(messages.LibraryLoaded{Videos: testVideos()})

	assert.Contains(t, app.View(), "1 videos in library")
}

func TestApp_LibraryLoaded_Error(t *testing.T) {
	app := newTestApp(t, &MockLibraryService{}, nil)

	app.Update(messages.LibraryLoaded{Err: errors.New("store closed")})

	assert.Error(t, app.Err())
}

func TestApp_NavigateToLibrary(t *testing.T) {
	app := newTestApp(t, &MockLibraryService{Videos: testVideos()}, nil)

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewLibrary})

	assert.Equal(t, messages.ViewLibrary, app.CurrentView())
	drain(t, app, cmd)
	assert.Contains(t, app.View(), "Go Concurrency")
}

func TestApp_OpenVideoFromLibrary(t *testing.T) {
	app := newTestApp(t, &MockLibraryService{Videos: testVideos()}, nil)
	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewLibrary})
	drain(t, app, cmd)

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(t, app, cmd) // VideoSelected

	assert.Equal(t, messages.ViewVideo, app.CurrentView())
	assert.Contains(t, app.View(), "Loading video...")
}

func TestApp_VideoSelected_LoadsAtTimestamp(t *testing.T) {
	app := newTestApp(t, &MockLibraryService{Videos: testVideos()}, nil)

	_, cmd := app.Update(messages.VideoSelected{VideoID: "abcdefghijk", At: 61})
	drain(t, app, cmd)

	assert.Equal(t, messages.ViewVideo, app.CurrentView())
	assert.Equal(t, 1, app.videoView.Cursor())
	assert.Contains(t, app.View(), "Transcript (2 segments)")
}

func TestApp_ScopedSearchFromVideo(t *testing.T) {
	search := &MockSearchService{Hits: []domain.SearchHit{
		{VideoID: "abcdefghijk", Title: "Go Concurrency", Text: "channels", Start: 60},
	}}
	app := newTestApp(t, &MockLibraryService{Videos: testVideos()}, search)
	_, cmd := app.Update(messages.VideoSelected{VideoID: "abcdefghijk", At: -1})
	drain(t, app, cmd)

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	drain(t, app, cmd) // SearchRequested

	assert.Equal(t, messages.ViewSearch, app.CurrentView())
	assert.Equal(t, "abcdefghijk", app.searchView.ScopeID())

	// Esc from a scoped search returns to the video
	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	drain(t, app, cmd)
	assert.Equal(t, messages.ViewVideo, app.CurrentView())
	assert.NotNil(t, app.videoView.Video())
}

func TestApp_MenuSearchIsUnscoped(t *testing.T) {
	app := newTestApp(t, &MockLibraryService{}, &MockSearchService{})
	app.searchView.Scope("abcdefghijk", "Go")

	app.Update(messages.ViewChanged{View: messages.ViewSearch})

	assert.Equal(t, messages.ViewSearch, app.CurrentView())
	assert.Empty(t, app.searchView.ScopeID())
}

func TestApp_SearchCompleted(t *testing.T) {
	app := newTestApp(t, &MockLibraryService{}, &MockSearchService{})
	app.Update(messages.ViewChanged{View: messages.ViewSearch})

	app.Update(messages.SearchCompleted{Err: errors.New("no index")})

	assert.Error(t, app.Err())
}

func TestApp_FrameCaptured_RoutesToActiveView(t *testing.T) {
	app := newTestApp(t, &MockLibraryService{Videos: testVideos()}, nil)
	_, cmd := app.Update(messages.VideoSelected{VideoID: "abcdefghijk", At: -1})
	drain(t, app, cmd)

	app.Update(messages.FrameCaptured{Path: "/frames/x.jpg"})

	assert.Contains(t, app.View(), "Frame saved: /frames/x.jpg")
}

func TestApp_HelpView(t *testing.T) {
	app := newTestApp(t, &MockLibraryService{}, nil)

	app.Update(messages.ViewChanged{View: messages.ViewHelp})
	assert.Contains(t, app.View(), "Capture frame")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_Quit(t *testing.T) {
	app := newTestApp(t, &MockLibraryService{}, nil)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = app.Update(messages.Quit{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t, &MockLibraryService{}, nil)

	app.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, app.Err(), "boom")
}
