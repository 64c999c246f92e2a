// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/mcptube/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewLibrary lists library videos.
	ViewLibrary
	// ViewVideo shows one video with its chapters and transcript.
	ViewVideo
	// ViewSearch is the transcript search view.
	ViewSearch
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewLibrary:
		return "library"
	case ViewVideo:
		return "video"
	case ViewSearch:
		return "search"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// LibraryLoaded carries the library listing.
type LibraryLoaded struct {
	Videos []domain.Video
	Err    error
}

// VideoSelected asks the app to open a video. At positions the transcript
// cursor on the segment starting at that offset when non-negative.
type VideoSelected struct {
	VideoID string
	At      float64
}

// VideoLoaded carries a full video record.
type VideoLoaded struct {
	Video *domain.Video
	Err   error
}

// VideoAdded signals an add finished.
type VideoAdded struct {
	Video *domain.Video
	Err   error
}

// VideoRemoved signals a remove finished.
type VideoRemoved struct {
	Video *domain.Video
	Err   error
}

// VideoClassified signals a re-classification finished.
type VideoClassified struct {
	Video *domain.Video
	Err   error
}

// SearchRequested asks the app to open the search view, optionally scoped to one video.
type SearchRequested struct {
	VideoID string
	Title   string
}

// SearchCompleted carries search hits back to the model.
type SearchCompleted struct {
	Hits []domain.SearchHit
	Err  error
}

// FrameCaptured carries the path of a captured frame.
type FrameCaptured struct {
	Path string
	Err  error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
