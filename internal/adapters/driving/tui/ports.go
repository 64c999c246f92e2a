// Package tui provides an interactive terminal user interface for mcptube.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/mcptube/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
type Ports struct {
	// Library manages the video library.
	Library driving.LibraryService

	// Search runs transcript search. Optional: search is disabled without it.
	Search driving.SearchService

	// Frame extracts video stills. Optional.
	Frame driving.FrameService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	library driving.LibraryService,
	search driving.SearchService,
	frame driving.FrameService,
) *Ports {
	return &Ports{
		Library: library,
		Search:  search,
		Frame:   frame,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Library == nil {
		return ErrMissingLibraryService
	}
	return nil
}
