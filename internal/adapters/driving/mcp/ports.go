package mcp

import (
	"github.com/custodia-labs/mcptube/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Library manages library videos.
	Library driving.LibraryService

	// Search provides semantic transcript search.
	Search driving.SearchService

	// Frame captures still frames.
	Frame driving.FrameService

	// Discovery finds new videos on a topic.
	Discovery driving.DiscoveryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Library == nil {
		return ErrMissingLibraryService
	}
	// Tools backed by a nil optional port report it as unconfigured.
	return nil
}
