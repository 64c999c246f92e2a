// Package mcp provides an MCP (Model Context Protocol) server adapter for mcptube.
// It lets AI assistants browse, search and illustrate the video library.
package mcp

import "errors"

// ErrMissingLibraryService is returned when the library service is not provided.
var ErrMissingLibraryService = errors.New("mcp: library service is required")
