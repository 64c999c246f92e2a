// Package domain defines the core business entities for mcptube.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Video: A library entry with metadata, transcript, chapters and tags
//   - Fragment: An indexed transcript segment
//   - SearchHit: A ranked semantic search result
//   - Report: An LLM-written summary over one or more videos
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
