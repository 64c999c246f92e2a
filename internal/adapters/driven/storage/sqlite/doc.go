// Package sqlite provides the default persistent storage for mcptube.
//
// One database file (~/.mcptube/mcptube.db) holds two tables: videos, with
// transcript, chapters and tags as JSON columns, and fragments, with the
// transcript embeddings as float32 blobs. Migrations are embedded and applied
// on open. The pure-Go modernc.org/sqlite driver keeps the binary cgo-free.
package sqlite
