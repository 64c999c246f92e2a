// Package memory provides in-memory implementations of the storage ports.
// They back the "memory" store and index backends and the service tests.
package memory
