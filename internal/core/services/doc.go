// Package services implements the driving ports.
//
// LibraryService owns the ordering of side effects between the video
// store, the semantic index and the extraction, classification and frame
// collaborators. Reports, discovery and settings build on top of it.
package services
