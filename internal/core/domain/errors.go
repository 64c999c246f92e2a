package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested video does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a video is already in the library.
	ErrAlreadyExists = errors.New("already exists")

	// ErrAmbiguous indicates a query matched more than one video.
	ErrAmbiguous = errors.New("ambiguous query")

	// ErrConfiguration indicates an operation needs a collaborator that is not configured.
	ErrConfiguration = errors.New("not configured")

	// ErrNoMatch indicates a semantic search produced no usable hit.
	// It is distinct from collaborator failures further down the pipeline.
	ErrNoMatch = errors.New("no matching transcript segment")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates no LLM credentials are configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrToolMissing indicates a required external binary is not on PATH.
	ErrToolMissing = errors.New("required tool not found")

	// ErrCaptureTimeout indicates frame capture exceeded its time budget.
	ErrCaptureTimeout = errors.New("frame capture timed out")
)

// AmbiguousError reports every video a substring query matched.
type AmbiguousError struct {
	Query  string
	Titles []string
}

func (e *AmbiguousError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q matches %d videos:", e.Query, len(e.Titles))
	for i, t := range e.Titles {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, t)
	}
	return b.String()
}

// Is makes errors.Is(err, ErrAmbiguous) true.
func (e *AmbiguousError) Is(target error) bool {
	return target == ErrAmbiguous
}

// ConfigurationError reports a missing collaborator.
type ConfigurationError struct {
	// Component names what is missing, for example "semantic index".
	Component string

	// Hint optionally tells the user how to configure it.
	Hint string
}

func (e *ConfigurationError) Error() string {
	msg := e.Component + " " + ErrConfiguration.Error()
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// Is makes errors.Is(err, ErrConfiguration) true.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// CollaboratorKind identifies an external collaborator.
type CollaboratorKind string

// Collaborator kinds.
const (
	CollaboratorExtraction CollaboratorKind = "extraction"
	CollaboratorCapture    CollaboratorKind = "frame capture"
	CollaboratorLLM        CollaboratorKind = "llm"
	CollaboratorDiscovery  CollaboratorKind = "discovery"
)

// CollaboratorError wraps a failure from an external collaborator.
type CollaboratorError struct {
	Kind CollaboratorKind
	Op   string
	Err  error
}

func (e *CollaboratorError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// NewCollaboratorError builds a CollaboratorError.
func NewCollaboratorError(kind CollaboratorKind, op string, err error) *CollaboratorError {
	return &CollaboratorError{Kind: kind, Op: op, Err: err}
}

// IsCollaboratorError reports whether err came from a collaborator of the given kind.
func IsCollaboratorError(err error, kind CollaboratorKind) bool {
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}
