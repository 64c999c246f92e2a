package driven

import "context"

// LLMService completes prompts for tagging, reports and discovery clustering.
// A nil LLMService is allowed; features that need one fail with a
// *domain.ConfigurationError.
type LLMService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName is shown in diagnostics.
	ModelName() string

	// Ping makes the cheapest request the provider supports.
	Ping(ctx context.Context) error

	Close() error
}

// GenerateOptions tunes one completion. Zero values use provider defaults.
type GenerateOptions struct {
	System      string
	MaxTokens   int
	Temperature float64

	// JSON asks providers that support it to return a single JSON object.
	JSON bool
}
