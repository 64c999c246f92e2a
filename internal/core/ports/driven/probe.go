package driven

import (
	"context"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

// ProviderProbe checks that a configured AI provider answers.
// An unconfigured provider is not an error.
type ProviderProbe interface {
	ProbeEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error
	ProbeLLM(ctx context.Context, settings *domain.LLMSettings) error
}
