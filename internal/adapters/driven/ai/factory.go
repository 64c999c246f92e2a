// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	localembed "github.com/custodia-labs/mcptube/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/custodia-labs/mcptube/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/mcptube/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/mcptube/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/mcptube/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/mcptube/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Services holds the AI collaborators built from settings.
type Services struct {
	Embedding driven.EmbeddingService
	LLM       driven.LLMService // nil when no provider is configured.
	Warnings  []string          // Non-fatal issues that caused fallback.
}

// Close releases all resources held by Services.
func (s *Services) Close() {
	if s.Embedding != nil {
		_ = s.Embedding.Close()
	}
	if s.LLM != nil {
		_ = s.LLM.Close()
	}
}

// Build creates the embedding and LLM services described by settings.
// An unreachable embedding provider falls back to the local embedder with
// a warning. An LLM that fails to construct is left nil with a warning, so
// features that need it report a configuration error at call time.
func Build(ctx context.Context, settings *domain.AppSettings) *Services {
	out := &Services{}

	emb, err := CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
	switch {
	case err != nil:
		out.Warnings = append(out.Warnings, err.Error()+"; using local embedder")
		out.Embedding = localembed.NewEmbeddingService()
	case emb == nil:
		out.Embedding = localembed.NewEmbeddingService()
	default:
		out.Embedding = emb
	}

	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		out.Warnings = append(out.Warnings, err.Error())
	} else {
		out.LLM = llm
	}
	return out
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateEmbeddingService creates the embedding service for the configured provider.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderLocal:
		return localembed.NewEmbeddingService(), nil

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic, domain.AIProviderGoogle:
		return nil, fmt.Errorf("%s does not provide embeddings, use local, ollama or openai", settings.Provider)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the LLM service for the configured provider.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGoogle:
		baseURL := settings.BaseURL
		if baseURL == "" {
			baseURL = openaillm.GeminiBaseURL
		}
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:   settings.APIKey,
			BaseURL:  baseURL,
			Model:    settings.Model,
			Provider: string(domain.AIProviderGoogle),
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
