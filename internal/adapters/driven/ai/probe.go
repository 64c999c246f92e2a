package ai

import (
	"context"
	"time"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
)

var _ driven.ProviderProbe = (*Prober)(nil)

// Prober builds a throwaway client for the configured provider and pings it.
type Prober struct {
	timeout time.Duration
}

// NewProber creates a Prober. A non-positive timeout uses pingTimeout.
func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = pingTimeout
	}
	return &Prober{timeout: timeout}
}

// ProbeEmbedding pings the embedding provider.
func (p *Prober) ProbeEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return p.ping(ctx, svc.Ping)
}

// ProbeLLM pings the LLM provider.
func (p *Prober) ProbeLLM(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return p.ping(ctx, svc.Ping)
}

func (p *Prober) ping(ctx context.Context, ping func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return ping(ctx)
}
