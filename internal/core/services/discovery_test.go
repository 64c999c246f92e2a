package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

func candidates(ids ...string) []domain.Candidate {
	out := make([]domain.Candidate, len(ids))
	for i, id := range ids {
		out[i] = domain.Candidate{VideoID: id, Title: "Video " + id, Channel: "Chan", URL: "https://youtu.be/" + id}
	}
	return out
}

func TestDiscoveryService_Clusters(t *testing.T) {
	searcher := &mockSearcher{results: candidates("a", "b", "c", "d")}
	llm := &mockLLMService{response: "```json\n" + `{"clusters": {
		"Tutorials": ["c", "a", "unknown"],
		"Empty": ["zzz"],
		"Talks": ["b", "a"]
	}}` + "\n```"}
	svc := NewDiscoveryService(searcher, llm)

	d, err := svc.Discover(context.Background(), "  go generics ")

	require.NoError(t, err)
	assert.Equal(t, "go generics", d.Topic)
	assert.Equal(t, 4, d.Found)
	assert.Equal(t, 15, searcher.limit)
	require.Len(t, d.Clusters, 2)
	assert.Equal(t, "Tutorials", d.Clusters[0].Name)
	assert.Equal(t, "c", d.Clusters[0].Videos[0].VideoID)
	assert.Equal(t, "a", d.Clusters[0].Videos[1].VideoID)
	assert.Equal(t, "Talks", d.Clusters[1].Name)
	require.Len(t, d.Clusters[1].Videos, 1, "a video appears in one cluster only")
	assert.Equal(t, 3, d.Total(), "videos left out by the model are dropped")
	assert.Contains(t, llm.prompts[0], `"go generics"`)
	assert.Contains(t, llm.prompts[0], "id=d")
}

func TestDiscoveryService_WithoutLLM(t *testing.T) {
	svc := NewDiscoveryService(&mockSearcher{results: candidates("a", "b")}, nil)

	d, err := svc.Discover(context.Background(), "topic")

	require.NoError(t, err)
	require.Len(t, d.Clusters, 1)
	assert.Equal(t, "Results", d.Clusters[0].Name)
	assert.Len(t, d.Clusters[0].Videos, 2)
}

func TestDiscoveryService_NoResults(t *testing.T) {
	llm := &mockLLMService{}
	svc := NewDiscoveryService(&mockSearcher{}, llm)

	d, err := svc.Discover(context.Background(), "topic")

	require.NoError(t, err)
	assert.Zero(t, d.Found)
	assert.NotNil(t, d.Clusters)
	assert.Empty(t, d.Clusters)
	assert.Empty(t, llm.prompts)
}

func TestDiscoveryService_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty topic", func(t *testing.T) {
		_, err := NewDiscoveryService(&mockSearcher{}, nil).Discover(ctx, " ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("no searcher", func(t *testing.T) {
		_, err := NewDiscoveryService(nil, nil).Discover(ctx, "x")
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("search failure", func(t *testing.T) {
		_, err := NewDiscoveryService(&mockSearcher{err: errors.New("offline")}, nil).Discover(ctx, "x")
		assert.True(t, domain.IsCollaboratorError(err, domain.CollaboratorDiscovery))
	})

	t.Run("invalid llm json", func(t *testing.T) {
		svc := NewDiscoveryService(&mockSearcher{results: candidates("a")}, &mockLLMService{response: "nope"})
		_, err := svc.Discover(ctx, "x")
		assert.True(t, domain.IsCollaboratorError(err, domain.CollaboratorLLM))
	})

	t.Run("missing clusters key", func(t *testing.T) {
		svc := NewDiscoveryService(&mockSearcher{results: candidates("a")}, &mockLLMService{response: `{"groups":{}}`})
		_, err := svc.Discover(ctx, "x")
		assert.True(t, domain.IsCollaboratorError(err, domain.CollaboratorLLM))
	})
}
