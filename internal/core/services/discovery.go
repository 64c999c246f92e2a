package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
	"github.com/custodia-labs/mcptube/internal/core/ports/driving"
	"github.com/custodia-labs/mcptube/internal/logger"
)

// Ensure DiscoveryService implements the interfaces.
var (
	_ driving.DiscoveryService = (*DiscoveryService)(nil)
	_ driven.PromptStoreAware  = (*DiscoveryService)(nil)
)

// discoverCount is how many platform results are fetched per topic.
const discoverCount = 15

// DiscoveryService finds candidate videos for a topic and groups them.
type DiscoveryService struct {
	searcher driven.VideoSearcher
	llm      driven.LLMService
	prompts  promptLoader
}

// NewDiscoveryService creates a discovery service.
// The llm parameter is optional; without it results are not clustered.
func NewDiscoveryService(searcher driven.VideoSearcher, llm driven.LLMService) *DiscoveryService {
	return &DiscoveryService{searcher: searcher, llm: llm}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *DiscoveryService) SetPromptStore(store driven.PromptStore) {
	s.prompts.store = store
}

// Discover searches the platform for topic and clusters the results.
func (s *DiscoveryService) Discover(ctx context.Context, topic string) (*domain.Discovery, error) {
	logger.Section("Discover")
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: empty topic", domain.ErrInvalidInput)
	}
	if s.searcher == nil {
		return nil, &domain.ConfigurationError{Component: "video search"}
	}

	candidates, err := s.searcher.SearchVideos(ctx, topic, discoverCount)
	if err != nil {
		if domain.IsCollaboratorError(err, domain.CollaboratorDiscovery) {
			return nil, err
		}
		return nil, domain.NewCollaboratorError(domain.CollaboratorDiscovery, "search", err)
	}
	logger.Debug("Found %d candidates for %q", len(candidates), topic)

	result := &domain.Discovery{Topic: topic, Found: len(candidates), Clusters: []domain.Cluster{}}
	if len(candidates) == 0 {
		return result, nil
	}

	if s.llm == nil {
		result.Clusters = []domain.Cluster{{Name: "Results", Videos: candidates}}
		return result, nil
	}

	clusters, err := s.cluster(ctx, topic, candidates)
	if err != nil {
		return nil, err
	}
	result.Clusters = clusters
	return result, nil
}

func (s *DiscoveryService) cluster(ctx context.Context, topic string, candidates []domain.Candidate) ([]domain.Cluster, error) {
	lines := make([]string, len(candidates))
	for i, c := range candidates {
		lines[i] = fmt.Sprintf("- id=%s | title=%s | channel=%s | duration=%.0fs | desc=%s",
			c.VideoID, c.Title, c.Channel, c.Duration, truncate(c.Description, 150))
	}

	prompt := fmt.Sprintf(s.prompts.load(driven.PromptDiscover), topic, strings.Join(lines, "\n"))
	raw, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: 2048, Temperature: 0.2, JSON: true})
	if err != nil {
		return nil, llmError("cluster results", err)
	}

	clusters, err := parseClusters(raw, candidates)
	if err != nil {
		return nil, llmError("parse clusters", err)
	}
	return clusters, nil
}

// parseClusters reads {"clusters": {name: [ids]}} keeping the model's
// cluster order. Unknown IDs, repeated IDs and empty clusters are dropped.
func parseClusters(raw string, candidates []domain.Candidate) ([]domain.Cluster, error) {
	text := stripFences(raw)
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("invalid cluster JSON (response starts %q)", truncate(raw, 200))
	}
	obj := gjson.Get(text, "clusters")
	if !obj.IsObject() {
		return nil, fmt.Errorf("missing clusters object (response starts %q)", truncate(raw, 200))
	}

	byID := make(map[string]domain.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.VideoID] = c
	}
	used := make(map[string]struct{}, len(candidates))

	var clusters []domain.Cluster
	obj.ForEach(func(name, ids gjson.Result) bool {
		cluster := domain.Cluster{Name: name.String()}
		for _, id := range ids.Array() {
			c, ok := byID[id.String()]
			if !ok {
				continue
			}
			if _, dup := used[c.VideoID]; dup {
				continue
			}
			used[c.VideoID] = struct{}{}
			cluster.Videos = append(cluster.Videos, c)
		}
		if len(cluster.Videos) > 0 {
			clusters = append(clusters, cluster)
		}
		return true
	})
	if clusters == nil {
		clusters = []domain.Cluster{}
	}
	return clusters, nil
}
