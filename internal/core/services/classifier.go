package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
)

// Ensure LLMClassifier implements the interfaces.
var (
	_ driven.Classifier       = (*LLMClassifier)(nil)
	_ driven.PromptStoreAware = (*LLMClassifier)(nil)
)

// descriptionLimit bounds how much of a description goes into the prompt.
const descriptionLimit = 500

// LLMClassifier generates topic tags with a language model.
type LLMClassifier struct {
	llm     driven.LLMService
	prompts promptLoader
}

// NewLLMClassifier creates a classifier. A nil llm makes every call fail
// with domain.ErrLLMUnavailable.
func NewLLMClassifier(llm driven.LLMService) *LLMClassifier {
	return &LLMClassifier{llm: llm}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (c *LLMClassifier) SetPromptStore(store driven.PromptStore) {
	c.prompts.store = store
}

// Classify returns 3-8 tags for the video metadata.
func (c *LLMClassifier) Classify(ctx context.Context, title, description, channel string) ([]string, error) {
	if c.llm == nil {
		return nil, llmError("classify", domain.ErrLLMUnavailable)
	}

	prompt := fmt.Sprintf(c.prompts.load(driven.PromptClassify),
		title, channel, truncate(description, descriptionLimit))

	resp, err := c.llm.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: 256, Temperature: 0.2})
	if err != nil {
		return nil, llmError("classify", err)
	}

	tags, err := parseTags(resp)
	if err != nil {
		return nil, llmError("parse tags", err)
	}
	return tags, nil
}

func parseTags(resp string) ([]string, error) {
	var tags []string
	if err := json.Unmarshal([]byte(stripFences(resp)), &tags); err != nil {
		return nil, fmt.Errorf("unexpected response %q: %w", truncate(resp, 100), err)
	}
	tags = domain.NormaliseTags(tags)
	if len(tags) == 0 {
		return nil, fmt.Errorf("no tags in response %q", truncate(resp, 100))
	}
	return tags, nil
}
