package services

import (
	"strings"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
	"github.com/custodia-labs/mcptube/internal/logger"
)

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptClassify: `You are a video classification system. Given the following YouTube video metadata, return a JSON array of relevant topic tags (3-8 tags). Tags should be concise, specific, and useful for filtering a video library.

Title: %s
Channel: %s
Description: %s

Return ONLY a JSON array of strings, e.g. ["AI", "LLM", "Tutorial"]. No explanation, no markdown.`,

	driven.PromptReport: `You are a report generator. Given YouTube video transcripts and metadata, produce a comprehensive illustrated report.%s

%s

Return ONLY valid JSON with this exact structure:
{
    "title": "Report title",
    "summary": "2-3 sentence overview",
    "sections": [
        {
            "heading": "Section heading",
            "content": "Detailed content (multiple paragraphs, in-depth explanation, not raw transcript)",
            "frames": [
                {"video_id": "abc123", "timestamp": 123.5, "reason": "Brief description of what is shown on screen"}
            ]
        }
    ],
    "key_takeaways": ["takeaway 1", "takeaway 2"]
}

Guidelines:
- Create 3-8 sections based on the content structure; with several videos, organise by theme, not by video
- Content should be deep, enriched explanations, NOT raw transcript
- Select frames at moments with visual significance (slides, diagrams, code, demos)
- Each frame MUST include the video_id it comes from
- Each section can have 0, 1, or multiple frames, only where visually meaningful
- Include 3-6 key takeaways
- No markdown in JSON values`,

	driven.PromptDiscover: `You are a video curator. Given YouTube search results for the topic "%s", filter out irrelevant videos and cluster the relevant ones into categories.

SEARCH RESULTS:
%s

Return ONLY valid JSON:
{
    "clusters": {
        "Category Name": ["video_id_1", "video_id_2"],
        "Another Category": ["video_id_3"]
    }
}

Guidelines:
- Remove clearly irrelevant results
- Create 2-5 meaningful clusters (e.g. "Tutorials", "Conference Talks", "Debates", "Explainers")
- Each video should appear in exactly one cluster
- Cluster names should be descriptive and useful
- No markdown, no explanation`,
}

// DefaultPrompts returns a copy of the built-in prompt templates keyed by name.
// File-backed prompt stores seed their directory from it.
func DefaultPrompts() map[string]string {
	out := make(map[string]string, len(defaultPrompts))
	for k, v := range defaultPrompts {
		out[k] = v
	}
	return out
}

// promptLoader resolves a prompt from an optional store with a built-in fallback.
type promptLoader struct {
	store driven.PromptStore
}

func (p *promptLoader) load(name string) string {
	if p.store != nil {
		prompt, err := p.store.Load(name)
		if err == nil && strings.TrimSpace(prompt) != "" {
			return prompt
		}
		if err != nil {
			logger.Debug("Prompt %q from store failed, using built-in: %v", name, err)
		}
	}
	return defaultPrompts[name]
}

// stripFences removes a surrounding markdown code fence from an LLM response.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if i := strings.Index(text, "\n"); i >= 0 {
		text = text[i+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	if i := strings.LastIndex(text, "```"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// llmError wraps err as an LLM collaborator error unless it already is one.
func llmError(op string, err error) error {
	if domain.IsCollaboratorError(err, domain.CollaboratorLLM) {
		return err
	}
	return domain.NewCollaboratorError(domain.CollaboratorLLM, op, err)
}
