package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
	"github.com/custodia-labs/mcptube/internal/core/ports/driving"
	"github.com/custodia-labs/mcptube/internal/logger"
)

// Ensure ReportService implements the interfaces.
var (
	_ driving.ReportService   = (*ReportService)(nil)
	_ driven.PromptStoreAware = (*ReportService)(nil)
)

const (
	// reportSearchLimit is how many fragments pick the videos of a query report.
	reportSearchLimit = 20

	// reportTranscriptBudget is the transcript character budget shared by all
	// videos of one report.
	reportTranscriptBudget = 120000

	// reportMinPerVideo keeps a useful amount of transcript per video.
	reportMinPerVideo = 8000

	reportMaxTokens = 16000
)

// ReportService writes illustrated reports with a language model.
type ReportService struct {
	resolver *Resolver
	search   driving.SearchService
	llm      driven.LLMService
	frames   driven.FrameCapturer
	prompts  promptLoader
	now      func() time.Time
	newID    func() string
}

// NewReportService creates a report service.
// The search and frames parameters are optional (can be nil).
func NewReportService(
	resolver *Resolver,
	search driving.SearchService,
	llm driven.LLMService,
	frames driven.FrameCapturer,
) *ReportService {
	return &ReportService{
		resolver: resolver,
		search:   search,
		llm:      llm,
		frames:   frames,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *ReportService) SetPromptStore(store driven.PromptStore) {
	s.prompts.store = store
}

// Generate writes a report about one video.
func (s *ReportService) Generate(ctx context.Context, query, focus string) (*domain.Report, error) {
	logger.Section("Generate Report")
	if err := s.requireLLM(); err != nil {
		return nil, err
	}
	video, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.write(ctx, []domain.Video{*video}, focus)
}

// GenerateFromQuery picks videos through a semantic search and writes a
// cross-video report. Videos keep the order in which the search first
// returned them.
func (s *ReportService) GenerateFromQuery(
	ctx context.Context, query string, tags []string, focus string,
) (*domain.Report, error) {
	logger.Section("Generate Report From Query")
	if err := s.requireLLM(); err != nil {
		return nil, err
	}
	if s.search == nil {
		return nil, &domain.ConfigurationError{Component: "semantic index", Hint: "set index.backend"}
	}

	hits, err := s.search.Search(ctx, query, domain.SearchRequest{Tags: tags, Limit: reportSearchLimit})
	if err != nil {
		return nil, err
	}

	ids := uniqueVideoIDs(hits)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w for %q", domain.ErrNoMatch, query)
	}
	logger.Debug("Query %q selected %d videos: %v", query, len(ids), ids)

	videos := make([]domain.Video, 0, len(ids))
	for _, id := range ids {
		video, err := s.resolver.Resolve(ctx, id)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *video)
	}

	if strings.TrimSpace(focus) == "" {
		focus = query
	}
	return s.write(ctx, videos, focus)
}

// Synthesize writes a cross-video report over an explicit list of videos.
func (s *ReportService) Synthesize(ctx context.Context, queries []string, focus string) (*domain.Report, error) {
	logger.Section("Synthesize")
	if err := s.requireLLM(); err != nil {
		return nil, err
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: at least one video is required", domain.ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(queries))
	videos := make([]domain.Video, 0, len(queries))
	for _, q := range queries {
		video, err := s.resolver.Resolve(ctx, q)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[video.ID]; ok {
			continue
		}
		seen[video.ID] = struct{}{}
		videos = append(videos, *video)
	}
	return s.write(ctx, videos, focus)
}

func (s *ReportService) requireLLM() error {
	if s.llm == nil {
		return &domain.ConfigurationError{Component: "LLM", Hint: "set ANTHROPIC_API_KEY, OPENAI_API_KEY or GOOGLE_API_KEY"}
	}
	return nil
}

// uniqueVideoIDs returns the owning video IDs of hits in first-seen order.
func uniqueVideoIDs(hits []domain.SearchHit) []string {
	seen := make(map[string]struct{}, len(hits))
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		if _, ok := seen[h.VideoID]; ok {
			continue
		}
		seen[h.VideoID] = struct{}{}
		ids = append(ids, h.VideoID)
	}
	return ids
}

func (s *ReportService) write(ctx context.Context, videos []domain.Video, focus string) (*domain.Report, error) {
	focusLine := ""
	if focus = strings.TrimSpace(focus); focus != "" {
		focusLine = "\nFocus the report on: " + focus
	}

	budget := max(reportTranscriptBudget/len(videos), reportMinPerVideo)
	blocks := make([]string, 0, len(videos))
	for i := range videos {
		blocks = append(blocks, videoBlock(&videos[i], budget))
	}

	prompt := fmt.Sprintf(s.prompts.load(driven.PromptReport), focusLine, strings.Join(blocks, "\n\n"))
	logger.Debug("Report prompt: %d videos, %d chars", len(videos), len(prompt))

	raw, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: reportMaxTokens, Temperature: 0.2, JSON: true})
	if err != nil {
		return nil, llmError("generate report", err)
	}

	report, err := parseReport(raw, videos)
	if err != nil {
		return nil, llmError("parse report", err)
	}

	report.ID = s.newID()
	report.Focus = focus
	report.GeneratedAt = s.now().UTC()
	report.Videos = make([]domain.Video, len(videos))
	for i := range videos {
		report.Videos[i] = videos[i].Summary()
	}
	logger.Info("Report %s: %d sections", report.ID, len(report.Sections))
	return report, nil
}

// videoBlock formats one video for the prompt: metadata, then
// "[MM:SS] text" transcript lines cut at budget characters.
func videoBlock(v *domain.Video, budget int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== VIDEO: %s ===\n", v.ID)
	fmt.Fprintf(&b, "Title: %s\nChannel: %s\nDuration: %.0fs\n", v.Title, v.Channel, v.Duration)
	if len(v.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(v.Tags, ", "))
	}
	if len(v.Chapters) > 0 {
		parts := make([]string, len(v.Chapters))
		for i, ch := range v.Chapters {
			parts[i] = fmt.Sprintf("%s (%.0fs)", ch.Title, ch.Start)
		}
		fmt.Fprintf(&b, "Chapters: %s\n", strings.Join(parts, ", "))
	}

	b.WriteString("\nTRANSCRIPT:\n")
	used := 0
	for _, seg := range v.Transcript {
		line := fmt.Sprintf("[%s] %s\n", domain.FormatTimestamp(seg.Start), seg.Text)
		if used+len(line) > budget {
			b.WriteString("[transcript truncated]\n")
			break
		}
		b.WriteString(line)
		used += len(line)
	}
	return strings.TrimRight(b.String(), "\n")
}

// parseReport decodes the model's JSON. Frames without a video ID fall back
// to the only video of a single-video report; frames naming a video that
// is not part of the report are dropped.
func parseReport(raw string, videos []domain.Video) (*domain.Report, error) {
	var report domain.Report
	if err := json.Unmarshal([]byte(stripFences(raw)), &report); err != nil {
		return nil, fmt.Errorf("invalid report JSON: %w (response starts %q)", err, truncate(raw, 200))
	}
	if strings.TrimSpace(report.Title) == "" {
		report.Title = "Untitled Report"
	}

	known := make(map[string]struct{}, len(videos))
	for i := range videos {
		known[videos[i].ID] = struct{}{}
	}
	defaultID := ""
	if len(videos) == 1 {
		defaultID = videos[0].ID
	}

	for i := range report.Sections {
		section := &report.Sections[i]
		frames := section.Frames[:0]
		for _, f := range section.Frames {
			if f.VideoID == "" {
				f.VideoID = defaultID
			}
			if _, ok := known[f.VideoID]; !ok {
				logger.Warn("Dropping frame at %.1fs: unknown video %q", f.Timestamp, f.VideoID)
				continue
			}
			frames = append(frames, f)
		}
		section.Frames = frames
	}
	return &report, nil
}

// Render formats a report. When a frame capturer is configured the frames
// the model picked are captured first; capture failures only drop the image.
func (s *ReportService) Render(ctx context.Context, report *domain.Report, format domain.ReportFormat) (string, error) {
	if format == "" {
		format = domain.ReportFormatMarkdown
	}
	if !format.IsValid() {
		return "", fmt.Errorf("%w: unknown report format %q", domain.ErrInvalidInput, format)
	}

	s.captureFrames(ctx, report)

	if format == domain.ReportFormatHTML {
		return renderHTML(report)
	}
	return renderMarkdown(report), nil
}

func (s *ReportService) captureFrames(ctx context.Context, report *domain.Report) {
	if s.frames == nil {
		return
	}
	for i := range report.Sections {
		for j := range report.Sections[i].Frames {
			f := &report.Sections[i].Frames[j]
			if f.Path != "" {
				continue
			}
			path, err := s.frames.Capture(ctx, f.VideoID, f.Timestamp)
			if err != nil {
				logger.Warn("Frame extraction failed at %.1fs of %s: %v", f.Timestamp, f.VideoID, err)
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Warn("Reading frame %s: %v", path, err)
				continue
			}
			f.Path = path
			f.Image = data
		}
	}
}
