package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
	"github.com/custodia-labs/mcptube/internal/core/ports/driving"
	"github.com/custodia-labs/mcptube/internal/logger"
)

// Ensure LibraryService implements the interfaces.
var (
	_ driving.LibraryService = (*LibraryService)(nil)
	_ driving.SearchService  = (*LibraryService)(nil)
	_ driving.FrameService   = (*LibraryService)(nil)
)

// tagFilterOverfetch multiplies the requested limit when hits are
// post-filtered by tag, since the index knows nothing about tags.
const (
	tagFilterOverfetch = 5
	tagFilterMinFetch  = 50
)

// LibraryService is the single entry point for library operations.
// It enforces the ordering of side effects between the video store,
// the semantic index and the external collaborators.
type LibraryService struct {
	store      driven.VideoStore
	resolver   *Resolver
	extractor  driven.Extractor
	index      *SemanticIndex
	classifier driven.Classifier
	frames     driven.FrameCapturer
	now        func() time.Time
}

// NewLibraryService creates a library service.
// The index, classifier and frames parameters are optional (can be nil).
func NewLibraryService(
	store driven.VideoStore,
	extractor driven.Extractor,
	index *SemanticIndex,
	classifier driven.Classifier,
	frames driven.FrameCapturer,
) *LibraryService {
	return &LibraryService{
		store:      store,
		resolver:   NewResolver(store),
		extractor:  extractor,
		index:      index,
		classifier: classifier,
		frames:     frames,
		now:        time.Now,
	}
}

// Resolver returns the resolver used for video references.
func (s *LibraryService) Resolver() *Resolver {
	return s.resolver
}

// HasIndex reports whether semantic search is available.
func (s *LibraryService) HasIndex() bool {
	return s.index != nil
}

// Add ingests a video. The duplicate check runs before extraction so an
// existing video never costs a download.
func (s *LibraryService) Add(ctx context.Context, url string) (*domain.Video, error) {
	logger.Section("Add Video")
	if s.extractor == nil {
		return nil, &domain.ConfigurationError{Component: "extractor"}
	}

	id, err := s.extractor.VideoID(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	exists, err := s.store.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: video %s is already in the library", domain.ErrAlreadyExists, id)
	}

	logger.Debug("Extracting %s", id)
	video, err := s.extractor.Extract(ctx, url)
	if err != nil {
		return nil, err
	}
	video.ID = id
	video.AddedAt = s.now().UTC()
	video.Tags = domain.NormaliseTags(video.Tags)

	if err := s.store.Save(ctx, video); err != nil {
		return nil, fmt.Errorf("saving video %s: %w", id, err)
	}
	logger.Info("Saved %s (%d segments)", id, len(video.Transcript))

	if s.index != nil && video.HasTranscript() {
		if _, err := s.index.Index(ctx, id, video.Transcript); err != nil {
			s.rollbackAdd(ctx, id)
			return nil, fmt.Errorf("indexing video %s: %w", id, err)
		}
	}

	s.autoClassify(ctx, video)
	return video, nil
}

// rollbackAdd undoes a partially completed Add so the video can be added again.
func (s *LibraryService) rollbackAdd(ctx context.Context, id string) {
	if err := s.store.Delete(ctx, id); err != nil {
		logger.Warn("Rollback of %s failed: %v", id, err)
	}
	if err := s.index.Delete(ctx, id); err != nil {
		logger.Warn("Rollback of fragments for %s failed: %v", id, err)
	}
}

// autoClassify tags a freshly added video. Every failure is logged and
// swallowed; the video stays in the library without tags.
func (s *LibraryService) autoClassify(ctx context.Context, video *domain.Video) {
	if s.classifier == nil {
		return
	}

	tags, err := s.classifier.Classify(ctx, video.Title, video.Description, video.Channel)
	if err != nil {
		logger.Warn("Auto-classification failed for %s: %v", video.ID, err)
		return
	}

	previous := video.Tags
	video.Tags = domain.NormaliseTags(tags)
	if err := s.store.Save(ctx, video); err != nil {
		logger.Warn("Saving tags for %s failed: %v", video.ID, err)
		video.Tags = previous
		return
	}
	logger.Info("Classified %s: %s", video.ID, strings.Join(video.Tags, ", "))
}

// List returns all videos newest first, without transcripts.
func (s *LibraryService) List(ctx context.Context) ([]domain.Video, error) {
	return s.store.List(ctx)
}

// Get resolves a query to one full video record.
func (s *LibraryService) Get(ctx context.Context, query string) (*domain.Video, error) {
	return s.resolver.Resolve(ctx, query)
}

// Remove deletes a video, then purges its fragments. A failed purge is
// reported but does not bring the record back.
func (s *LibraryService) Remove(ctx context.Context, query string) (*domain.Video, error) {
	logger.Section("Remove Video")
	video, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, video.ID); err != nil {
		return nil, err
	}
	logger.Info("Deleted %s from store", video.ID)

	if s.index != nil {
		if err := s.index.Delete(ctx, video.ID); err != nil {
			return video, fmt.Errorf("video %s removed but its index fragments were not: %w", video.ID, err)
		}
	}
	return video, nil
}

// Search runs a semantic transcript search. Scoping by video goes through
// the resolver; tag filtering is applied to the hits afterwards.
func (s *LibraryService) Search(ctx context.Context, query string, req domain.SearchRequest) ([]domain.SearchHit, error) {
	logger.Section("Search")
	if s.index == nil {
		return nil, &domain.ConfigurationError{Component: "semantic index", Hint: "set index.backend"}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	opts := domain.SearchOptions{Limit: limit}
	if strings.TrimSpace(req.Video) != "" {
		video, err := s.resolver.Resolve(ctx, req.Video)
		if err != nil {
			return nil, err
		}
		opts.VideoID = video.ID
	}

	tags := domain.NormaliseTags(req.Tags)
	if len(tags) > 0 {
		opts.Limit = max(limit*tagFilterOverfetch, tagFilterMinFetch)
	}
	logger.Debug("Query %q, video=%q, tags=%v, fetch=%d", query, opts.VideoID, tags, opts.Limit)

	hits, err := s.index.Search(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(hits) == 0 {
		return hits, nil
	}

	videos, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Video, len(videos))
	for i := range videos {
		byID[videos[i].ID] = &videos[i]
	}

	results := make([]domain.SearchHit, 0, min(limit, len(hits)))
	for _, hit := range hits {
		video, ok := byID[hit.VideoID]
		if !ok {
			logger.Warn("Dropping fragment %s: video %s is not in the store", domain.FragmentKey(hit.VideoID, hit.Position), hit.VideoID)
			continue
		}
		if len(tags) > 0 && !hasAnyTag(video, tags) {
			continue
		}
		hit.Title = video.Title
		results = append(results, hit)
		if len(results) == limit {
			break
		}
	}
	logger.Debug("Returning %d of %d hits", len(results), len(hits))
	return results, nil
}

func hasAnyTag(video *domain.Video, tags []string) bool {
	for _, t := range tags {
		if video.HasTag(t) {
			return true
		}
	}
	return false
}

// Frame captures the frame at timestamp seconds.
func (s *LibraryService) Frame(ctx context.Context, query string, timestamp float64) (string, error) {
	if s.frames == nil {
		return "", &domain.ConfigurationError{Component: "frame capture"}
	}
	if timestamp < 0 {
		return "", fmt.Errorf("%w: timestamp must be >= 0", domain.ErrInvalidInput)
	}
	video, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return "", err
	}
	return s.frames.Capture(ctx, video.ID, timestamp)
}

// FrameByQuery finds the best matching transcript fragment of one video
// and captures the frame at its start. No hit is reported as
// domain.ErrNoMatch, separately from capture failures.
func (s *LibraryService) FrameByQuery(ctx context.Context, query, text string) (*driving.FrameMatch, error) {
	if s.frames == nil {
		return nil, &domain.ConfigurationError{Component: "frame capture"}
	}
	if s.index == nil {
		return nil, &domain.ConfigurationError{Component: "semantic index", Hint: "set index.backend"}
	}

	video, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.index.Search(ctx, text, domain.SearchOptions{VideoID: video.ID, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("%w for %q in %s", domain.ErrNoMatch, text, video.ID)
	}

	hit := hits[0]
	hit.Title = video.Title
	path, err := s.frames.Capture(ctx, video.ID, hit.Start)
	if err != nil {
		return nil, err
	}
	return &driving.FrameMatch{Path: path, Hit: hit}, nil
}

// FrameData captures a frame and returns the JPEG bytes.
func (s *LibraryService) FrameData(ctx context.Context, query string, timestamp float64) ([]byte, error) {
	path, err := s.Frame(ctx, query, timestamp)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading frame: %w", err)
	}
	return data, nil
}

// Classify replaces the tags of a video. Unlike classification during Add,
// every failure is returned to the caller.
func (s *LibraryService) Classify(ctx context.Context, query string) (*domain.Video, error) {
	if s.classifier == nil {
		return nil, &domain.ConfigurationError{Component: "classifier", Hint: "set an LLM provider API key"}
	}

	video, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	tags, err := s.classifier.Classify(ctx, video.Title, video.Description, video.Channel)
	if err != nil {
		return nil, err
	}
	video.Tags = domain.NormaliseTags(tags)

	if err := s.store.Save(ctx, video); err != nil {
		return nil, fmt.Errorf("saving tags for %s: %w", video.ID, err)
	}
	return video, nil
}
