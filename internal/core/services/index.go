package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
	"github.com/custodia-labs/mcptube/internal/logger"
)

// defaultBatchSize is used when a fragment store reports no ceiling.
const defaultBatchSize = 500

// SemanticIndex maintains the embedded transcript projection of the library.
// It pairs an EmbeddingService with a FragmentStore; neither knows about tags.
type SemanticIndex struct {
	store    driven.FragmentStore
	embedder driven.EmbeddingService
}

// NewSemanticIndex creates a semantic index over the given store and embedder.
func NewSemanticIndex(store driven.FragmentStore, embedder driven.EmbeddingService) *SemanticIndex {
	return &SemanticIndex{store: store, embedder: embedder}
}

// Index replaces every fragment of videoID with the given segments.
// Existing fragments are deleted before the new ones are written, so
// re-indexing never leaves stale fragments behind. Blank segments are
// skipped but keep their position. Returns the number of fragments written.
func (ix *SemanticIndex) Index(ctx context.Context, videoID string, segments []domain.Segment) (int, error) {
	logger.Section("Index Transcript")
	if len(segments) == 0 {
		logger.Warn("No segments to index for video: %s", videoID)
		return 0, nil
	}

	if err := ix.store.DeleteVideo(ctx, videoID); err != nil {
		return 0, fmt.Errorf("clearing fragments for %s: %w", videoID, err)
	}

	fragments := make([]domain.Fragment, 0, len(segments))
	for i, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		fragments = append(fragments, domain.Fragment{
			Key:      domain.FragmentKey(videoID, i),
			VideoID:  videoID,
			Text:     text,
			Start:    seg.Start,
			End:      seg.End(),
			Position: i,
		})
	}

	batch := ix.batchSize()
	logger.Debug("Video %s: %d fragments, batch size %d", videoID, len(fragments), batch)

	indexed := 0
	for start := 0; start < len(fragments); start += batch {
		end := min(start+batch, len(fragments))
		chunk := fragments[start:end]

		texts := make([]string, len(chunk))
		for i := range chunk {
			texts[i] = chunk[i].Text
		}
		vectors, err := ix.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return indexed, fmt.Errorf("embedding fragments %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != len(chunk) {
			return indexed, fmt.Errorf("embedding fragments %d-%d: got %d vectors for %d texts",
				start, end-1, len(vectors), len(chunk))
		}
		for i := range chunk {
			chunk[i].Embedding = vectors[i]
		}

		if err := ix.store.Upsert(ctx, chunk); err != nil {
			return indexed, fmt.Errorf("storing fragments %d-%d: %w", start, end-1, err)
		}
		indexed += len(chunk)
	}

	logger.Info("Indexed %d segments for video: %s", indexed, videoID)
	return indexed, nil
}

// Search returns fragments ranked by ascending distance to the query.
// An empty result is an empty slice, never an error.
func (ix *SemanticIndex) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchHit{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	vec, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := ix.store.Search(ctx, vec, opts.VideoID, limit)
	if err != nil {
		return nil, fmt.Errorf("fragment search: %w", err)
	}
	if hits == nil {
		hits = []domain.SearchHit{}
	}
	logger.Debug("Semantic search %q (video=%q): %d hits", query, opts.VideoID, len(hits))
	return hits, nil
}

// Delete removes every fragment of videoID. Unknown IDs are a no-op.
func (ix *SemanticIndex) Delete(ctx context.Context, videoID string) error {
	if err := ix.store.DeleteVideo(ctx, videoID); err != nil {
		return fmt.Errorf("deleting fragments for %s: %w", videoID, err)
	}
	return nil
}

// Count returns the number of fragments stored for videoID.
func (ix *SemanticIndex) Count(ctx context.Context, videoID string) (int, error) {
	return ix.store.Count(ctx, videoID)
}

func (ix *SemanticIndex) batchSize() int {
	if n := ix.store.MaxBatchSize(); n > 0 {
		return n
	}
	return defaultBatchSize
}
