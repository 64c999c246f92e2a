package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
)

// Ensure VideoStore implements the interface.
var _ driven.VideoStore = (*VideoStore)(nil)

// VideoStore is an in-memory implementation of driven.VideoStore.
// Records are copied on the way in and out so callers never share slices
// with the store.
type VideoStore struct {
	mu     sync.RWMutex
	videos map[string]domain.Video
}

// NewVideoStore creates a new in-memory video store.
func NewVideoStore() *VideoStore {
	return &VideoStore{
		videos: make(map[string]domain.Video),
	}
}

// Save inserts or updates a video. AddedAt of an existing record is kept.
func (s *VideoStore) Save(_ context.Context, video *domain.Video) error {
	if video == nil || video.ID == "" {
		return fmt.Errorf("%w: video without id", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneVideo(video)
	if existing, ok := s.videos[video.ID]; ok {
		stored.AddedAt = existing.AddedAt
	}
	s.videos[video.ID] = stored
	return nil
}

// Get retrieves a full video record by ID.
func (s *VideoStore) Get(_ context.Context, id string) (*domain.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	video, ok := s.videos[id]
	if !ok {
		return nil, fmt.Errorf("video %s: %w", id, domain.ErrNotFound)
	}
	clone := cloneVideo(&video)
	return &clone, nil
}

// List returns summaries newest first.
func (s *VideoStore) List(_ context.Context) ([]domain.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Video, 0, len(s.videos))
	for i := range s.videos {
		v := s.videos[i]
		result = append(result, v.Summary())
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].AddedAt.Equal(result[j].AddedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].AddedAt.After(result[j].AddedAt)
	})
	return result, nil
}

// Delete removes a video. Unknown IDs are a no-op.
func (s *VideoStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.videos, id)
	return nil
}

// Exists reports whether a video is stored.
func (s *VideoStore) Exists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.videos[id]
	return ok, nil
}

func cloneVideo(v *domain.Video) domain.Video {
	c := *v
	c.Chapters = append([]domain.Chapter(nil), v.Chapters...)
	c.Transcript = append([]domain.Segment(nil), v.Transcript...)
	c.Tags = append([]string(nil), v.Tags...)
	return c
}
