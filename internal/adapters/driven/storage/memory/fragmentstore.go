package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/mcptube/internal/adapters/driven/vector"
	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
)

// Ensure FragmentStore implements the interface.
var _ driven.FragmentStore = (*FragmentStore)(nil)

// DefaultBatchSize is the upsert ceiling reported by the memory store.
const DefaultBatchSize = 500

// FragmentStore keeps embedded fragments in memory and ranks them by
// exact cosine distance.
type FragmentStore struct {
	mu        sync.RWMutex
	byVideo   map[string]map[string]domain.Fragment
	batchSize int
	upserts   int
}

// NewFragmentStore creates an empty fragment store.
func NewFragmentStore() *FragmentStore {
	return &FragmentStore{
		byVideo:   make(map[string]map[string]domain.Fragment),
		batchSize: DefaultBatchSize,
	}
}

// WithBatchSize overrides the reported batch ceiling.
func (s *FragmentStore) WithBatchSize(n int) *FragmentStore {
	s.batchSize = n
	return s
}

// Upsert writes fragments keyed by Fragment.Key.
func (s *FragmentStore) Upsert(_ context.Context, fragments []domain.Fragment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upserts++
	for i := range fragments {
		f := fragments[i]
		f.Embedding = append([]float32(nil), f.Embedding...)
		m, ok := s.byVideo[f.VideoID]
		if !ok {
			m = make(map[string]domain.Fragment)
			s.byVideo[f.VideoID] = m
		}
		m[f.Key] = f
	}
	return nil
}

// DeleteVideo removes every fragment of a video.
func (s *FragmentStore) DeleteVideo(_ context.Context, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byVideo, videoID)
	return nil
}

// Search ranks fragments by cosine distance, optionally within one video.
func (s *FragmentStore) Search(_ context.Context, query []float32, videoID string, k int) ([]domain.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranker := vector.NewRanker(query)
	for id, frags := range s.byVideo {
		if videoID != "" && id != videoID {
			continue
		}
		for key := range frags {
			f := frags[key]
			ranker.Add(&f)
		}
	}
	return ranker.Top(k), nil
}

// Count returns the number of fragments of a video, or of all videos when
// videoID is empty.
func (s *FragmentStore) Count(_ context.Context, videoID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if videoID != "" {
		return len(s.byVideo[videoID]), nil
	}
	total := 0
	for _, frags := range s.byVideo {
		total += len(frags)
	}
	return total, nil
}

// Upserts reports how many Upsert calls were made.
func (s *FragmentStore) Upserts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.upserts
}

// MaxBatchSize returns the configured batch ceiling.
func (s *FragmentStore) MaxBatchSize() int {
	return s.batchSize
}

// Close is a no-op.
func (s *FragmentStore) Close() error {
	return nil
}
