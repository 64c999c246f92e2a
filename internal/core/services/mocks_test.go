package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/mcptube/internal/adapters/driven/embedding/local"
	"github.com/custodia-labs/mcptube/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockExtractor implements driven.Extractor for testing.
type mockExtractor struct {
	videos     map[string]*domain.Video
	extractErr error
	calls      int
}

func newMockExtractor(videos ...*domain.Video) *mockExtractor {
	m := &mockExtractor{videos: make(map[string]*domain.Video)}
	for _, v := range videos {
		m.videos[v.ID] = v
	}
	return m
}

func (m *mockExtractor) VideoID(url string) (string, error) {
	if url == "" || url == "bad" {
		return "", errors.New("unrecognised url")
	}
	return url, nil
}

func (m *mockExtractor) Extract(_ context.Context, url string) (*domain.Video, error) {
	m.calls++
	if m.extractErr != nil {
		return nil, m.extractErr
	}
	v, ok := m.videos[url]
	if !ok {
		return nil, domain.NewCollaboratorError(domain.CollaboratorExtraction, url, errors.New("unavailable"))
	}
	clone := *v
	return &clone, nil
}

// mockClassifier implements driven.Classifier for testing.
type mockClassifier struct {
	tags  []string
	err   error
	calls int
}

func (m *mockClassifier) Classify(_ context.Context, _, _, _ string) ([]string, error) {
	m.calls++
	return m.tags, m.err
}

// mockFrames implements driven.FrameCapturer by writing a small file.
type mockFrames struct {
	dir      string
	err      error
	captures []float64
}

func (m *mockFrames) Capture(_ context.Context, videoID string, ts float64) (string, error) {
	m.captures = append(m.captures, ts)
	if m.err != nil {
		return "", m.err
	}
	path := filepath.Join(m.dir, fmt.Sprintf("%s_%.2f.jpg", videoID, ts))
	if err := os.WriteFile(path, []byte("jpeg:"+videoID), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	return m.response, m.err
}

func (m *mockLLMService) ModelName() string           { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error                { return nil }

// mockEmbeddingService wraps the local embedder with error injection.
type mockEmbeddingService struct {
	*local.EmbeddingService
	batchErr   error
	short      bool
	batchCalls int
}

func newMockEmbedder() *mockEmbeddingService {
	return &mockEmbeddingService{EmbeddingService: local.NewEmbeddingService()}
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	vecs, err := m.EmbeddingService.EmbedBatch(ctx, texts)
	if m.short && len(vecs) > 0 {
		vecs = vecs[:len(vecs)-1]
	}
	return vecs, err
}

// failingFragmentStore wraps the memory store with error injection.
type failingFragmentStore struct {
	*memory.FragmentStore
	upsertErr error
	deleteErr error
	searchErr error
}

func (f *failingFragmentStore) Upsert(ctx context.Context, fragments []domain.Fragment) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	return f.FragmentStore.Upsert(ctx, fragments)
}

func (f *failingFragmentStore) DeleteVideo(ctx context.Context, videoID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.FragmentStore.DeleteVideo(ctx, videoID)
}

func (f *failingFragmentStore) Search(ctx context.Context, q []float32, videoID string, k int) ([]domain.SearchHit, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.FragmentStore.Search(ctx, q, videoID, k)
}

// mockSearcher implements driven.VideoSearcher for testing.
type mockSearcher struct {
	results []domain.Candidate
	err     error
	limit   int
}

func (m *mockSearcher) SearchVideos(_ context.Context, _ string, limit int) ([]domain.Candidate, error) {
	m.limit = limit
	return m.results, m.err
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("unknown prompt")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// --- Fixtures ---

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testVideo(id, title, channel string, segments ...string) *domain.Video {
	v := &domain.Video{
		ID:          id,
		Title:       title,
		Channel:     channel,
		Description: "About " + title,
		Duration:    600,
		Chapters:    []domain.Chapter{},
		Tags:        []string{},
	}
	for i, text := range segments {
		v.Transcript = append(v.Transcript, domain.Segment{Start: float64(i * 10), Duration: 5, Text: text})
	}
	return v
}

// seedStore saves videos with AddedAt increasing in argument order,
// so the last one is listed first.
func seedStore(store driven.VideoStore, videos ...*domain.Video) {
	for i, v := range videos {
		v.AddedAt = baseTime.Add(time.Duration(i) * time.Minute)
		if err := store.Save(context.Background(), v); err != nil {
			panic(err)
		}
	}
}
