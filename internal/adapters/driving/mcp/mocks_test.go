package mcp

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driving"
)

var addedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testVideo(id, title string) domain.Video {
	return domain.Video{
		ID:          id,
		Title:       title,
		Description: "About " + title,
		Channel:     "Gopher Talks",
		Duration:    600,
		Chapters:    []domain.Chapter{{Title: "Intro", Start: 0}},
		Transcript: []domain.Segment{
			{Start: 0, Duration: 5, Text: "welcome to the talk"},
			{Start: 5, Duration: 5, Text: "channels and goroutines"},
		},
		Tags:    []string{"go"},
		AddedAt: addedAt,
	}
}

// mockLibraryService is a mock implementation of driving.LibraryService.
// Get and Remove match on the exact video ID.
type mockLibraryService struct {
	videos  []domain.Video
	err     error
	removed []string
	gets    []string
}

func (m *mockLibraryService) find(query string) (*domain.Video, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.videos {
		if m.videos[i].ID == query {
			v := m.videos[i]
			return &v, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockLibraryService) Add(_ context.Context, url string) (*domain.Video, error) {
	if m.err != nil {
		return nil, m.err
	}
	v := testVideo(url, "Added "+url)
	return &v, nil
}

func (m *mockLibraryService) List(_ context.Context) ([]domain.Video, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Video, len(m.videos))
	for i := range m.videos {
		out[i] = m.videos[i].Summary()
	}
	return out, nil
}

func (m *mockLibraryService) Get(_ context.Context, query string) (*domain.Video, error) {
	m.gets = append(m.gets, query)
	return m.find(query)
}

func (m *mockLibraryService) Remove(_ context.Context, query string) (*domain.Video, error) {
	v, err := m.find(query)
	if err != nil {
		return nil, err
	}
	m.removed = append(m.removed, v.ID)
	return v, nil
}

func (m *mockLibraryService) Classify(_ context.Context, query string) (*domain.Video, error) {
	return m.find(query)
}

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	hits    []domain.SearchHit
	err     error
	lastReq domain.SearchRequest
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	req domain.SearchRequest,
) ([]domain.SearchHit, error) {
	m.lastReq = req
	return m.hits, m.err
}

// mockFrameService is a mock implementation of driving.FrameService.
// FrameByQuery writes the image into dir so callers can read it back.
type mockFrameService struct {
	data []byte
	dir  string
	hit  domain.SearchHit
	err  error
}

func (m *mockFrameService) Frame(_ context.Context, query string, _ float64) (string, error) {
	return filepath.Join(m.dir, query+".jpg"), m.err
}

func (m *mockFrameService) FrameByQuery(_ context.Context, query, _ string) (*driving.FrameMatch, error) {
	if m.err != nil {
		return nil, m.err
	}
	path := filepath.Join(m.dir, query+".jpg")
	if err := os.WriteFile(path, m.data, 0o600); err != nil {
		return nil, err
	}
	return &driving.FrameMatch{Path: path, Hit: m.hit}, nil
}

func (m *mockFrameService) FrameData(_ context.Context, _ string, _ float64) ([]byte, error) {
	return m.data, m.err
}

// mockDiscoveryService is a mock implementation of driving.DiscoveryService.
type mockDiscoveryService struct {
	result *domain.Discovery
	err    error
}

func (m *mockDiscoveryService) Discover(_ context.Context, _ string) (*domain.Discovery, error) {
	return m.result, m.err
}
