package tui

import (
	"context"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driving"
)

// MockLibraryService implements driving.LibraryService for testing.
type MockLibraryService struct {
	Videos []domain.Video
	Err    error
}

func (m *MockLibraryService) Add(_ context.Context, url string) (*domain.Video, error) {
	return &domain.Video{ID: url, Title: "Added"}, m.Err
}

func (m *MockLibraryService) List(_ context.Context) ([]domain.Video, error) {
	return m.Videos, m.Err
}

func (m *MockLibraryService) Get(_ context.Context, query string) (*domain.Video, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.Videos {
		if m.Videos[i].ID == query {
			return &m.Videos[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockLibraryService) Remove(_ context.Context, query string) (*domain.Video, error) {
	return &domain.Video{ID: query}, m.Err
}

func (m *MockLibraryService) Classify(_ context.Context, query string) (*domain.Video, error) {
	return &domain.Video{ID: query}, m.Err
}

// MockSearchService implements driving.SearchService for testing.
type MockSearchService struct {
	Hits []domain.SearchHit
	Err  error
}

func (m *MockSearchService) Search(_ context.Context, _ string, _ domain.SearchRequest) ([]domain.SearchHit, error) {
	return m.Hits, m.Err
}

// MockFrameService implements driving.FrameService for testing.
type MockFrameService struct{}

func (m *MockFrameService) Frame(_ context.Context, query string, _ float64) (string, error) {
	return "/frames/" + query + ".jpg", nil
}

func (m *MockFrameService) FrameByQuery(_ context.Context, _, _ string) (*driving.FrameMatch, error) {
	return nil, domain.ErrNoMatch
}

func (m *MockFrameService) FrameData(_ context.Context, _ string, _ float64) ([]byte, error) {
	return []byte{0xff, 0xd8}, nil
}

func testVideos() []domain.Video {
	return []domain.Video{
		{
			ID:       "abcdefghijk",
			Title:    "Go Concurrency",
			Channel:  "GopherCon",
			Duration: 600,
			Transcript: []domain.Segment{
				{Start: 0, Duration: 5, Text: "hello"},
				{Start: 60, Duration: 5, Text: "channels"},
			},
		},
	}
}
