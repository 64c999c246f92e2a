package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driving"
)

type mockLibrary struct {
	videos []domain.Video
	err    error
	added  []string
}

func (m *mockLibrary) Add(_ context.Context, url string) (*domain.Video, error) {
	m.added = append(m.added, url)
	if m.err != nil {
		return nil, m.err
	}
	return &m.videos[0], nil
}

func (m *mockLibrary) List(_ context.Context) ([]domain.Video, error) {
	return m.videos, m.err
}

func (m *mockLibrary) Get(_ context.Context, query string) (*domain.Video, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.videos {
		if m.videos[i].ID == query {
			return &m.videos[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockLibrary) Remove(ctx context.Context, query string) (*domain.Video, error) {
	return m.Get(ctx, query)
}

func (m *mockLibrary) Classify(ctx context.Context, query string) (*domain.Video, error) {
	v, err := m.Get(ctx, query)
	if err != nil {
		return nil, err
	}
	v.Tags = []string{"golang", "concurrency"}
	return v, nil
}

type mockSearch struct {
	hits    []domain.SearchHit
	err     error
	lastReq domain.SearchRequest
}

func (m *mockSearch) Search(_ context.Context, _ string, req domain.SearchRequest) ([]domain.SearchHit, error) {
	m.lastReq = req
	return m.hits, m.err
}

type mockFrames struct {
	lastAt float64
	err    error
}

func (m *mockFrames) Frame(_ context.Context, query string, timestamp float64) (string, error) {
	m.lastAt = timestamp
	if m.err != nil {
		return "", m.err
	}
	return "/data/frames/" + query + ".jpg", nil
}

func (m *mockFrames) FrameByQuery(_ context.Context, query, text string) (*driving.FrameMatch, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &driving.FrameMatch{
		Path: "/data/frames/" + query + "_65.jpg",
		Hit:  domain.SearchHit{VideoID: query, Text: text + " here", Start: 65},
	}, nil
}

func (m *mockFrames) FrameData(_ context.Context, _ string, _ float64) ([]byte, error) {
	return []byte{0xff, 0xd8}, m.err
}

type mockReports struct {
	err       error
	lastFocus string
	lastVids  []string
	lastTags  []string
	format    domain.ReportFormat
}

func (m *mockReports) report() *domain.Report {
	return &domain.Report{Title: "Concurrency in Go", Summary: "Channels and goroutines."}
}

func (m *mockReports) Generate(_ context.Context, _, focus string) (*domain.Report, error) {
	m.lastFocus = focus
	return m.report(), m.err
}

func (m *mockReports) GenerateFromQuery(_ context.Context, _ string, tags []string, focus string) (*domain.Report, error) {
	m.lastTags, m.lastFocus = tags, focus
	return m.report(), m.err
}

func (m *mockReports) Synthesize(_ context.Context, queries []string, focus string) (*domain.Report, error) {
	m.lastVids, m.lastFocus = queries, focus
	return m.report(), m.err
}

func (m *mockReports) Render(_ context.Context, r *domain.Report, format domain.ReportFormat) (string, error) {
	m.format = format
	if format == domain.ReportFormatHTML {
		return "<h1>" + r.Title + "</h1>", nil
	}
	return "# " + r.Title, nil
}

type mockDiscovery struct {
	result *domain.Discovery
	err    error
}

func (m *mockDiscovery) Discover(_ context.Context, topic string) (*domain.Discovery, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.Discovery{Topic: topic}, nil
}

type mockSettings struct {
	settings    domain.AppSettings
	set         map[string]string
	setErr      error
	validateErr error
	pingErr     error
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettings) Validate() error                { return m.validateErr }
func (m *mockSettings) Keys() []string                 { return []string{"llm.api_key", "server.port"} }
func (m *mockSettings) Path() string                   { return "/home/test/.mcptube/config.toml" }
func (m *mockSettings) ValidateLLMConfig() error       { return m.pingErr }
func (m *mockSettings) ValidateEmbeddingConfig() error { return m.pingErr }

type testMocks struct {
	library   *mockLibrary
	search    *mockSearch
	frames    *mockFrames
	reports   *mockReports
	discovery *mockDiscovery
	settings  *mockSettings
}

func testVideo() domain.Video {
	return domain.Video{
		ID:       "dQw4w9WgXcQ",
		Title:    "Go Concurrency Patterns",
		Channel:  "GopherCon",
		Duration: 1830,
		Chapters: []domain.Chapter{{Title: "Intro", Start: 0}, {Title: "Pipelines", Start: 95}},
		Transcript: []domain.Segment{
			{Start: 0, Duration: 4, Text: "welcome"},
			{Start: 65, Duration: 5, Text: "channels are typed pipes"},
		},
		Tags:    []string{"golang"},
		AddedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// setupTestServices installs fresh mocks for every port.
func setupTestServices(t *testing.T) *testMocks {
	t.Helper()
	m := &testMocks{
		library:   &mockLibrary{videos: []domain.Video{testVideo()}},
		search:    &mockSearch{},
		frames:    &mockFrames{},
		reports:   &mockReports{},
		discovery: &mockDiscovery{},
		settings:  &mockSettings{settings: domain.DefaultAppSettings(), set: map[string]string{}},
	}
	SetServices(&Services{
		Library:   m.library,
		Search:    m.search,
		Frame:     m.frames,
		Report:    m.reports,
		Discovery: m.discovery,
		Settings:  m.settings,
	})
	t.Cleanup(func() { SetServices(nil) })
	return m
}

// executeCommand runs the root command with args and returns combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := Execute(context.Background())
	return buf.String(), err
}

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
