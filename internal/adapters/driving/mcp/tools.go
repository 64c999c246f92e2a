package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

// VideoRefInput is the input schema for tools that take one video reference.
type VideoRefInput struct {
	VideoID string `json:"video_id" jsonschema:"video ID, position in list_videos (1 = newest) or a unique part of the title or channel"`
}

// AddVideoInput is the input schema for the add_video tool.
type AddVideoInput struct {
	URL string `json:"url" jsonschema:"YouTube URL or bare 11-character video ID"`
}

// VideoSummary is a library video without its transcript.
type VideoSummary struct {
	VideoID  string          `json:"video_id"`
	Title    string          `json:"title"`
	Channel  string          `json:"channel"`
	Duration float64         `json:"duration"`
	URL      string          `json:"url"`
	Tags     []string        `json:"tags"`
	Chapters []ChapterOutput `json:"chapters"`
	AddedAt  string          `json:"added_at"`
}

// ChapterOutput is one chapter marker.
type ChapterOutput struct {
	Title string  `json:"title"`
	Start float64 `json:"start"`
}

// SegmentOutput is one transcript line.
type SegmentOutput struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// VideoDetail is a full library video.
type VideoDetail struct {
	VideoID      string          `json:"video_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Channel      string          `json:"channel"`
	Duration     float64         `json:"duration"`
	URL          string          `json:"url"`
	ThumbnailURL string          `json:"thumbnail_url"`
	Tags         []string        `json:"tags"`
	Chapters     []ChapterOutput `json:"chapters"`
	Transcript   []SegmentOutput `json:"transcript"`
	AddedAt      string          `json:"added_at"`
}

// ListVideosOutput is the output schema for the list_videos tool.
type ListVideosOutput struct {
	Videos []VideoSummary `json:"videos"`
	Count  int            `json:"count"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query   string `json:"query" jsonschema:"natural language description of what to find"`
	VideoID string `json:"video_id,omitempty" jsonschema:"restrict the search to one video (ID, list position or title fragment)"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchLibraryInput is the input schema for the search_library tool.
type SearchLibraryInput struct {
	Query string   `json:"query" jsonschema:"natural language description of what to find"`
	Tags  []string `json:"tags,omitempty" jsonschema:"keep only videos carrying at least one of these tags"`
	Limit int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search tools.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single transcript hit.
type SearchResultOutput struct {
	VideoID      string  `json:"video_id"`
	Title        string  `json:"title,omitempty"`
	Text         string  `json:"text"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Timestamp    string  `json:"timestamp"`
	SegmentIndex int     `json:"segment_index"`
	Score        float64 `json:"score"`
}

// RemoveVideoOutput is the output schema for the remove_video tool.
type RemoveVideoOutput struct {
	Status  string `json:"status"`
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_video",
		Description: "Add a YouTube video to the library: metadata, chapters and transcript are stored and indexed",
		Annotations: &mcp.ToolAnnotations{OpenWorldHint: boolPtr(true)},
	}, s.handleAddVideo)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_videos",
		Description: "List library videos, newest first",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, s.handleListVideos)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_info",
		Description: "Get full details of a library video, including chapters and transcript",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, s.handleGetInfo)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Semantic search over video transcripts, optionally within one video. Lower score is closer",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_library",
		Description: "Semantic search across the whole library, optionally filtered by tag. Lower score is closer",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, s.handleSearchLibrary)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "remove_video",
		Description: "Remove a video and its index entries from the library",
		Annotations: &mcp.ToolAnnotations{DestructiveHint: boolPtr(true)},
	}, s.handleRemoveVideo)

	s.registerFrameTools()
	s.registerReportTools()
}

// handleAddVideo handles the add_video tool invocation.
func (s *Server) handleAddVideo(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddVideoInput,
) (*mcp.CallToolResult, VideoSummary, error) {
	video, err := s.ports.Library.Add(ctx, input.URL)
	if err != nil {
		return nil, VideoSummary{}, err
	}
	return nil, toSummary(video), nil
}

// handleListVideos handles the list_videos tool invocation.
func (s *Server) handleListVideos(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListVideosOutput, error) {
	videos, err := s.ports.Library.List(ctx)
	if err != nil {
		return nil, ListVideosOutput{}, err
	}

	output := ListVideosOutput{
		Videos: make([]VideoSummary, len(videos)),
		Count:  len(videos),
	}
	for i := range videos {
		output.Videos[i] = toSummary(&videos[i])
	}
	return nil, output, nil
}

// handleGetInfo handles the get_info tool invocation.
func (s *Server) handleGetInfo(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input VideoRefInput,
) (*mcp.CallToolResult, VideoDetail, error) {
	video, err := s.ports.Library.Get(ctx, input.VideoID)
	if err != nil {
		return nil, VideoDetail{}, err
	}
	return nil, toDetail(video), nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	return s.search(ctx, input.Query, domain.SearchRequest{
		Video: input.VideoID,
		Limit: input.Limit,
	})
}

// handleSearchLibrary handles the search_library tool invocation.
func (s *Server) handleSearchLibrary(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchLibraryInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	return s.search(ctx, input.Query, domain.SearchRequest{
		Tags:  input.Tags,
		Limit: input.Limit,
	})
}

func (s *Server) search(
	ctx context.Context,
	query string,
	req domain.SearchRequest,
) (*mcp.CallToolResult, SearchOutput, error) {
	if s.ports.Search == nil {
		return nil, SearchOutput{}, &domain.ConfigurationError{Component: "semantic search"}
	}
	if req.Limit <= 0 {
		req.Limit = domain.DefaultSearchLimit
	}

	hits, err := s.ports.Search.Search(ctx, query, req)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(hits)),
		Count:   len(hits),
	}
	for i := range hits {
		output.Results[i] = SearchResultOutput{
			VideoID:      hits[i].VideoID,
			Title:        hits[i].Title,
			Text:         hits[i].Text,
			Start:        hits[i].Start,
			End:          hits[i].End,
			Timestamp:    domain.FormatTimestamp(hits[i].Start),
			SegmentIndex: hits[i].Position,
			Score:        hits[i].Score,
		}
	}
	return nil, output, nil
}

// handleRemoveVideo handles the remove_video tool invocation.
func (s *Server) handleRemoveVideo(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input VideoRefInput,
) (*mcp.CallToolResult, RemoveVideoOutput, error) {
	video, err := s.ports.Library.Remove(ctx, input.VideoID)
	if err != nil {
		return nil, RemoveVideoOutput{}, err
	}
	return nil, RemoveVideoOutput{Status: "removed", VideoID: video.ID, Title: video.Title}, nil
}

func toSummary(v *domain.Video) VideoSummary {
	chapters := make([]ChapterOutput, len(v.Chapters))
	for i, ch := range v.Chapters {
		chapters[i] = ChapterOutput{Title: ch.Title, Start: ch.Start}
	}
	tags := v.Tags
	if tags == nil {
		tags = []string{}
	}

	return VideoSummary{
		VideoID:  v.ID,
		Title:    v.Title,
		Channel:  v.Channel,
		Duration: v.Duration,
		URL:      v.URL(),
		Tags:     tags,
		Chapters: chapters,
		AddedAt:  v.AddedAt.UTC().Format(time.RFC3339),
	}
}

func toDetail(v *domain.Video) VideoDetail {
	summary := toSummary(v)
	return VideoDetail{
		VideoID:      summary.VideoID,
		Title:        summary.Title,
		Description:  v.Description,
		Channel:      summary.Channel,
		Duration:     summary.Duration,
		URL:          summary.URL,
		ThumbnailURL: v.ThumbnailURL,
		Tags:         summary.Tags,
		Chapters:     summary.Chapters,
		Transcript:   toSegments(v.Transcript),
		AddedAt:      summary.AddedAt,
	}
}

func toSegments(segments []domain.Segment) []SegmentOutput {
	out := make([]SegmentOutput, len(segments))
	for i, seg := range segments {
		out[i] = SegmentOutput{Start: seg.Start, End: seg.End(), Text: seg.Text}
	}
	return out
}

func boolPtr(b bool) *bool {
	return &b
}
