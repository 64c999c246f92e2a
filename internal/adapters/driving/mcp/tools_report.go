package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

// Report tools hand the source material to the connected assistant, which
// writes the report itself. The server-side LLM pipeline is CLI only.
const (
	reportInstructions = "Use this data to write a comprehensive illustrated report. " +
		"Call get_frame_data for key visual moments; it returns embed_html you can paste directly into the report."
	classifyInstructions = "Suggest 3 to 8 short topical tags for this video based on its title, channel and description."
	discoverInstructions = "Present these results to the user. Any of them can be added to the library with add_video."

	reportQueryLimit       = 20
	classifyDescriptionMax = 500
)

// ClassifyOutput is the output schema for the classify_video tool.
type ClassifyOutput struct {
	VideoID      string   `json:"video_id"`
	Title        string   `json:"title"`
	Channel      string   `json:"channel"`
	Description  string   `json:"description"`
	CurrentTags  []string `json:"current_tags"`
	Instructions string   `json:"instructions"`
}

// GenerateReportInput is the input schema for the generate_report tool.
type GenerateReportInput struct {
	VideoID string `json:"video_id" jsonschema:"video ID, position in list_videos (1 = newest) or a unique part of the title or channel"`
	Focus   string `json:"query,omitempty" jsonschema:"optional angle the report should concentrate on"`
}

// GenerateReportFromQueryInput is the input schema for the generate_report_from_query tool.
type GenerateReportFromQueryInput struct {
	Query string   `json:"query" jsonschema:"topic or question to build the report around"`
	Tags  []string `json:"tags,omitempty" jsonschema:"keep only videos carrying at least one of these tags"`
}

// SynthesizeInput is the input schema for the synthesize tool.
type SynthesizeInput struct {
	VideoIDs []string `json:"video_ids" jsonschema:"videos to cross-reference (IDs, list positions or title fragments)"`
	Topic    string   `json:"topic" jsonschema:"focus topic for the synthesis"`
}

// ReportVideo is one video's source material for a report.
type ReportVideo struct {
	VideoID    string          `json:"video_id"`
	Title      string          `json:"title"`
	Channel    string          `json:"channel"`
	Duration   float64         `json:"duration"`
	Tags       []string        `json:"tags"`
	Chapters   []ChapterOutput `json:"chapters"`
	Transcript []SegmentOutput `json:"transcript"`
}

// ReportDataOutput is the output schema for the report tools.
type ReportDataOutput struct {
	Query        string        `json:"query,omitempty"`
	Videos       []ReportVideo `json:"videos"`
	Instructions string        `json:"instructions"`
}

// DiscoverInput is the input schema for the discover_videos tool.
type DiscoverInput struct {
	Topic string `json:"topic" jsonschema:"topic to search YouTube for"`
}

// DiscoverOutput is the output schema for the discover_videos tool.
type DiscoverOutput struct {
	Topic        string           `json:"topic"`
	Found        int              `json:"total_found"`
	Clusters     []domain.Cluster `json:"clusters"`
	Instructions string           `json:"instructions"`
}

func (s *Server) registerReportTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "classify_video",
		Description: "Get a video's metadata and current tags so you can suggest classification tags",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, s.handleClassifyVideo)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_report",
		Description: "Get the transcript, chapters and metadata needed to write an illustrated report about one video",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, s.handleGenerateReport)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_report_from_query",
		Description: "Search the library and return the videos and transcripts needed for a cross-video report",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, s.handleGenerateReportFromQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "discover_videos",
		Description: "Search YouTube for videos on a topic. Results are not added to the library",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, OpenWorldHint: boolPtr(true)},
	}, s.handleDiscoverVideos)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "synthesize",
		Description: "Get the transcripts of several videos to cross-reference their themes on a topic",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, s.handleSynthesize)
}

// handleClassifyVideo handles the classify_video tool invocation.
func (s *Server) handleClassifyVideo(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input VideoRefInput,
) (*mcp.CallToolResult, ClassifyOutput, error) {
	video, err := s.ports.Library.Get(ctx, input.VideoID)
	if err != nil {
		return nil, ClassifyOutput{}, err
	}

	desc := []rune(video.Description)
	if len(desc) > classifyDescriptionMax {
		desc = desc[:classifyDescriptionMax]
	}
	tags := video.Tags
	if tags == nil {
		tags = []string{}
	}

	return nil, ClassifyOutput{
		VideoID:      video.ID,
		Title:        video.Title,
		Channel:      video.Channel,
		Description:  string(desc),
		CurrentTags:  tags,
		Instructions: classifyInstructions,
	}, nil
}

// handleGenerateReport handles the generate_report tool invocation.
func (s *Server) handleGenerateReport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateReportInput,
) (*mcp.CallToolResult, ReportDataOutput, error) {
	video, err := s.ports.Library.Get(ctx, input.VideoID)
	if err != nil {
		return nil, ReportDataOutput{}, err
	}

	return nil, ReportDataOutput{
		Query:        input.Focus,
		Videos:       []ReportVideo{toReportVideo(video)},
		Instructions: reportInstructions,
	}, nil
}

// handleGenerateReportFromQuery handles the generate_report_from_query tool invocation.
func (s *Server) handleGenerateReportFromQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateReportFromQueryInput,
) (*mcp.CallToolResult, ReportDataOutput, error) {
	if s.ports.Search == nil {
		return nil, ReportDataOutput{}, &domain.ConfigurationError{Component: "semantic search"}
	}

	hits, err := s.ports.Search.Search(ctx, input.Query, domain.SearchRequest{
		Tags:  input.Tags,
		Limit: reportQueryLimit,
	})
	if err != nil {
		return nil, ReportDataOutput{}, err
	}
	if len(hits) == 0 {
		return nil, ReportDataOutput{}, fmt.Errorf("%w for %q", domain.ErrNoMatch, input.Query)
	}

	seen := make(map[string]struct{}, len(hits))
	videos := make([]ReportVideo, 0, len(hits))
	for i := range hits {
		id := hits[i].VideoID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		video, err := s.ports.Library.Get(ctx, id)
		if err != nil {
			return nil, ReportDataOutput{}, err
		}
		videos = append(videos, toReportVideo(video))
	}

	return nil, ReportDataOutput{
		Query:        input.Query,
		Videos:       videos,
		Instructions: reportInstructions,
	}, nil
}

// handleSynthesize handles the synthesize tool invocation.
func (s *Server) handleSynthesize(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SynthesizeInput,
) (*mcp.CallToolResult, ReportDataOutput, error) {
	if len(input.VideoIDs) == 0 {
		return nil, ReportDataOutput{}, fmt.Errorf("%w: video_ids must not be empty", domain.ErrInvalidInput)
	}

	videos := make([]ReportVideo, 0, len(input.VideoIDs))
	for _, ref := range input.VideoIDs {
		video, err := s.ports.Library.Get(ctx, ref)
		if err != nil {
			return nil, ReportDataOutput{}, err
		}
		videos = append(videos, toReportVideo(video))
	}

	return nil, ReportDataOutput{
		Query:        input.Topic,
		Videos:       videos,
		Instructions: reportInstructions,
	}, nil
}

// handleDiscoverVideos handles the discover_videos tool invocation.
func (s *Server) handleDiscoverVideos(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DiscoverInput,
) (*mcp.CallToolResult, DiscoverOutput, error) {
	if s.ports.Discovery == nil {
		return nil, DiscoverOutput{}, &domain.ConfigurationError{Component: "discovery"}
	}

	result, err := s.ports.Discovery.Discover(ctx, input.Topic)
	if err != nil {
		return nil, DiscoverOutput{}, err
	}

	clusters := result.Clusters
	if clusters == nil {
		clusters = []domain.Cluster{}
	}
	return nil, DiscoverOutput{
		Topic:        result.Topic,
		Found:        result.Found,
		Clusters:     clusters,
		Instructions: discoverInstructions,
	}, nil
}

func toReportVideo(v *domain.Video) ReportVideo {
	summary := toSummary(v)
	return ReportVideo{
		VideoID:    v.ID,
		Title:      v.Title,
		Channel:    v.Channel,
		Duration:   v.Duration,
		Tags:       summary.Tags,
		Chapters:   summary.Chapters,
		Transcript: toSegments(v.Transcript),
	}
}
