package mcp

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

const jpegMIME = "image/jpeg"

// FrameInput is the input schema for timestamp frame tools.
type FrameInput struct {
	VideoID   string  `json:"video_id" jsonschema:"video ID, position in list_videos (1 = newest) or a unique part of the title or channel"`
	Timestamp float64 `json:"timestamp" jsonschema:"offset into the video in seconds"`
}

// FrameByQueryInput is the input schema for the get_frame_by_query tool.
type FrameByQueryInput struct {
	VideoID string `json:"video_id" jsonschema:"video ID, position in list_videos (1 = newest) or a unique part of the title or channel"`
	Query   string `json:"query" jsonschema:"description of the moment to capture, matched against the transcript"`
}

// FrameDataOutput is the output schema for the get_frame_data tool.
type FrameDataOutput struct {
	VideoID     string  `json:"video_id"`
	Timestamp   float64 `json:"timestamp"`
	ImageBase64 string  `json:"image_base64"`
	MIMEType    string  `json:"mime_type"`
	EmbedHTML   string  `json:"embed_html"`
}

func (s *Server) registerFrameTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_frame",
		Description: "Capture the video frame at a timestamp and return it as an image",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, s.handleGetFrame)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_frame_by_query",
		Description: "Capture the frame where the transcript best matches a description",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, s.handleGetFrameByQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "get_frame_data",
		Description: "Capture a frame and return it base64 encoded with a ready-to-paste <img> tag " +
			"for embedding in reports",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, s.handleGetFrameData)
}

// handleGetFrame handles the get_frame tool invocation.
func (s *Server) handleGetFrame(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FrameInput,
) (*mcp.CallToolResult, any, error) {
	if s.ports.Frame == nil {
		return nil, nil, &domain.ConfigurationError{Component: "frame capture"}
	}

	data, err := s.ports.Frame.FrameData(ctx, input.VideoID, input.Timestamp)
	if err != nil {
		return nil, nil, err
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.ImageContent{Data: data, MIMEType: jpegMIME}},
	}, nil, nil
}

// handleGetFrameByQuery handles the get_frame_by_query tool invocation.
func (s *Server) handleGetFrameByQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FrameByQueryInput,
) (*mcp.CallToolResult, any, error) {
	if s.ports.Frame == nil {
		return nil, nil, &domain.ConfigurationError{Component: "frame capture"}
	}

	match, err := s.ports.Frame.FrameByQuery(ctx, input.VideoID, input.Query)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(match.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading frame: %w", err)
	}

	caption := fmt.Sprintf("[%s] %s", domain.FormatTimestamp(match.Hit.Start), match.Hit.Text)
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.ImageContent{Data: data, MIMEType: jpegMIME},
			&mcp.TextContent{Text: caption},
		},
	}, nil, nil
}

// handleGetFrameData handles the get_frame_data tool invocation.
func (s *Server) handleGetFrameData(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FrameInput,
) (*mcp.CallToolResult, FrameDataOutput, error) {
	if s.ports.Frame == nil {
		return nil, FrameDataOutput{}, &domain.ConfigurationError{Component: "frame capture"}
	}

	video, err := s.ports.Library.Get(ctx, input.VideoID)
	if err != nil {
		return nil, FrameDataOutput{}, err
	}

	data, err := s.ports.Frame.FrameData(ctx, video.ID, input.Timestamp)
	if err != nil {
		return nil, FrameDataOutput{}, err
	}

	b64 := base64.StdEncoding.EncodeToString(data)
	return nil, FrameDataOutput{
		VideoID:     video.ID,
		Timestamp:   input.Timestamp,
		ImageBase64: b64,
		MIMEType:    jpegMIME,
		EmbedHTML: fmt.Sprintf(`<img src="data:%s;base64,%s" alt="Frame at %s">`,
			jpegMIME, b64, domain.FormatTimestamp(input.Timestamp)),
	}, nil
}
