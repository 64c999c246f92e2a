package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for mcptube resources.
	uriScheme = "mcptube://"

	jsonMIME = "application/json"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "library",
		Name:        "library",
		Description: "Every video in the library, newest first, without transcripts",
		MIMEType:    jsonMIME,
	}, s.handleLibraryResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "video/{videoId}",
		Name:        "video",
		Description: "Full record of one library video, including its transcript",
		MIMEType:    jsonMIME,
	}, s.handleVideoResource)
}

// handleLibraryResource returns the library listing.
func (s *Server) handleLibraryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	videos, err := s.ports.Library.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing videos: %w", err)
	}

	summaries := make([]VideoSummary, len(videos))
	for i := range videos {
		summaries[i] = toSummary(&videos[i])
	}

	return jsonResource(req.Params.URI, summaries)
}

// handleVideoResource returns one full video record.
func (s *Server) handleVideoResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract videoId from URI: mcptube://video/{videoId}
	videoID := extractVideoID(req.Params.URI)
	if videoID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	video, err := s.ports.Library.Get(ctx, videoID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting video: %w", err)
	}

	return jsonResource(req.Params.URI, toDetail(video))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: jsonMIME,
			Text:     string(data),
		}},
	}, nil
}

// extractVideoID extracts the video ID from a URI like mcptube://video/{videoId}.
func extractVideoID(uri string) string {
	const prefix = uriScheme + "video/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
