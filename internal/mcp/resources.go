package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// resourcePrefix is the URI scheme for vidtally resources.
const resourcePrefix = "vidtally://"

// parseProgressURI extracts the video ID from a vidtally://progress/{video_id} URI.
func parseProgressURI(uri string) (string, error) {
	if !strings.HasPrefix(uri, resourcePrefix+"progress/") {
		return "", fmt.Errorf("invalid URI scheme: %s", uri)
	}

	videoID := strings.TrimPrefix(uri, resourcePrefix+"progress/")
	if videoID == "" || strings.Contains(videoID, "/") {
		return "", fmt.Errorf("invalid video id in URI: %s", uri)
	}
	return videoID, nil
}

// handleProgressResource handles vidtally://progress/{video_id} resources.
func (s *Server) handleProgressResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	videoID, err := parseProgressURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(s.progressResponse(videoID), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal progress: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// handleSnapshotResource handles the vidtally://snapshot resource.
func (s *Server) handleSnapshotResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	snap, err := s.eng.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
