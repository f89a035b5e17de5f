package mcp

import (
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/vidtally/internal/engine"
)

func TestParseProgressURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    string
		wantErr bool
	}{
		{"valid", "vidtally://progress/abc12345678", "abc12345678", false},
		{"wrong scheme", "skill://progress/abc12345678", "", true},
		{"wrong path", "vidtally://badges/abc12345678", "", true},
		{"empty id", "vidtally://progress/", "", true},
		{"nested id", "vidtally://progress/a/b", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProgressURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func readResource(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func TestHandleProgressResource(t *testing.T) {
	env := setupTestServer(t, false)
	_, err := env.eng.Ledger.RecordSample("abc12345678", "PL1", 300, 600)
	require.NoError(t, err)

	contents, err := env.server.handleProgressResource(t.Context(), readResource("vidtally://progress/abc12345678"))
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/json", text.MIMEType)

	var resp ProgressResponse
	require.NoError(t, json.Unmarshal([]byte(text.Text), &resp))
	assert.Equal(t, "PL1", resp.Playlist)
	assert.InDelta(t, 50.0, resp.Percent, 0.001)

	_, err = env.server.handleProgressResource(t.Context(), readResource("vidtally://progress/"))
	assert.Error(t, err)
}

func TestHandleSnapshotResource(t *testing.T) {
	env := setupTestServer(t, false)
	_, err := env.eng.Ledger.RecordSample("abc12345678", "", 600, 600)
	require.NoError(t, err)

	contents, err := env.server.handleSnapshotResource(t.Context(), readResource("vidtally://snapshot"))
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)

	var snap engine.Snapshot
	require.NoError(t, json.Unmarshal([]byte(text.Text), &snap))
	assert.Equal(t, "client-a", snap.ClientID)
	assert.Equal(t, 1, snap.CompletedCount)
	assert.Len(t, snap.Recent, 1)
}
