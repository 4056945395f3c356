package control

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteResponse_ReplacesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), ResponseFileName)
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	resp := BuildResponse(State{Buffer: "x", Cursor: 1}, StatusOK, nil, "", time.UnixMilli(42))
	require.NoError(t, WriteResponse(path, resp))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(ResponseVersion), got["version"])
	assert.Equal(t, "ok", got["status"])
	assert.Equal(t, []any{}, got["applied"])
	assert.Equal(t, float64(42), got["timestamp_ms"])

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestBuildResponse_CopiesApplied(t *testing.T) {
	applied := []string{"get_state"}
	resp := BuildResponse(State{}, StatusOK, applied, "", time.Now())
	applied[0] = "mutated"
	assert.Equal(t, []string{"get_state"}, resp.Applied)
}

func TestWriteRequest_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), RequestFileName)
	req := Request{Commands: []Command{SetBufferAt("hi", 1), Notify("yo"), EditPreviousMessage(2)}}
	require.NoError(t, WriteRequest(path, req))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Request
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, req, got)
}
