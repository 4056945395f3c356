package control

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pkt.systems/pslog"

	"github.com/iw2rmb/quill"
	"github.com/iw2rmb/quill/buffer"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestChannel(t *testing.T, dir string, col Collaborators) *Channel {
	t.Helper()
	ch, err := New(Options{Dir: dir, Collaborators: col, Now: func() time.Time { return fixedNow }})
	require.NoError(t, err)
	return ch
}

func stageRequest(t *testing.T, ch *Channel, cmds ...Command) {
	t.Helper()
	require.NoError(t, WriteRequest(ch.Paths().Request, Request{Commands: cmds}))
}

func stageRaw(t *testing.T, ch *Channel, raw string) {
	t.Helper()
	require.NoError(t, os.WriteFile(ch.Paths().Request, []byte(raw), 0o600))
}

func readResponse(t *testing.T, ch *Channel) (Response, []byte) {
	t.Helper()
	data, err := os.ReadFile(ch.Paths().Response)
	require.NoError(t, err)
	var resp Response
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp, data
}

func TestResolvePaths_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "control")
	p, err := ResolvePaths(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(dir, RequestFileName), p.Request)
	assert.Equal(t, filepath.Join(dir, ResponseFileName), p.Response)
	assert.Equal(t, filepath.Join(dir, LedgerFileName), p.Ledger)
}

func TestChannel_CheckWithoutRequest(t *testing.T) {
	ch := newTestChannel(t, t.TempDir(), Collaborators{})
	_, ok := ch.Check()
	assert.False(t, ok)
	assert.Equal(t, PhaseIdle, ch.Phase())

	resp, handled, err := ch.Handle(buffer.New("", buffer.Options{}))
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, Response{}, resp)
}

func TestChannel_HandleWritesResponseAndRemovesRequest(t *testing.T) {
	board := &StatusBoard{}
	board.SetTaskRunning(true)
	board.SetSummary("compiling")
	ch := newTestChannel(t, t.TempDir(), Collaborators{Status: board})
	b := buffer.New("", buffer.Options{})

	stageRequest(t, ch, SetBufferAt("hello", 2), GetState())
	a, ok := ch.Check()
	require.True(t, ok)
	assert.Equal(t, PhaseRequestDetected, ch.Phase())
	assert.Equal(t, ch.Paths().Request, a.Path)

	resp, err := ch.Process(a, b)
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, ch.Phase())

	want := Response{
		Version: ResponseVersion,
		Status:  StatusOK,
		State: State{
			Buffer:        "hello",
			Cursor:        2,
			IsTaskRunning: true,
			TaskSummary:   "compiling",
		},
		Applied:     []string{"set_buffer", "get_state"},
		TimestampMs: fixedNow.UnixMilli(),
	}
	assert.Equal(t, want, resp)

	onDisk, _ := readResponse(t, ch)
	assert.Equal(t, want, onDisk)

	_, err = os.Stat(ch.Paths().Request)
	assert.True(t, os.IsNotExist(err), "request should be removed")

	info, err := os.Stat(ch.Paths().Response)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestChannel_ResponseAppliedIsAlwaysAnArray(t *testing.T) {
	ch := newTestChannel(t, t.TempDir(), Collaborators{})
	stageRaw(t, ch, `{"commands":[]}`)

	resp, handled, err := ch.Handle(buffer.New("", buffer.Options{}))
	require.NoError(t, err)
	require.True(t, handled)
	assert.Equal(t, StatusNoRequest, resp.Status)

	_, data := readResponse(t, ch)
	assert.Contains(t, string(data), `"applied": []`)
	assert.NotContains(t, string(data), `"error"`)
	assert.NotContains(t, string(data), `"task_summary"`)
}

func TestChannel_MalformedRequestStillAnswers(t *testing.T) {
	ch := newTestChannel(t, t.TempDir(), Collaborators{})
	b := buffer.New("keep", buffer.Options{})
	stageRaw(t, ch, `{"commands": [`)

	resp, handled, err := ch.Handle(b)
	require.NoError(t, err)
	require.True(t, handled)

	assert.Equal(t, StatusError, resp.Status)
	assert.NotEmpty(t, resp.Error)
	assert.Empty(t, resp.Applied)
	assert.Equal(t, State{Buffer: "keep"}, resp.State)
	assert.Equal(t, PhaseIdle, ch.Phase())

	_, err = os.Stat(ch.Paths().Request)
	assert.True(t, os.IsNotExist(err))
}

func TestChannel_BlankRequestAnswersNoRequest(t *testing.T) {
	ch := newTestChannel(t, t.TempDir(), Collaborators{})
	stageRaw(t, ch, "\n")

	resp, handled, err := ch.Handle(buffer.New("", buffer.Options{}))
	require.NoError(t, err)
	require.True(t, handled)
	assert.Equal(t, StatusNoRequest, resp.Status)
}

func TestChannel_NoDoubleApplicationAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	ch := newTestChannel(t, dir, Collaborators{})
	b := buffer.New("", buffer.Options{})

	stageRequest(t, ch, SetBuffer("once"))
	raw, err := os.ReadFile(ch.Paths().Request)
	require.NoError(t, err)
	mtime := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(ch.Paths().Request, mtime, mtime))

	_, handled, err := ch.Handle(b)
	require.NoError(t, err)
	require.True(t, handled)
	require.Equal(t, "once", b.Text())

	// The same artifact reappears, e.g. restored by a sync tool, and a new
	// process picks it up.
	require.NoError(t, os.WriteFile(ch.Paths().Request, raw, 0o600))
	require.NoError(t, os.Chtimes(ch.Paths().Request, mtime, mtime))
	require.NoError(t, os.Remove(ch.Paths().Response))

	restarted := newTestChannel(t, dir, Collaborators{})
	b2 := buffer.New("untouched", buffer.Options{})
	a, ok := restarted.Check()
	require.True(t, ok)
	_, err = restarted.Process(a, b2)
	assert.ErrorIs(t, err, ErrStale)
	assert.Equal(t, "untouched", b2.Text())

	_, err = os.Stat(restarted.Paths().Response)
	assert.True(t, os.IsNotExist(err), "stale request must not be answered")
	_, err = os.Stat(restarted.Paths().Request)
	assert.True(t, os.IsNotExist(err), "stale request should be cleared")
}

func TestChannel_RestagedRequestWithNewMtimeApplies(t *testing.T) {
	ch := newTestChannel(t, t.TempDir(), Collaborators{})
	b := buffer.New("", buffer.Options{})

	stage := func(mtime time.Time) {
		stageRaw(t, ch, `{"commands":[{"type":"notify","message":"ping"}]}`)
		require.NoError(t, os.Chtimes(ch.Paths().Request, mtime, mtime))
	}
	n := &recordingNotifier{}
	ch.col.Notifier = n

	stage(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	_, handled, err := ch.Handle(b)
	require.NoError(t, err)
	require.True(t, handled)

	stage(time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC))
	_, handled, err = ch.Handle(b)
	require.NoError(t, err)
	require.True(t, handled)

	assert.Equal(t, []string{"ping", "ping"}, n.messages)
}

func TestChannel_CorruptLedgerIsTolerated(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, LedgerFileName), []byte("{garbage"), 0o600))

	ch := newTestChannel(t, dir, Collaborators{})
	stageRequest(t, ch, SetCursor(1))
	_, handled, err := ch.Handle(buffer.New("ab", buffer.Options{}))
	require.NoError(t, err)
	assert.True(t, handled)

	id, err := loadLedger(ch.Paths().Ledger)
	require.NoError(t, err)
	assert.False(t, id.IsZero())
}

func TestChannel_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	ch := newTestChannel(t, dir, Collaborators{})
	stageRequest(t, ch, GetState())
	_, _, err := ch.Handle(buffer.New("", buffer.Options{}))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{LedgerFileName, ResponseFileName}, names)
}

func TestChannel_LogsHandledRequest(t *testing.T) {
	capture := &logCapture{}
	logger := pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		VerboseFields: true,
		MinLevel:      pslog.InfoLevel,
	})
	ch, err := New(Options{Dir: t.TempDir(), Logger: logger})
	require.NoError(t, err)

	stageRaw(t, ch, `{"commands":[{"type":"bogus"},{"type":"get_state"}]}`)
	_, handled, err := ch.Handle(buffer.New("", buffer.Options{}))
	require.NoError(t, err)
	require.True(t, handled)

	assert.True(t, capture.has("control command skipped"))
	assert.True(t, capture.has("control request handled"))
	agent, ok := capture.field("control request handled", "agent")
	require.True(t, ok)
	assert.Equal(t, quill.UserAgent(), agent)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "request_detected", PhaseRequestDetected.String())
	assert.Equal(t, "validating", PhaseValidating.String())
	assert.Equal(t, "applying", PhaseApplying.String())
	assert.Equal(t, "response_written", PhaseResponseWritten.String())
}

type logCapture struct {
	mu    sync.Mutex
	lines [][]byte
}

func (c *logCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, line := range bytes.Split(bytes.TrimSpace(p), []byte("\n")) {
		c.lines = append(c.lines, append([]byte(nil), line...))
	}
	return len(p), nil
}

func (c *logCapture) has(message string) bool {
	_, ok := c.entry(message)
	return ok
}

// field returns key from the first entry logged with message.
func (c *logCapture) field(message, key string) (any, bool) {
	payload, ok := c.entry(message)
	if !ok {
		return nil, false
	}
	v, ok := payload[key]
	return v, ok
}

func (c *logCapture) entry(message string) (map[string]any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, line := range c.lines {
		payload := map[string]any{}
		if err := json.Unmarshal(line, &payload); err != nil {
			continue
		}
		for _, key := range []string{"msg", "message"} {
			if v, ok := payload[key].(string); ok && v == message {
				return payload, true
			}
		}
	}
	return nil, false
}
