package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pkt.systems/pslog"

	"github.com/iw2rmb/quill/control"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	logger := pslog.NewWithOptions(&bytes.Buffer{}, pslog.Options{Mode: pslog.ModeStructured, NoColor: true})
	ctx := pslog.ContextWithLogger(context.Background(), logger)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want pslog.Level
	}{
		{in: "trace", want: pslog.TraceLevel},
		{in: "debug", want: pslog.DebugLevel},
		{in: "info", want: pslog.InfoLevel},
		{in: "warn", want: pslog.WarnLevel},
		{in: "error", want: pslog.ErrorLevel},
		{in: "bogus", want: pslog.InfoLevel},
	}
	for _, tc := range tests {
		if got := parseLevel(tc.in); got != tc.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSimulate_AppliesRequestToState(t *testing.T) {
	dir := t.TempDir()
	state := writeFile(t, dir, "state.json", `{"buffer":"hello","cursor":99,"is_task_running":true,"task_summary":"build"}`)
	request := writeFile(t, dir, "request.json", `{"commands":[{"type":"set_cursor","cursor":2},{"type":"bogus"},{"type":"get_state"}]}`)
	output := filepath.Join(dir, "response.json")

	if _, err := runRoot(t, "simulate", "--state", state, "--request", request, "--output", output); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var resp control.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got, want := resp.Status, control.StatusOK; got != want {
		t.Fatalf("status: got %q, want %q", got, want)
	}
	if got, want := strings.Join(resp.Applied, ","), "set_cursor,get_state"; got != want {
		t.Fatalf("applied: got %q, want %q", got, want)
	}
	if resp.State.Buffer != "hello" || resp.State.Cursor != 2 {
		t.Fatalf("state: got %+v", resp.State)
	}
	if !resp.State.IsTaskRunning || resp.State.TaskSummary != "build" {
		t.Fatalf("task status not carried over: %+v", resp.State)
	}
}

func TestSimulate_HistoryFlag(t *testing.T) {
	dir := t.TempDir()
	request := writeFile(t, dir, "request.json", `{"commands":[{"type":"edit_previous_message","steps_back":1}]}`)

	out, err := runRoot(t, "simulate", "--request", request, "--history", "first,second")
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	var resp control.Response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode stdout: %v\n%s", err, out)
	}
	if got, want := resp.State.Buffer, "first"; got != want {
		t.Fatalf("buffer: got %q, want %q", got, want)
	}
}

func TestSimulate_EmptyRequestIsNoRequest(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	resp, _ := simulate(control.State{Buffer: "x", Cursor: 1}, []byte(`{"commands":[]}`), nil, now)
	if got, want := resp.Status, control.StatusNoRequest; got != want {
		t.Fatalf("status: got %q, want %q", got, want)
	}
	if resp.Applied == nil || len(resp.Applied) != 0 {
		t.Fatalf("applied: got %#v, want empty array", resp.Applied)
	}
	if got, want := resp.TimestampMs, now.UnixMilli(); got != want {
		t.Fatalf("timestamp: got %d, want %d", got, want)
	}
}

func TestSend_StagesRequests(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		args []string
		want control.Command
	}{
		{args: []string{"set-buffer", "hi", "--cursor", "1"}, want: control.SetBufferAt("hi", 1)},
		{args: []string{"set-buffer", "hi"}, want: control.SetBuffer("hi")},
		{args: []string{"set-cursor", "3"}, want: control.SetCursor(3)},
		{args: []string{"state"}, want: control.GetState()},
		{args: []string{"notify", "done"}, want: control.Notify("done")},
		{args: []string{"history-previous"}, want: control.HistoryPrevious()},
		{args: []string{"history-next"}, want: control.HistoryNext()},
		{args: []string{"edit-previous", "2"}, want: control.EditPreviousMessage(2)},
		{args: []string{"edit-previous"}, want: control.EditPreviousMessage(0)},
	}
	for _, tc := range tests {
		args := append([]string{"send", "--dir", dir}, tc.args...)
		out, err := runRoot(t, args...)
		if err != nil {
			t.Fatalf("%v: %v", tc.args, err)
		}
		if !strings.Contains(out, "request.json") {
			t.Fatalf("%v: output %q does not name the request", tc.args, out)
		}
		data, err := os.ReadFile(filepath.Join(dir, control.RequestFileName))
		if err != nil {
			t.Fatalf("%v: read request: %v", tc.args, err)
		}
		want, err := json.Marshal(control.Request{Commands: []control.Command{tc.want}})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var gotReq, wantReq any
		_ = json.Unmarshal(data, &gotReq)
		_ = json.Unmarshal(want, &wantReq)
		if gotJSON, wantJSON := mustJSON(t, gotReq), mustJSON(t, wantReq); gotJSON != wantJSON {
			t.Fatalf("%v: request got %s, want %s", tc.args, gotJSON, wantJSON)
		}
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestSend_RejectsNegativeOffset(t *testing.T) {
	if _, err := runRoot(t, "send", "--dir", t.TempDir(), "set-cursor", "--", "-1"); err == nil {
		t.Fatalf("expected an error for a negative offset")
	}
}

func TestSend_ClearAndShowState(t *testing.T) {
	dir := t.TempDir()
	if _, err := runRoot(t, "send", "--dir", dir, "state"); err != nil {
		t.Fatalf("state: %v", err)
	}
	if _, err := runRoot(t, "send", "--dir", dir, "clear"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, control.RequestFileName)); !os.IsNotExist(err) {
		t.Fatalf("request still present after clear: %v", err)
	}

	writeFile(t, dir, control.ResponseFileName, `{"version":1,"status":"ok","state":{"buffer":"b","cursor":1,"is_task_running":false},"applied":[],"timestamp_ms":1}`)
	out, err := runRoot(t, "send", "--dir", dir, "show-state")
	if err != nil {
		t.Fatalf("show-state: %v", err)
	}
	if !strings.Contains(out, "\n  \"status\": \"ok\"") {
		t.Fatalf("show-state did not pretty print: %q", out)
	}
}

func TestWaitResponse_IgnoresOlderResponses(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "response.json", `{"timestamp_ms":1}`)
	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	if _, err := waitResponse(ctx, path, time.Now()); err == nil {
		t.Fatalf("expected timeout for a stale response")
	}

	since := time.Now()
	resp := control.BuildResponse(control.State{}, control.StatusOK, nil, "", since.Add(time.Millisecond))
	if err := control.WriteResponse(path, resp); err != nil {
		t.Fatalf("write response: %v", err)
	}
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	if _, err := waitResponse(ctx2, path, since); err != nil {
		t.Fatalf("waitResponse: %v", err)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := runRoot(t, "config", "init", "-c", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := runRoot(t, "config", "init", "-c", path); err == nil {
		t.Fatalf("expected config init to refuse overwriting")
	}
	out, err := runRoot(t, "config", "show", "-c", path)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "poll_interval_ms: 250") {
		t.Fatalf("config show output missing defaults:\n%s", out)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := runRoot(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "github.com/iw2rmb/quill v") {
		t.Fatalf("version output: %q", out)
	}
}
