package control

import "time"

// ResponseVersion is the response format version.
const ResponseVersion = 1

// Status summarizes how a request was handled.
type Status string

const (
	StatusOK        Status = "ok"
	StatusNoRequest Status = "no_request"
	StatusError     Status = "error"
)

// State is the composer snapshot reported back to the requester.
type State struct {
	Buffer        string `json:"buffer"`
	Cursor        int    `json:"cursor"`
	IsTaskRunning bool   `json:"is_task_running"`
	TaskSummary   string `json:"task_summary,omitempty"`
}

type Response struct {
	Version     int      `json:"version"`
	Status      Status   `json:"status"`
	State       State    `json:"state"`
	Applied     []string `json:"applied"`
	Error       string   `json:"error,omitempty"`
	TimestampMs int64    `json:"timestamp_ms"`
}

// CaptureState snapshots the engine and, when available, the task status.
func CaptureState(eng Engine, ts TaskStatus) State {
	snap := eng.Snapshot()
	st := State{Buffer: snap.Text, Cursor: snap.Cursor}
	if ts != nil {
		st.IsTaskRunning, st.TaskSummary = ts.TaskStatus()
	}
	return st
}

// BuildResponse assembles a response. Applied is never nil so it always
// serializes as an array.
func BuildResponse(state State, status Status, applied []string, errMsg string, now time.Time) Response {
	out := make([]string, len(applied))
	copy(out, applied)
	return Response{
		Version:     ResponseVersion,
		Status:      status,
		State:       state,
		Applied:     out,
		Error:       errMsg,
		TimestampMs: now.UnixMilli(),
	}
}

