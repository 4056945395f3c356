package composer

import (
	"time"

	"github.com/iw2rmb/quill/control"
)

// RawInputMsg carries bytes read from the terminal in raw mode.
type RawInputMsg struct {
	Data []byte
	At   time.Time
}

// SubmittedMsg is emitted when the user submits the buffer.
type SubmittedMsg struct {
	Text string
}

// ControlHandledMsg is emitted after a control response was written.
type ControlHandledMsg struct {
	Status  control.Status
	Applied []string
}

type escapeTimeoutMsg struct{}

type pollMsg struct{}

type controlHintMsg struct {
	closed bool
}

type toastExpiredMsg struct {
	seq int
}
