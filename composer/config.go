package composer

import (
	"context"
	"time"

	"pkt.systems/pslog"

	"github.com/iw2rmb/quill/buffer"
	"github.com/iw2rmb/quill/control"
	"github.com/iw2rmb/quill/input"
)

const (
	DefaultPollInterval  = 250 * time.Millisecond
	DefaultToastDuration = 3 * time.Second
	DefaultPrompt        = "› "
)

// Config configures the composer Model.
type Config struct {
	// Initial buffer text; the cursor starts at its end.
	Text   string
	Prompt string
	Style  Style

	// Forwarded to buffer.New. A zero WrapWidth follows the view width.
	Buffer buffer.Options

	// EscapeTimeout and InputKeys configure the raw byte decoder.
	EscapeTimeout time.Duration
	InputKeys     *input.KeyMap
	// Keys are composer shortcuts checked before InputKeys.
	Keys *KeyMap

	// Control enables the file-based control channel when non-nil.
	Control *ControlConfig

	// Status is shared with whoever runs tasks. Nil creates a private board.
	Status *control.StatusBoard

	// HistoryLimit bounds the submitted-message history; <= 0 keeps all.
	HistoryLimit  int
	ToastDuration time.Duration

	Logger pslog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// ControlConfig configures the control channel.
type ControlConfig struct {
	// Dir is the control directory; empty selects control.DefaultDir.
	Dir string
	// PollInterval is how often the request file is checked.
	PollInterval time.Duration
	// Watch adds an fsnotify hint on top of polling.
	Watch bool
	// Context bounds the watcher; nil uses context.Background.
	Context context.Context
}
