package composer

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"pkt.systems/pslog"

	"github.com/iw2rmb/quill/buffer"
	"github.com/iw2rmb/quill/control"
	"github.com/iw2rmb/quill/edit"
	"github.com/iw2rmb/quill/input"
)

// Model is a Bubble Tea component composing one message.
type Model struct {
	cfg  Config
	keys KeyMap
	log  pslog.Logger
	now  func() time.Time

	buf     *buffer.Buffer
	dec     *input.Decoder
	history *History
	status  *control.StatusBoard
	toast   *toast

	ch    *control.Channel
	hints <-chan struct{}

	// followWidth is set when the wrap width tracks the view width.
	followWidth bool

	width    int
	viewport viewport.Model
	help     help.Model
}

// New builds a composer. It fails only when the control directory cannot be
// created.
func New(cfg Config) (Model, error) {
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	if cfg.ToastDuration <= 0 {
		cfg.ToastDuration = DefaultToastDuration
	}
	log := cfg.Logger
	if log == nil {
		log = pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, NoColor: true})
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	keys := DefaultKeyMap()
	if cfg.Keys != nil {
		keys = *cfg.Keys
	}
	status := cfg.Status
	if status == nil {
		status = &control.StatusBoard{}
	}

	m := Model{
		cfg:         cfg,
		keys:        keys,
		log:         log,
		now:         now,
		buf:         buffer.New(cfg.Text, cfg.Buffer),
		dec:         input.NewDecoder(input.Options{EscapeTimeout: cfg.EscapeTimeout, KeyMap: cfg.InputKeys}),
		history:     NewHistory(cfg.HistoryLimit),
		status:      status,
		toast:       &toast{},
		followWidth: cfg.Buffer.WrapWidth <= 0,
		viewport:    viewport.New(0, 0),
		help:        help.New(),
	}
	if cfg.Text != "" {
		m.buf.Apply(edit.MoveToBufferBoundary(edit.Forward))
	}

	if cfg.Control != nil {
		ch, err := control.New(control.Options{
			Dir:    cfg.Control.Dir,
			Logger: log,
			Collaborators: control.Collaborators{
				Notifier: m.toast,
				History:  m.history,
				Status:   status,
			},
			Now: now,
		})
		if err != nil {
			return Model{}, err
		}
		m.ch = ch
		if cfg.Control.Watch {
			ctx := cfg.Control.Context
			if ctx == nil {
				ctx = context.Background()
			}
			hints, err := ch.Watch(ctx)
			if err != nil {
				log.Warn("control watch unavailable; polling only", "err", err)
			} else {
				m.hints = hints
			}
		}
	}
	return m, nil
}

func (m Model) Buffer() *buffer.Buffer { return m.buf }

func (m Model) History() *History { return m.history }

func (m Model) Status() *control.StatusBoard { return m.status }

// Channel returns the control channel, or nil when control is disabled.
func (m Model) Channel() *control.Channel { return m.ch }

// Toast returns the current flash message.
func (m Model) Toast() string { return m.toast.text }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.pollCmd(), m.waitHint())
}

func (m Model) SetSize(width, height int) Model {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	m.width = width
	m.viewport.Width = width
	// The last row is the status line.
	m.viewport.Height = max(height-1, 0)
	if m.followWidth {
		m.buf.SetWrapWidth(width - m.promptWidth())
	}
	return m
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil
	case tea.KeyMsg:
		return m.handleEvent(m.dec.DecodeKey(msg))
	case RawInputMsg:
		return m.handleRaw(msg)
	case escapeTimeoutMsg:
		ev, st := m.dec.Expire(m.now())
		switch st {
		case input.StatusEvent:
			return m.handleEvent(ev)
		case input.StatusPending:
			return m, m.escapeCmd()
		}
		return m, nil
	case pollMsg:
		cmd := m.handleControl()
		return m, tea.Batch(cmd, m.pollCmd())
	case controlHintMsg:
		if msg.closed {
			m.hints = nil
			return m, nil
		}
		cmd := m.handleControl()
		return m, tea.Batch(cmd, m.waitHint())
	case toastExpiredMsg:
		m.toast.clear(msg.seq)
		return m, nil
	}
	return m, nil
}

func (m Model) handleRaw(msg RawInputMsg) (Model, tea.Cmd) {
	at := msg.At
	if at.IsZero() {
		at = m.now()
	}
	var cmds []tea.Cmd
	for _, b := range msg.Data {
		ev, st := m.dec.Feed(b, at)
		if st != input.StatusEvent {
			continue
		}
		var cmd tea.Cmd
		m, cmd = m.handleEvent(ev)
		cmds = append(cmds, cmd)
		if next, ok := m.dec.Next(); ok {
			m, cmd = m.handleEvent(next)
			cmds = append(cmds, cmd)
		}
	}
	if m.dec.Pending() {
		cmds = append(cmds, m.escapeCmd())
	}
	return m, tea.Batch(cmds...)
}

// handleEvent applies one decoded key. Composer shortcuts win over the input
// keymap; paste content never triggers them.
func (m Model) handleEvent(ev input.Event) (Model, tea.Cmd) {
	if !ev.Paste {
		switch {
		case bound(m.keys.Quit, ev.Key):
			return m, tea.Quit
		case bound(m.keys.Submit, ev.Key):
			return m.submit()
		case bound(m.keys.Control, ev.Key):
			return m, m.handleControl()
		}
	}
	if !ev.OK {
		if ev.Key != "" {
			m.log.Trace("composer key unbound", "key", ev.Key)
		}
		return m, nil
	}
	if _, err := m.buf.Apply(ev.Command); err != nil {
		m.log.Debug("composer edit rejected", "command", ev.Command.String(), "err", err)
	}
	return m, nil
}

// submit records the buffer in history and clears it.
func (m Model) submit() (Model, tea.Cmd) {
	text := m.buf.Text()
	if text == "" {
		return m, nil
	}
	m.history.Add(text)
	if _, err := m.buf.Apply(edit.SetBuffer("")); err != nil {
		m.log.Warn("composer clear failed", "err", err)
	}
	return m, func() tea.Msg { return SubmittedMsg{Text: text} }
}

// handleControl runs one control cycle. It is a no-op when control is
// disabled or no request is staged.
func (m Model) handleControl() tea.Cmd {
	if m.ch == nil {
		return nil
	}
	resp, wrote, err := m.ch.Handle(m.buf)
	if err != nil {
		m.log.Warn("control cycle failed", "err", err)
	}
	var cmds []tea.Cmd
	if m.toast.fresh {
		m.toast.fresh = false
		seq := m.toast.seq
		cmds = append(cmds, tea.Tick(m.cfg.ToastDuration, func(time.Time) tea.Msg {
			return toastExpiredMsg{seq: seq}
		}))
	}
	if wrote {
		applied := append([]string(nil), resp.Applied...)
		status := resp.Status
		cmds = append(cmds, func() tea.Msg {
			return ControlHandledMsg{Status: status, Applied: applied}
		})
	}
	return tea.Batch(cmds...)
}

func (m Model) pollCmd() tea.Cmd {
	if m.ch == nil {
		return nil
	}
	interval := m.cfg.Control.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return tea.Tick(interval, func(time.Time) tea.Msg { return pollMsg{} })
}

func (m Model) waitHint() tea.Cmd {
	hints := m.hints
	if hints == nil {
		return nil
	}
	return func() tea.Msg {
		_, ok := <-hints
		return controlHintMsg{closed: !ok}
	}
}

func (m Model) escapeCmd() tea.Cmd {
	deadline, ok := m.dec.Deadline()
	if !ok {
		return nil
	}
	wait := max(deadline.Sub(m.now()), 0)
	return tea.Tick(wait, func(time.Time) tea.Msg { return escapeTimeoutMsg{} })
}
