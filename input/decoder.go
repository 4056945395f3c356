package input

import (
	"time"
	"unicode/utf8"

	"github.com/iw2rmb/quill/edit"
)

// DefaultEscapeTimeout bounds how long a lone ESC waits for the rest of a
// sequence.
const DefaultEscapeTimeout = 50 * time.Millisecond

const (
	esc = 0x1b
	del = 0x7f

	maxSequenceLen = 16
)

// Status reports the outcome of feeding one byte.
type Status uint8

const (
	// StatusDrop means the input was discarded.
	StatusDrop Status = iota
	// StatusPending means more input is needed.
	StatusPending
	// StatusEvent means a complete key was decoded.
	StatusEvent
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusEvent:
		return "event"
	default:
		return "drop"
	}
}

// Event is one decoded key.
//
// Key is the Bubble Tea style key name (for example "ctrl+z", "alt+b",
// "left"), so hosts can intercept their own shortcuts before applying
// Command. OK is false when the key has no binding; such keys must not be
// applied. Paste is true for bracketed paste content, which carries no key
// name and never triggers shortcuts.
type Event struct {
	Key     string
	Command edit.Command
	OK      bool
	Paste   bool
}

type Options struct {
	// EscapeTimeout defaults to DefaultEscapeTimeout.
	EscapeTimeout time.Duration
	// KeyMap defaults to DefaultKeyMap().
	KeyMap *KeyMap
}

// Decoder converts a raw terminal byte stream into Events. It is not safe for
// concurrent use.
type Decoder struct {
	timeout time.Duration
	keys    KeyMap

	// seq holds an escape introducer and the bytes that followed it.
	seq      []byte
	deadline time.Time

	// utf8buf holds the leading bytes of an incomplete multi-byte rune.
	utf8buf []byte

	paste bool

	// queued holds an event decoded after an expired escape was flushed.
	queued   Event
	hasQueue bool
}

func NewDecoder(opt Options) *Decoder {
	d := &Decoder{timeout: opt.EscapeTimeout}
	if d.timeout <= 0 {
		d.timeout = DefaultEscapeTimeout
	}
	if opt.KeyMap != nil {
		d.keys = *opt.KeyMap
	} else {
		d.keys = DefaultKeyMap()
	}
	return d
}

// KeyMap returns the bindings the decoder resolves against.
func (d *Decoder) KeyMap() KeyMap { return d.keys }

// Pending reports whether the decoder is holding an incomplete sequence.
func (d *Decoder) Pending() bool { return len(d.seq) > 0 || len(d.utf8buf) > 0 }

// Deadline returns when the held escape sequence expires.
func (d *Decoder) Deadline() (time.Time, bool) {
	if len(d.seq) == 0 {
		return time.Time{}, false
	}
	return d.deadline, true
}

// Expire flushes a held escape sequence whose deadline has passed. A lone ESC
// becomes a literal InsertChar(0x1b); a longer incomplete sequence is dropped.
// Before the deadline it reports StatusPending.
func (d *Decoder) Expire(now time.Time) (Event, Status) {
	if len(d.seq) == 0 {
		return Event{}, StatusDrop
	}
	if now.Before(d.deadline) {
		return Event{}, StatusPending
	}
	lone := len(d.seq) == 1
	d.reset()
	if !lone {
		return Event{}, StatusDrop
	}
	return d.literal("esc", esc), StatusEvent
}

// Reset discards any held input.
func (d *Decoder) Reset() {
	d.reset()
	d.queued, d.hasQueue = Event{}, false
	d.utf8buf = d.utf8buf[:0]
	d.paste = false
}

func (d *Decoder) reset() {
	d.seq = d.seq[:0]
	d.deadline = time.Time{}
}

// Feed consumes one byte. A held escape whose deadline passed before b
// arrived is flushed first; when that yields an event, it is returned and
// the event decoded from b is held for Next.
func (d *Decoder) Feed(b byte, now time.Time) (Event, Status) {
	if len(d.seq) > 0 && !now.Before(d.deadline) {
		flushed, st := d.Expire(now)
		ev, bst := d.feed(b, now)
		if st != StatusEvent {
			return ev, bst
		}
		if bst == StatusEvent {
			d.queued, d.hasQueue = ev, true
		}
		return flushed, StatusEvent
	}
	return d.feed(b, now)
}

// Next returns the event held back by Feed, if any. Hosts call it after
// every Feed that reported StatusEvent.
func (d *Decoder) Next() (Event, bool) {
	if !d.hasQueue {
		return Event{}, false
	}
	ev := d.queued
	d.queued, d.hasQueue = Event{}, false
	return ev, true
}

func (d *Decoder) feed(b byte, now time.Time) (Event, Status) {
	if len(d.seq) > 0 {
		return d.feedSequence(b, now)
	}
	if len(d.utf8buf) > 0 {
		if utf8.RuneStart(b) {
			// The held rune can never complete.
			d.utf8buf = d.utf8buf[:0]
		} else {
			return d.feedUTF8(b)
		}
	}

	switch {
	case b == esc:
		d.seq = append(d.seq, b)
		d.deadline = now.Add(d.timeout)
		return Event{}, StatusPending
	case b >= 0x80:
		if !utf8.RuneStart(b) {
			return Event{}, StatusDrop
		}
		return d.feedUTF8(b)
	case b >= 0x20 && b < del:
		return d.printable(rune(b))
	default:
		if d.paste {
			return d.pasteControl(b)
		}
		return d.resolve(controlName(b))
	}
}

func (d *Decoder) feedUTF8(b byte) (Event, Status) {
	d.utf8buf = append(d.utf8buf, b)
	if !utf8.FullRune(d.utf8buf) {
		return Event{}, StatusPending
	}
	r, _ := utf8.DecodeRune(d.utf8buf)
	d.utf8buf = d.utf8buf[:0]
	if r == utf8.RuneError {
		return Event{}, StatusDrop
	}
	return d.printable(r)
}

func (d *Decoder) feedSequence(b byte, now time.Time) (Event, Status) {
	d.seq = append(d.seq, b)
	d.deadline = now.Add(d.timeout)

	if len(d.seq) == 2 {
		switch {
		case b == '[' || b == 'O':
			return Event{}, StatusPending
		case b == esc:
			// ESC ESC: the first one was a lone escape.
			d.seq = d.seq[:1]
			return d.literal("esc", esc), StatusEvent
		}
		d.reset()
		if d.paste {
			return Event{}, StatusDrop
		}
		return d.meta(b)
	}

	if len(d.seq) > maxSequenceLen {
		d.reset()
		return Event{}, StatusDrop
	}

	if d.seq[1] == 'O' {
		name := ss3Name(b)
		d.reset()
		if name == "" || d.paste {
			return Event{}, StatusDrop
		}
		return d.resolve(name)
	}

	switch {
	case b >= 0x20 && b <= 0x3f:
		return Event{}, StatusPending
	case b >= 0x40 && b <= 0x7e:
		params := string(d.seq[2 : len(d.seq)-1])
		d.reset()
		return d.csi(params, b)
	default:
		d.reset()
		return Event{}, StatusDrop
	}
}

// meta decodes ESC followed by one byte as an alt-modified key.
func (d *Decoder) meta(b byte) (Event, Status) {
	switch {
	case b >= 0x20 && b < del:
		return d.resolve("alt+" + string(rune(b)))
	case b == del || b == 0x08:
		return d.resolve("alt+backspace")
	case b < 0x20:
		return d.resolve("alt+" + controlName(b))
	default:
		// Alt on a non-ASCII key never inserts.
		return Event{}, StatusDrop
	}
}

func (d *Decoder) csi(params string, final byte) (Event, Status) {
	if final == '~' {
		switch params {
		case "200":
			d.paste = true
			return Event{}, StatusDrop
		case "201":
			d.paste = false
			return Event{}, StatusDrop
		}
	}
	if d.paste {
		return Event{}, StatusDrop
	}

	k, ok := parseCSI(params, final)
	if !ok {
		return Event{}, StatusDrop
	}
	if k.insert != 0 {
		return d.printable(k.insert)
	}
	if k.name == "esc" {
		return d.literal("esc", esc), StatusEvent
	}
	return d.resolve(k.name)
}

func (d *Decoder) printable(r rune) (Event, Status) {
	if d.paste {
		return Event{Command: edit.InsertChar(r), OK: true, Paste: true}, StatusEvent
	}
	return d.literal(string(r), r), StatusEvent
}

// pasteControl keeps line breaks and tabs from pasted text and drops other
// control bytes.
func (d *Decoder) pasteControl(b byte) (Event, Status) {
	switch b {
	case '\r', '\n':
		return Event{Command: edit.InsertChar('\n'), OK: true, Paste: true}, StatusEvent
	case '\t':
		return Event{Command: edit.InsertChar('\t'), OK: true, Paste: true}, StatusEvent
	default:
		return Event{}, StatusDrop
	}
}

func (d *Decoder) literal(name string, r rune) Event {
	return Event{Key: name, Command: edit.InsertChar(r), OK: true}
}

// resolve looks a named key up in the KeyMap. Unbound keys still produce an
// event so hosts can intercept them, but with OK=false.
func (d *Decoder) resolve(name string) (Event, Status) {
	if name == "" {
		return Event{}, StatusDrop
	}
	cmd, ok := d.keys.Lookup(name)
	return Event{Key: name, Command: cmd, OK: ok}, StatusEvent
}
