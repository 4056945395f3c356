package buffer

import (
	"strings"
	"unicode/utf8"
)

type Options struct {
	HistoryLimit int // undo groups kept; default 1000, negative disables history
	KillRingSize int // default 1 (last kill wins)
	WrapWidth    int // soft-wrap width in cells for wrapped-line kills; <= 0 uses logical lines
	TabWidth     int // default 4
}

// Buffer is the authoritative composer state. It is not safe for concurrent
// use; the host event loop is its single owner.
type Buffer struct {
	text    string
	cursor  int
	version uint64

	opt  Options
	hist historyState
	kill killRing

	lastChange    Change
	hasLastChange bool
}

func New(text string, opt Options) *Buffer {
	if opt.HistoryLimit == 0 {
		opt.HistoryLimit = 1000
	}
	if opt.KillRingSize <= 0 {
		opt.KillRingSize = 1
	}
	if opt.TabWidth <= 0 {
		opt.TabWidth = 4
	}
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, string(utf8.RuneError))
	}
	return &Buffer{
		text:   text,
		cursor: 0,
		opt:    opt,
		kill:   killRing{size: opt.KillRingSize},
	}
}

func (b *Buffer) Text() string { return b.text }

func (b *Buffer) Cursor() int { return b.cursor }

func (b *Buffer) Version() uint64 { return b.version }

func (b *Buffer) Len() int { return len(b.text) }

// Snapshot returns the current text and cursor.
func (b *Buffer) Snapshot() State {
	return State{Text: b.text, Cursor: b.cursor}
}

// WrapWidth returns the soft-wrap width used by wrapped-line kills.
func (b *Buffer) WrapWidth() int { return b.opt.WrapWidth }

// TabWidth returns the tab stop width used for wrapping.
func (b *Buffer) TabWidth() int { return b.opt.TabWidth }

// SetWrapWidth updates the soft-wrap width, typically on terminal resize.
func (b *Buffer) SetWrapWidth(width int) {
	if width < 0 {
		width = 0
	}
	b.opt.WrapWidth = width
}

// clampOffset clamps off into [0, len(text)] and moves it back onto the start
// of the code point it points into.
func clampOffset(text string, off int) int {
	off = clampInt(off, 0, len(text))
	for off > 0 && off < len(text) && !utf8.RuneStart(text[off]) {
		off--
	}
	return off
}

func lineStart(text string, off int) int {
	return strings.LastIndexByte(text[:off], '\n') + 1
}

func lineEnd(text string, off int) int {
	if i := strings.IndexByte(text[off:], '\n'); i >= 0 {
		return off + i
	}
	return len(text)
}

func prevRune(text string, off int) (rune, int) {
	if off <= 0 {
		return utf8.RuneError, 0
	}
	return utf8.DecodeLastRuneInString(text[:off])
}

func nextRune(text string, off int) (rune, int) {
	if off >= len(text) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(text[off:])
}
