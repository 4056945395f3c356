package buffer

import (
	"fmt"
	"unicode/utf8"

	"github.com/iw2rmb/quill/edit"
)

// replace swaps text[start:end] for ins, records it in history, and moves the
// cursor to cursorAfter. It reports false when nothing changed.
func (b *Buffer) replace(cb *changeBuilder, class editClass, start, end int, ins string, cursorAfter int) bool {
	start = clampOffset(b.text, start)
	end = clampOffset(b.text, end)
	if end < start {
		start, end = end, start
	}
	deleted := b.text[start:end]
	if deleted == ins {
		return false
	}

	cursorBefore := b.cursor
	b.text = b.text[:start] + ins + b.text[end:]
	b.cursor = clampOffset(b.text, cursorAfter)
	b.record(class, undoEdit{offset: start, deleted: deleted, inserted: ins}, cursorBefore, b.cursor)
	cb.addAppliedEdit(AppliedEdit{Offset: start, Deleted: deleted, Inserted: ins})
	return true
}

func (b *Buffer) insertText(cb *changeBuilder, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: insert text is not valid UTF-8", ErrRejected)
	}
	if s == "" {
		return nil
	}
	at := b.cursor
	b.replace(cb, classInsert, at, at, s, at+len(s))
	return nil
}

func (b *Buffer) insertChar(cb *changeBuilder, r rune) error {
	if r < 0 || !utf8.ValidRune(r) {
		return fmt.Errorf("%w: invalid rune %U", ErrRejected, r)
	}
	return b.insertText(cb, string(r))
}

// deleteLeft removes one code point before the cursor.
func (b *Buffer) deleteLeft(cb *changeBuilder) {
	_, n := prevRune(b.text, b.cursor)
	if n == 0 {
		return
	}
	start := b.cursor - n
	b.replace(cb, classDeleteLeft, start, b.cursor, "", start)
}

// deleteRight removes one code point after the cursor.
func (b *Buffer) deleteRight(cb *changeBuilder) {
	_, n := nextRune(b.text, b.cursor)
	if n == 0 {
		return
	}
	at := b.cursor
	b.replace(cb, classDeleteRight, at, at+n, "", at)
}

func (b *Buffer) deleteWordLeft(cb *changeBuilder) {
	start := prevWordBoundary(b.text, b.cursor)
	if start == b.cursor {
		return
	}
	b.replace(cb, classSealed, start, b.cursor, "", start)
}

func (b *Buffer) deleteWordRight(cb *changeBuilder) {
	end := nextWordBoundary(b.text, b.cursor)
	if end == b.cursor {
		return
	}
	at := b.cursor
	b.replace(cb, classSealed, at, end, "", at)
}

func (b *Buffer) setBuffer(cb *changeBuilder, cmd edit.Command) error {
	if !utf8.ValidString(cmd.Text) {
		return fmt.Errorf("%w: buffer text is not valid UTF-8", ErrRejected)
	}
	cursor := len(cmd.Text)
	if cmd.HasCursor {
		cursor = cmd.Cursor
	}
	cursor = clampOffset(cmd.Text, cursor)

	b.seal()
	if !b.replace(cb, classSealed, 0, len(b.text), cmd.Text, cursor) && cursor != b.cursor {
		// Same text: record the cursor move so undo restores it.
		b.recordCursor(b.cursor, cursor)
		b.cursor = cursor
	}
	return nil
}

func (b *Buffer) setCursor(off int) {
	b.cursor = clampOffset(b.text, off)
	b.seal()
}
