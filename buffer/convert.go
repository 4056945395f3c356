package buffer

import (
	"strings"
	"unicode/utf8"
)

// PosFromOffset converts a byte offset into a (row, code-point column) Pos.
// Offsets are clamped into the document.
func (b *Buffer) PosFromOffset(off int) Pos {
	off = clampOffset(b.text, off)
	before := b.text[:off]
	row := strings.Count(before, "\n")
	bol := lineStart(b.text, off)
	return Pos{Row: row, Col: utf8.RuneCountInString(b.text[bol:off])}
}

// OffsetFromPos converts p into a byte offset. Row and Col are clamped into
// the document.
func (b *Buffer) OffsetFromPos(p Pos) int {
	row := clampInt(p.Row, 0, b.LineCount()-1)
	bol := 0
	for i := 0; i < row; i++ {
		bol = lineEnd(b.text, bol) + 1
	}
	eol := lineEnd(b.text, bol)
	col := clampInt(p.Col, 0, eol-bol)
	return bol + runeColumnOffset(b.text[bol:eol], col)
}

// RuneOffset converts a byte offset into a code-point offset.
func (b *Buffer) RuneOffset(off int) int {
	return utf8.RuneCountInString(b.text[:clampOffset(b.text, off)])
}
