package buffer

import (
	"unicode/utf8"

	"github.com/iw2rmb/quill/edit"
)

// move relocates the cursor. Movement never touches the kill ring or the
// undo stacks; it only closes the open undo group.
func (b *Buffer) move(cmd edit.Command) {
	next := b.moveTarget(cmd)
	b.seal()
	b.cursor = clampOffset(b.text, next)
}

func (b *Buffer) moveTarget(cmd edit.Command) int {
	cur := b.cursor
	switch cmd.Kind {
	case edit.KindMoveChar:
		if cmd.Dir == edit.Backward {
			_, n := prevRune(b.text, cur)
			return cur - n
		}
		_, n := nextRune(b.text, cur)
		return cur + n
	case edit.KindMoveWord:
		if cmd.Dir == edit.Backward {
			return prevWordBoundary(b.text, cur)
		}
		return nextWordBoundary(b.text, cur)
	case edit.KindMoveLine:
		return b.verticalTarget(cur, cmd.Dir)
	case edit.KindMoveToLineBoundary:
		if cmd.Dir == edit.Backward {
			return lineStart(b.text, cur)
		}
		return lineEnd(b.text, cur)
	case edit.KindMoveToBufferBoundary:
		if cmd.Dir == edit.Backward {
			return 0
		}
		return len(b.text)
	default:
		return cur
	}
}

// verticalTarget keeps the code-point column, clamped to the target line.
func (b *Buffer) verticalTarget(cur int, dir edit.Dir) int {
	p := b.PosFromOffset(cur)
	switch dir {
	case edit.Backward:
		if p.Row == 0 {
			return cur
		}
		p.Row--
	case edit.Forward:
		if p.Row >= b.LineCount()-1 {
			return cur
		}
		p.Row++
	default:
		return cur
	}
	return b.OffsetFromPos(p)
}

// LineCount returns the number of logical lines (at least 1).
func (b *Buffer) LineCount() int {
	n := 1
	for i := 0; i < len(b.text); i++ {
		if b.text[i] == '\n' {
			n++
		}
	}
	return n
}

func runeColumnOffset(line string, col int) int {
	off := 0
	for i := 0; i < col && off < len(line); i++ {
		_, n := utf8.DecodeRuneInString(line[off:])
		off += n
	}
	return off
}
