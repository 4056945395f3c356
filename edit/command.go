package edit

import "fmt"

// Kind identifies the logical operation carried by a Command.
type Kind uint8

const (
	KindInvalid Kind = iota

	KindInsertChar
	KindInsertText

	KindDeleteLeft
	KindDeleteRight
	KindDeleteWordLeft
	KindDeleteWordRight

	KindKillLineStart
	KindKillLineEnd
	KindKillWrappedLineStart
	KindKillWrappedLineEnd
	KindKillLine
	KindYank

	KindMoveChar
	KindMoveWord
	KindMoveLine
	KindMoveToLineBoundary
	KindMoveToBufferBoundary

	KindUndo
	KindRedo

	KindSetBuffer
	KindSetCursor

	kindCount
)

var kindLabels = [kindCount]string{
	KindInvalid:              "invalid",
	KindInsertChar:           "insert_char",
	KindInsertText:           "insert_text",
	KindDeleteLeft:           "delete_left",
	KindDeleteRight:          "delete_right",
	KindDeleteWordLeft:       "delete_word_left",
	KindDeleteWordRight:      "delete_word_right",
	KindKillLineStart:        "kill_line_start",
	KindKillLineEnd:          "kill_line_end",
	KindKillWrappedLineStart: "kill_wrapped_line_start",
	KindKillWrappedLineEnd:   "kill_wrapped_line_end",
	KindKillLine:             "kill_line",
	KindYank:                 "yank",
	KindMoveChar:             "move_char",
	KindMoveWord:             "move_word",
	KindMoveLine:             "move_line",
	KindMoveToLineBoundary:   "move_to_line_boundary",
	KindMoveToBufferBoundary: "move_to_buffer_boundary",
	KindUndo:                 "undo",
	KindRedo:                 "redo",
	KindSetBuffer:            "set_buffer",
	KindSetCursor:            "set_cursor",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindLabels[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k names a known operation.
func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindCount
}

// Mutating reports whether commands of kind k may change buffer text.
func (k Kind) Mutating() bool {
	switch k {
	case KindMoveChar, KindMoveWord, KindMoveLine, KindMoveToLineBoundary,
		KindMoveToBufferBoundary, KindSetCursor, KindInvalid:
		return false
	default:
		return k.Valid()
	}
}

// Kills reports whether commands of kind k feed the kill ring.
func (k Kind) Kills() bool {
	switch k {
	case KindKillLineStart, KindKillLineEnd, KindKillWrappedLineStart,
		KindKillWrappedLineEnd, KindKillLine:
		return true
	default:
		return false
	}
}

// Dir is the direction of a movement.
//
// For line movement Backward is up and Forward is down; for boundary
// movement Backward is the start and Forward is the end.
type Dir int8

const (
	Backward Dir = -1
	Forward  Dir = 1
)

func (d Dir) String() string {
	switch d {
	case Backward:
		return "backward"
	case Forward:
		return "forward"
	default:
		return fmt.Sprintf("dir(%d)", int8(d))
	}
}

// Command is one logical edit operation. Only the fields relevant to Kind are
// meaningful; use the constructors below.
type Command struct {
	Kind Kind

	Char rune
	Text string
	Dir  Dir

	// Cursor is a byte offset for SetCursor and SetBuffer. HasCursor is false
	// when SetBuffer should place the cursor at the end of Text.
	Cursor    int
	HasCursor bool
}

func (c Command) String() string {
	switch c.Kind {
	case KindInsertChar:
		return fmt.Sprintf("%s(%q)", c.Kind, c.Char)
	case KindInsertText:
		return fmt.Sprintf("%s(%q)", c.Kind, c.Text)
	case KindMoveChar, KindMoveWord, KindMoveLine, KindMoveToLineBoundary, KindMoveToBufferBoundary:
		return fmt.Sprintf("%s(%s)", c.Kind, c.Dir)
	case KindSetBuffer:
		if c.HasCursor {
			return fmt.Sprintf("%s(%q, %d)", c.Kind, c.Text, c.Cursor)
		}
		return fmt.Sprintf("%s(%q)", c.Kind, c.Text)
	case KindSetCursor:
		return fmt.Sprintf("%s(%d)", c.Kind, c.Cursor)
	default:
		return c.Kind.String()
	}
}

func InsertChar(r rune) Command { return Command{Kind: KindInsertChar, Char: r} }
func InsertText(s string) Command { return Command{Kind: KindInsertText, Text: s} }
func DeleteLeft() Command { return Command{Kind: KindDeleteLeft} }
func DeleteRight() Command { return Command{Kind: KindDeleteRight} }
func DeleteWordLeft() Command { return Command{Kind: KindDeleteWordLeft} }
func DeleteWordRight() Command { return Command{Kind: KindDeleteWordRight} }
func KillLineStart() Command { return Command{Kind: KindKillLineStart} }
func KillLineEnd() Command { return Command{Kind: KindKillLineEnd} }
func KillWrappedLineStart() Command { return Command{Kind: KindKillWrappedLineStart} }
func KillWrappedLineEnd() Command { return Command{Kind: KindKillWrappedLineEnd} }
func KillLine() Command { return Command{Kind: KindKillLine} }
func Yank() Command { return Command{Kind: KindYank} }
func Undo() Command { return Command{Kind: KindUndo} }
func Redo() Command { return Command{Kind: KindRedo} }

func MoveChar(d Dir) Command { return Command{Kind: KindMoveChar, Dir: d} }
func MoveWord(d Dir) Command { return Command{Kind: KindMoveWord, Dir: d} }
func MoveLine(d Dir) Command { return Command{Kind: KindMoveLine, Dir: d} }
func MoveToLineBoundary(d Dir) Command { return Command{Kind: KindMoveToLineBoundary, Dir: d} }
func MoveToBufferBoundary(d Dir) Command { return Command{Kind: KindMoveToBufferBoundary, Dir: d} }

// SetBuffer replaces the whole buffer and places the cursor at the end.
func SetBuffer(text string) Command {
	return Command{Kind: KindSetBuffer, Text: text}
}

// SetBufferAt replaces the whole buffer and places the cursor at offset.
func SetBufferAt(text string, offset int) Command {
	return Command{Kind: KindSetBuffer, Text: text, Cursor: offset, HasCursor: true}
}

func SetCursor(offset int) Command {
	return Command{Kind: KindSetCursor, Cursor: offset}
}
