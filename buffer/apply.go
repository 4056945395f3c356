package buffer

import (
	"fmt"

	"github.com/iw2rmb/quill/edit"
)

// Apply runs one locally originated command. Boundary no-ops return a Change
// whose versions are equal and a nil error; only commands the engine cannot
// interpret return an error wrapping ErrRejected.
func (b *Buffer) Apply(cmd edit.Command) (Change, error) {
	return b.apply(ChangeSourceLocal, cmd)
}

// ApplyRemote runs a command received over the control channel. Remote edits
// never coalesce with local typing.
func (b *Buffer) ApplyRemote(cmd edit.Command) (Change, error) {
	b.seal()
	c, err := b.apply(ChangeSourceRemote, cmd)
	b.seal()
	return c, err
}

func (b *Buffer) apply(src ChangeSource, cmd edit.Command) (Change, error) {
	if !cmd.Kind.Valid() {
		return Change{}, fmt.Errorf("%w: %s", ErrRejected, cmd.Kind)
	}

	switch cmd.Kind {
	case edit.KindUndo:
		return b.undo(src), nil
	case edit.KindRedo:
		return b.redo(src), nil
	case edit.KindMoveChar, edit.KindMoveWord, edit.KindMoveLine,
		edit.KindMoveToLineBoundary, edit.KindMoveToBufferBoundary:
		if cmd.Dir != edit.Backward && cmd.Dir != edit.Forward {
			return Change{}, fmt.Errorf("%w: %s has no direction", ErrRejected, cmd.Kind)
		}
	}

	cb := b.beginChange(src, cmd.Kind)
	var err error
	switch cmd.Kind {
	case edit.KindInsertChar:
		err = b.insertChar(&cb, cmd.Char)
	case edit.KindInsertText:
		err = b.insertText(&cb, cmd.Text)
	case edit.KindDeleteLeft:
		b.deleteLeft(&cb)
	case edit.KindDeleteRight:
		b.deleteRight(&cb)
	case edit.KindDeleteWordLeft:
		b.deleteWordLeft(&cb)
	case edit.KindDeleteWordRight:
		b.deleteWordRight(&cb)
	case edit.KindKillLineStart:
		b.killLineStart(&cb)
	case edit.KindKillLineEnd:
		b.killLineEnd(&cb)
	case edit.KindKillWrappedLineStart:
		b.killWrappedLineStart(&cb)
	case edit.KindKillWrappedLineEnd:
		b.killWrappedLineEnd(&cb)
	case edit.KindKillLine:
		b.killLine(&cb)
	case edit.KindYank:
		b.yank(&cb)
	case edit.KindMoveChar, edit.KindMoveWord, edit.KindMoveLine,
		edit.KindMoveToLineBoundary, edit.KindMoveToBufferBoundary:
		b.move(cmd)
	case edit.KindSetBuffer:
		err = b.setBuffer(&cb, cmd)
	case edit.KindSetCursor:
		b.setCursor(cmd.Cursor)
	}
	if err != nil {
		return Change{}, err
	}
	return b.commitChange(cb), nil
}
