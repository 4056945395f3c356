package buffer

import "github.com/iw2rmb/quill/edit"

// editClass decides which consecutive edits share one undo group.
type editClass uint8

const (
	classSealed editClass = iota // always a group of its own
	classInsert
	classDeleteLeft
	classDeleteRight
)

type undoEdit struct {
	offset   int
	deleted  string
	inserted string
}

type undoGroup struct {
	class        editClass
	edits        []undoEdit
	cursorBefore int
	cursorAfter  int
}

type historyState struct {
	undo []undoGroup
	redo []undoGroup
	// open is true while the newest undo group may still absorb edits.
	open bool
}

// record appends e to history, coalescing it into the newest group when it
// continues a run of the same class at the adjacent offset.
func (b *Buffer) record(class editClass, e undoEdit, cursorBefore, cursorAfter int) {
	limit := b.opt.HistoryLimit
	if limit <= 0 {
		return
	}
	b.hist.redo = nil

	if class != classSealed && b.hist.open && len(b.hist.undo) > 0 {
		g := &b.hist.undo[len(b.hist.undo)-1]
		if g.class == class && g.cursorAfter == cursorBefore && coalesce(class, &g.edits[len(g.edits)-1], e) {
			g.cursorAfter = cursorAfter
			return
		}
	}

	b.hist.undo = append(b.hist.undo, undoGroup{
		class:        class,
		edits:        []undoEdit{e},
		cursorBefore: cursorBefore,
		cursorAfter:  cursorAfter,
	})
	if len(b.hist.undo) > limit {
		b.hist.undo = b.hist.undo[len(b.hist.undo)-limit:]
	}
	b.hist.open = class != classSealed
}

// recordCursor appends a sealed group with no text edits. Undo and redo of it
// only move the cursor.
func (b *Buffer) recordCursor(cursorBefore, cursorAfter int) {
	limit := b.opt.HistoryLimit
	if limit <= 0 {
		return
	}
	b.hist.redo = nil
	b.hist.undo = append(b.hist.undo, undoGroup{
		class:        classSealed,
		cursorBefore: cursorBefore,
		cursorAfter:  cursorAfter,
	})
	if len(b.hist.undo) > limit {
		b.hist.undo = b.hist.undo[len(b.hist.undo)-limit:]
	}
	b.hist.open = false
}

func coalesce(class editClass, last *undoEdit, e undoEdit) bool {
	switch class {
	case classInsert:
		if last.deleted != "" || e.deleted != "" || last.offset+len(last.inserted) != e.offset {
			return false
		}
		last.inserted += e.inserted
		return true
	case classDeleteLeft:
		if last.inserted != "" || e.inserted != "" || e.offset+len(e.deleted) != last.offset {
			return false
		}
		last.offset = e.offset
		last.deleted = e.deleted + last.deleted
		return true
	case classDeleteRight:
		if last.inserted != "" || e.inserted != "" || e.offset != last.offset {
			return false
		}
		last.deleted += e.deleted
		return true
	default:
		return false
	}
}

// seal closes the newest undo group so the next edit starts a new one.
func (b *Buffer) seal() { b.hist.open = false }

func (b *Buffer) CanUndo() bool { return len(b.hist.undo) > 0 }

func (b *Buffer) CanRedo() bool { return len(b.hist.redo) > 0 }

// UndoDepth returns the number of undo groups available.
func (b *Buffer) UndoDepth() int { return len(b.hist.undo) }

func (b *Buffer) undo(src ChangeSource) Change {
	change := b.beginChange(src, edit.KindUndo)
	b.seal()
	if len(b.hist.undo) == 0 {
		return b.commitChange(change)
	}

	i := len(b.hist.undo) - 1
	g := b.hist.undo[i]
	b.hist.undo = b.hist.undo[:i]
	b.hist.redo = append(b.hist.redo, g)

	for j := len(g.edits) - 1; j >= 0; j-- {
		e := g.edits[j]
		b.text = b.text[:e.offset] + e.deleted + b.text[e.offset+len(e.inserted):]
		change.addAppliedEdit(AppliedEdit{Offset: e.offset, Deleted: e.inserted, Inserted: e.deleted})
	}
	b.cursor = clampOffset(b.text, g.cursorBefore)
	return b.commitChange(change)
}

func (b *Buffer) redo(src ChangeSource) Change {
	change := b.beginChange(src, edit.KindRedo)
	b.seal()
	if len(b.hist.redo) == 0 {
		return b.commitChange(change)
	}

	i := len(b.hist.redo) - 1
	g := b.hist.redo[i]
	b.hist.redo = b.hist.redo[:i]
	b.hist.undo = append(b.hist.undo, g)

	for _, e := range g.edits {
		b.text = b.text[:e.offset] + e.inserted + b.text[e.offset+len(e.deleted):]
		change.addAppliedEdit(AppliedEdit{Offset: e.offset, Deleted: e.deleted, Inserted: e.inserted})
	}
	b.cursor = clampOffset(b.text, g.cursorAfter)
	return b.commitChange(change)
}
