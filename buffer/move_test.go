package buffer

import (
	"testing"

	"github.com/iw2rmb/quill/edit"
)

func TestMove_CharStepsOverCodePoints(t *testing.T) {
	b := New("aé", Options{})
	mustApply(t, b, edit.MoveToBufferBoundary(edit.Forward))
	assertState(t, b, "aé", 3)
	mustApply(t, b, edit.MoveChar(edit.Backward))
	assertState(t, b, "aé", 1)
	mustApply(t, b, edit.MoveChar(edit.Forward))
	assertState(t, b, "aé", 3)
}

func TestMove_Word(t *testing.T) {
	b := New("hello world", Options{})
	mustApply(t, b, edit.MoveWord(edit.Forward))
	assertState(t, b, "hello world", 5)
	mustApply(t, b, edit.MoveWord(edit.Forward))
	assertState(t, b, "hello world", 11)
	mustApply(t, b, edit.MoveWord(edit.Backward))
	assertState(t, b, "hello world", 6)
	mustApply(t, b, edit.MoveWord(edit.Backward))
	assertState(t, b, "hello world", 0)
}

func TestMove_LineKeepsColumnClamped(t *testing.T) {
	b := New("abc\nd\nefgh", Options{})
	mustApply(t, b, edit.SetCursor(3))

	mustApply(t, b, edit.MoveLine(edit.Forward))
	assertState(t, b, "abc\nd\nefgh", 5)
	mustApply(t, b, edit.MoveLine(edit.Forward))
	assertState(t, b, "abc\nd\nefgh", 7)

	c := mustApply(t, b, edit.MoveLine(edit.Forward))
	if c.Changed() {
		t.Fatalf("MoveLine down on last line changed: %+v", c)
	}

	mustApply(t, b, edit.MoveLine(edit.Backward), edit.MoveLine(edit.Backward))
	assertState(t, b, "abc\nd\nefgh", 1)
	c = mustApply(t, b, edit.MoveLine(edit.Backward))
	if c.Changed() {
		t.Fatalf("MoveLine up on first line changed: %+v", c)
	}
}

func TestMove_LineBoundaries(t *testing.T) {
	b := New("ab\ncd", Options{})
	mustApply(t, b, edit.SetCursor(4), edit.MoveToLineBoundary(edit.Backward))
	assertState(t, b, "ab\ncd", 3)
	mustApply(t, b, edit.MoveToLineBoundary(edit.Forward))
	assertState(t, b, "ab\ncd", 5)
	mustApply(t, b, edit.MoveToBufferBoundary(edit.Backward))
	assertState(t, b, "ab\ncd", 0)
}

func TestMove_DoesNotTouchHistory(t *testing.T) {
	b := New("", Options{})
	typeText(t, b, "a")
	mustApply(t, b, edit.MoveChar(edit.Backward))
	typeText(t, b, "b")
	assertState(t, b, "ba", 1)

	mustApply(t, b, edit.Undo())
	assertState(t, b, "a", 0)
	if !b.CanRedo() {
		t.Fatalf("expected CanRedo=true")
	}

	mustApply(t, b, edit.MoveChar(edit.Forward))
	if !b.CanRedo() {
		t.Fatalf("movement cleared redo")
	}
	if got, want := b.UndoDepth(), 1; got != want {
		t.Fatalf("undo depth=%d, want %d", got, want)
	}
}

func TestLineCount(t *testing.T) {
	for text, want := range map[string]int{"": 1, "a": 1, "a\n": 2, "a\nb\nc": 3} {
		if got := New(text, Options{}).LineCount(); got != want {
			t.Fatalf("LineCount(%q)=%d, want %d", text, got, want)
		}
	}
}
