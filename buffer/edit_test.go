package buffer

import (
	"errors"
	"testing"

	"github.com/iw2rmb/quill/edit"
)

func TestApply_InsertChar_AdvancesCursor(t *testing.T) {
	b := New("", Options{})
	typeText(t, b, "hé")
	assertState(t, b, "hé", 3)
	if got, want := b.Version(), uint64(2); got != want {
		t.Fatalf("version=%d, want %d", got, want)
	}
}

func TestApply_InsertText_AtCursor(t *testing.T) {
	b := New("ad", Options{})
	mustApply(t, b, edit.SetCursor(1), edit.InsertText("bc"))
	assertState(t, b, "abcd", 3)
}

func TestApply_InsertChar_RejectsInvalidRune(t *testing.T) {
	b := New("x", Options{})
	for _, r := range []rune{-1, 0xD800, utf8MaxPlusOne} {
		_, err := b.Apply(edit.InsertChar(r))
		if !errors.Is(err, ErrRejected) {
			t.Fatalf("InsertChar(%U) err=%v, want ErrRejected", r, err)
		}
	}
	assertState(t, b, "x", 0)
	if got := b.Version(); got != 0 {
		t.Fatalf("version=%d, want 0", got)
	}
}

const utf8MaxPlusOne = 0x110000

func TestApply_InsertText_RejectsInvalidUTF8(t *testing.T) {
	b := New("", Options{})
	if _, err := b.Apply(edit.InsertText("a\xffb")); !errors.Is(err, ErrRejected) {
		t.Fatalf("err=%v, want ErrRejected", err)
	}
	assertState(t, b, "", 0)
}

func TestApply_InvalidKind_Rejected(t *testing.T) {
	b := New("x", Options{})
	if _, err := b.Apply(edit.Command{}); !errors.Is(err, ErrRejected) {
		t.Fatalf("err=%v, want ErrRejected", err)
	}
	if _, err := b.Apply(edit.Command{Kind: edit.KindMoveChar}); !errors.Is(err, ErrRejected) {
		t.Fatalf("move without direction err=%v, want ErrRejected", err)
	}
}

func TestApply_DeleteLeft_RemovesOneCodePoint(t *testing.T) {
	b := New("aé", Options{})
	mustApply(t, b, edit.SetCursor(3), edit.DeleteLeft())
	assertState(t, b, "a", 1)

	// A ZWJ sequence loses one code point at a time.
	family := "\U0001F468\u200d\U0001F469"
	b = New(family, Options{})
	mustApply(t, b, edit.SetCursor(len(family)), edit.DeleteLeft())
	assertState(t, b, "\U0001F468\u200d", len("\U0001F468\u200d"))
}

func TestApply_DeleteRight_KeepsCursor(t *testing.T) {
	b := New("aéb", Options{})
	mustApply(t, b, edit.SetCursor(1), edit.DeleteRight())
	assertState(t, b, "ab", 1)
}

func TestApply_BoundaryNoOps(t *testing.T) {
	b := New("ab", Options{})

	c := mustApply(t, b, edit.DeleteLeft())
	if c.Changed() {
		t.Fatalf("DeleteLeft at start changed: %+v", c)
	}
	c = mustApply(t, b, edit.MoveChar(edit.Backward))
	if c.Changed() {
		t.Fatalf("MoveChar backward at start changed: %+v", c)
	}

	mustApply(t, b, edit.SetCursor(2))
	v := b.Version()
	for _, cmd := range []edit.Command{
		edit.DeleteRight(),
		edit.DeleteWordRight(),
		edit.KillLineEnd(),
		edit.MoveChar(edit.Forward),
		edit.MoveToBufferBoundary(edit.Forward),
	} {
		c := mustApply(t, b, cmd)
		if c.Changed() {
			t.Fatalf("%v at end changed: %+v", cmd, c)
		}
	}
	if got := b.Version(); got != v {
		t.Fatalf("version=%d, want %d", got, v)
	}
	assertState(t, b, "ab", 2)
}

func TestApply_DeleteWordLeft(t *testing.T) {
	b := New("foo bar  ", Options{})
	mustApply(t, b, edit.MoveToBufferBoundary(edit.Forward), edit.DeleteWordLeft())
	assertState(t, b, "foo ", 4)
	if got := b.KillRing(); len(got) != 0 {
		t.Fatalf("word delete fed kill ring: %q", got)
	}
}

func TestApply_DeleteWordRight_StopsAtClassChange(t *testing.T) {
	b := New("foo.bar", Options{})
	mustApply(t, b, edit.DeleteWordRight())
	assertState(t, b, ".bar", 0)
	mustApply(t, b, edit.DeleteWordRight())
	assertState(t, b, "bar", 0)
}

func TestApply_SetBuffer_CursorDefaultsToEnd(t *testing.T) {
	b := New("old", Options{})
	mustApply(t, b, edit.SetBuffer("hello"))
	assertState(t, b, "hello", 5)

	mustApply(t, b, edit.SetBufferAt("hello world", 999))
	assertState(t, b, "hello world", 11)

	mustApply(t, b, edit.SetBufferAt("héllo", 2))
	assertState(t, b, "héllo", 1)

	mustApply(t, b, edit.Undo())
	assertState(t, b, "hello world", 11)
}

func TestApply_SetBuffer_SameTextRecordsCursorMove(t *testing.T) {
	b := New("same", Options{})
	mustApply(t, b, edit.SetBufferAt("same", 2))
	assertState(t, b, "same", 2)
	if got, want := b.UndoDepth(), 1; got != want {
		t.Fatalf("undo depth=%d, want %d", got, want)
	}

	mustApply(t, b, edit.Undo())
	assertState(t, b, "same", 0)
	mustApply(t, b, edit.Redo())
	assertState(t, b, "same", 2)
}

func TestApply_SetBuffer_SameTextClearsRedo(t *testing.T) {
	b := New("", Options{})
	typeText(t, b, "ab")
	mustApply(t, b, edit.Undo())
	mustApply(t, b, edit.SetCursor(0))
	if !b.CanRedo() {
		t.Fatalf("expected CanRedo=true")
	}
	mustApply(t, b, edit.SetBufferAt("", 0))
	if !b.CanRedo() {
		t.Fatalf("identical state must keep redo")
	}

	b = New("xy", Options{})
	mustApply(t, b, edit.InsertChar('z'))
	mustApply(t, b, edit.Undo())
	mustApply(t, b, edit.SetBufferAt("xy", 1))
	if b.CanRedo() {
		t.Fatalf("expected redo cleared by cursor-only SetBuffer")
	}
	assertState(t, b, "xy", 1)
}

func TestApply_SetCursor_Clamps(t *testing.T) {
	b := New("héllo", Options{})
	mustApply(t, b, edit.SetCursor(-3))
	assertState(t, b, "héllo", 0)
	mustApply(t, b, edit.SetCursor(999))
	assertState(t, b, "héllo", 6)
	mustApply(t, b, edit.SetCursor(2))
	assertState(t, b, "héllo", 1)
}

func TestApply_ChangeDescribesEdit(t *testing.T) {
	b := New("ab", Options{})
	mustApply(t, b, edit.SetCursor(1))
	c := mustApply(t, b, edit.InsertChar('x'))

	if got, want := c.Source, ChangeSourceLocal; got != want {
		t.Fatalf("source=%v, want %v", got, want)
	}
	if got, want := c.Kind, edit.KindInsertChar; got != want {
		t.Fatalf("kind=%v, want %v", got, want)
	}
	if c.VersionAfter != c.VersionBefore+1 {
		t.Fatalf("versions=%d->%d", c.VersionBefore, c.VersionAfter)
	}
	if got, want := len(c.AppliedEdits), 1; got != want {
		t.Fatalf("edits=%d, want %d", got, want)
	}
	if got, want := c.AppliedEdits[0], (AppliedEdit{Offset: 1, Inserted: "x"}); got != want {
		t.Fatalf("edit=%+v, want %+v", got, want)
	}
	if !c.TextChanged() {
		t.Fatalf("expected TextChanged")
	}

	last, ok := b.LastChange()
	if !ok || last.VersionAfter != c.VersionAfter {
		t.Fatalf("last change=%+v ok=%v", last, ok)
	}
}

func TestApplyRemote_MarksSource(t *testing.T) {
	b := New("", Options{})
	c, err := b.ApplyRemote(edit.InsertText("hi"))
	if err != nil {
		t.Fatalf("ApplyRemote: %v", err)
	}
	if got, want := c.Source, ChangeSourceRemote; got != want {
		t.Fatalf("source=%v, want %v", got, want)
	}
	if got, want := c.Source.String(), "remote"; got != want {
		t.Fatalf("source label=%q, want %q", got, want)
	}
	assertState(t, b, "hi", 2)
}
