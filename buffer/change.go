package buffer

import "github.com/iw2rmb/quill/edit"

// ChangeSource identifies where a change originated.
type ChangeSource uint8

const (
	ChangeSourceLocal ChangeSource = iota
	ChangeSourceRemote
)

func (s ChangeSource) String() string {
	if s == ChangeSourceRemote {
		return "remote"
	}
	return "local"
}

// AppliedEdit replaces Deleted at byte Offset with Inserted.
type AppliedEdit struct {
	Offset   int
	Deleted  string
	Inserted string
}

// Change is the delta produced by one command. A boundary no-op yields a
// Change whose versions are equal.
type Change struct {
	Source        ChangeSource
	Kind          edit.Kind
	VersionBefore uint64
	VersionAfter  uint64
	CursorBefore  int
	CursorAfter   int
	AppliedEdits  []AppliedEdit
}

// Changed reports whether the text or the cursor changed.
func (c Change) Changed() bool { return c.VersionAfter != c.VersionBefore }

// TextChanged reports whether the text changed.
func (c Change) TextChanged() bool { return len(c.AppliedEdits) > 0 }

type changeBuilder struct {
	source        ChangeSource
	kind          edit.Kind
	versionBefore uint64
	textBefore    string
	cursorBefore  int
	appliedEdits  []AppliedEdit
}

// LastChange returns the most recent effective change.
func (b *Buffer) LastChange() (Change, bool) {
	if !b.hasLastChange {
		return Change{}, false
	}
	return cloneChange(b.lastChange), true
}

func cloneChange(in Change) Change {
	out := in
	out.AppliedEdits = append([]AppliedEdit(nil), in.AppliedEdits...)
	return out
}

func (b *Buffer) beginChange(source ChangeSource, kind edit.Kind) changeBuilder {
	return changeBuilder{
		source:        source,
		kind:          kind,
		versionBefore: b.version,
		textBefore:    b.text,
		cursorBefore:  b.cursor,
	}
}

func (cb *changeBuilder) addAppliedEdit(e AppliedEdit) {
	cb.appliedEdits = append(cb.appliedEdits, e)
}

// commitChange bumps the version when the text or cursor moved and returns
// the resulting delta.
func (b *Buffer) commitChange(cb changeBuilder) Change {
	if b.text != cb.textBefore || b.cursor != cb.cursorBefore {
		b.version++
	}
	c := Change{
		Source:        cb.source,
		Kind:          cb.kind,
		VersionBefore: cb.versionBefore,
		VersionAfter:  b.version,
		CursorBefore:  cb.cursorBefore,
		CursorAfter:   b.cursor,
		AppliedEdits:  append([]AppliedEdit(nil), cb.appliedEdits...),
	}
	if c.Changed() {
		b.lastChange = c
		b.hasLastChange = true
	}
	return cloneChange(c)
}
