package input

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"

	"github.com/iw2rmb/quill/edit"
)

// KeyMap defines the composer key bindings.
//
// Bindings must be portable across terminals (ctrl/alt fallbacks).
type KeyMap struct {
	Left, Right, Up, Down  key.Binding
	WordLeft, WordRight    key.Binding
	Home, End              key.Binding
	BufferStart, BufferEnd key.Binding

	Backspace, Delete               key.Binding
	DeleteWordLeft, DeleteWordRight key.Binding

	KillLineStart, KillLineEnd               key.Binding
	KillWrappedLineStart, KillWrappedLineEnd key.Binding
	KillLine                                 key.Binding
	Yank                                     key.Binding

	Newline, Tab key.Binding
	Undo, Redo   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left:  key.NewBinding(key.WithKeys("left", "ctrl+b"), key.WithHelp("←", "left")),
		Right: key.NewBinding(key.WithKeys("right", "ctrl+f"), key.WithHelp("→", "right")),
		Up:    key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "down")),

		// Portable word movement: terminals vary between alt+arrows and ctrl+arrows.
		WordLeft:  key.NewBinding(key.WithKeys("alt+left", "ctrl+left", "alt+b"), key.WithHelp("alt+b", "word left")),
		WordRight: key.NewBinding(key.WithKeys("alt+right", "ctrl+right", "alt+f"), key.WithHelp("alt+f", "word right")),

		Home:        key.NewBinding(key.WithKeys("home", "ctrl+a"), key.WithHelp("home", "line start")),
		End:         key.NewBinding(key.WithKeys("end", "ctrl+e"), key.WithHelp("end", "line end")),
		BufferStart: key.NewBinding(key.WithKeys("ctrl+home", "alt+<"), key.WithHelp("alt+<", "buffer start")),
		BufferEnd:   key.NewBinding(key.WithKeys("ctrl+end", "alt+>"), key.WithHelp("alt+>", "buffer end")),

		Backspace:       key.NewBinding(key.WithKeys("backspace", "ctrl+h"), key.WithHelp("backspace", "delete left")),
		Delete:          key.NewBinding(key.WithKeys("delete", "ctrl+d"), key.WithHelp("del", "delete right")),
		DeleteWordLeft:  key.NewBinding(key.WithKeys("ctrl+w", "alt+backspace"), key.WithHelp("ctrl+w", "delete word left")),
		DeleteWordRight: key.NewBinding(key.WithKeys("alt+d", "alt+delete", "ctrl+delete"), key.WithHelp("alt+d", "delete word right")),

		KillLineStart:        key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "kill to line start")),
		KillLineEnd:          key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "kill to line end")),
		KillWrappedLineStart: key.NewBinding(key.WithKeys("alt+u"), key.WithHelp("alt+u", "kill to row start")),
		KillWrappedLineEnd:   key.NewBinding(key.WithKeys("alt+k"), key.WithHelp("alt+k", "kill to row end")),
		KillLine:             key.NewBinding(key.WithKeys("alt+K"), key.WithHelp("alt+K", "kill line")),
		Yank:                 key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "yank")),

		Newline: key.NewBinding(key.WithKeys("enter", "ctrl+j", "shift+enter", "alt+enter"), key.WithHelp("enter", "newline")),
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "tab")),

		Undo: key.NewBinding(key.WithKeys("ctrl+z", "ctrl+_"), key.WithHelp("ctrl+z", "undo")),
		Redo: key.NewBinding(key.WithKeys("ctrl+shift+z", "alt+z"), key.WithHelp("alt+z", "redo")),
	}
}

type boundCommand struct {
	binding *key.Binding
	cmd     edit.Command
}

func (m *KeyMap) commands() []boundCommand {
	return []boundCommand{
		{&m.Left, edit.MoveChar(edit.Backward)},
		{&m.Right, edit.MoveChar(edit.Forward)},
		{&m.Up, edit.MoveLine(edit.Backward)},
		{&m.Down, edit.MoveLine(edit.Forward)},
		{&m.WordLeft, edit.MoveWord(edit.Backward)},
		{&m.WordRight, edit.MoveWord(edit.Forward)},
		{&m.Home, edit.MoveToLineBoundary(edit.Backward)},
		{&m.End, edit.MoveToLineBoundary(edit.Forward)},
		{&m.BufferStart, edit.MoveToBufferBoundary(edit.Backward)},
		{&m.BufferEnd, edit.MoveToBufferBoundary(edit.Forward)},
		{&m.Backspace, edit.DeleteLeft()},
		{&m.Delete, edit.DeleteRight()},
		{&m.DeleteWordLeft, edit.DeleteWordLeft()},
		{&m.DeleteWordRight, edit.DeleteWordRight()},
		{&m.KillLineStart, edit.KillLineStart()},
		{&m.KillLineEnd, edit.KillLineEnd()},
		{&m.KillWrappedLineStart, edit.KillWrappedLineStart()},
		{&m.KillWrappedLineEnd, edit.KillWrappedLineEnd()},
		{&m.KillLine, edit.KillLine()},
		{&m.Yank, edit.Yank()},
		{&m.Newline, edit.InsertChar('\n')},
		{&m.Tab, edit.InsertChar('\t')},
		{&m.Undo, edit.Undo()},
		{&m.Redo, edit.Redo()},
	}
}

// Lookup resolves a key name (as produced by Decoder or tea.KeyMsg.String)
// to its bound command. Disabled bindings never match.
func (m KeyMap) Lookup(name string) (edit.Command, bool) {
	for _, bc := range m.commands() {
		if bc.binding.Enabled() && slices.Contains(bc.binding.Keys(), name) {
			return bc.cmd, true
		}
	}
	return edit.Command{}, false
}

// Help returns the enabled bindings in a stable order, for status lines.
func (m KeyMap) Help() []key.Binding {
	var out []key.Binding
	for _, bc := range m.commands() {
		if bc.binding.Enabled() {
			out = append(out, *bc.binding)
		}
	}
	return out
}
