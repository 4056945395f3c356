package composer

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the keys the composer handles before the input keymap sees
// them.
type KeyMap struct {
	Submit  key.Binding
	Control key.Binding
	Quit    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Control: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "run control request")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func bound(b key.Binding, name string) bool {
	return name != "" && b.Enabled() && slices.Contains(b.Keys(), name)
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Control, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
