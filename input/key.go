package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/quill/edit"
)

// DecodeKey maps a Bubble Tea key event through the same KeyMap as the raw
// byte path. Hosts that let Bubble Tea read the terminal use this instead of
// Feed.
func (d *Decoder) DecodeKey(msg tea.KeyMsg) Event {
	// Paste events always insert literal text and never trigger shortcuts.
	if msg.Paste {
		text := normalizeNewlines(string(msg.Runes))
		if text == "" {
			return Event{Paste: true}
		}
		return Event{Command: edit.InsertText(text), OK: true, Paste: true}
	}

	name := msg.String()
	if !msg.Alt {
		switch msg.Type {
		case tea.KeyRunes:
			if len(msg.Runes) == 1 {
				return d.literal(name, msg.Runes[0])
			}
			if len(msg.Runes) > 1 {
				return Event{Key: name, Command: edit.InsertText(string(msg.Runes)), OK: true}
			}
			return Event{}
		case tea.KeySpace:
			return d.literal(name, ' ')
		case tea.KeyEsc:
			return d.literal(name, esc)
		}
	}

	km := d.keys
	for _, bc := range km.commands() {
		if key.Matches(msg, *bc.binding) {
			return Event{Key: name, Command: bc.cmd, OK: true}
		}
	}
	return Event{Key: name}
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
