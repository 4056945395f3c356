package composer

import "strings"

// History is the in-memory list of submitted messages. It backs the
// history_previous, history_next and edit_previous_message control commands.
//
// Navigation keeps a position: Previous walks towards older entries and Next
// back towards the newest, ending on an empty draft.
type History struct {
	entries []string
	limit   int
	// pos indexes entries; len(entries) means "not navigating".
	pos int
}

// NewHistory returns an empty history keeping at most limit entries. A limit
// <= 0 keeps everything.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Add records a submitted message and resets navigation. Blank messages and
// repeats of the newest entry are ignored.
func (h *History) Add(text string) {
	defer func() { h.pos = len(h.entries) }()
	if strings.TrimSpace(text) == "" {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == text {
		return
	}
	h.entries = append(h.entries, text)
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = append([]string(nil), h.entries[len(h.entries)-h.limit:]...)
	}
}

func (h *History) Len() int { return len(h.entries) }

// Entries returns the history oldest first.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}

func (h *History) Previous() (string, bool) {
	if h.pos == 0 || len(h.entries) == 0 {
		return "", false
	}
	h.pos--
	return h.entries[h.pos], true
}

func (h *History) Next() (string, bool) {
	if h.pos >= len(h.entries) {
		return "", false
	}
	h.pos++
	if h.pos == len(h.entries) {
		return "", true
	}
	return h.entries[h.pos], true
}

// Back returns the entry stepsBack places before the newest one and moves
// navigation there.
func (h *History) Back(stepsBack int) (string, bool) {
	if stepsBack < 0 || stepsBack >= len(h.entries) {
		return "", false
	}
	h.pos = len(h.entries) - 1 - stepsBack
	return h.entries[h.pos], true
}
