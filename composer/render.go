package composer

import (
	"strings"

	"github.com/iw2rmb/quill/buffer"
	graphemeutil "github.com/iw2rmb/quill/internal/grapheme"
)

func (m Model) promptWidth() int {
	return graphemeutil.StringWidth(m.cfg.Prompt, m.buf.TabWidth())
}

// View renders the buffer rows followed by one status row.
func (m Model) View() string {
	rows, cursorRow := m.renderRows()
	vp := m.viewport
	vp.SetContent(strings.Join(rows, "\n"))
	if vp.Height > 0 {
		switch {
		case cursorRow < vp.YOffset:
			vp.SetYOffset(cursorRow)
		case cursorRow >= vp.YOffset+vp.Height:
			vp.SetYOffset(cursorRow - vp.Height + 1)
		}
	}
	body := strings.Join(rows, "\n")
	if vp.Height > 0 {
		body = vp.View()
	}
	return body + "\n" + m.statusLine()
}

// renderRows renders every visual row and reports the row holding the cursor.
func (m Model) renderRows() ([]string, int) {
	text := m.buf.Text()
	cursor := m.buf.Cursor()
	segs := m.buf.VisualLines()
	tabWidth := m.buf.TabWidth()

	st := m.cfg.Style
	prompt := st.Prompt.Render(m.cfg.Prompt)
	indent := strings.Repeat(" ", m.promptWidth())

	cursorRow := 0
	rows := make([]string, 0, len(segs))
	for i, seg := range segs {
		var sb strings.Builder
		if i == 0 {
			sb.WriteString(prompt)
		} else {
			sb.WriteString(indent)
		}
		hasCursor := cursorOnSegment(segs, i, cursor)
		if hasCursor {
			cursorRow = i
		}
		sb.WriteString(renderSegment(st, text[seg.Start:seg.End], seg.Start, cursor, hasCursor, tabWidth))
		rows = append(rows, sb.String())
	}
	return rows, cursorRow
}

// cursorOnSegment reports whether cursor is drawn on segs[i]. An offset on a
// soft-wrap boundary belongs to the row that starts there.
func cursorOnSegment(segs []buffer.Segment, i, cursor int) bool {
	seg := segs[i]
	if cursor < seg.Start || cursor > seg.End {
		return false
	}
	if cursor < seg.End {
		return true
	}
	return i == len(segs)-1 || segs[i+1].Start != seg.End
}

func renderSegment(st Style, line string, base, cursor int, hasCursor bool, tabWidth int) string {
	var sb strings.Builder
	col := 0
	drawn := false
	for _, c := range graphemeutil.Clusters(line) {
		w := graphemeutil.CellWidth(c.Text, col, tabWidth)
		cell := c.Text
		if cell == "\t" {
			cell = strings.Repeat(" ", w)
		}
		if hasCursor && !drawn && cursor < base+c.End() {
			sb.WriteString(st.Cursor.Render(cell))
			drawn = true
		} else {
			sb.WriteString(st.Text.Render(cell))
		}
		col += w
	}
	if hasCursor && !drawn {
		sb.WriteString(st.Cursor.Render(" "))
	}
	return sb.String()
}

func (m Model) statusLine() string {
	st := m.cfg.Style
	if m.toast.text != "" {
		return st.Toast.Render(firstLine(m.toast.text))
	}
	running, summary := m.status.TaskStatus()
	if running {
		label := "working"
		if summary != "" {
			label += ": " + firstLine(summary)
		}
		return st.Task.Render(label)
	}
	return st.Status.Render(m.help.View(m.keys))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
