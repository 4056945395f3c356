package composer

import "github.com/charmbracelet/lipgloss"

// Style controls the composer's rendering.
type Style struct {
	Prompt lipgloss.Style
	Text   lipgloss.Style
	Cursor lipgloss.Style
	Status lipgloss.Style
	Task   lipgloss.Style
	Toast  lipgloss.Style
}

// DefaultStyle builds the default styles on r. A nil r uses the default
// lipgloss renderer.
func DefaultStyle(r *lipgloss.Renderer) Style {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Style{
		Prompt: r.NewStyle().Foreground(lipgloss.Color("63")).Bold(true),
		Text:   r.NewStyle(),
		Cursor: r.NewStyle().Reverse(true),
		Status: r.NewStyle().Foreground(lipgloss.Color("240")),
		Task:   r.NewStyle().Foreground(lipgloss.Color("214")),
		Toast:  r.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("114")).Padding(0, 1),
	}
}
