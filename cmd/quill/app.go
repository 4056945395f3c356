package main

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/quill/composer"
)

// app embeds the composer as a full program, printing submitted messages
// above it.
type app struct {
	c    composer.Model
	rows int
}

func (a app) Init() tea.Cmd { return a.c.Init() }

func (a app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := msg.Height
		if a.rows > 0 && height > a.rows+1 {
			height = a.rows + 1
		}
		a.c = a.c.SetSize(msg.Width, height)
		return a, nil
	case composer.SubmittedMsg:
		return a, tea.Println(msg.Text)
	}

	var cmd tea.Cmd
	a.c, cmd = a.c.Update(msg)
	return a, cmd
}

func (a app) View() string { return a.c.View() }
