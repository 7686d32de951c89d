package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEsc:
		if m.input.Value() != "" {
			m.input.SetValue("")
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyCtrlU, tea.KeyCtrlD:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.KeyEnter:
		return m.handleSubmit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSubmit routes the input line: slash commands first, then a city name
// while no guide is loaded, otherwise a chat message.
func (m *Model) handleSubmit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return m, nil
	}
	m.input.SetValue("")

	if handled, cmd := m.handleSlashCommand(value); handled {
		return m, cmd
	}
	if m.snapshot.Guide == nil {
		return m, m.startGuide(value)
	}
	return m, m.startChat(value)
}
