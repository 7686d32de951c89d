package chat

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if handled, cmd := m.handleMouseClick(msg); handled {
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleMouseClick saves a place when its star is clicked and copies it when
// its name is clicked.
func (m *Model) handleMouseClick(msg tea.MouseMsg) (bool, tea.Cmd) {
	guide := m.snapshot.Guide
	if guide == nil || m.showRaw {
		return false, nil
	}
	for i, place := range guide.Places {
		if m.zoneManager.Get(faveZoneID(i)).InBounds(msg) {
			return true, m.saveFavoriteCmd(place.Name)
		}
		if m.zoneManager.Get(placeZoneID(i)).InBounds(msg) {
			m.copyPlace(i)
			return true, nil
		}
	}
	return false, nil
}

func faveZoneID(index int) string {
	return fmt.Sprintf("fave-%d", index)
}

func placeZoneID(index int) string {
	return fmt.Sprintf("place-%d", index)
}
