package chat

import (
	"errors"
	"fmt"

	"github.com/adamavenir/amelie/internal/core"
	"github.com/adamavenir/amelie/internal/session"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type snapshotMsg struct {
	snapshot session.Snapshot
}

type guideDoneMsg struct {
	city   string
	result session.GuideResult
	err    error
}

type chatDoneMsg struct {
	result session.ChatResult
	err    error
}

type favoriteSavedMsg struct {
	place   string
	message string
	err     error
}

type favoritesClearedMsg struct {
	err error
}

type favoritesRefreshedMsg struct {
	err error
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	case snapshotMsg:
		return m.handleSnapshotMsg(msg)
	case guideDoneMsg:
		return m.handleGuideDoneMsg(msg)
	case chatDoneMsg:
		return m.handleChatDoneMsg(msg)
	case favoriteSavedMsg:
		return m.handleFavoriteSavedMsg(msg)
	case favoritesClearedMsg:
		return m.handleFavoritesClearedMsg(msg)
	case favoritesRefreshedMsg:
		if msg.err != nil {
			m.setError(fmt.Errorf("could not load favorites: %w", msg.err))
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.resize()
	return m, nil
}

func (m *Model) handleSnapshotMsg(msg snapshotMsg) (tea.Model, tea.Cmd) {
	m.snapshot = msg.snapshot
	m.refreshViewport()
	return m, waitForSnapshot(m.updates)
}

func (m *Model) handleGuideDoneMsg(msg guideDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if msg.result.Stale {
			// A newer request owns the status line.
			return m, nil
		}
		m.setError(fmt.Errorf("guide for %s failed: %w", core.DisplayCity(msg.city), msg.err))
		return m, nil
	}
	if !msg.result.Applied || msg.result.Guide == nil {
		return m, nil
	}

	guide := msg.result.Guide
	city := core.DisplayCity(guide.City)
	if guide.HasPlaces() {
		m.setStatus(fmt.Sprintf("Guide for %s: %d places", city, len(guide.Places)))
	} else {
		m.setStatus(fmt.Sprintf("Guide for %s has no numbered places; showing the full response", city))
	}
	m.viewport.GotoTop()
	m.notifyf("Guide ready", "%s", m.status)
	return m, nil
}

func (m *Model) handleChatDoneMsg(msg chatDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setError(fmt.Errorf("message not sent: %w", msg.err))
		return m, nil
	}
	if !msg.result.Applied {
		m.setStatus("Reply dropped: the guide changed while waiting")
		return m, nil
	}
	m.setStatus("")
	m.viewport.GotoBottom()
	m.notifyf("Amelie replied", "%s", msg.result.Reply)
	return m, nil
}

func (m *Model) handleFavoriteSavedMsg(msg favoriteSavedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setError(fmt.Errorf("could not save %s: %w", msg.place, msg.err))
		return m, nil
	}
	if msg.message != "" {
		m.setStatus(msg.message)
	} else {
		m.setStatus(fmt.Sprintf("Saved %s", msg.place))
	}
	return m, nil
}

func (m *Model) handleFavoritesClearedMsg(msg favoritesClearedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setError(fmt.Errorf("could not clear favorites: %w", msg.err))
		return m, nil
	}
	m.setStatus("Cleared favorites")
	return m, nil
}

// waitForSnapshot delivers the next store snapshot. A closed channel ends the
// subscription loop.
func waitForSnapshot(updates <-chan session.Snapshot) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		snapshot, ok := <-updates
		if !ok {
			return nil
		}
		return snapshotMsg{snapshot: snapshot}
	}
}

// startGuide takes the guide ticket synchronously so requests are ordered by
// when the user made them, then runs the round trip in the background.
func (m *Model) startGuide(city string) tea.Cmd {
	ticket, err := m.store.StartGuide(city)
	if err != nil {
		if errors.Is(err, session.ErrConcurrentOperation) {
			m.setStatus(fmt.Sprintf("Already loading %s", core.DisplayCity(city)))
			return nil
		}
		m.setError(err)
		return nil
	}
	m.snapshot = m.store.Snapshot()
	m.showRaw = false
	m.setStatus(fmt.Sprintf("Loading guide for %s...", core.DisplayCity(ticket.City)))
	m.refreshViewport()

	ctx := m.ctx
	controller := m.controller
	return func() tea.Msg {
		result, err := controller.FinishGuide(ctx, ticket)
		return guideDoneMsg{city: ticket.City, result: result, err: err}
	}
}

func (m *Model) startChat(content string) tea.Cmd {
	ticket, err := m.store.StartChat(content)
	if err != nil {
		m.setError(err)
		return nil
	}
	m.snapshot = m.store.Snapshot()
	m.setStatus("")
	m.refreshViewport()
	m.viewport.GotoBottom()

	ctx := m.ctx
	controller := m.controller
	return func() tea.Msg {
		result, err := controller.FinishChat(ctx, ticket)
		return chatDoneMsg{result: result, err: err}
	}
}

func (m *Model) saveFavoriteCmd(place string) tea.Cmd {
	ctx := m.ctx
	controller := m.controller
	m.setStatus(fmt.Sprintf("Saving %s...", place))
	return func() tea.Msg {
		message, err := controller.SaveFavorite(ctx, "", place)
		return favoriteSavedMsg{place: place, message: message, err: err}
	}
}

func (m *Model) clearFavoritesCmd() tea.Cmd {
	ctx := m.ctx
	controller := m.controller
	return func() tea.Msg {
		return favoritesClearedMsg{err: controller.ClearFavorites(ctx)}
	}
}

func (m *Model) refreshFavoritesCmd() tea.Cmd {
	ctx := m.ctx
	controller := m.controller
	if controller.Favorites == nil {
		return nil
	}
	return func() tea.Msg {
		return favoritesRefreshedMsg{err: controller.RefreshFavorites(ctx)}
	}
}
