package chat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/adamavenir/amelie/internal/session"
	"github.com/adamavenir/amelie/internal/types"
	tea "github.com/charmbracelet/bubbletea"
)

const helpText = "/city <name> new guide · /fave <n|name> save · /faves reload · /clear clear favorites · " +
	"/raw toggle full text · /copy [n] copy · /quit"

func (m *Model) handleSlashCommand(input string) (bool, tea.Cmd) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return false, nil
	}

	cmd, err := m.runSlashCommand(trimmed)
	if err != nil {
		m.setError(err)
		m.input.SetValue(input)
		m.input.CursorEnd()
		return true, nil
	}
	return true, cmd
}

func (m *Model) runSlashCommand(input string) (tea.Cmd, error) {
	name, args := splitCommand(input)
	switch name {
	case "/quit", "/exit", "/q":
		m.quitting = true
		return tea.Quit, nil
	case "/help":
		m.setStatus(helpText)
		return nil, nil
	case "/city", "/guide":
		if args == "" {
			return nil, fmt.Errorf("usage: /city <name>")
		}
		return m.startGuide(args), nil
	case "/fave":
		place, err := resolvePlaceArg(m.snapshot.Guide, args)
		if err != nil {
			return nil, err
		}
		return m.saveFavoriteCmd(place), nil
	case "/faves":
		m.setStatus("Reloading favorites...")
		return m.refreshFavoritesCmd(), nil
	case "/clear":
		m.setStatus("Clearing favorites...")
		return m.clearFavoritesCmd(), nil
	case "/raw":
		if m.snapshot.Guide == nil {
			return nil, session.ErrNoGuide
		}
		m.showRaw = !m.showRaw
		m.refreshViewport()
		m.viewport.GotoTop()
		return nil, nil
	case "/copy":
		return nil, m.runCopy(args)
	}
	return nil, fmt.Errorf("unknown command %s (try /help)", name)
}

func (m *Model) runCopy(args string) error {
	guide := m.snapshot.Guide
	if guide == nil {
		return session.ErrNoGuide
	}
	if args == "" {
		if err := m.copyText(guide.RawText); err != nil {
			return err
		}
		m.setStatus("Copied guide to clipboard.")
		return nil
	}
	index, err := parsePlaceIndex(args, len(guide.Places))
	if err != nil {
		return err
	}
	m.copyPlace(index)
	return nil
}

func (m *Model) copyPlace(index int) {
	guide := m.snapshot.Guide
	if guide == nil || index < 0 || index >= len(guide.Places) {
		return
	}
	if err := m.copyText(formatPlaceForCopy(guide.Places[index])); err != nil {
		m.setError(err)
		return
	}
	m.setStatus(fmt.Sprintf("Copied %s to clipboard.", guide.Places[index].Name))
}

func splitCommand(input string) (string, string) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return "", ""
	}
	name := strings.ToLower(fields[0])
	args := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), fields[0]))
	return name, args
}

// resolvePlaceArg accepts a 1-based place number from the loaded guide or a
// free-form place name.
func resolvePlaceArg(guide *types.Guide, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", errors.New("usage: /fave <n|name>")
	}
	if guide == nil {
		return "", session.ErrNoGuide
	}
	if _, err := strconv.Atoi(arg); err == nil {
		index, err := parsePlaceIndex(arg, len(guide.Places))
		if err != nil {
			return "", err
		}
		return guide.Places[index].Name, nil
	}
	return arg, nil
}

func parsePlaceIndex(arg string, count int) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(arg), "#"))
	if err != nil {
		return 0, fmt.Errorf("invalid place number %q", arg)
	}
	if count == 0 {
		return 0, errors.New("this guide has no numbered places")
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("place number must be between 1 and %d", count)
	}
	return n - 1, nil
}

func formatPlaceForCopy(place types.Place) string {
	var b strings.Builder
	b.WriteString(place.Name)
	if place.Location != "" {
		b.WriteString(" - ")
		b.WriteString(place.Location)
	}
	if place.Description != "" {
		b.WriteString("\n")
		b.WriteString(place.Description)
	}
	if place.Tip != "" {
		b.WriteString("\nPro tip: ")
		b.WriteString(place.Tip)
	}
	return b.String()
}
