package chat

import (
	"fmt"
	"strings"

	"github.com/adamavenir/amelie/internal/core"
	"github.com/adamavenir/amelie/internal/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const (
	headerHeight = 1
	inputHeight  = 1
	statusHeight = 1
	marginHeight = 2
)

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	lines := []string{
		m.renderHeader(),
		m.viewport.View(),
		"",
		m.input.View(),
		m.renderStatusLine(),
	}
	output := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return m.zoneManager.Scan(output)
}

func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.viewport.Width = m.width
	m.viewport.Height = m.height - headerHeight - inputHeight - statusHeight - marginHeight
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	m.input.Width = m.width - lipgloss.Width(m.input.Prompt) - 1
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderContent())
}

func (m *Model) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("amelie")
	snap := m.snapshot
	switch {
	case snap.Flags.GuideLoading:
		return fmt.Sprintf("%s %s loading %s", title, m.spinner.View(), core.DisplayCity(snap.RequestedCity))
	case snap.Guide != nil:
		return fmt.Sprintf("%s · %s", title, core.DisplayCity(snap.Guide.City))
	default:
		return title
	}
}

func (m *Model) renderStatusLine() string {
	if m.snapshot.Flags.ChatLoading {
		return lipgloss.NewStyle().Foreground(statusColor).Render(m.spinner.View() + " waiting for a reply")
	}
	if m.status == "" {
		return lipgloss.NewStyle().Foreground(statusColor).Render("enter a city to start · /help for commands · esc to quit")
	}
	color := statusColor
	if m.statusError {
		color = errorColor
	}
	return lipgloss.NewStyle().Foreground(color).Render(m.status)
}

func (m *Model) renderContent() string {
	snap := m.snapshot
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}

	var sections []string
	if snap.Guide != nil {
		sections = append(sections, m.renderGuide(*snap.Guide, width))
	} else if !snap.Flags.GuideLoading {
		sections = append(sections, lipgloss.NewStyle().Foreground(statusColor).Render("No guide yet. Type a city name and press enter."))
	}
	if len(snap.Transcript) > 0 {
		sections = append(sections, m.renderTranscript(snap.Transcript, width))
	}
	sections = append(sections, m.renderFavorites(snap.Favorites, snap.FavoritesLoaded))
	return strings.Join(sections, "\n\n")
}

func (m *Model) renderGuide(guide types.Guide, width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(core.GuideHeader(guide.City, guide.Timestamp)))
	if !guide.GeneratedAt.IsZero() {
		b.WriteString(lipgloss.NewStyle().Foreground(statusColor).Render(" · " + humanize.Time(guide.GeneratedAt)))
	}
	b.WriteString("\n\n")

	if m.showRaw || !guide.HasPlaces() {
		if !m.showRaw {
			b.WriteString(lipgloss.NewStyle().Foreground(statusColor).Render("No numbered places found; showing the full response."))
			b.WriteString("\n")
		}
		b.WriteString(strings.TrimRight(core.RenderMarkdown(guide.RawText, width, true), "\n"))
		return b.String()
	}

	favorite := favoriteSet(m.snapshot.Favorites, guide.City)
	dim := lipgloss.NewStyle().Foreground(statusColor)
	wrap := lipgloss.NewStyle().Width(width - 3).PaddingLeft(3)
	for i, place := range guide.Places {
		star := "☆"
		if favorite[strings.ToLower(place.Name)] {
			star = "★"
		}
		b.WriteString(m.zoneManager.Mark(faveZoneID(i), lipgloss.NewStyle().Foreground(faveColor).Render(star)))
		b.WriteString(" ")
		b.WriteString(dim.Render(fmt.Sprintf("%d.", i+1)))
		b.WriteString(" ")
		b.WriteString(m.zoneManager.Mark(placeZoneID(i), lipgloss.NewStyle().Bold(true).Render(place.Name)))
		if place.Location != "" {
			b.WriteString(dim.Render(" · " + place.Location))
		}
		b.WriteString("\n")
		if place.Description != "" {
			b.WriteString(wrap.Render(place.Description))
			b.WriteString("\n")
		}
		if place.Tip != "" {
			tip := lipgloss.NewStyle().Foreground(accentColor).Render("Pro tip: ") + place.Tip
			b.WriteString(wrap.Render(tip))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderTranscript(transcript []types.ChatMessage, width int) string {
	userStyle := lipgloss.NewStyle().Bold(true).Foreground(userColor)
	assistantStyle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	body := lipgloss.NewStyle().Width(width)

	parts := make([]string, 0, len(transcript))
	for _, msg := range transcript {
		if msg.Role == types.RoleUser {
			parts = append(parts, userStyle.Render("you")+"\n"+body.Render(msg.Content))
			continue
		}
		rendered := strings.TrimRight(core.RenderMarkdown(msg.Content, width, true), "\n")
		parts = append(parts, assistantStyle.Render("amelie")+"\n"+rendered)
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderFavorites(favorites []types.Favorite, loaded bool) string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(faveColor).Render("Favorites")
	if !loaded {
		return heading + "\n" + lipgloss.NewStyle().Foreground(statusColor).Render("loading...")
	}
	if len(favorites) == 0 {
		return heading + "\n" + lipgloss.NewStyle().Foreground(statusColor).Render("none yet · click ☆ or /fave <n>")
	}
	lines := []string{heading}
	for _, fav := range favorites {
		line := "★ " + fav.Place
		if fav.City != "" {
			line += lipgloss.NewStyle().Foreground(statusColor).Render(" (" + core.DisplayCity(fav.City) + ")")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func favoriteSet(favorites []types.Favorite, city string) map[string]bool {
	set := make(map[string]bool)
	for _, fav := range favorites {
		if strings.EqualFold(strings.TrimSpace(fav.City), strings.TrimSpace(city)) {
			set[strings.ToLower(fav.Place)] = true
		}
	}
	return set
}
