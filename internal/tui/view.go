package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := titleStyle.Render(" vectile ~ terminal tile viewer ")
	header = lipgloss.NewStyle().Width(m.width).Render(header)

	var body string
	if m.showInspect {
		box := boxStyle.Render(m.tbl.View())
		body = lipgloss.Place(m.mapW, m.mapH, lipgloss.Center, lipgloss.Center, box)
	} else {
		body = lipgloss.NewStyle().Width(m.mapW).Height(m.mapH).Render(m.renderMap(m.mapW, m.mapH))
	}

	stats := m.layer.Stats()
	status := dimStyle.Render(fmt.Sprintf(
		" %s  ~  lat %.4f lon %.4f  z%d  tiles %d/%d  features %d ",
		m.status, m.center.Lat, m.center.Lon, m.zoom,
		stats.LoadedTiles, stats.LoadedTiles+stats.PendingTiles, stats.VisibleFeatures,
	))
	footer := lipgloss.JoinVertical(lipgloss.Left, status, m.renderHelp())

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"arrows/hjkl pan",
		"+/- zoom",
		"i inspect",
		"t toggle rule",
		"? help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
