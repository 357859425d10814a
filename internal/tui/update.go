package tui

import (
	"encoding/json"
	"fmt"

	table "github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"

	"github.com/beetlebugorg/vectile/pkg/vectile"
)

// Tile lifecycle events, forwarded into the program by the layer callbacks.
type (
	tileLoadedMsg   vectile.TileEvent
	tileUnloadedMsg vectile.TileEvent
	tileErrorMsg    vectile.TileEvent
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.mapW = max(10, m.width)
		m.mapH = max(4, m.height-headerHeight-footerHeight)
		m.refreshView()

	case tileLoadedMsg:
		m.status = "loaded " + msg.Key

	case tileUnloadedMsg:
		m.status = "unloaded " + msg.Key

	case tileErrorMsg:
		m.status = fmt.Sprintf("tile %s: %v", msg.Key, msg.Err)

	case tea.KeyMsg:
		if m.showInspect {
			switch msg.String() {
			case "esc", "i", "q":
				m.showInspect = false
				m.status = "view mode"
				return m, nil
			}
			var cmd tea.Cmd
			m.tbl, cmd = m.tbl.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			m.pan(0, 1)
		case "down", "j":
			m.pan(0, -1)
		case "left", "h":
			m.pan(-1, 0)
		case "right", "l":
			m.pan(1, 0)
		case "+", "=":
			if m.zoom < maxZoom {
				m.zoom++
				m.status = fmt.Sprintf("zoom %d", m.zoom)
				m.refreshView()
			}
		case "-", "_":
			if m.zoom > minZoom {
				m.zoom--
				m.status = fmt.Sprintf("zoom %d", m.zoom)
				m.refreshView()
			}
		case "t":
			m.toggleHideRule()
		case "i":
			m.openInspect()
		case "?":
			m.helpVisible = !m.helpVisible
		}
	}
	return m, nil
}

func (m *Model) toggleHideRule() {
	if m.hideProp == "" {
		m.status = "no hide rule configured"
		return
	}
	if m.hidden {
		m.layer.ShowByProperty(m.hideProp, m.hideValue)
		m.status = fmt.Sprintf("showing %s=%v", m.hideProp, m.hideValue)
	} else {
		m.layer.HideByProperty(m.hideProp, m.hideValue)
		m.status = fmt.Sprintf("hiding %s=%v", m.hideProp, m.hideValue)
	}
	m.hidden = !m.hidden
}

// openInspect searches a small box around the view center and lists the hits
// in a table.
func (m *Model) openInspect() {
	view := m.viewBound()
	dLon := (view.Max.Lon() - view.Min.Lon()) / 16
	dLat := (view.Max.Lat() - view.Min.Lat()) / 16
	ids, err := m.layer.Search(
		orb.Point{m.center.Lon - dLon, m.center.Lat - dLat},
		orb.Point{m.center.Lon + dLon, m.center.Lat + dLat},
	)
	if err != nil {
		m.status = "inspect: " + err.Error()
		return
	}
	if len(ids) == 0 {
		m.status = "no features at center"
		return
	}

	rows := make([]table.Row, 0, len(ids))
	for _, id := range ids {
		kind := ""
		if shape, ok := m.layer.FeatureShape(id); ok {
			kind = shape.Kind.String()
		}
		props := ""
		if f, ok := m.layer.FeatureGeoJSON(id); ok && len(f.Properties) > 0 {
			if enc, err := json.Marshal(f.Properties); err == nil {
				props = truncate(string(enc), 58)
			}
		}
		rows = append(rows, table.Row{id, kind, props})
	}
	m.tbl.SetRows(nil)
	m.tbl.SetColumns([]table.Column{
		{Title: "feature", Width: 24},
		{Title: "kind", Width: 7},
		{Title: "properties", Width: 60},
	})
	m.tbl.SetRows(rows)
	m.showInspect = true
	m.status = fmt.Sprintf("%d features at center", len(ids))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
