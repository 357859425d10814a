// Package tui is an interactive terminal map over a vectile layer. Features
// are drawn on a braille canvas, the viewport pans and zooms with the
// keyboard, and tile loads repaint the screen as they land.
package tui

import (
	"math"

	table "github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"github.com/beetlebugorg/vectile/pkg/vectile"
)

const (
	headerHeight = 1
	footerHeight = 2

	minZoom = maptile.Zoom(0)
	maxZoom = maptile.Zoom(19)

	// maxPanLat keeps the view center inside the square-mercator tile range.
	maxPanLat = 85.05112878
)

type Model struct {
	layer *vectile.Layer
	grid  *vectile.Grid
	store *groupStore

	width  int
	height int
	mapW   int
	mapH   int

	center vectile.LatLon
	zoom   maptile.Zoom

	hideProp  string
	hideValue any
	hidden    bool

	helpVisible bool
	status      string

	showInspect bool
	tbl         table.Model
}

func newModel(layer *vectile.Layer, grid *vectile.Grid, store *groupStore, opts Options) Model {
	zoom := opts.Zoom
	if zoom > maxZoom {
		zoom = maxZoom
	}
	m := Model{
		layer:       layer,
		grid:        grid,
		store:       store,
		center:      opts.Center,
		zoom:        zoom,
		hideProp:    opts.HideProperty,
		hideValue:   opts.HideValue,
		helpVisible: true,
		status:      "vectile ready",
	}
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(10)
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// viewBound derives the geographic window from the center, the zoom, and
// the map's pixel aspect. At zoom z the window is one tile-width of
// longitude, so each zoom step halves the ground span.
func (m Model) viewBound() orb.Bound {
	wMic := float64(max(2*m.mapW, 2))
	hMic := float64(max(4*m.mapH, 4))
	lonSpan := 360 / math.Exp2(float64(m.zoom))
	latSpan := lonSpan * hMic / wMic
	return orb.Bound{
		Min: orb.Point{m.center.Lon - lonSpan/2, m.center.Lat - latSpan/2},
		Max: orb.Point{m.center.Lon + lonSpan/2, m.center.Lat + latSpan/2},
	}
}

// refreshView pushes the current window to the grid, which creates and
// evicts tiles to match.
func (m *Model) refreshView() {
	if m.mapW <= 0 || m.mapH <= 0 {
		return
	}
	if err := m.grid.SetView(m.viewBound(), m.zoom); err != nil {
		m.status = "view: " + err.Error()
	}
}

func (m *Model) pan(stepsX, stepsY int) {
	view := m.viewBound()
	dLon := (view.Max.Lon() - view.Min.Lon()) / 8
	dLat := (view.Max.Lat() - view.Min.Lat()) / 8
	m.center.Lon += float64(stepsX) * dLon
	m.center.Lat += float64(stepsY) * dLat
	if m.center.Lon > 180 {
		m.center.Lon = 180
	} else if m.center.Lon < -180 {
		m.center.Lon = -180
	}
	if m.center.Lat > maxPanLat {
		m.center.Lat = maxPanLat
	} else if m.center.Lat < -maxPanLat {
		m.center.Lat = -maxPanLat
	}
	m.refreshView()
}
