package tui

import (
	"context"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"github.com/beetlebugorg/vectile/pkg/vectile"
)

type emptySource struct{}

func (emptySource) Fetch(ctx context.Context, t maptile.Tile) ([]vectile.TileLayer, error) {
	return nil, nil
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	layer, err := vectile.New(emptySource{}, vectile.Options{
		GetFeatureID: vectile.PropertyID("id"),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { layer.Close() })

	store := newGroupStore()
	layer.Attach(store)
	grid := vectile.NewGrid(layer, vectile.DefaultGridOptions())
	return newModel(layer, grid, store, Options{Zoom: 3, HideProperty: "kind", HideValue: "park"})
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewBoundSpans(t *testing.T) {
	m := Model{mapW: 80, mapH: 24, zoom: 2}
	view := m.viewBound()

	lonSpan := view.Max.Lon() - view.Min.Lon()
	latSpan := view.Max.Lat() - view.Min.Lat()
	if math.Abs(lonSpan-90) > 1e-9 {
		t.Errorf("lon span = %v, want 90", lonSpan)
	}
	// 96 pixel rows against 160 pixel columns.
	if math.Abs(latSpan-54) > 1e-9 {
		t.Errorf("lat span = %v, want 54", latSpan)
	}
}

func TestMicroXY(t *testing.T) {
	view := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}
	tests := []struct {
		name   string
		ll     vectile.LatLon
		px, py int
	}{
		{"northwest", vectile.LatLon{Lat: 10, Lon: 0}, 0, 0},
		{"southeast", vectile.LatLon{Lat: 0, Lon: 10}, 20, 40},
		{"center", vectile.LatLon{Lat: 5, Lon: 5}, 10, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			px, py := microXY(view, tt.ll, 21, 41)
			if px != tt.px || py != tt.py {
				t.Errorf("microXY(%v) = (%d,%d), want (%d,%d)", tt.ll, px, py, tt.px, tt.py)
			}
		})
	}
}

func TestWindowSizeCreatesTiles(t *testing.T) {
	m := newTestModel(t)
	nm, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = nm.(Model)

	if m.mapW != 80 || m.mapH != 24-headerHeight-footerHeight {
		t.Errorf("map size = %dx%d, want 80x%d", m.mapW, m.mapH, 24-headerHeight-footerHeight)
	}
	if tiles := m.grid.Tiles(); len(tiles) == 0 {
		t.Error("Expected the window size to create tiles")
	}
}

func TestZoomKeysClamp(t *testing.T) {
	m := newTestModel(t)
	nm, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = nm.(Model)

	nm, _ = m.Update(keyMsg("+"))
	m = nm.(Model)
	if m.zoom != 4 {
		t.Errorf("zoom after + = %d, want 4", m.zoom)
	}
	nm, _ = m.Update(keyMsg("-"))
	m = nm.(Model)
	if m.zoom != 3 {
		t.Errorf("zoom after - = %d, want 3", m.zoom)
	}

	m.zoom = maxZoom
	nm, _ = m.Update(keyMsg("+"))
	m = nm.(Model)
	if m.zoom != maxZoom {
		t.Errorf("zoom exceeded max: %d", m.zoom)
	}
	m.zoom = minZoom
	nm, _ = m.Update(keyMsg("-"))
	m = nm.(Model)
	if m.zoom != minZoom {
		t.Errorf("zoom got below min: %d", m.zoom)
	}
}

func TestPanMovesCenter(t *testing.T) {
	m := newTestModel(t)
	nm, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = nm.(Model)

	nm, _ = m.Update(keyMsg("up"))
	moved := nm.(Model)
	if moved.center.Lat <= m.center.Lat {
		t.Errorf("center lat after up = %v, want > %v", moved.center.Lat, m.center.Lat)
	}
	nm, _ = moved.Update(keyMsg("right"))
	moved = nm.(Model)
	if moved.center.Lon <= m.center.Lon {
		t.Errorf("center lon after right = %v, want > %v", moved.center.Lon, m.center.Lon)
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("Expected q to return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected q to quit")
	}
}

func TestToggleHideRule(t *testing.T) {
	m := newTestModel(t)
	nm, _ := m.Update(keyMsg("t"))
	m = nm.(Model)
	if !m.hidden {
		t.Error("Expected first toggle to hide")
	}
	if !strings.Contains(m.status, "hiding") {
		t.Errorf("status = %q, want hiding", m.status)
	}
	nm, _ = m.Update(keyMsg("t"))
	m = nm.(Model)
	if m.hidden {
		t.Error("Expected second toggle to show")
	}
}

func TestToggleHideRuleUnconfigured(t *testing.T) {
	m := newTestModel(t)
	m.hideProp = ""
	nm, _ := m.Update(keyMsg("t"))
	m = nm.(Model)
	if m.hidden {
		t.Error("Expected toggle without a rule to do nothing")
	}
	if m.status != "no hide rule configured" {
		t.Errorf("status = %q", m.status)
	}
}

func TestRenderMapDrawsShapes(t *testing.T) {
	store := newGroupStore()
	group := vectile.NewRenderGroup()
	shape := &vectile.Shape{
		FeatureID: "m1",
		Kind:      vectile.ShapeMarker,
		Centers:   []vectile.LatLon{{Lat: 0, Lon: 0}},
	}
	group.Add(shape)
	store.AttachGroup(group)

	m := Model{store: store, zoom: 0, mapW: 20, mapH: 10}
	out := m.renderMap(20, 10)
	if !strings.ContainsFunc(out, func(r rune) bool { return r > 0x2800 && r <= 0x28ff }) {
		t.Error("Expected the marker to set braille dots")
	}
}

func TestRenderMapFillPolicy(t *testing.T) {
	ring := []vectile.LatLon{
		{Lat: 60, Lon: -90}, {Lat: 60, Lon: 90}, {Lat: -60, Lon: 90}, {Lat: -60, Lon: -90}, {Lat: 60, Lon: -90},
	}
	newStore := func(fillOpacity float64) *groupStore {
		store := newGroupStore()
		group := vectile.NewRenderGroup()
		shape := &vectile.Shape{
			FeatureID: "poly",
			Kind:      vectile.ShapePath,
			Paths:     [][]vectile.LatLon{ring},
			Closed:    true,
		}
		shape.SetStyle(vectile.Style{"fillOpacity": fillOpacity})
		group.Add(shape)
		store.AttachGroup(group)
		return store
	}

	interior := func(out string) bool {
		// Center cell of the canvas.
		rows := strings.Split(out, "\n")
		r := []rune(rows[5])
		return r[10] != ' '
	}

	opaque := Model{store: newStore(1.0), zoom: 0, mapW: 20, mapH: 10}
	if !interior(opaque.renderMap(20, 10)) {
		t.Error("Expected opaque fill to paint the interior")
	}
	faint := Model{store: newStore(0.2), zoom: 0, mapW: 20, mapH: 10}
	if interior(faint.renderMap(20, 10)) {
		t.Error("Expected faint fill to leave the interior empty")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abcd..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
}
