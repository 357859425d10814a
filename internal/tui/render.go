package tui

import (
	"math"
	"strings"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/vectile/pkg/vectile"
)

// microXY maps a coordinate into the braille pixel grid of a view window.
func microXY(view orb.Bound, ll vectile.LatLon, wMic, hMic int) (int, int) {
	nx := (ll.Lon - view.Min.Lon()) / (view.Max.Lon() - view.Min.Lon())
	ny := (view.Max.Lat() - ll.Lat) / (view.Max.Lat() - view.Min.Lat())
	return int(math.Round(nx * float64(wMic-1))), int(math.Round(ny * float64(hMic-1)))
}

// renderMap paints every attached shape into a w x h cell braille canvas.
func (m Model) renderMap(w, h int) string {
	view := m.viewBound()
	bc := newBrailleCanvas(w, h)
	wMic, hMic := w*2, h*4

	for _, s := range m.store.shapes() {
		switch s.Kind {
		case vectile.ShapeMarker:
			for _, ll := range s.Centers {
				px, py := microXY(view, ll, wMic, hMic)
				bc.marker(px, py)
			}
		case vectile.ShapePath:
			rings := make([][][2]int, 0, len(s.Paths))
			for _, run := range s.Paths {
				pts := make([][2]int, len(run))
				for i, ll := range run {
					px, py := microXY(view, ll, wMic, hMic)
					pts[i] = [2]int{px, py}
				}
				rings = append(rings, pts)
			}
			// Braille cells have no opacity, so only mostly-opaque fills
			// are painted solid; everything else shows as outlines.
			if s.Closed && s.Style().FillOpacity() > 0.5 {
				bc.fill(rings)
			}
			for _, pts := range rings {
				for i := 0; i+1 < len(pts); i++ {
					bc.line(pts[i][0], pts[i][1], pts[i+1][0], pts[i+1][1])
				}
				if s.Closed && len(pts) > 1 {
					last := pts[len(pts)-1]
					bc.line(last[0], last[1], pts[0][0], pts[0][1])
				}
			}
		}
	}
	return strings.Join(bc.lines(), "\n")
}
