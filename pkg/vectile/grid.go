package vectile

import (
	"fmt"
	"sort"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// maxMercatorLat is the latitude limit of the web mercator tile grid.
const maxMercatorLat = 85.05112878

// Grid drives a layer from viewport changes, playing the role the hosting
// map plays in a browser: it keeps the set of registered tiles equal to the
// tiles covering the current view.
type Grid struct {
	layer *Layer
	pad   int

	mu      sync.Mutex
	active  map[maptile.Tile]bool
	zoom    maptile.Zoom
	hasView bool
}

// NewGrid creates a grid driving layer. The zero GridOptions is valid.
func NewGrid(layer *Layer, opts GridOptions) *Grid {
	if opts.Pad < 0 {
		opts.Pad = 0
	}
	return &Grid{
		layer:  layer,
		pad:    opts.Pad,
		active: make(map[maptile.Tile]bool),
	}
}

// SetView reconciles the layer with the tiles covering view at zoom: tiles
// scrolled out are evicted, tiles scrolled in are created. On a zoom change
// the layer first cancels pending tiles of other zooms, so their
// materialization stops at the next feature boundary while eviction
// schedules their destroy. The first create error is returned; the
// reconcile still runs to completion.
func (g *Grid) SetView(view orb.Bound, zoom maptile.Zoom) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.hasView || zoom != g.zoom {
		g.layer.SetZoom(zoom)
		g.zoom = zoom
		g.hasView = true
	}

	wanted := coverBound(view, zoom, g.pad)
	for t := range g.active {
		if !wanted[t] {
			g.layer.EvictTile(t)
			delete(g.active, t)
		}
	}
	var firstErr error
	for t := range wanted {
		if g.active[t] {
			continue
		}
		if _, err := g.layer.CreateTile(t); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("create tile %s: %w", TileKey(t), err)
			}
			continue
		}
		g.active[t] = true
	}
	return firstErr
}

// Zoom returns the zoom of the last SetView.
func (g *Grid) Zoom() maptile.Zoom {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.zoom
}

// Tiles returns the tiles the grid currently keeps alive, sorted by key.
func (g *Grid) Tiles() []maptile.Tile {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]maptile.Tile, 0, len(g.active))
	for t := range g.active {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return TileKey(out[i]) < TileKey(out[j]) })
	return out
}

// coverBound returns the tiles intersecting view at zoom plus pad rings,
// clamped to the tile grid. Tiles do not wrap across the antimeridian.
func coverBound(view orb.Bound, zoom maptile.Zoom, pad int) map[maptile.Tile]bool {
	topLeft := maptile.At(clampPoint(orb.Point{view.Min.Lon(), view.Max.Lat()}), zoom)
	bottomRight := maptile.At(clampPoint(orb.Point{view.Max.Lon(), view.Min.Lat()}), zoom)

	maxIndex := int64(1)<<uint(zoom) - 1
	x0 := clampIndex(int64(topLeft.X)-int64(pad), maxIndex)
	y0 := clampIndex(int64(topLeft.Y)-int64(pad), maxIndex)
	x1 := clampIndex(int64(bottomRight.X)+int64(pad), maxIndex)
	y1 := clampIndex(int64(bottomRight.Y)+int64(pad), maxIndex)

	set := make(map[maptile.Tile]bool, (x1-x0+1)*(y1-y0+1))
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			set[maptile.New(uint32(x), uint32(y), zoom)] = true
		}
	}
	return set
}

func clampIndex(v, max int64) int64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

func clampPoint(p orb.Point) orb.Point {
	if p[0] < -180 {
		p[0] = -180
	}
	if p[0] > 180 {
		p[0] = 180
	}
	if p[1] < -maxMercatorLat {
		p[1] = -maxMercatorLat
	}
	if p[1] > maxMercatorLat {
		p[1] = maxMercatorLat
	}
	return p
}
