package vectile

import (
	"context"
	"fmt"

	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
)

// TileKey formats a tile coordinate as "z:x:y", the form used in events,
// logs, and errors.
func TileKey(t maptile.Tile) string {
	return fmt.Sprintf("%d:%d:%d", t.Z, t.X, t.Y)
}

// tileState tracks a tile through its life. A tile is pending from creation
// until its materialization pipeline finishes, then loaded or failed, and
// destroyed is terminal. Eviction while pending is recorded separately on
// the tile so the pipeline can run the destroy itself, exactly once.
type tileState int

const (
	tilePending tileState = iota
	tileLoaded
	tileFailed
	tileDestroyed
)

func (s tileState) String() string {
	switch s {
	case tilePending:
		return "pending"
	case tileLoaded:
		return "loaded"
	case tileFailed:
		return "failed"
	case tileDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// tile is one registry entry. All fields are guarded by the layer lock
// except group, which has its own lock, and cancel, which is safe to call
// anywhere.
type tile struct {
	coords maptile.Tile
	group  *RenderGroup
	cancel context.CancelFunc

	state    tileState
	evicted  bool
	attached bool

	features map[string]*featureRecord
	index    *tileIndex
}

// featureRecord is the per-tile bookkeeping for one feature: the immutable
// source data, the shape the converter built, the index entry, and whether
// the feature is currently on the tile's group and in the index.
type featureRecord struct {
	source  *geojson.Feature
	shape   *Shape
	entry   *indexEntry
	visible bool
}

// debugOutline builds the tile-boundary shape added to a tile's group when
// the layer runs with Debug set.
func debugOutline(t maptile.Tile) *Shape {
	b := t.Bound()
	ring := []LatLon{
		{Lat: b.Min.Lat(), Lon: b.Min.Lon()},
		{Lat: b.Min.Lat(), Lon: b.Max.Lon()},
		{Lat: b.Max.Lat(), Lon: b.Max.Lon()},
		{Lat: b.Max.Lat(), Lon: b.Min.Lon()},
	}
	return &Shape{
		FeatureID: "debug/" + TileKey(t),
		Kind:      ShapePath,
		Paths:     [][]LatLon{ring},
		Closed:    true,
		bound:     b,
		style: Style{
			"color":       "#ff7800",
			"weight":      float64(1),
			"fillOpacity": float64(0),
		},
	}
}
