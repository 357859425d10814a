package vectile

import (
	"log/slog"
	"strconv"

	"github.com/paulmach/orb/geojson"
)

// Options configures a Layer.
type Options struct {
	// GetFeatureID extracts the unique id of a feature. Required: ids tie
	// together the registry records, the spatial index, search results, and
	// every per-feature operation. Returning "" skips the feature.
	GetFeatureID func(f *geojson.Feature) string

	// Style seeds the base style table: property name -> property value ->
	// style applied to features carrying that value. Matching works on JSON
	// scalar values only.
	Style map[string]map[any]Style

	// FetchConcurrency caps the number of tile fetches running at once.
	// Zero means no cap. Fetches beyond the cap wait for a slot; a waiting
	// tile that is evicted stops waiting and settles empty.
	FetchConcurrency int

	// Debug adds a boundary outline shape to every tile's render group.
	Debug bool

	// Logger receives skip, failure, and lifecycle diagnostics. Nil means
	// slog.Default().
	Logger *slog.Logger

	// OnTileLoad, OnTileUnload, and OnTileError observe tile lifecycle
	// transitions. See TileEvent for delivery rules.
	OnTileLoad   func(TileEvent)
	OnTileUnload func(TileEvent)
	OnTileError  func(TileEvent)
}

// PropertyID returns a GetFeatureID func that reads the named property.
// String values pass through; numbers are formatted. Features without the
// property are skipped.
//
// Example:
//
//	layer, err := vectile.New(source, vectile.Options{
//	    GetFeatureID: vectile.PropertyID("id"),
//	})
func PropertyID(name string) func(f *geojson.Feature) string {
	return func(f *geojson.Feature) string {
		switch v := f.Properties[name].(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		}
		return ""
	}
}

// GridOptions configures a Grid.
type GridOptions struct {
	// Pad adds rings of tiles around the viewport cover, so panning has
	// content ready before it scrolls into view.
	Pad int
}

// DefaultGridOptions returns the options used when the zero value is passed
// to NewGrid.
func DefaultGridOptions() GridOptions {
	return GridOptions{Pad: 0}
}
