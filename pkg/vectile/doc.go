// Package vectile renders GeoJSON vector tiles as styled, searchable shape
// layers.
//
// A Layer owns a registry of tiles. Tiles are created and evicted as a
// viewport moves, fetch their features asynchronously, and expose their
// contents through render groups a surface can paint. Every tile keeps a
// spatial index over its visible features, so box searches stay fast while
// tiles come and go. Styles and visibility are layered: a base table set at
// construction, property-value rules applied at runtime, and per-feature
// overrides on top.
//
// # Basic Usage
//
//	source := vectile.NewHTTPSource("https://tiles.example.com/{z}/{x}/{y}.json", nil)
//	layer, err := vectile.New(source, vectile.Options{
//	    GetFeatureID: vectile.PropertyID("id"),
//	    Style: map[string]map[any]vectile.Style{
//	        "type": {
//	            "park":  {"color": "#2a9d2a", "fillOpacity": 0.4},
//	            "water": {"color": "#3388ff"},
//	        },
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer layer.Close()
//
//	layer.Attach(surface) // anything implementing vectile.Surface
//
// # Driving from a Viewport
//
// A Grid keeps the registered tiles equal to the tiles covering the view:
//
//	grid := vectile.NewGrid(layer, vectile.DefaultGridOptions())
//	grid.SetView(viewBound, 14) // create/evict happens here
//
// Tiles load in the background; Options.OnTileLoad reports each commit.
// Embedders without a grid call CreateTile and EvictTile directly.
//
// # Styling and Visibility
//
// Runtime rules apply to features already on screen and to every tile
// loaded later:
//
//	layer.HideByProperty("type", "water")
//	layer.RestyleByProperty("type", "park", vectile.Style{"fillOpacity": 0.8})
//	layer.SetFeatureStyle("park-17", vectile.Style{"color": "#ff0000"})
//	layer.ResetFeatureStyle("park-17") // back to the property rules
//
// Hidden features keep their records but leave the render group and the
// spatial index; showing them again restores both.
//
// # Searching
//
// Search returns the ids of visible features intersecting a box in GeoJSON
// [lon, lat] axis order, deduplicated across tiles:
//
//	ids, err := layer.Search(orb.Point{-71.5, 42.0}, orb.Point{-71.0, 42.5})
//
// # Sources
//
// Tiles arrive through a TileSource. HTTPSource fetches a {z}/{x}/{y} URL
// template, FileSource reads a directory pyramid, and CachedSource wraps
// any source with an LRU payload cache. Custom sources implement the
// one-method interface.
//
// # Coordinate Order
//
// GeoJSON positions are [lon, lat]. The converter swaps them once into
// LatLon, and every shape coordinate past that point is latitude first.
// Layer.Search and Grid.SetView take GeoJSON-ordered points and bounds.
package vectile
