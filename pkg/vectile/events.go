package vectile

import "github.com/paulmach/orb/maptile"

// TileEvent describes one tile lifecycle transition.
//
// Load fires when a tile's materialization commits and the tile stays
// registered; a tile evicted mid-flight never fires load. Unload fires on
// every destroy, whatever led to it. Error fires when a fetch fails.
//
// Events are delivered on the goroutine that caused the transition, with no
// layer lock held, so handlers may call back into the layer. Handlers should
// return quickly.
type TileEvent struct {
	// Tile is the tile coordinate.
	Tile maptile.Tile
	// Key is the "z:x:y" form of Tile.
	Key string
	// Err is set on error events.
	Err error
}

func tileEvent(t maptile.Tile, err error) TileEvent {
	return TileEvent{Tile: t, Key: TileKey(t), Err: err}
}
