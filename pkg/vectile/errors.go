package vectile

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb/maptile"
)

// ErrNotAttached indicates an operation that requires a surface was called
// before Attach.
var ErrNotAttached = errors.New("vectile: layer not attached to a surface")

// ErrClosed indicates the layer has been closed.
var ErrClosed = errors.New("vectile: layer closed")

// ErrTileExists indicates a tile was created twice for the same coordinate.
type ErrTileExists struct {
	Tile maptile.Tile
}

func (e *ErrTileExists) Error() string {
	return fmt.Sprintf("tile %s already registered", TileKey(e.Tile))
}

// ErrUnsupportedGeometry indicates a feature geometry the converter cannot
// turn into a renderable shape.
type ErrUnsupportedGeometry struct {
	Type string
}

func (e *ErrUnsupportedGeometry) Error() string {
	if e.Type == "" {
		return "unsupported geometry: no geometry"
	}
	return fmt.Sprintf("unsupported geometry: %s", e.Type)
}
