package main

import (
	"fmt"
	"log"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/vectile/pkg/vectile"
)

// discardSurface accepts render groups without drawing them. Searching
// requires an attached surface.
type discardSurface struct{}

func (discardSurface) AttachGroup(*vectile.RenderGroup) {}
func (discardSurface) DetachGroup(*vectile.RenderGroup) {}

func main() {
	source := &vectile.FileSource{Root: "tiles"}

	loaded := make(chan vectile.TileEvent, 64)
	layer, err := vectile.New(source, vectile.Options{
		GetFeatureID: vectile.PropertyID("id"),
		OnTileLoad:   func(ev vectile.TileEvent) { loaded <- ev },
	})
	if err != nil {
		log.Fatal(err)
	}
	defer layer.Close()
	layer.Attach(discardSurface{})

	// Cover the Boston Harbor area at zoom 14
	viewport := orb.Bound{
		Min: orb.Point{-71.1, 42.3},
		Max: orb.Point{-71.0, 42.4},
	}
	grid := vectile.NewGrid(layer, vectile.DefaultGridOptions())
	if err := grid.SetView(viewport, 14); err != nil {
		log.Fatal(err)
	}
	for i := 0; i < len(grid.Tiles()); i++ {
		<-loaded
	}

	// Query the per-tile R-tree indexes for features in a smaller box
	ids, err := layer.Search(orb.Point{-71.06, 42.34}, orb.Point{-71.04, 42.36})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Visible features: %d\n", len(ids))
	for _, id := range ids {
		shape, ok := layer.FeatureShape(id)
		if !ok {
			continue
		}
		fmt.Printf("  %s: %s\n", id, shape.Kind)
	}
}
