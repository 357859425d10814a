package main

import (
	"fmt"
	"log"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"github.com/beetlebugorg/vectile/pkg/vectile"
)

type discardSurface struct{}

func (discardSurface) AttachGroup(*vectile.RenderGroup) {}
func (discardSurface) DetachGroup(*vectile.RenderGroup) {}

func countVisible(layer *vectile.Layer) int {
	ids, err := layer.Search(orb.Point{-180, -85}, orb.Point{180, 85})
	if err != nil {
		log.Fatal(err)
	}
	return len(ids)
}

func main() {
	source := &vectile.FileSource{Root: "tiles"}

	loaded := make(chan vectile.TileEvent, 1)
	layer, err := vectile.New(source, vectile.Options{
		GetFeatureID: vectile.PropertyID("id"),
		OnTileLoad:   func(ev vectile.TileEvent) { loaded <- ev },
	})
	if err != nil {
		log.Fatal(err)
	}
	defer layer.Close()
	layer.Attach(discardSurface{})

	if _, err := layer.CreateTile(maptile.New(0, 0, 0)); err != nil {
		log.Fatal(err)
	}
	<-loaded
	fmt.Printf("Features before filtering: %d\n", countVisible(layer))

	// Hide every feature whose kind property is "construction". The rule
	// also applies to tiles loaded later.
	layer.HideByProperty("kind", "construction")
	fmt.Printf("Without construction: %d\n", countVisible(layer))

	// Hide one feature by id, regardless of its properties
	layer.HideFeature("road-1742")
	fmt.Printf("Without road-1742: %d\n", countVisible(layer))

	// Showing reverses the rules
	layer.ShowByProperty("kind", "construction")
	layer.ShowFeature("road-1742")
	fmt.Printf("Restored: %d\n", countVisible(layer))
}
