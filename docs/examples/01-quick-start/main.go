package main

import (
	"fmt"
	"log"

	"github.com/paulmach/orb/maptile"

	"github.com/beetlebugorg/vectile/pkg/vectile"
)

func main() {
	// Read tiles from disk, laid out as tiles/z/x/y.json
	source := &vectile.FileSource{Root: "tiles"}

	// Create layer
	loaded := make(chan vectile.TileEvent, 1)
	layer, err := vectile.New(source, vectile.Options{
		GetFeatureID: vectile.PropertyID("id"),
		OnTileLoad:   func(ev vectile.TileEvent) { loaded <- ev },
	})
	if err != nil {
		log.Fatal(err)
	}
	defer layer.Close()

	// Create the world tile and wait for it to materialize
	if _, err := layer.CreateTile(maptile.New(0, 0, 0)); err != nil {
		log.Fatal(err)
	}
	ev := <-loaded
	fmt.Printf("Tile loaded: %s\n", ev.Key)

	// Print layer info
	stats := layer.Stats()
	fmt.Printf("Features: %d\n", stats.Features)
	fmt.Printf("Visible: %d\n", stats.VisibleFeatures)
	fmt.Printf("Skipped: %d\n", stats.SkippedFeatures)
}
