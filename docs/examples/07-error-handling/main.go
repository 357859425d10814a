package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"github.com/beetlebugorg/vectile/pkg/vectile"
)

func main() {
	// Point the HTTP source at a server that does not exist, so every
	// fetch fails and reports through OnTileError.
	source := vectile.NewHTTPSource("http://localhost:1/{z}/{x}/{y}.json", nil)

	failures := make(chan vectile.TileEvent, 4)
	layer, err := vectile.New(source, vectile.Options{
		GetFeatureID: vectile.PropertyID("id"),
		OnTileError:  func(ev vectile.TileEvent) { failures <- ev },
	})
	if err != nil {
		log.Fatal(err)
	}
	defer layer.Close()

	coords := maptile.New(0, 0, 0)
	if _, err := layer.CreateTile(coords); err != nil {
		log.Fatal(err)
	}

	ev := <-failures
	fmt.Printf("Tile %s failed: %v\n", ev.Key, ev.Err)

	// Creating the same coordinate twice is reported synchronously
	_, err = layer.CreateTile(coords)
	var exists *vectile.ErrTileExists
	if errors.As(err, &exists) {
		fmt.Printf("Duplicate create rejected: %v\n", err)
	}

	// Searching without a surface attached is an error
	if _, err := layer.Search(orb.Point{-1, -1}, orb.Point{1, 1}); errors.Is(err, vectile.ErrNotAttached) {
		fmt.Printf("Search before attach rejected: %v\n", err)
	}

	stats := layer.Stats()
	fmt.Printf("Failed tiles: %d, fetch failures: %d\n", stats.FailedTiles, stats.FetchFailures)
}
