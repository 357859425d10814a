package main

import (
	"fmt"
	"log"
	"time"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/vectile/pkg/vectile"
)

type discardSurface struct{}

func (discardSurface) AttachGroup(*vectile.RenderGroup) {}
func (discardSurface) DetachGroup(*vectile.RenderGroup) {}

func settle(layer *vectile.Layer) {
	for layer.Stats().PendingTiles > 0 {
		time.Sleep(10 * time.Millisecond)
	}
}

func main() {
	// Wrap the source with a 32MB LRU cache. Tiles evicted from the layer
	// and visited again are served from memory instead of disk.
	cache := vectile.NewCachedSource(&vectile.FileSource{Root: "tiles"}, 32*1024*1024)

	layer, err := vectile.New(cache, vectile.Options{
		GetFeatureID: vectile.PropertyID("id"),
	})
	if err != nil {
		log.Fatal(err)
	}
	defer layer.Close()
	layer.Attach(discardSurface{})

	grid := vectile.NewGrid(layer, vectile.DefaultGridOptions())

	east := orb.Bound{Min: orb.Point{-71.1, 42.3}, Max: orb.Point{-71.0, 42.4}}
	west := orb.Bound{Min: orb.Point{-71.2, 42.3}, Max: orb.Point{-71.1, 42.4}}

	// Pan between two viewports a few times
	for i := 0; i < 3; i++ {
		for _, view := range []orb.Bound{east, west} {
			if err := grid.SetView(view, 13); err != nil {
				log.Fatal(err)
			}
			settle(layer)
		}
	}

	stats := cache.Stats()
	fmt.Printf("Fetches answered from cache: %d\n", stats.Hits)
	fmt.Printf("Fetches from disk: %d\n", stats.Misses)
	fmt.Printf("Hit rate: %.0f%%\n", stats.HitRate()*100)
	fmt.Printf("Cached payloads: %d (%d KB)\n", stats.Tiles, stats.UsedMemory/1024)
}
