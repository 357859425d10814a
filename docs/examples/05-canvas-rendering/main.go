package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/vectile/pkg/canvas"
	"github.com/beetlebugorg/vectile/pkg/vectile"
)

func main() {
	source := &vectile.FileSource{Root: "tiles"}

	layer, err := vectile.New(source, vectile.Options{
		GetFeatureID: vectile.PropertyID("id"),
	})
	if err != nil {
		log.Fatal(err)
	}
	defer layer.Close()

	// The canvas projects the view bound linearly onto the image
	view := orb.Bound{
		Min: orb.Point{-71.1, 42.3},
		Max: orb.Point{-71.0, 42.4},
	}
	cvs, err := canvas.New(800, 600, view)
	if err != nil {
		log.Fatal(err)
	}
	layer.Attach(cvs)

	grid := vectile.NewGrid(layer, vectile.GridOptions{Pad: 1})
	if err := grid.SetView(view, 13); err != nil {
		log.Fatal(err)
	}

	// Wait until every covered tile settled
	for layer.Stats().PendingTiles > 0 {
		time.Sleep(20 * time.Millisecond)
	}

	f, err := os.Create("map.png")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := cvs.EncodePNG(f); err != nil {
		log.Fatal(err)
	}

	stats := layer.Stats()
	fmt.Printf("Rendered %d features from %d tiles to map.png\n",
		stats.VisibleFeatures, stats.LoadedTiles)
}
