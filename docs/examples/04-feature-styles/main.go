package main

import (
	"fmt"
	"log"

	"github.com/paulmach/orb/maptile"

	"github.com/beetlebugorg/vectile/pkg/vectile"
)

func printStyle(layer *vectile.Layer, id string) {
	shape, ok := layer.FeatureShape(id)
	if !ok {
		fmt.Printf("  %s: not loaded\n", id)
		return
	}
	st := shape.Style()
	fmt.Printf("  %s: color=%s weight=%.0f fill=%s\n",
		id, st.Color(), st.Weight(), st.FillColor())
}

func main() {
	source := &vectile.FileSource{Root: "tiles"}

	loaded := make(chan vectile.TileEvent, 1)
	layer, err := vectile.New(source, vectile.Options{
		GetFeatureID: vectile.PropertyID("id"),
		// Base table: styles keyed by property value, applied as tiles load
		Style: map[string]map[any]vectile.Style{
			"kind": {
				"park":  {"color": "#2a7f2a", "fillColor": "#8fbf8f"},
				"water": {"color": "#3388ff", "fillOpacity": 0.4},
			},
		},
		OnTileLoad: func(ev vectile.TileEvent) { loaded <- ev },
	})
	if err != nil {
		log.Fatal(err)
	}
	defer layer.Close()

	if _, err := layer.CreateTile(maptile.New(0, 0, 0)); err != nil {
		log.Fatal(err)
	}
	<-loaded

	fmt.Println("Base styles:")
	printStyle(layer, "park-12")
	printStyle(layer, "lake-3")

	// Restyle every park, merging over the base table
	layer.RestyleByProperty("kind", "park", vectile.Style{"weight": 5})
	fmt.Println("\nAfter RestyleByProperty:")
	printStyle(layer, "park-12")

	// Single feature override wins over every property rule
	layer.SetFeatureStyle("park-12", vectile.Style{"color": "#ff0000"})
	fmt.Println("\nAfter SetFeatureStyle:")
	printStyle(layer, "park-12")

	// Reset re-resolves the feature from the remaining rules
	layer.ResetFeatureStyle("park-12")
	fmt.Println("\nAfter ResetFeatureStyle:")
	printStyle(layer, "park-12")
}
