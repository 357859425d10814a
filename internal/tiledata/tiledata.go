// Package tiledata decodes tile payloads into named layers of GeoJSON
// features.
//
// Two payload forms are accepted. A bare FeatureCollection (RFC 7946 §3.3)
// becomes a single unnamed layer:
//
//	{"type": "FeatureCollection", "features": [...]}
//
// A layers envelope carries several named collections in one tile:
//
//	{"layers": {"roads": {"type": "FeatureCollection", ...},
//	            "water": {"type": "FeatureCollection", ...}}}
package tiledata

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/paulmach/orb/geojson"
)

// Layer is one named group of features within a tile payload.
type Layer struct {
	Name     string
	Features []*geojson.Feature
}

// Decode parses a tile payload into layers, ordered by name so downstream
// processing is deterministic.
func Decode(data []byte) ([]Layer, error) {
	var probe struct {
		Type   string                     `json:"type"`
		Layers map[string]json.RawMessage `json:"layers"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode tile payload: %w", err)
	}

	if probe.Type == "FeatureCollection" {
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("decode feature collection: %w", err)
		}
		return []Layer{{Features: fc.Features}}, nil
	}

	if probe.Layers != nil {
		layers := make([]Layer, 0, len(probe.Layers))
		for name, raw := range probe.Layers {
			fc, err := geojson.UnmarshalFeatureCollection(raw)
			if err != nil {
				return nil, fmt.Errorf("decode layer %q: %w", name, err)
			}
			layers = append(layers, Layer{Name: name, Features: fc.Features})
		}
		sort.Slice(layers, func(i, j int) bool { return layers[i].Name < layers[j].Name })
		return layers, nil
	}

	return nil, errors.New("decode tile payload: neither a feature collection nor a layers envelope")
}
