package vectile

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
)

// countingSource serves canned payloads and counts fetches per tile.
type countingSource struct {
	mu      sync.Mutex
	layers  map[maptile.Tile][]TileLayer
	err     error
	fetches map[maptile.Tile]int
}

func (s *countingSource) Fetch(_ context.Context, t maptile.Tile) ([]TileLayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetches == nil {
		s.fetches = make(map[maptile.Tile]int)
	}
	s.fetches[t]++
	if s.err != nil {
		return nil, s.err
	}
	return s.layers[t], nil
}

func (s *countingSource) count(t maptile.Tile) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[t]
}

func TestCachedSourceBasic(t *testing.T) {
	coords := maptile.New(1, 2, 3)
	inner := &countingSource{layers: map[maptile.Tile][]TileLayer{
		coords: singleLayer(pointFeature("p1", -71.05, 42.35, nil)),
	}}
	cache := NewCachedSource(inner, 1024*1024)

	stats := cache.Stats()
	if stats.Tiles != 0 {
		t.Errorf("Expected empty cache, got %d tiles", stats.Tiles)
	}

	layers, err := cache.Fetch(context.Background(), coords)
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if len(layers) != 1 || len(layers[0].Features) != 1 {
		t.Fatalf("Expected 1 layer with 1 feature, got %v", layers)
	}
	if inner.count(coords) != 1 {
		t.Errorf("Expected inner source fetched once, got %d times", inner.count(coords))
	}

	layers2, err := cache.Fetch(context.Background(), coords)
	if err != nil {
		t.Fatalf("Fetch() failed on cache hit: %v", err)
	}
	if len(layers2) != 1 {
		t.Fatalf("Expected cached payload, got %v", layers2)
	}
	if inner.count(coords) != 1 {
		t.Errorf("Expected inner source not fetched for cache hit, got %d times", inner.count(coords))
	}

	stats = cache.Stats()
	if stats.Tiles != 1 {
		t.Errorf("Expected 1 cached tile, got %d", stats.Tiles)
	}
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d and %d", stats.Hits, stats.Misses)
	}
	if rate := stats.HitRate(); rate != 0.5 {
		t.Errorf("Expected hit rate 0.5, got %v", rate)
	}
}

func TestCachedSourceEviction(t *testing.T) {
	// A one-point tile estimates to 1024 + 1024 + 16 bytes, so this budget
	// holds exactly one of them.
	a := maptile.New(0, 0, 1)
	b := maptile.New(1, 0, 1)
	inner := &countingSource{layers: map[maptile.Tile][]TileLayer{
		a: singleLayer(pointFeature("a", -90, 40, nil)),
		b: singleLayer(pointFeature("b", 90, 40, nil)),
	}}
	cache := NewCachedSource(inner, 2100)

	for _, coords := range []maptile.Tile{a, b, a} {
		if _, err := cache.Fetch(context.Background(), coords); err != nil {
			t.Fatalf("Fetch(%v) failed: %v", coords, err)
		}
	}

	if inner.count(a) != 2 {
		t.Errorf("Expected tile a refetched after eviction, got %d fetches", inner.count(a))
	}
	stats := cache.Stats()
	if stats.Tiles != 1 {
		t.Errorf("Expected 1 cached tile after eviction, got %d", stats.Tiles)
	}
	if stats.UsedMemory > stats.MaxMemory {
		t.Errorf("Cache exceeded max memory: %d > %d", stats.UsedMemory, stats.MaxMemory)
	}
}

func TestCachedSourceErrorNotCached(t *testing.T) {
	coords := maptile.New(0, 0, 0)
	inner := &countingSource{
		layers: map[maptile.Tile][]TileLayer{coords: singleLayer(pointFeature("p1", 0, 0, nil))},
		err:    errors.New("boom"),
	}
	cache := NewCachedSource(inner, 0)

	if _, err := cache.Fetch(context.Background(), coords); err == nil {
		t.Fatal("Expected fetch error, got nil")
	}

	inner.mu.Lock()
	inner.err = nil
	inner.mu.Unlock()

	if _, err := cache.Fetch(context.Background(), coords); err != nil {
		t.Fatalf("Fetch() after recovery failed: %v", err)
	}
	if inner.count(coords) != 2 {
		t.Errorf("Expected failed fetch retried, got %d fetches", inner.count(coords))
	}
	if _, err := cache.Fetch(context.Background(), coords); err != nil {
		t.Fatalf("Fetch() on cache hit failed: %v", err)
	}
	if inner.count(coords) != 2 {
		t.Errorf("Expected recovered payload cached, got %d fetches", inner.count(coords))
	}
}

func TestCachedSourceInvalidate(t *testing.T) {
	coords := maptile.New(5, 5, 5)
	inner := &countingSource{layers: map[maptile.Tile][]TileLayer{
		coords: singleLayer(pointFeature("p1", 0, 0, nil)),
	}}
	cache := NewCachedSource(inner, 0)

	for i := 0; i < 2; i++ {
		if _, err := cache.Fetch(context.Background(), coords); err != nil {
			t.Fatalf("Fetch() failed: %v", err)
		}
	}
	cache.Invalidate(coords)
	if cache.Stats().Tiles != 0 {
		t.Errorf("Expected empty cache after invalidate, got %d tiles", cache.Stats().Tiles)
	}
	if _, err := cache.Fetch(context.Background(), coords); err != nil {
		t.Fatalf("Fetch() after invalidate failed: %v", err)
	}
	if inner.count(coords) != 2 {
		t.Errorf("Expected refetch after invalidate, got %d fetches", inner.count(coords))
	}
}

func TestCachedSourceClear(t *testing.T) {
	inner := &countingSource{layers: map[maptile.Tile][]TileLayer{}}
	cache := NewCachedSource(inner, 0)

	for x := uint32(0); x < 4; x++ {
		if _, err := cache.Fetch(context.Background(), maptile.New(x, 0, 2)); err != nil {
			t.Fatalf("Fetch() failed: %v", err)
		}
	}
	if cache.Stats().Tiles != 4 {
		t.Errorf("Expected 4 cached tiles, got %d", cache.Stats().Tiles)
	}

	cache.Clear()

	stats := cache.Stats()
	if stats.Tiles != 0 {
		t.Errorf("Expected empty cache after clear, got %d tiles", stats.Tiles)
	}
	if stats.UsedMemory != 0 {
		t.Errorf("Expected zero memory after clear, got %d bytes", stats.UsedMemory)
	}
	if stats.Misses != 4 {
		t.Errorf("Expected miss counter to survive clear, got %d", stats.Misses)
	}
}

func TestEstimateTileMemory(t *testing.T) {
	line := geojson.NewFeature(orb.LineString{{0, 0}, {1, 1}, {2, 2}})
	polygon := geojson.NewFeature(orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}})

	tests := []struct {
		name   string
		layers []TileLayer
		want   int64
	}{
		{"empty payload", nil, 1024},
		{"single point", singleLayer(pointFeature("p", 0, 0, nil)), 1024 + 1024 + 16},
		{"line and polygon", []TileLayer{
			{Name: "roads", Features: []*geojson.Feature{line}},
			{Name: "parks", Features: []*geojson.Feature{polygon}},
		}, 1024 + 2*1024 + 7*16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := estimateTileMemory(tt.layers); got != tt.want {
				t.Errorf("estimateTileMemory() = %d, want %d", got, tt.want)
			}
		})
	}
}
