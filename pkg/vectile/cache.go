package vectile

import (
	"container/list"
	"context"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// CachedSource wraps a TileSource with an in-memory LRU cache of fetched
// payloads. A viewport panning back and forth re-creates tiles it recently
// evicted; the cache answers those fetches without touching the inner
// source.
//
// Cached payloads are shared between callers and must be treated as
// read-only; a Layer never mutates fetched layers. Fetch errors are not
// cached, so a failed tile is retried on its next visit.
//
// Memory accounting is an estimate based on feature and coordinate counts.
//
// Example:
//
//	source := vectile.NewCachedSource(
//	    vectile.NewHTTPSource("https://tiles.example.com/{z}/{x}/{y}.json", nil),
//	    64*1024*1024, // 64MB
//	)
type CachedSource struct {
	source    TileSource
	maxMemory int64

	mu         sync.Mutex
	usedMemory int64
	tiles      map[maptile.Tile]*sourceCacheEntry
	lru        *list.List
	hits       int
	misses     int
}

// sourceCacheEntry tracks one cached payload and its position in the LRU
// list, most recent at the front.
type sourceCacheEntry struct {
	coords  maptile.Tile
	layers  []TileLayer
	size    int64
	element *list.Element
}

// NewCachedSource wraps source with a cache holding at most maxMemoryBytes
// of estimated payload. Zero means no limit.
func NewCachedSource(source TileSource, maxMemoryBytes int64) *CachedSource {
	return &CachedSource{
		source:    source,
		maxMemory: maxMemoryBytes,
		tiles:     make(map[maptile.Tile]*sourceCacheEntry),
		lru:       list.New(),
	}
}

// Fetch returns the cached payload for t, or fetches it from the inner
// source and caches the result. Concurrent fetches for the same tile on a
// cache miss both reach the inner source; a Layer never issues those, since
// a registered tile fetches once.
func (s *CachedSource) Fetch(ctx context.Context, t maptile.Tile) ([]TileLayer, error) {
	s.mu.Lock()
	if e, ok := s.tiles[t]; ok {
		s.lru.MoveToFront(e.element)
		s.hits++
		layers := e.layers
		s.mu.Unlock()
		return layers, nil
	}
	s.misses++
	s.mu.Unlock()

	layers, err := s.source.Fetch(ctx, t)
	if err != nil {
		return nil, err
	}
	s.add(t, layers)
	return layers, nil
}

// add caches a fetched payload, evicting least-recently-used entries until
// it fits. A payload larger than the whole budget is served uncached.
func (s *CachedSource) add(t maptile.Tile, layers []TileLayer) {
	size := estimateTileMemory(layers)
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.tiles[t]; ok {
		// Another fetch for the same tile won the race.
		s.lru.MoveToFront(e.element)
		return
	}
	if s.maxMemory > 0 && size > s.maxMemory {
		return
	}
	if s.maxMemory > 0 {
		for s.usedMemory+size > s.maxMemory && s.lru.Len() > 0 {
			s.evictLRU()
		}
	}

	e := &sourceCacheEntry{coords: t, layers: layers, size: size}
	e.element = s.lru.PushFront(e)
	s.tiles[t] = e
	s.usedMemory += size
}

// evictLRU removes the least recently used payload. Callers hold s.mu.
func (s *CachedSource) evictLRU() {
	elem := s.lru.Back()
	if elem == nil {
		return
	}
	e := elem.Value.(*sourceCacheEntry)
	s.lru.Remove(elem)
	delete(s.tiles, e.coords)
	s.usedMemory -= e.size
}

// Invalidate drops the cached payload for t, if any. The next fetch reaches
// the inner source.
func (s *CachedSource) Invalidate(t maptile.Tile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.tiles[t]; ok {
		s.lru.Remove(e.element)
		delete(s.tiles, t)
		s.usedMemory -= e.size
	}
}

// Clear drops every cached payload. Hit and miss counters keep counting.
func (s *CachedSource) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiles = make(map[maptile.Tile]*sourceCacheEntry)
	s.lru.Init()
	s.usedMemory = 0
}

// Stats returns a snapshot of cache activity.
func (s *CachedSource) Stats() SourceCacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SourceCacheStats{
		Tiles:      len(s.tiles),
		UsedMemory: s.usedMemory,
		MaxMemory:  s.maxMemory,
		Hits:       s.hits,
		Misses:     s.misses,
	}
}

// SourceCacheStats holds cache performance counters.
type SourceCacheStats struct {
	Tiles      int   // Payloads currently cached
	UsedMemory int64 // Estimated memory usage in bytes
	MaxMemory  int64 // Memory limit in bytes, 0 when unlimited
	Hits       int   // Fetches answered from cache
	Misses     int   // Fetches that reached the inner source
}

// HitRate returns the cache hit rate (0.0 to 1.0).
func (s SourceCacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// estimateTileMemory estimates the memory held by a tile payload: a base
// overhead per tile, one per feature, and 16 bytes per coordinate pair.
// Actual usage varies with property counts and string data.
func estimateTileMemory(layers []TileLayer) int64 {
	size := int64(1024)
	for _, tl := range layers {
		for _, f := range tl.Features {
			if f == nil {
				continue
			}
			size += 1024
			size += int64(geometryPositions(f.Geometry)) * 16
		}
	}
	return size
}

func geometryPositions(g orb.Geometry) int {
	switch g := g.(type) {
	case orb.Point:
		return 1
	case orb.MultiPoint:
		return len(g)
	case orb.LineString:
		return len(g)
	case orb.MultiLineString:
		n := 0
		for _, ls := range g {
			n += len(ls)
		}
		return n
	case orb.Ring:
		return len(g)
	case orb.Polygon:
		n := 0
		for _, r := range g {
			n += len(r)
		}
		return n
	case orb.MultiPolygon:
		n := 0
		for _, p := range g {
			for _, r := range p {
				n += len(r)
			}
		}
		return n
	case orb.Collection:
		n := 0
		for _, sub := range g {
			n += geometryPositions(sub)
		}
		return n
	case orb.Bound:
		return 2
	}
	return 0
}
