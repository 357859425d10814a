package vectile

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
)

// Layer is a vector tile layer: it owns a registry of tiles, materializes
// their features asynchronously, keeps a per-tile spatial index over the
// visible features, and applies style and visibility overrides across every
// registered tile.
//
// All methods are safe for concurrent use. Tile creation and eviction are
// usually driven by a Grid tracking a viewport, but embedders may call
// CreateTile and EvictTile directly.
type Layer struct {
	opts     Options
	source   TileSource
	logger   *slog.Logger
	fetchSem chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	closed  bool
	surface Surface
	tiles   map[maptile.Tile]*tile
	engine  *overrideEngine
	root    *RenderGroup

	tilesCreated    int
	tilesDestroyed  int
	fetchFailures   int
	skippedFeatures int
}

// New creates a layer reading tiles from source. Options.GetFeatureID is
// required.
func New(source TileSource, opts Options) (*Layer, error) {
	if source == nil {
		return nil, errors.New("vectile: nil tile source")
	}
	if opts.GetFeatureID == nil {
		return nil, errors.New("vectile: Options.GetFeatureID is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var sem chan struct{}
	if opts.FetchConcurrency > 0 {
		sem = make(chan struct{}, opts.FetchConcurrency)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Layer{
		opts:     opts,
		source:   source,
		logger:   logger,
		fetchSem: sem,
		ctx:      ctx,
		cancel:   cancel,
		tiles:    make(map[maptile.Tile]*tile),
		engine:   newOverrideEngine(opts.Style),
		root:     NewRenderGroup(),
	}, nil
}

// Attach binds the layer to a surface. Render groups of already-loaded
// tiles attach immediately; groups of tiles loading now attach as they
// commit. Attaching nil detaches.
func (l *Layer) Attach(s Surface) {
	if s == nil {
		l.Detach()
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.surface = s
	for _, t := range l.tiles {
		if t.state == tileLoaded && !t.attached {
			t.attached = true
			s.AttachGroup(t.group)
		}
	}
}

// Detach unbinds the layer from its surface, detaching every attached
// group. Tiles stay registered and keep materializing.
func (l *Layer) Detach() {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.surface
	l.surface = nil
	if s == nil {
		return
	}
	for _, t := range l.tiles {
		if t.attached {
			t.attached = false
			s.DetachGroup(t.group)
		}
	}
}

// Close cancels in-flight materializations, waits for their pipelines to
// settle, and destroys every remaining tile. The layer is unusable
// afterwards: CreateTile returns ErrClosed.
func (l *Layer) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	l.cancel()
	l.wg.Wait()

	l.mu.Lock()
	events := make([]TileEvent, 0, len(l.tiles))
	for _, t := range l.tiles {
		l.destroyLocked(t)
		events = append(events, tileEvent(t.coords, nil))
	}
	l.mu.Unlock()
	for _, ev := range events {
		l.emit(l.opts.OnTileUnload, ev)
	}
	return nil
}

// CreateTile registers a tile, returns its render group placeholder
// synchronously, and starts materializing its features in the background.
// The group fills in as the tile loads. Creating a coordinate that is
// already registered returns ErrTileExists.
func (l *Layer) CreateTile(coords maptile.Tile) (*RenderGroup, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, ErrClosed
	}
	if _, ok := l.tiles[coords]; ok {
		l.mu.Unlock()
		return nil, &ErrTileExists{Tile: coords}
	}
	ctx, cancel := context.WithCancel(l.ctx)
	t := &tile{
		coords:   coords,
		group:    NewRenderGroup(),
		cancel:   cancel,
		state:    tilePending,
		features: make(map[string]*featureRecord),
	}
	if l.opts.Debug {
		t.group.Add(debugOutline(coords))
	}
	l.tiles[coords] = t
	l.tilesCreated++
	l.wg.Add(1)
	l.mu.Unlock()

	l.logger.Debug("tile created", "tile", TileKey(coords))
	go l.materialize(ctx, t)
	return t.group, nil
}

// EvictTile removes a tile from the layer. A loaded or failed tile is
// destroyed immediately. A tile still materializing is marked for eviction
// and its context cancelled; the pipeline runs the destroy when it
// finishes, so the destroy happens exactly once however fetch completion
// and eviction interleave. Unknown coordinates are a no-op.
func (l *Layer) EvictTile(coords maptile.Tile) {
	l.evict(coords, false)
}

// DestroyTile tears a loaded tile down immediately: shapes detach, the
// index and feature records drop, and the tile leaves the registry. Calling
// it on a tile still materializing defers to the pipeline the way EvictTile
// does, with a warning. Unknown coordinates are a no-op.
func (l *Layer) DestroyTile(coords maptile.Tile) {
	l.evict(coords, true)
}

func (l *Layer) evict(coords maptile.Tile, direct bool) {
	l.mu.Lock()
	t, ok := l.tiles[coords]
	if !ok {
		l.mu.Unlock()
		return
	}
	if t.state == tilePending {
		t.evicted = true
		t.cancel()
		l.mu.Unlock()
		if direct {
			l.logger.Warn("destroy of a pending tile deferred to its pipeline", "tile", TileKey(coords))
		}
		return
	}
	l.destroyLocked(t)
	l.mu.Unlock()
	l.emit(l.opts.OnTileUnload, tileEvent(coords, nil))
}

// SetZoom cancels the materialization of pending tiles created for a
// different zoom. A Grid calls this on every zoom change; embedders driving
// CreateTile directly should do the same. Cancelled tiles still finish
// their pipeline (partial commit, deferred destroy); cancellation only
// stops further feature processing.
func (l *Layer) SetZoom(z maptile.Zoom) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.tiles {
		if t.state == tilePending && t.coords.Z != z {
			t.cancel()
		}
	}
}

// materialize is the per-tile pipeline: fetch, then commit. It always runs
// to completion, even when the tile's context is cancelled or the tile was
// evicted mid-flight. A fetch ended by cancellation is not a failure: the
// tile commits whatever was processed (nothing) and any deferred destroy
// still runs.
func (l *Layer) materialize(ctx context.Context, t *tile) {
	defer l.wg.Done()
	if l.fetchSem != nil {
		select {
		case l.fetchSem <- struct{}{}:
		case <-ctx.Done():
			l.commitTile(ctx, t, nil)
			return
		}
	}
	layers, err := l.source.Fetch(ctx, t.coords)
	if l.fetchSem != nil {
		<-l.fetchSem
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			l.commitTile(ctx, t, nil)
			return
		}
		l.failTile(t, err)
		return
	}
	l.commitTile(ctx, t, layers)
}

func (l *Layer) failTile(t *tile, err error) {
	l.mu.Lock()
	t.state = tileFailed
	l.fetchFailures++
	destroyed := t.evicted
	if destroyed {
		l.destroyLocked(t)
	}
	l.mu.Unlock()

	l.logger.Error("tile fetch failed", "tile", TileKey(t.coords), "error", err)
	l.emit(l.opts.OnTileError, tileEvent(t.coords, err))
	if destroyed {
		l.emit(l.opts.OnTileUnload, tileEvent(t.coords, nil))
	}
}

func (l *Layer) commitTile(ctx context.Context, t *tile, layers []TileLayer) {
	l.mu.Lock()
	skipped := 0
commit:
	for _, tl := range layers {
		for _, f := range tl.Features {
			if ctx.Err() != nil {
				break commit
			}
			if f == nil {
				continue
			}
			id := l.opts.GetFeatureID(f)
			if id == "" {
				skipped++
				l.logger.Debug("feature without id skipped", "tile", TileKey(t.coords), "layer", tl.Name)
				continue
			}
			if _, dup := t.features[id]; dup {
				skipped++
				l.logger.Debug("duplicate feature id skipped", "tile", TileKey(t.coords), "feature", id)
				continue
			}
			st, visible := l.engine.resolve(id, f.Properties)
			shape, err := convertFeature(f, id, st)
			if err != nil {
				skipped++
				l.logger.Warn("feature skipped", "tile", TileKey(t.coords), "feature", id, "error", err)
				continue
			}
			entry, err := newIndexEntry(id, shape.Bound())
			if err != nil {
				skipped++
				l.logger.Warn("feature skipped", "tile", TileKey(t.coords), "feature", id, "error", err)
				continue
			}
			t.features[id] = &featureRecord{source: f, shape: shape, entry: entry, visible: visible}
			if visible {
				t.group.Add(shape)
			}
		}
	}

	// One-shot bulk load over the visible records. The index never sees
	// hidden features until a toggle inserts them.
	entries := make([]*indexEntry, 0, len(t.features))
	for _, rec := range t.features {
		if rec.visible {
			entries = append(entries, rec.entry)
		}
	}
	t.index = newTileIndex(entries)
	t.state = tileLoaded
	l.skippedFeatures += skipped
	committed := len(t.features)

	destroyed := t.evicted
	if destroyed {
		l.destroyLocked(t)
	} else {
		l.root.addGroup(t.group)
		if l.surface != nil {
			t.attached = true
			l.surface.AttachGroup(t.group)
		}
	}
	l.mu.Unlock()

	if destroyed {
		l.emit(l.opts.OnTileUnload, tileEvent(t.coords, nil))
		return
	}
	l.logger.Debug("tile loaded", "tile", TileKey(t.coords), "features", committed, "skipped", skipped)
	l.emit(l.opts.OnTileLoad, tileEvent(t.coords, nil))
}

// destroyLocked removes t from the registry and releases everything it
// owns. Callers hold l.mu and emit the unload event after unlocking.
func (l *Layer) destroyLocked(t *tile) {
	delete(l.tiles, t.coords)
	l.root.removeGroup(t.group)
	if t.attached && l.surface != nil {
		l.surface.DetachGroup(t.group)
	}
	t.attached = false
	t.state = tileDestroyed
	t.features = nil
	t.index = nil
	l.tilesDestroyed++
	l.logger.Debug("tile destroyed", "tile", TileKey(t.coords))
}

// Search returns the ids of visible features whose bounding boxes intersect
// the box spanned by min and max, both in GeoJSON [lon, lat] axis order.
// Results are deduplicated across tiles and sorted. Tiles still
// materializing contribute nothing. Searching a detached layer returns
// ErrNotAttached.
func (l *Layer) Search(min, max orb.Point) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.surface == nil {
		return nil, ErrNotAttached
	}
	b := orb.Bound{Min: min, Max: max}
	if b.Min[0] > b.Max[0] {
		b.Min[0], b.Max[0] = b.Max[0], b.Min[0]
	}
	if b.Min[1] > b.Max[1] {
		b.Min[1], b.Max[1] = b.Max[1], b.Min[1]
	}
	seen := make(map[string]struct{})
	for _, t := range l.tiles {
		if t.index == nil {
			continue
		}
		for _, id := range t.index.search(b) {
			seen[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// HideByProperty hides every feature, current and future, whose named
// property equals value. Hidden features leave their tile's render group
// and spatial index; their records stay, so ShowByProperty restores them.
// Repeating an in-place rule is a no-op.
func (l *Layer) HideByProperty(prop string, value any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.engine.setPropertyVisibility(prop, value, false) {
		l.sweepLocked()
	}
}

// ShowByProperty records a show rule for features whose named property
// equals value. The rule participates in resolution like any other: the
// last matching visibility rule in sorted property order wins.
func (l *Layer) ShowByProperty(prop string, value any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.engine.setPropertyVisibility(prop, value, true) {
		l.sweepLocked()
	}
}

// HideFeature hides one feature by id, overriding any property rule.
func (l *Layer) HideFeature(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.engine.setFeatureVisibility(id, false) {
		l.sweepLocked()
	}
}

// ShowFeature shows one feature by id, overriding any property rule.
func (l *Layer) ShowFeature(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.engine.setFeatureVisibility(id, true) {
		l.sweepLocked()
	}
}

// RestyleByProperty layers a partial style over every feature, current and
// future, whose named property equals value. Successive calls for the same
// rule merge shallowly, later keys winning.
func (l *Layer) RestyleByProperty(prop string, value any, st Style) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.engine.mergePropertyStyle(prop, value, st) {
		l.sweepLocked()
	}
}

// SetFeatureStyle layers a partial style over one feature by id, on top of
// every property rule.
func (l *Layer) SetFeatureStyle(id string, st Style) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.engine.setFeatureStyle(id, st)
	l.sweepLocked()
}

// ResetFeatureStyle removes the per-feature override set by SetFeatureStyle
// and re-resolves the feature from the property rule chain, fully reverting
// it.
func (l *Layer) ResetFeatureStyle(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.engine.clearFeatureStyle(id) {
		l.sweepLocked()
	}
}

// sweepLocked re-resolves every committed feature record against the rule
// tables, restyles shapes in place, and applies visibility transitions:
// shapes join or leave their tile group, index entries insert or remove.
// Acting only on transitions keeps the index exact under repeated toggles.
func (l *Layer) sweepLocked() {
	for _, t := range l.tiles {
		for id, rec := range t.features {
			st, visible := l.engine.resolve(id, rec.source.Properties)
			rec.shape.SetStyle(st)
			if visible == rec.visible {
				continue
			}
			rec.visible = visible
			if visible {
				t.group.Add(rec.shape)
				t.index.insert(rec.entry)
			} else {
				t.group.Remove(id)
				t.index.remove(rec.entry)
			}
		}
	}
}

// RemoveFeature removes a feature from every registered tile: its shape
// leaves the render group, its index entry drops, and its record is
// deleted. The removal binds to the current tile instances only; a tile
// destroyed and created again loads the feature fresh.
func (l *Layer) RemoveFeature(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.tiles {
		rec, ok := t.features[id]
		if !ok {
			continue
		}
		if rec.visible {
			t.group.Remove(id)
			t.index.remove(rec.entry)
		}
		delete(t.features, id)
	}
}

// FeatureGroup returns the layer's root render group, aggregating the
// groups of every loaded tile.
func (l *Layer) FeatureGroup() *RenderGroup {
	return l.root
}

// FeatureShape returns the renderable shape for a feature id. When the
// feature spans several tiles any one of its shapes is returned.
func (l *Layer) FeatureShape(id string) (*Shape, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, t := range l.tiles {
		if rec, ok := t.features[id]; ok {
			return rec.shape, true
		}
	}
	return nil, false
}

// FeatureGeoJSON returns the source GeoJSON feature for an id. The returned
// feature is shared; callers must not mutate it.
func (l *Layer) FeatureGeoJSON(id string) (*geojson.Feature, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, t := range l.tiles {
		if rec, ok := t.features[id]; ok {
			return rec.source, true
		}
	}
	return nil, false
}

// Stats returns a snapshot of layer activity.
func (l *Layer) Stats() LayerStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := LayerStats{
		TilesCreated:    l.tilesCreated,
		TilesDestroyed:  l.tilesDestroyed,
		FetchFailures:   l.fetchFailures,
		SkippedFeatures: l.skippedFeatures,
	}
	for _, t := range l.tiles {
		switch t.state {
		case tilePending:
			s.PendingTiles++
		case tileLoaded:
			s.LoadedTiles++
		case tileFailed:
			s.FailedTiles++
		}
		s.Features += len(t.features)
		for _, rec := range t.features {
			if rec.visible {
				s.VisibleFeatures++
			}
		}
	}
	return s
}

func (l *Layer) emit(fn func(TileEvent), ev TileEvent) {
	if fn != nil {
		fn(ev)
	}
}
