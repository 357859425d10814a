package vectile

// LayerStats reports layer activity. Tile counts describe the registry at
// the time of the call; the totals are monotonic over the layer's life.
type LayerStats struct {
	// PendingTiles is the number of tiles still materializing.
	PendingTiles int
	// LoadedTiles is the number of tiles whose features are committed.
	LoadedTiles int
	// FailedTiles is the number of tiles whose fetch failed.
	FailedTiles int
	// Features is the number of committed feature records across tiles.
	Features int
	// VisibleFeatures is the number of records currently shown and indexed.
	VisibleFeatures int
	// TilesCreated counts every CreateTile that registered a tile.
	TilesCreated int
	// TilesDestroyed counts every destroy, however triggered.
	TilesDestroyed int
	// FetchFailures counts failed tile fetches.
	FetchFailures int
	// SkippedFeatures counts features dropped during commit: unsupported
	// geometry, missing id, or duplicate id within the tile.
	SkippedFeatures int
}

// FetchFailureRate returns the fraction of created tiles whose fetch failed.
func (s LayerStats) FetchFailureRate() float64 {
	if s.TilesCreated == 0 {
		return 0
	}
	return float64(s.FetchFailures) / float64(s.TilesCreated)
}
