package vectile

import (
	"fmt"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// rectEpsilon inflates zero-area bounds (points, axis-aligned lines) so the
// R-tree accepts them.
const rectEpsilon = 0.0001

// indexEntry ties a feature id to its bounding box inside a tile index.
// Entry identity is the feature id: removal matches on id, never on pointer
// or box equality.
type indexEntry struct {
	id   string
	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *indexEntry) Bounds() rtreego.Rect { return e.rect }

func newIndexEntry(id string, b orb.Bound) (*indexEntry, error) {
	rect, err := boundToRect(b)
	if err != nil {
		return nil, fmt.Errorf("index entry %q: %w", id, err)
	}
	return &indexEntry{id: id, rect: rect}, nil
}

func boundToRect(b orb.Bound) (rtreego.Rect, error) {
	lengths := []float64{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1]}
	if lengths[0] < rectEpsilon {
		lengths[0] = rectEpsilon
	}
	if lengths[1] < rectEpsilon {
		lengths[1] = rectEpsilon
	}
	return rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, lengths)
}

// tileIndex is the per-tile spatial index over the tile's visible features.
// It is bulk-loaded once when the tile commits and afterwards maintained
// incrementally by visibility toggles and feature removal.
type tileIndex struct {
	tree *rtreego.Rtree
}

// newTileIndex bulk-loads all entries in one shot, which packs the tree far
// better than repeated insertion.
func newTileIndex(entries []*indexEntry) *tileIndex {
	objs := make([]rtreego.Spatial, len(entries))
	for i, e := range entries {
		objs[i] = e
	}
	return &tileIndex{tree: rtreego.NewTree(2, 25, 50, objs...)}
}

func (ix *tileIndex) insert(e *indexEntry) {
	ix.tree.Insert(e)
}

func (ix *tileIndex) remove(e *indexEntry) bool {
	return ix.tree.DeleteWithComparator(e, func(a, b rtreego.Spatial) bool {
		ea, aok := a.(*indexEntry)
		eb, bok := b.(*indexEntry)
		return aok && bok && ea.id == eb.id
	})
}

// search returns the ids of entries whose boxes intersect b.
func (ix *tileIndex) search(b orb.Bound) []string {
	rect, err := boundToRect(b)
	if err != nil {
		return nil
	}
	hits := ix.tree.SearchIntersect(rect)
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		if e, ok := h.(*indexEntry); ok {
			ids = append(ids, e.id)
		}
	}
	return ids
}

func (ix *tileIndex) size() int {
	return ix.tree.Size()
}
