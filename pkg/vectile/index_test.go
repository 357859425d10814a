package vectile

import (
	"sort"
	"testing"

	"github.com/paulmach/orb"
)

func mustEntry(t *testing.T, id string, b orb.Bound) *indexEntry {
	t.Helper()
	e, err := newIndexEntry(id, b)
	if err != nil {
		t.Fatalf("newIndexEntry(%s) failed: %v", id, err)
	}
	return e
}

func boundAround(lon, lat, d float64) orb.Bound {
	return orb.Bound{Min: orb.Point{lon - d, lat - d}, Max: orb.Point{lon + d, lat + d}}
}

func TestBulkLoadAndSearch(t *testing.T) {
	entries := []*indexEntry{
		mustEntry(t, "a", boundAround(-71.0, 42.0, 0.01)),
		mustEntry(t, "b", boundAround(-71.5, 42.5, 0.01)),
		mustEntry(t, "c", boundAround(10.0, 50.0, 0.01)),
	}
	ix := newTileIndex(entries)
	if ix.size() != 3 {
		t.Fatalf("size() got %d, want 3", ix.size())
	}

	ids := ix.search(orb.Bound{Min: orb.Point{-72, 41}, Max: orb.Point{-70, 43}})
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("search() got %v, want [a b]", ids)
	}

	if ids := ix.search(boundAround(0, 0, 1)); len(ids) != 0 {
		t.Errorf("search() of empty region got %v, want none", ids)
	}
}

func TestBulkLoadEmpty(t *testing.T) {
	ix := newTileIndex(nil)
	if ix.size() != 0 {
		t.Errorf("size() got %d, want 0", ix.size())
	}
	if ids := ix.search(boundAround(0, 0, 90)); len(ids) != 0 {
		t.Errorf("search() got %v, want none", ids)
	}
}

func TestInsertAndRemoveById(t *testing.T) {
	ix := newTileIndex(nil)
	e := mustEntry(t, "f1", boundAround(5, 5, 0.1))
	ix.insert(e)
	if ix.size() != 1 {
		t.Fatalf("size() after insert got %d, want 1", ix.size())
	}

	// Removal matches on id, not on pointer identity.
	clone := mustEntry(t, "f1", boundAround(5, 5, 0.1))
	if !ix.remove(clone) {
		t.Fatal("remove() got false, want true")
	}
	if ix.size() != 0 {
		t.Errorf("size() after remove got %d, want 0", ix.size())
	}
	if ix.remove(e) {
		t.Error("remove() of absent entry got true, want false")
	}
}

// TestPointEntriesAreSearchable covers the degenerate-box path: point
// features have zero-area bounds and still need to land in the tree and
// come back from box queries.
func TestPointEntriesAreSearchable(t *testing.T) {
	p := orb.Point{-71.06, 42.36}
	e := mustEntry(t, "pt", orb.Bound{Min: p, Max: p})
	ix := newTileIndex([]*indexEntry{e})

	ids := ix.search(boundAround(-71.06, 42.36, 0.001))
	if len(ids) != 1 || ids[0] != "pt" {
		t.Errorf("search() got %v, want [pt]", ids)
	}
}

// TestSearchWithDegenerateBox queries with a zero-area box, which the index
// inflates the same way it inflates entries.
func TestSearchWithDegenerateBox(t *testing.T) {
	e := mustEntry(t, "area", boundAround(10, 10, 1))
	ix := newTileIndex([]*indexEntry{e})

	inside := orb.Point{10.2, 10.2}
	ids := ix.search(orb.Bound{Min: inside, Max: inside})
	if len(ids) != 1 || ids[0] != "area" {
		t.Errorf("search() got %v, want [area]", ids)
	}
}

func TestRepeatedToggleKeepsIndexExact(t *testing.T) {
	e := mustEntry(t, "f1", boundAround(0, 0, 1))
	ix := newTileIndex([]*indexEntry{e})

	if !ix.remove(e) {
		t.Fatal("remove() got false, want true")
	}
	if ix.remove(e) {
		t.Fatal("Second remove() got true, want false")
	}
	ix.insert(e)
	if ix.size() != 1 {
		t.Errorf("size() got %d, want 1", ix.size())
	}
	ids := ix.search(boundAround(0, 0, 2))
	if len(ids) != 1 {
		t.Errorf("search() got %v, want exactly one hit", ids)
	}
}
