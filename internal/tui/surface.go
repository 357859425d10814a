package tui

import (
	"sort"
	"sync"

	"github.com/beetlebugorg/vectile/pkg/vectile"
)

// groupStore collects the render groups the layer commits. The layer calls
// Attach/Detach from its own goroutines while the program goroutine renders,
// so access goes through a mutex.
type groupStore struct {
	mu     sync.Mutex
	groups map[string]*vectile.RenderGroup
}

var _ vectile.Surface = (*groupStore)(nil)

func newGroupStore() *groupStore {
	return &groupStore{groups: make(map[string]*vectile.RenderGroup)}
}

func (s *groupStore) AttachGroup(g *vectile.RenderGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.ID()] = g
}

func (s *groupStore) DetachGroup(g *vectile.RenderGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, g.ID())
}

// shapes snapshots every attached shape in a stable order.
func (s *groupStore) shapes() []*vectile.Shape {
	s.mu.Lock()
	ids := make([]string, 0, len(s.groups))
	for id := range s.groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	groups := make([]*vectile.RenderGroup, len(ids))
	for i, id := range ids {
		groups[i] = s.groups[id]
	}
	s.mu.Unlock()

	var out []*vectile.Shape
	for _, g := range groups {
		out = append(out, g.Shapes()...)
	}
	return out
}
