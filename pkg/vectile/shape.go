package vectile

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// ShapeKind says how a shape's coordinates are to be painted.
type ShapeKind int

const (
	// ShapeMarker paints a disc of the style radius at each center.
	ShapeMarker ShapeKind = iota + 1
	// ShapePath paints each coordinate run as a stroked line, filled when
	// the shape is closed.
	ShapePath
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeMarker:
		return "marker"
	case ShapePath:
		return "path"
	}
	return "unknown"
}

// Shape is the renderable form of one feature. Geometry fields are fixed at
// conversion; only the style changes afterwards, through SetStyle, which the
// layer calls as overrides land. Surfaces read shapes concurrently, so the
// style is guarded.
type Shape struct {
	FeatureID string
	Kind      ShapeKind

	// Centers holds the marker positions; set when Kind is ShapeMarker.
	Centers []LatLon
	// Paths holds the coordinate runs; set when Kind is ShapePath.
	Paths [][]LatLon
	// Closed marks polygon paths: each run closes back on itself and the
	// interior is filled.
	Closed bool

	bound orb.Bound

	mu    sync.Mutex
	style Style
}

// Style returns a copy of the shape's current style.
func (s *Shape) Style() Style {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style.Clone()
}

// SetStyle replaces the shape's style.
func (s *Shape) SetStyle(st Style) {
	s.mu.Lock()
	s.style = st
	s.mu.Unlock()
}

// Bound returns the shape's bounding box in GeoJSON axis order.
func (s *Shape) Bound() orb.Bound { return s.bound }

// RenderGroup is a container of shapes that attaches to a surface as one
// unit. Each tile owns a group; the layer's root group aggregates the groups
// of all loaded tiles.
type RenderGroup struct {
	id string

	mu     sync.RWMutex
	shapes map[string]*Shape
	groups map[string]*RenderGroup
}

// NewRenderGroup creates an empty group. Layers build their own groups;
// standalone groups are for embedders composing extra content onto a
// surface.
func NewRenderGroup() *RenderGroup {
	return &RenderGroup{
		id:     uuid.NewString(),
		shapes: make(map[string]*Shape),
		groups: make(map[string]*RenderGroup),
	}
}

// ID returns the group's unique id.
func (g *RenderGroup) ID() string { return g.id }

// Shapes returns the group's direct members plus the members of any child
// groups, ordered by feature id. The slice is a snapshot; shapes themselves
// are shared and safe to read.
func (g *RenderGroup) Shapes() []*Shape {
	g.mu.RLock()
	out := make([]*Shape, 0, len(g.shapes))
	for _, s := range g.shapes {
		out = append(out, s)
	}
	children := make([]*RenderGroup, 0, len(g.groups))
	for _, child := range g.groups {
		children = append(children, child)
	}
	g.mu.RUnlock()

	for _, child := range children {
		out = append(out, child.Shapes()...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FeatureID < out[j].FeatureID })
	return out
}

// Len returns the number of direct member shapes.
func (g *RenderGroup) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.shapes)
}

// Add puts a shape into the group, replacing any member with the same
// feature id.
func (g *RenderGroup) Add(s *Shape) {
	g.mu.Lock()
	g.shapes[s.FeatureID] = s
	g.mu.Unlock()
}

// Remove takes the shape with the given feature id out of the group.
func (g *RenderGroup) Remove(featureID string) {
	g.mu.Lock()
	delete(g.shapes, featureID)
	g.mu.Unlock()
}

// Has reports whether a shape with the given feature id is a direct member.
func (g *RenderGroup) Has(featureID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.shapes[featureID]
	return ok
}

func (g *RenderGroup) addGroup(child *RenderGroup) {
	g.mu.Lock()
	g.groups[child.id] = child
	g.mu.Unlock()
}

func (g *RenderGroup) removeGroup(child *RenderGroup) {
	g.mu.Lock()
	delete(g.groups, child.id)
	g.mu.Unlock()
}

// Surface is where render groups are placed: the hosting map, a raster
// canvas, a terminal painter. The layer attaches a tile's group when the
// tile finishes loading and detaches it when the tile is destroyed.
//
// Both methods are called with the layer lock held so attach and detach
// order is exact; implementations must return quickly and must not call
// back into the layer.
type Surface interface {
	AttachGroup(*RenderGroup)
	DetachGroup(*RenderGroup)
}
