// Package canvas rasterizes render groups into an image.
//
// A Canvas is a vectile.Surface: attach it to a layer and every group the
// layer commits is painted on the next Render call. The mapping from
// coordinates to pixels is a plain linear stretch of the view bound across
// the image, so a canvas covering a single tile's bound reproduces that
// tile; wider bounds give overview renders.
//
//	view := maptile.New(2, 1, 2).Bound()
//	c, _ := canvas.New(512, 512, view)
//	layer.Attach(c)
//	// ... create tiles, wait for loads ...
//	c.EncodePNG(out)
package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"golang.org/x/image/vector"

	"github.com/beetlebugorg/vectile/pkg/vectile"
)

// Canvas paints render groups onto a fixed-size raster. Attach and detach
// may be called while another goroutine renders; each Render works from a
// snapshot of the attached groups.
type Canvas struct {
	// Background fills the image before any shape is drawn. Set it before
	// the first Render; the zero value is replaced by white in New.
	Background color.NRGBA

	width  int
	height int
	view   orb.Bound

	mu     sync.Mutex
	groups map[string]*vectile.RenderGroup
}

var _ vectile.Surface = (*Canvas)(nil)

// New returns a canvas of the given pixel size whose image spans view,
// west-to-east on x and north-to-south on y.
func New(width, height int, view orb.Bound) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("canvas size %dx%d: dimensions must be positive", width, height)
	}
	if view.Max.Lon() <= view.Min.Lon() || view.Max.Lat() <= view.Min.Lat() {
		return nil, fmt.Errorf("canvas view %v: bound is empty", view)
	}
	return &Canvas{
		Background: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		width:      width,
		height:     height,
		view:       view,
		groups:     make(map[string]*vectile.RenderGroup),
	}, nil
}

// AttachGroup registers a group for painting. Called by the layer with its
// lock held; it must not call back into the layer, and it does not.
func (c *Canvas) AttachGroup(g *vectile.RenderGroup) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.groups[g.ID()] = g
}

// DetachGroup removes a group. Unknown groups are ignored.
func (c *Canvas) DetachGroup(g *vectile.RenderGroup) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.groups, g.ID())
}

// Render paints every attached group and returns the finished image. Groups
// are drawn in ID order and shapes in feature-ID order, so repeated calls
// over the same groups produce identical images.
func (c *Canvas) Render() *image.RGBA {
	c.mu.Lock()
	ids := make([]string, 0, len(c.groups))
	for id := range c.groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	groups := make([]*vectile.RenderGroup, len(ids))
	for i, id := range ids {
		groups[i] = c.groups[id]
	}
	c.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c.Background), image.Point{}, draw.Src)

	ras := vector.NewRasterizer(c.width, c.height)
	for _, g := range groups {
		for _, s := range g.Shapes() {
			c.drawShape(ras, img, s)
		}
	}
	return img
}

// EncodePNG renders the canvas and writes it as a PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, c.Render()); err != nil {
		return fmt.Errorf("encode canvas: %w", err)
	}
	return nil
}

func (c *Canvas) drawShape(ras *vector.Rasterizer, img *image.RGBA, s *vectile.Shape) {
	st := s.Style()
	switch s.Kind {
	case vectile.ShapeMarker:
		c.drawMarkers(ras, img, s, st)
	case vectile.ShapePath:
		if s.Closed {
			c.fillPaths(ras, img, s, st)
		}
		c.strokePaths(ras, img, s, st)
	}
}

// pixelPoint is a position in image coordinates, y growing downward.
type pixelPoint struct {
	x, y float32
}

func (c *Canvas) pixel(ll vectile.LatLon) pixelPoint {
	x := (ll.Lon - c.view.Min.Lon()) / (c.view.Max.Lon() - c.view.Min.Lon()) * float64(c.width)
	y := (c.view.Max.Lat() - ll.Lat) / (c.view.Max.Lat() - c.view.Min.Lat()) * float64(c.height)
	return pixelPoint{x: float32(x), y: float32(y)}
}

// drawMarkers paints a filled disc of the style radius at each center, then
// an annular outline of the style weight around it.
func (c *Canvas) drawMarkers(ras *vector.Rasterizer, img *image.RGBA, s *vectile.Shape, st vectile.Style) {
	radius := float32(st.Radius())
	if radius <= 0 {
		return
	}
	if fill, ok := paint(st.FillColor(), st.FillOpacity()); ok {
		ras.Reset(c.width, c.height)
		for _, ll := range s.Centers {
			p := c.pixel(ll)
			addCircle(ras, p.x, p.y, radius, false)
		}
		ras.Draw(img, img.Bounds(), image.NewUniform(fill), image.Point{})
	}
	stroke, ok := paint(st.Color(), st.Opacity())
	half := float32(st.Weight()) / 2
	if !ok || half <= 0 {
		return
	}
	ras.Reset(c.width, c.height)
	for _, ll := range s.Centers {
		p := c.pixel(ll)
		addCircle(ras, p.x, p.y, radius+half, false)
		if inner := radius - half; inner > 0 {
			addCircle(ras, p.x, p.y, inner, true)
		}
	}
	ras.Draw(img, img.Bounds(), image.NewUniform(stroke), image.Point{})
}

// fillPaths fills a closed shape's rings in one pass. Holes depend on ring
// orientation: exterior and interior rings wind opposite ways, so the
// non-zero fill rule leaves the interior rings empty.
func (c *Canvas) fillPaths(ras *vector.Rasterizer, img *image.RGBA, s *vectile.Shape, st vectile.Style) {
	fill, ok := paint(st.FillColor(), st.FillOpacity())
	if !ok {
		return
	}
	ras.Reset(c.width, c.height)
	for _, run := range s.Paths {
		if len(run) < 3 {
			continue
		}
		first := c.pixel(run[0])
		ras.MoveTo(first.x, first.y)
		for _, ll := range run[1:] {
			p := c.pixel(ll)
			ras.LineTo(p.x, p.y)
		}
		ras.ClosePath()
	}
	ras.Draw(img, img.Bounds(), image.NewUniform(fill), image.Point{})
}

// strokePaths outlines every coordinate run: one quad per segment plus a
// disc per vertex for the joins and caps. Quads and discs wind the same
// way, so overlaps at joints keep full coverage.
func (c *Canvas) strokePaths(ras *vector.Rasterizer, img *image.RGBA, s *vectile.Shape, st vectile.Style) {
	stroke, ok := paint(st.Color(), st.Opacity())
	half := float32(st.Weight()) / 2
	if !ok || half <= 0 {
		return
	}
	ras.Reset(c.width, c.height)
	for _, run := range s.Paths {
		if len(run) == 0 {
			continue
		}
		pts := make([]pixelPoint, len(run))
		for i, ll := range run {
			pts[i] = c.pixel(ll)
		}
		for i := 0; i+1 < len(pts); i++ {
			addSegment(ras, pts[i], pts[i+1], half)
		}
		if s.Closed && len(pts) > 1 {
			addSegment(ras, pts[len(pts)-1], pts[0], half)
		}
		for _, p := range pts {
			addCircle(ras, p.x, p.y, half, false)
		}
	}
	ras.Draw(img, img.Bounds(), image.NewUniform(stroke), image.Point{})
}

// addSegment appends a rectangle of width 2*half along the segment as a
// closed subpath. Zero-length segments, like a ring's repeated closing
// vertex, add nothing.
func addSegment(ras *vector.Rasterizer, a, b pixelPoint, half float32) {
	dx, dy := b.x-a.x, b.y-a.y
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		return
	}
	nx, ny := -dy/length*half, dx/length*half
	ras.MoveTo(a.x+nx, a.y+ny)
	ras.LineTo(a.x-nx, a.y-ny)
	ras.LineTo(b.x-nx, b.y-ny)
	ras.LineTo(b.x+nx, b.y+ny)
	ras.ClosePath()
}

// addCircle appends a circle as four cubic Bézier arcs. Two circles of
// opposite orientation cut a hole under the non-zero fill rule, which is
// how marker outlines are built.
func addCircle(ras *vector.Rasterizer, cx, cy, radius float32, clockwise bool) {
	const k = float32(0.5522847498)
	kr := k * radius
	if clockwise {
		ras.MoveTo(cx, cy-radius)
		ras.CubeTo(cx-kr, cy-radius, cx-radius, cy-kr, cx-radius, cy)
		ras.CubeTo(cx-radius, cy+kr, cx-kr, cy+radius, cx, cy+radius)
		ras.CubeTo(cx+kr, cy+radius, cx+radius, cy+kr, cx+radius, cy)
		ras.CubeTo(cx+radius, cy-kr, cx+kr, cy-radius, cx, cy-radius)
	} else {
		ras.MoveTo(cx, cy-radius)
		ras.CubeTo(cx+kr, cy-radius, cx+radius, cy-kr, cx+radius, cy)
		ras.CubeTo(cx+radius, cy+kr, cx+kr, cy+radius, cx, cy+radius)
		ras.CubeTo(cx-kr, cy+radius, cx-radius, cy+kr, cx-radius, cy)
		ras.CubeTo(cx-radius, cy-kr, cx-kr, cy-radius, cx, cy-radius)
	}
	ras.ClosePath()
}

// paint resolves a style color and opacity to a draw color. The second
// return is false when nothing should be painted.
func paint(name string, opacity float64) (color.NRGBA, bool) {
	col, ok := parseColor(name)
	if !ok || opacity <= 0 {
		return color.NRGBA{}, false
	}
	if opacity < 1 {
		col.A = uint8(math.Round(float64(col.A) * opacity))
	}
	return col, true
}

var namedColors = map[string]color.NRGBA{
	"black":  {A: 0xff},
	"white":  {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	"red":    {R: 0xff, A: 0xff},
	"green":  {G: 0x80, A: 0xff},
	"blue":   {B: 0xff, A: 0xff},
	"orange": {R: 0xff, G: 0xa5, A: 0xff},
	"yellow": {R: 0xff, G: 0xff, A: 0xff},
	"gray":   {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
}

// parseColor reads "#rgb" and "#rrggbb" hex colors plus a small set of CSS
// color names. "none" and "transparent" report false, which callers treat
// as "skip this paint".
func parseColor(s string) (color.NRGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "none", "transparent":
		return color.NRGBA{}, false
	}
	if col, ok := namedColors[s]; ok {
		return col, true
	}
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, true
}
