package vectile

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LatLon is a render-plane coordinate. GeoJSON positions are [lon, lat]
// (RFC 7946 §3.1.1); render surfaces take latitude first, so conversion
// swaps the axes once, here, and everything past the converter speaks
// LatLon.
type LatLon struct {
	Lat float64
	Lon float64
}

func latLonOf(p orb.Point) LatLon {
	return LatLon{Lat: p.Lat(), Lon: p.Lon()}
}

// Point returns the GeoJSON-ordered [lon, lat] position.
func (ll LatLon) Point() orb.Point {
	return orb.Point{ll.Lon, ll.Lat}
}

// convertFeature turns a GeoJSON feature into a renderable shape carrying
// the resolved style. Points become markers, lines open paths, polygons
// closed paths with their interior rings preserved. Geometry kinds with no
// renderable form return ErrUnsupportedGeometry; the caller skips the
// feature and the tile keeps loading.
func convertFeature(f *geojson.Feature, id string, st Style) (*Shape, error) {
	if f == nil || f.Geometry == nil {
		return nil, &ErrUnsupportedGeometry{}
	}
	shape := &Shape{
		FeatureID: id,
		bound:     f.Geometry.Bound(),
		style:     st,
	}
	switch g := f.Geometry.(type) {
	case orb.Point:
		shape.Kind = ShapeMarker
		shape.Centers = []LatLon{latLonOf(g)}
	case orb.MultiPoint:
		shape.Kind = ShapeMarker
		shape.Centers = make([]LatLon, len(g))
		for i, p := range g {
			shape.Centers[i] = latLonOf(p)
		}
	case orb.LineString:
		shape.Kind = ShapePath
		shape.Paths = [][]LatLon{lineToLatLons(g)}
	case orb.MultiLineString:
		shape.Kind = ShapePath
		shape.Paths = make([][]LatLon, len(g))
		for i, ls := range g {
			shape.Paths[i] = lineToLatLons(ls)
		}
	case orb.Polygon:
		shape.Kind = ShapePath
		shape.Closed = true
		shape.Paths = polygonToLatLons(g)
	case orb.MultiPolygon:
		shape.Kind = ShapePath
		shape.Closed = true
		for _, poly := range g {
			shape.Paths = append(shape.Paths, polygonToLatLons(poly)...)
		}
	default:
		return nil, &ErrUnsupportedGeometry{Type: f.Geometry.GeoJSONType()}
	}
	return shape, nil
}

func lineToLatLons(ls orb.LineString) []LatLon {
	out := make([]LatLon, len(ls))
	for i, p := range ls {
		out[i] = latLonOf(p)
	}
	return out
}

// polygonToLatLons converts every ring, exterior first. Ring orientation is
// kept as-is; the non-zero winding fill relies on GeoJSON's opposite
// orientation for holes.
func polygonToLatLons(poly orb.Polygon) [][]LatLon {
	out := make([][]LatLon, len(poly))
	for i, ring := range poly {
		pts := make([]LatLon, len(ring))
		for j, p := range ring {
			pts[j] = latLonOf(p)
		}
		out[i] = pts
	}
	return out
}
