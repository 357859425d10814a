package vectile

import (
	"sort"

	"github.com/paulmach/orb/geojson"
)

// Style describes how a shape is painted. It is an open key/value table so
// embedders can carry surface-specific keys through untouched; the bundled
// surfaces understand:
//
//	color       string  stroke color, "#rgb" or "#rrggbb" (default "#3388ff")
//	weight      float64 stroke width in pixels (default 3)
//	opacity     float64 stroke opacity 0..1 (default 1)
//	fillColor   string  fill color (defaults to color)
//	fillOpacity float64 fill opacity 0..1 (default 0.2)
//	radius      float64 marker radius in pixels (default 10)
//
// Styles merge shallowly: keys of the later style win.
type Style map[string]any

// Clone returns an independent copy of s.
func (s Style) Clone() Style {
	if s == nil {
		return nil
	}
	c := make(Style, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// merge writes the keys of over into s and returns s. The receiver must be
// owned by the caller.
func (s Style) merge(over Style) Style {
	for k, v := range over {
		s[k] = v
	}
	return s
}

// Color returns the stroke color.
func (s Style) Color() string { return s.stringValue("color", "#3388ff") }

// Weight returns the stroke width in pixels.
func (s Style) Weight() float64 { return s.floatValue("weight", 3) }

// Opacity returns the stroke opacity.
func (s Style) Opacity() float64 { return s.floatValue("opacity", 1) }

// FillColor returns the fill color, falling back to the stroke color.
func (s Style) FillColor() string { return s.stringValue("fillColor", s.Color()) }

// FillOpacity returns the fill opacity.
func (s Style) FillOpacity() float64 { return s.floatValue("fillOpacity", 0.2) }

// Radius returns the marker radius in pixels.
func (s Style) Radius() float64 { return s.floatValue("radius", 10) }

func (s Style) stringValue(key, def string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return def
}

func (s Style) floatValue(key string, def float64) float64 {
	switch v := s[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	}
	return def
}

// ruleKey addresses one property rule: a property name paired with the value
// it matches.
type ruleKey struct {
	prop  string
	value any
}

// ruleValue normalizes v into a form usable as a rule key. Only JSON scalars
// participate in rule matching; numeric widths collapse to float64 the way
// encoding/json decodes them. Objects and arrays never match a rule.
func ruleValue(v any) (any, bool) {
	switch n := v.(type) {
	case nil, string, bool, float64:
		return v, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return nil, false
}

// overrideEngine holds the layered style and visibility tables for one
// layer instance. All access happens under the layer lock.
//
// Resolution precedence, lowest to highest: base table, property style
// overrides, per-feature style. Visibility defaults to true; the last
// matching property rule in sorted property order wins, and a per-feature
// entry overrides the property verdict.
type overrideEngine struct {
	base      map[ruleKey]Style
	propStyle map[ruleKey]Style
	propVis   map[ruleKey]bool
	featStyle map[string]Style
	featVis   map[string]bool
}

func newOverrideEngine(base map[string]map[any]Style) *overrideEngine {
	e := &overrideEngine{
		base:      make(map[ruleKey]Style),
		propStyle: make(map[ruleKey]Style),
		propVis:   make(map[ruleKey]bool),
		featStyle: make(map[string]Style),
		featVis:   make(map[string]bool),
	}
	for prop, rules := range base {
		for value, st := range rules {
			if v, ok := ruleValue(value); ok {
				e.base[ruleKey{prop, v}] = st.Clone()
			}
		}
	}
	return e
}

// resolve computes the style and visibility of a feature from the rule
// tables. Property names are scanned in sorted order so resolution is
// deterministic regardless of map iteration.
func (e *overrideEngine) resolve(id string, props geojson.Properties) (Style, bool) {
	st := Style{}
	visible := true

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v, ok := ruleValue(props[name])
		if !ok {
			continue
		}
		k := ruleKey{name, v}
		if s, ok := e.base[k]; ok {
			st = st.merge(s)
		}
		if b, ok := e.propVis[k]; ok {
			visible = b
		}
	}
	for _, name := range names {
		v, ok := ruleValue(props[name])
		if !ok {
			continue
		}
		if s, ok := e.propStyle[ruleKey{name, v}]; ok {
			st = st.merge(s)
		}
	}
	if s, ok := e.featStyle[id]; ok {
		st = st.merge(s)
	}
	if b, ok := e.featVis[id]; ok {
		visible = b
	}
	return st, visible
}

// setPropertyVisibility records a hide/show rule. Returns false when the
// rule was already in place, so callers can skip the sweep.
func (e *overrideEngine) setPropertyVisibility(prop string, value any, visible bool) bool {
	v, ok := ruleValue(value)
	if !ok {
		return false
	}
	k := ruleKey{prop, v}
	if cur, ok := e.propVis[k]; ok && cur == visible {
		return false
	}
	e.propVis[k] = visible
	return true
}

// setFeatureVisibility records a per-feature hide/show override.
func (e *overrideEngine) setFeatureVisibility(id string, visible bool) bool {
	if cur, ok := e.featVis[id]; ok && cur == visible {
		return false
	}
	e.featVis[id] = visible
	return true
}

// mergePropertyStyle layers st on top of any existing rule for (prop, value).
func (e *overrideEngine) mergePropertyStyle(prop string, value any, st Style) bool {
	v, ok := ruleValue(value)
	if !ok {
		return false
	}
	k := ruleKey{prop, v}
	cur, ok := e.propStyle[k]
	if !ok {
		cur = Style{}
	}
	e.propStyle[k] = cur.merge(st.Clone())
	return true
}

// setFeatureStyle records a per-feature style override.
func (e *overrideEngine) setFeatureStyle(id string, st Style) {
	e.featStyle[id] = st.Clone()
}

// clearFeatureStyle removes the per-feature override so the feature reverts
// to the property rule chain. Returns false when no override existed.
func (e *overrideEngine) clearFeatureStyle(id string) bool {
	if _, ok := e.featStyle[id]; !ok {
		return false
	}
	delete(e.featStyle, id)
	return true
}
