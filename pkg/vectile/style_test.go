package vectile

import (
	"testing"

	"github.com/paulmach/orb/geojson"
)

func TestStyleGetterDefaults(t *testing.T) {
	var s Style
	if s.Color() != "#3388ff" {
		t.Errorf("Color() got %s, want #3388ff", s.Color())
	}
	if s.Weight() != 3 {
		t.Errorf("Weight() got %v, want 3", s.Weight())
	}
	if s.Opacity() != 1 {
		t.Errorf("Opacity() got %v, want 1", s.Opacity())
	}
	if s.FillOpacity() != 0.2 {
		t.Errorf("FillOpacity() got %v, want 0.2", s.FillOpacity())
	}
	if s.Radius() != 10 {
		t.Errorf("Radius() got %v, want 10", s.Radius())
	}
}

func TestStyleFillColorFallsBackToColor(t *testing.T) {
	s := Style{"color": "#112233"}
	if s.FillColor() != "#112233" {
		t.Errorf("FillColor() got %s, want #112233", s.FillColor())
	}
	s["fillColor"] = "#445566"
	if s.FillColor() != "#445566" {
		t.Errorf("FillColor() got %s, want #445566", s.FillColor())
	}
}

func TestStyleNumericWidths(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{"float64", 2.5, 2.5},
		{"int", 4, 4},
		{"int64", int64(7), 7},
		{"float32", float32(1.5), 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Style{"weight": tt.value}
			if got := s.Weight(); got != tt.want {
				t.Errorf("Weight() got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStyleCloneIsIndependent(t *testing.T) {
	orig := Style{"color": "red"}
	c := orig.Clone()
	c["color"] = "blue"
	if orig.Color() != "red" {
		t.Errorf("Clone mutation leaked into original: got %s", orig.Color())
	}
}

func TestResolvePrecedence(t *testing.T) {
	e := newOverrideEngine(map[string]map[any]Style{
		"type": {"park": Style{"color": "green", "weight": 2.0}},
	})
	props := geojson.Properties{"type": "park"}

	st, visible := e.resolve("p1", props)
	if !visible {
		t.Fatal("Expected feature visible by default")
	}
	if st.Color() != "green" || st.Weight() != 2 {
		t.Errorf("Base resolution got color %s weight %v", st.Color(), st.Weight())
	}

	e.mergePropertyStyle("type", "park", Style{"weight": 5.0})
	st, _ = e.resolve("p1", props)
	if st.Color() != "green" || st.Weight() != 5 {
		t.Errorf("Property override got color %s weight %v, want green 5", st.Color(), st.Weight())
	}

	e.setFeatureStyle("p1", Style{"color": "red"})
	st, _ = e.resolve("p1", props)
	if st.Color() != "red" {
		t.Errorf("Feature override got color %s, want red", st.Color())
	}
	if st.Weight() != 5 {
		t.Errorf("Shallow merge lost weight: got %v, want 5", st.Weight())
	}

	// Another feature with the same properties is untouched by the
	// per-feature override.
	st, _ = e.resolve("p2", props)
	if st.Color() != "green" {
		t.Errorf("Unrelated feature got color %s, want green", st.Color())
	}

	if !e.clearFeatureStyle("p1") {
		t.Error("clearFeatureStyle() got false, want true")
	}
	st, _ = e.resolve("p1", props)
	if st.Color() != "green" || st.Weight() != 5 {
		t.Errorf("Reversion got color %s weight %v, want green 5", st.Color(), st.Weight())
	}
	if e.clearFeatureStyle("p1") {
		t.Error("Second clearFeatureStyle() got true, want false")
	}
}

// TestResolveVisibilityScanOrder pins the deterministic rule: property
// names scan sorted, the last matching visibility rule wins, and a
// per-feature entry beats them all.
func TestResolveVisibilityScanOrder(t *testing.T) {
	props := geojson.Properties{"amenity": "fountain", "type": "park"}

	e := newOverrideEngine(nil)
	e.setPropertyVisibility("amenity", "fountain", true)
	e.setPropertyVisibility("type", "park", false)
	if _, visible := e.resolve("f1", props); visible {
		t.Error("Expected hidden: type rule scans after amenity and wins")
	}

	e = newOverrideEngine(nil)
	e.setPropertyVisibility("amenity", "fountain", false)
	e.setPropertyVisibility("type", "park", true)
	if _, visible := e.resolve("f1", props); !visible {
		t.Error("Expected visible: type rule scans after amenity and wins")
	}

	e.setFeatureVisibility("f1", false)
	if _, visible := e.resolve("f1", props); visible {
		t.Error("Expected per-feature hide to override property rules")
	}
}

func TestSetPropertyVisibilityIdempotent(t *testing.T) {
	e := newOverrideEngine(nil)
	if !e.setPropertyVisibility("type", "park", false) {
		t.Error("First rule got false, want true")
	}
	if e.setPropertyVisibility("type", "park", false) {
		t.Error("Repeated rule got true, want false")
	}
	if !e.setPropertyVisibility("type", "park", true) {
		t.Error("Flipped rule got false, want true")
	}
}

func TestRuleValueNormalization(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  any
		ok    bool
	}{
		{"string", "park", "park", true},
		{"bool", true, true, true},
		{"float64", 5.0, 5.0, true},
		{"int collapses to float64", 5, 5.0, true},
		{"uint16 collapses to float64", uint16(9), 9.0, true},
		{"nil", nil, nil, true},
		{"slice rejected", []string{"x"}, nil, false},
		{"map rejected", map[string]any{}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ruleValue(tt.value)
			if ok != tt.ok {
				t.Fatalf("ruleValue() ok got %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ruleValue() got %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

// TestRuleMatchesDecodedNumbers checks that a rule recorded with a Go int
// matches the float64 encoding/json produces.
func TestRuleMatchesDecodedNumbers(t *testing.T) {
	e := newOverrideEngine(nil)
	e.setPropertyVisibility("level", 5, false)
	if _, visible := e.resolve("f1", geojson.Properties{"level": float64(5)}); visible {
		t.Error("Expected int rule to match float64 property value")
	}
	// But never across JSON types.
	if _, visible := e.resolve("f2", geojson.Properties{"level": "5"}); !visible {
		t.Error("Expected no coercion between string and number values")
	}
}

func TestNonScalarRuleIsRejected(t *testing.T) {
	e := newOverrideEngine(nil)
	if e.setPropertyVisibility("tags", []string{"a"}, false) {
		t.Error("Expected non-scalar rule value rejected")
	}
	if e.mergePropertyStyle("tags", map[string]any{}, Style{"color": "red"}) {
		t.Error("Expected non-scalar restyle value rejected")
	}
}
