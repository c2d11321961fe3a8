package particle

import (
	"math/rand"
	"testing"

	"gopkg.in/yaml.v3"
)

// TestParseRange_FixedValue tests parsing of fixed value format
func TestParseRange_FixedValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Range
	}{
		{"Integer", "1500", Range{1500, 1500}},
		{"Float", "3.14", Range{3.14, 3.14}},
		{"Negative", "-10.5", Range{-10.5, -10.5}},
		{"Bracketed single", "[2]", Range{2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.input)
			if err != nil {
				t.Fatalf("ParseRange(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseRange(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestParseRange_Range tests parsing of range format
func TestParseRange_Range(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Range
	}{
		{"Float range", "[0.7 0.9]", Range{0.7, 0.9}},
		{"Integer range", "[10 20]", Range{10, 20}},
		{"Negative range", "[-5 -2]", Range{-5, -2}},
		{"Padded", "  [ 1.5   4.5 ] ", Range{1.5, 4.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.input)
			if err != nil {
				t.Fatalf("ParseRange(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseRange(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestParseRange_EdgeCases tests invalid input
func TestParseRange_EdgeCases(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "[10", "10]", "[1 2 3]", "[5 1]", "[a b]"} {
		if _, err := ParseRange(input); err == nil {
			t.Errorf("ParseRange(%q) expected error", input)
		}
	}
}

// TestRange_String round-trips through ParseRange
func TestRange_String(t *testing.T) {
	for _, r := range []Range{{1.5, 4.5}, Fixed(3), {-0.15, 0.15}} {
		got, err := ParseRange(r.String())
		if err != nil {
			t.Fatalf("ParseRange(%q) error = %v", r.String(), err)
		}
		if got != r {
			t.Errorf("round trip %v -> %q -> %v", r, r.String(), got)
		}
	}
}

// TestRange_Sample stays inside [min, max)
func TestRange_Sample(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	r := Range{Min: 300, Max: 500}
	for i := 0; i < 10000; i++ {
		v := r.Sample(rng)
		if v < r.Min || v >= r.Max {
			t.Fatalf("Sample() = %v, outside [%v, %v)", v, r.Min, r.Max)
		}
	}

	if got := Fixed(4).Sample(rng); got != 4 {
		t.Errorf("Fixed(4).Sample() = %v, want 4", got)
	}
}

// TestCurve_Evaluate tests linear interpolation and clamping
func TestCurve_Evaluate(t *testing.T) {
	curve := Curve{{0, 0.7}, {0.5, 1}, {1, 0.7}}

	tests := []struct {
		name string
		t    float64
		want float64
	}{
		{"Start", 0, 0.7},
		{"Quarter", 0.25, 0.85},
		{"Middle", 0.5, 1},
		{"End", 1, 0.7},
		{"Before start", -1, 0.7},
		{"After end", 2, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := curve.Evaluate(tt.t)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Evaluate(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}

	if got := Curve(nil).Evaluate(0.3); got != 1 {
		t.Errorf("empty curve Evaluate() = %v, want 1", got)
	}
}

// TestParseCurve tests the "time,value" pair format
func TestParseCurve(t *testing.T) {
	curve, err := ParseCurve("0,0.7 0.5,1 1,0.7")
	if err != nil {
		t.Fatalf("ParseCurve error = %v", err)
	}
	if len(curve) != 3 || curve[1] != (Keyframe{Time: 0.5, Value: 1}) {
		t.Errorf("ParseCurve = %v", curve)
	}

	for _, bad := range []string{"", "0,", "1,1 0,1", "a,b"} {
		if _, err := ParseCurve(bad); err == nil {
			t.Errorf("ParseCurve(%q) expected error", bad)
		}
	}
}

// TestSpawnRanges_YAML tests decoding spawn ranges from a preset document
func TestSpawnRanges_YAML(t *testing.T) {
	doc := []byte(`
baseSize: "[2 6]"
maxLife: 400
lifeFade: "0,0.5 1,1"
`)
	var override SpawnRanges
	if err := yaml.Unmarshal(doc, &override); err != nil {
		t.Fatalf("yaml.Unmarshal error = %v", err)
	}

	merged := DefaultSpawnRanges().Merge(override)
	if merged.BaseSize != (Range{2, 6}) {
		t.Errorf("BaseSize = %v, want [2 6]", merged.BaseSize)
	}
	if merged.MaxLife != Fixed(400) {
		t.Errorf("MaxLife = %v, want 400", merged.MaxLife)
	}
	if merged.Alpha != DefaultSpawnRanges().Alpha {
		t.Errorf("Alpha should keep default, got %v", merged.Alpha)
	}
	if got := merged.LifeFade.Evaluate(0.5); got != 0.75 {
		t.Errorf("LifeFade(0.5) = %v, want 0.75", got)
	}
	if err := merged.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

// TestSpawnRanges_Validate rejects ranges the simulation cannot honor
func TestSpawnRanges_Validate(t *testing.T) {
	bad := DefaultSpawnRanges()
	bad.MaxLife = Fixed(0)
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero maxLife")
	}

	bad = DefaultSpawnRanges()
	bad.Alpha = Range{0.5, 1.5}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for alpha above 1")
	}
}
