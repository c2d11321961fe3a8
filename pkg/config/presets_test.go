package config

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_CountMultiplier(t *testing.T) {
	tests := []struct {
		name      string
		intensity string
		requested int
		want      int
	}{
		{"subtle halves", "subtle", 120, 60},
		{"normal keeps", "normal", 120, 120},
		{"intense floors", "intense", 7, 10},
		{"extreme doubles", "extreme", 50, 100},
		{"zero", "normal", 0, 0},
		{"negative becomes zero", "extreme", -5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve("aurora", tt.intensity, tt.requested)
			assert.Equal(t, tt.want, got.Count)
		})
	}
}

func TestResolve_CountCapped(t *testing.T) {
	table := DefaultPresetTable()
	table.Intensities["huge"] = Multipliers{Count: 1e12, Size: 1, Speed: 1}
	table.Intensities["broken"] = Multipliers{Count: math.NaN(), Size: 1, Speed: 1}

	assert.Equal(t, MaxParticleCount, table.Resolve("aurora", "huge", 120).Count)
	assert.Equal(t, MaxParticleCount, Resolve("aurora", "extreme", math.MaxInt32).Count)
	assert.Equal(t, 0, table.Resolve("aurora", "broken", 120).Count)
}

func TestResolve_Fallback(t *testing.T) {
	got := Resolve("plasma", "ludicrous", 10)

	assert.Equal(t, VariantAurora, got.Variant)
	assert.Equal(t, IntensityNormal, got.Intensity)
	assert.True(t, got.VariantFallback)
	assert.True(t, got.IntensityFallback)
	assert.Equal(t, DefaultPresetTable().Variants[VariantAurora], got.Palette)
	assert.Equal(t, 10, got.Count)
}

func TestResolve_CaseInsensitive(t *testing.T) {
	got := Resolve("  Nebula ", "SUBTLE", 200)

	assert.Equal(t, VariantNebula, got.Variant)
	assert.Equal(t, IntensitySubtle, got.Intensity)
	assert.False(t, got.VariantFallback)
	assert.False(t, got.IntensityFallback)
	assert.Equal(t, 100, got.Count)
}

func TestResolve_Deterministic(t *testing.T) {
	table := DefaultPresetTable()
	for _, v := range table.VariantNames() {
		for _, in := range table.IntensityNames() {
			a := table.Resolve(string(v), string(in), 137)
			b := table.Resolve(string(v), string(in), 137)
			if diff := cmp.Diff(a, b); diff != "" {
				t.Errorf("Resolve(%s, %s) not deterministic (-a +b):\n%s", v, in, diff)
			}
		}
	}
}

func TestResolve_EmptyTableUsesBuiltins(t *testing.T) {
	table := &PresetTable{}
	got := table.Resolve("aurora", "normal", 10)

	assert.True(t, got.VariantFallback)
	assert.Equal(t, DefaultPresetTable().Variants[VariantAurora], got.Palette)
	assert.Equal(t, 1.0, got.Multipliers.Count)
}

func TestParseVariantAndIntensity(t *testing.T) {
	table := DefaultPresetTable()

	v, err := table.ParseVariant("Quantum")
	require.NoError(t, err)
	assert.Equal(t, VariantQuantum, v)

	_, err = table.ParseVariant("plasma")
	assert.True(t, errors.Is(err, ErrUnknownPreset))

	in, err := table.ParseIntensity("extreme")
	require.NoError(t, err)
	assert.Equal(t, IntensityExtreme, in)

	_, err = table.ParseIntensity("")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestIntensityNames_OrderedByCount(t *testing.T) {
	got := DefaultPresetTable().IntensityNames()
	want := []Intensity{IntensitySubtle, IntensityNormal, IntensityIntense, IntensityExtreme}
	assert.Equal(t, want, got)
}

func TestClone_Independent(t *testing.T) {
	orig := DefaultPresetTable()
	c := orig.Clone()
	c.Variants["sunset"] = Palette{}
	c.Intensities[IntensityNormal] = Multipliers{Count: 9}

	_, ok := orig.Variants["sunset"]
	assert.False(t, ok)
	assert.Equal(t, 1.0, orig.Intensities[IntensityNormal].Count)
}

func TestParseRGBA(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"rgba(139, 92, 246, 0.6)", color.NRGBA{R: 139, G: 92, B: 246, A: 153}, false},
		{"rgb(3,3,8)", color.NRGBA{R: 3, G: 3, B: 8, A: 255}, false},
		{" RGBA(0, 0, 0, 0) ", color.NRGBA{}, false},
		{"rgba(256, 0, 0, 1)", color.NRGBA{}, true},
		{"rgba(0, 0, 0, 1.5)", color.NRGBA{}, true},
		{"#ff00ff", color.NRGBA{}, true},
		{"rgba(1, 2)", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRGBA(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGlowColor_Fallback(t *testing.T) {
	p := Palette{Glow: "not a color"}
	assert.Equal(t, color.NRGBA{R: 139, G: 92, B: 246, A: 153}, p.GlowColor())

	p.Glow = "rgba(6, 182, 212, 0.6)"
	assert.Equal(t, color.NRGBA{R: 6, G: 182, B: 212, A: 153}, p.GlowColor())
}
