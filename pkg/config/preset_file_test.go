package config

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/gonewx/particlefield/internal/particle"
	"github.com/gonewx/particlefield/pkg/embedded"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sunsetPresets = `
variants:
  Sunset:
    primary: {h: 20, s: 90, l: 55}
    secondary: {h: 340, s: 80, l: 50}
    accent: {h: 45, s: 95, l: 60}
    glow: "rgba(251, 146, 60, 0.6)"
intensities:
  calm: {count: 0.3, size: 0.8, glow: 0.3, speed: 0.4, connection: 0.6}
fields:
  sunset-calm: {variant: sunset, intensity: calm, particle_count: 60}
spawn:
  baseSize: "[2 4]"
`

func TestParsePresetFile(t *testing.T) {
	pf, err := ParsePresetFile([]byte(sunsetPresets))
	require.NoError(t, err)

	presets := pf.Apply(DefaultPresets())

	r := presets.Table.Resolve("sunset", "calm", 100)
	assert.False(t, r.VariantFallback)
	assert.False(t, r.IntensityFallback)
	assert.Equal(t, 30, r.Count)
	assert.Equal(t, HSL{20, 90, 55}, r.Palette.Primary)

	o, err := NamedField(presets.Fields, "sunset-calm")
	require.NoError(t, err)
	assert.Equal(t, 60, o.ParticleCount)
	assert.Equal(t, "calm", o.Intensity)

	// 覆盖的范围生效，其余保持默认
	assert.Equal(t, particle.Range{Min: 2, Max: 4}, presets.Spawn.BaseSize)
	assert.Equal(t, particle.DefaultSpawnRanges().MaxLife, presets.Spawn.MaxLife)

	// 内置条目仍然存在
	_, ok := presets.Table.Variants[VariantNebula]
	assert.True(t, ok)
	_, ok = presets.Fields[FieldNebula]
	assert.True(t, ok)
}

func TestApply_DoesNotMutateBase(t *testing.T) {
	base := DefaultPresets()
	pf, err := ParsePresetFile([]byte(sunsetPresets))
	require.NoError(t, err)

	_ = pf.Apply(base)

	if diff := cmp.Diff(DefaultPresets(), base); diff != "" {
		t.Errorf("base presets mutated (-want +got):\n%s", diff)
	}
}

func TestParsePresetFile_Empty(t *testing.T) {
	pf, err := ParsePresetFile(nil)
	require.NoError(t, err)
	assert.Empty(t, pf.Variants)
}

func TestParsePresetFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "colours: {}\n"},
		{"bad glow", "variants:\n  x: {glow: \"blue\"}\n"},
		{"bad saturation", "variants:\n  x: {primary: {h: 1, s: 120, l: 50}}\n"},
		{"negative multiplier", "intensities:\n  x: {count: -1}\n"},
		{"nan count multiplier", "intensities:\n  x: {count: .nan}\n"},
		{"infinite glow multiplier", "intensities:\n  x: {glow: .inf}\n"},
		{"huge count multiplier", "intensities:\n  x: {count: 1e12}\n"},
		{"nan hue", "variants:\n  x: {primary: {h: .nan, s: 50, l: 50}}\n"},
		{"bad range", "spawn:\n  baseSize: \"[4 2]\"\n"},
		{"invalid spawn", "spawn:\n  alpha: \"[0.5 2]\"\n"},
		{"not yaml", "variants: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePresetFile([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadPresetFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sunsetPresets), 0o644))

	presets, err := LoadPresetFile(path)
	require.NoError(t, err)
	_, ok := presets.Table.Variants["sunset"]
	assert.True(t, ok)

	_, err = LoadPresetFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadEmbeddedPresets(t *testing.T) {
	embedded.Reset()
	presets, err := LoadEmbeddedPresets()
	require.NoError(t, err)
	assert.Len(t, presets.Table.Variants, 6, "uninitialized embed falls back to built-ins")

	embedded.Init(fstest.MapFS{
		DefaultPresetsPath: {Data: []byte(sunsetPresets)},
	})
	defer embedded.Reset()

	presets, err = LoadEmbeddedPresets()
	require.NoError(t, err)
	assert.Len(t, presets.Table.Variants, 7)
}

func TestMarshalPresets_RoundTrip(t *testing.T) {
	data, err := MarshalPresets(DefaultPresets())
	require.NoError(t, err)

	pf, err := ParsePresetFile(data)
	require.NoError(t, err)
	got := pf.Apply(DefaultPresets())

	if diff := cmp.Diff(DefaultPresets().Table, got.Table); diff != "" {
		t.Errorf("table changed after round trip (-want +got):\n%s", diff)
	}
}
