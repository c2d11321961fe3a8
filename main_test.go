package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/particlefield/pkg/config"
	"github.com/gonewx/particlefield/pkg/game"
)

func parseRoot(t *testing.T, args ...string) (*rootFlags, func(*game.FieldSettings) (config.FieldOptions, error)) {
	t.Helper()
	cmd, f := newRootCmd()
	require.NoError(t, cmd.ParseFlags(args))
	presets := config.DefaultPresets()
	return f, func(s *game.FieldSettings) (config.FieldOptions, error) {
		return resolveOptions(cmd, f, presets, s)
	}
}

func TestResolveOptions_Defaults(t *testing.T) {
	_, resolve := parseRoot(t)
	opts, err := resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultFieldOptions(), opts)
}

func TestResolveOptions_SettingsThenFlags(t *testing.T) {
	settings := game.DefaultSettings()
	settings.Variant = "cosmic"
	settings.ParticleCount = 60

	_, resolve := parseRoot(t, "--count", "90", "--no-trails")
	opts, err := resolve(settings)
	require.NoError(t, err)

	assert.Equal(t, "cosmic", opts.Variant, "saved variant kept")
	assert.Equal(t, 90, opts.ParticleCount, "explicit flag wins")
	assert.False(t, opts.ShowTrails)
	assert.True(t, opts.EnableGlow)
}

func TestResolveOptions_NamedPreset(t *testing.T) {
	_, resolve := parseRoot(t, "--preset", "Neural-Network", "--intensity", "intense")
	opts, err := resolve(nil)
	require.NoError(t, err)

	assert.Equal(t, "neural", opts.Variant)
	assert.Equal(t, "intense", opts.Intensity)
	assert.Equal(t, 80, opts.ParticleCount)
	assert.Equal(t, 180.0, opts.ConnectionDistance)
	assert.False(t, opts.ShowTrails)
}

func TestResolveOptions_SavedPresetUsedWithoutFlag(t *testing.T) {
	settings := game.DefaultSettings()
	settings.Preset = config.FieldNebula

	_, resolve := parseRoot(t)
	opts, err := resolve(settings)
	require.NoError(t, err)
	assert.Equal(t, 200, opts.ParticleCount)
	assert.Equal(t, 200.0, opts.DepthRange)
}

func TestResolveOptions_PresetKeepsUnsetSettings(t *testing.T) {
	cmd, f := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--preset", "dim"}))
	presets := config.DefaultPresets()
	noGlow := false
	presets.Fields["dim"] = config.FieldOverride{EnableGlow: &noGlow}

	settings := game.DefaultSettings()
	settings.Variant = "cosmic"
	settings.ParticleCount = 60

	opts, err := resolveOptions(cmd, f, presets, settings)
	require.NoError(t, err)
	assert.False(t, opts.EnableGlow, "preset field applied")
	assert.Equal(t, "cosmic", opts.Variant, "saved variant survives a preset that does not set it")
	assert.Equal(t, 60, opts.ParticleCount)
}

func TestResolveOptions_UnknownPreset(t *testing.T) {
	_, resolve := parseRoot(t, "--preset", "nope")
	_, err := resolve(nil)
	assert.ErrorIs(t, err, config.ErrUnknownPreset)
}

func TestBuildLogger_Level(t *testing.T) {
	l, err := buildLogger(false, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1), "debug disabled without --verbose")

	l, err = buildLogger(true, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(-1))
}

func TestLoadPresets_MissingFile(t *testing.T) {
	_, err := loadPresets(t.TempDir() + "/missing.yaml")
	assert.Error(t, err)
}
