package game

import (
	"errors"
	"os"
	"testing"

	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap/zaptest"

	"github.com/gonewx/particlefield/pkg/config"
)

// openTestStorage 在临时 HOME 下创建 gdata manager
func openTestStorage(t *testing.T, appName string) *gdata.Manager {
	t.Helper()
	tempDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tempDir)
	t.Cleanup(func() { os.Setenv("HOME", originalHome) })

	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return m
}

// TestDefaultSettings 测试 DefaultSettings() 返回正确的默认值
func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if settings.Variant != "aurora" {
		t.Errorf("Variant: got %q, want aurora", settings.Variant)
	}
	if settings.Intensity != "normal" {
		t.Errorf("Intensity: got %q, want normal", settings.Intensity)
	}
	if settings.ParticleCount != 120 {
		t.Errorf("ParticleCount: got %d, want 120", settings.ParticleCount)
	}
	if !settings.Enabled {
		t.Error("Enabled: got false, want true")
	}
	if settings.ReducedMotion {
		t.Error("ReducedMotion: got true, want false")
	}
	if !settings.AutoReduce {
		t.Error("AutoReduce: got false, want true")
	}
}

// TestNewSettingsManagerNilGdata 测试 gdataManager 为 nil 时的内存模式
func TestNewSettingsManagerNilGdata(t *testing.T) {
	sm := NewSettingsManager(nil, nil)

	if sm.Settings() == nil {
		t.Fatal("Settings() returned nil in memory-only mode")
	}
	if sm.Settings().Variant != "aurora" {
		t.Errorf("memory-only Variant: got %q, want aurora", sm.Settings().Variant)
	}

	if err := sm.Save(); !errors.Is(err, ErrNoStorage) {
		t.Errorf("Save() without storage: got %v, want ErrNoStorage", err)
	}
}

// TestSettingsLoadSave 测试 Load() 和 Save() 往返
func TestSettingsLoadSave(t *testing.T) {
	storage := openTestStorage(t, "test_field_settings")

	sm1 := NewSettingsManager(storage, zaptest.NewLogger(t))
	opts := config.DefaultFieldOptions()
	opts.Variant = "Nebula"
	opts.Intensity = "intense"
	opts.ParticleCount = 64
	sm1.Record(opts)
	sm1.SetPreset(config.FieldNebula)
	sm1.SetReducedMotion(true)
	sm1.SetEnabled(false)
	sm1.SetAutoReduce(false)

	if err := sm1.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	sm2 := NewSettingsManager(storage, zaptest.NewLogger(t))
	got := sm2.Settings()

	if got.Variant != "nebula" {
		t.Errorf("Loaded Variant: got %q, want nebula", got.Variant)
	}
	if got.Intensity != "intense" {
		t.Errorf("Loaded Intensity: got %q, want intense", got.Intensity)
	}
	if got.ParticleCount != 64 {
		t.Errorf("Loaded ParticleCount: got %d, want 64", got.ParticleCount)
	}
	if got.Preset != config.FieldNebula {
		t.Errorf("Loaded Preset: got %q, want %q", got.Preset, config.FieldNebula)
	}
	if !got.ReducedMotion {
		t.Error("Loaded ReducedMotion: got false, want true")
	}
	if got.Enabled {
		t.Error("Loaded Enabled: got true, want false")
	}
	if got.AutoReduce {
		t.Error("Loaded AutoReduce: got true, want false")
	}
}

// TestSettingsLoadCorrupt 测试损坏的设置数据回退到默认值
func TestSettingsLoadCorrupt(t *testing.T) {
	storage := openTestStorage(t, "test_field_settings_corrupt")

	if err := storage.SaveObjectProp(settingsObject, settingsProperty, []byte("variant: [unclosed")); err != nil {
		t.Fatalf("SaveObjectProp() error: %v", err)
	}

	sm := NewSettingsManager(storage, zaptest.NewLogger(t))
	if sm.Settings().Variant != "aurora" {
		t.Errorf("corrupt settings Variant: got %q, want aurora", sm.Settings().Variant)
	}
	if err := sm.Load(); err == nil {
		t.Error("Load() on corrupt data: expected error")
	}
}

// TestSettingsPartialDocument 测试缺失字段保留默认值
func TestSettingsPartialDocument(t *testing.T) {
	storage := openTestStorage(t, "test_field_settings_partial")

	if err := storage.SaveObjectProp(settingsObject, settingsProperty, []byte("variant: cosmic\n")); err != nil {
		t.Fatalf("SaveObjectProp() error: %v", err)
	}

	sm := NewSettingsManager(storage, nil)
	got := sm.Settings()
	if got.Variant != "cosmic" {
		t.Errorf("Variant: got %q, want cosmic", got.Variant)
	}
	if got.ParticleCount != config.DefaultParticleCount {
		t.Errorf("ParticleCount: got %d, want default", got.ParticleCount)
	}
	if !got.Enabled {
		t.Error("Enabled: missing field should keep default true")
	}
}

// TestFieldSettingsApplyTo 测试设置覆盖选项
func TestFieldSettingsApplyTo(t *testing.T) {
	base := config.DefaultFieldOptions()

	s := &FieldSettings{Variant: "quantum", ParticleCount: 0}
	got := s.ApplyTo(base)

	if got.Variant != "quantum" {
		t.Errorf("Variant: got %q, want quantum", got.Variant)
	}
	if got.Intensity != base.Intensity {
		t.Errorf("Intensity: empty setting should keep %q, got %q", base.Intensity, got.Intensity)
	}
	if got.ParticleCount != base.ParticleCount {
		t.Errorf("ParticleCount: zero setting should keep %d, got %d", base.ParticleCount, got.ParticleCount)
	}
}
