package game

import (
	"errors"
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gonewx/particlefield/pkg/config"
)

// ErrNoStorage 没有 gdata 存储（仅内存模式）时 Save 返回
var ErrNoStorage = errors.New("settings storage unavailable")

// FieldSettings 持久化的粒子场视觉设置
// 只保存用户选择，不保存任何粒子状态
type FieldSettings struct {
	Variant       string `yaml:"variant"`
	Intensity     string `yaml:"intensity"`
	ParticleCount int    `yaml:"particleCount"`
	// Preset 命名预设（如 neural-network），为空表示不使用
	Preset        string `yaml:"preset,omitempty"`
	ReducedMotion bool   `yaml:"reducedMotion"`
	Enabled       bool   `yaml:"enabled"`
	// AutoReduce 低性能设备上自动降级
	AutoReduce bool `yaml:"autoReduce"`
}

// DefaultSettings 返回默认设置
func DefaultSettings() *FieldSettings {
	return &FieldSettings{
		Variant:       string(config.DefaultVariant),
		Intensity:     string(config.DefaultIntensity),
		ParticleCount: config.DefaultParticleCount,
		Enabled:       true,
		AutoReduce:    true,
	}
}

// ApplyTo overlays the persisted choices onto opts.
func (s *FieldSettings) ApplyTo(opts config.FieldOptions) config.FieldOptions {
	if s.Variant != "" {
		opts.Variant = s.Variant
	}
	if s.Intensity != "" {
		opts.Intensity = s.Intensity
	}
	if s.ParticleCount > 0 {
		opts.ParticleCount = s.ParticleCount
	}
	return opts
}

// SettingsManager 设置管理器
// 负责设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // 可为 nil（仅内存模式）
	settings     *FieldSettings
	logger       *zap.Logger
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "field"
)

// NewSettingsManager 创建设置管理器并尝试加载已保存的设置
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（仅内存设置）
//   - logger: 可为 nil
//
// 加载失败不是致命错误，使用默认设置并记录警告。
func NewSettingsManager(gdataManager *gdata.Manager, logger *zap.Logger) *SettingsManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
		logger:       logger.Named("settings"),
	}
	if err := sm.Load(); err != nil {
		sm.logger.Warn("failed to load settings, using defaults", zap.Error(err))
	}
	return sm
}

// Load 从 gdata 加载设置
//
// gdataManager 为 nil 或设置不存在时使用默认设置。
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil || !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("load settings: %w", err)
	}

	// 缺失的字段保留默认值
	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("unmarshal settings: %w", err)
	}

	sm.settings = loaded
	sm.logger.Debug("settings loaded", zap.String("variant", loaded.Variant), zap.String("intensity", loaded.Intensity))
	return nil
}

// Save 保存设置到 gdata
//
// 没有存储时返回 ErrNoStorage，调用方可用 errors.Is 判断后忽略。
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return ErrNoStorage
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	sm.logger.Debug("settings saved")
	return nil
}

// Settings 获取当前设置
func (sm *SettingsManager) Settings() *FieldSettings {
	return sm.settings
}

// Record 记录当前选项（只修改内存，需调用 Save 持久化）
func (sm *SettingsManager) Record(opts config.FieldOptions) {
	opts = opts.Normalize()
	sm.settings.Variant = opts.Variant
	sm.settings.Intensity = opts.Intensity
	sm.settings.ParticleCount = opts.ParticleCount
}

// SetPreset 记录命名预设
func (sm *SettingsManager) SetPreset(name string) {
	sm.settings.Preset = name
}

// SetReducedMotion 设置减少动态效果
func (sm *SettingsManager) SetReducedMotion(reduced bool) {
	sm.settings.ReducedMotion = reduced
}

// SetEnabled 启用或停用粒子场
func (sm *SettingsManager) SetEnabled(enabled bool) {
	sm.settings.Enabled = enabled
}

// SetAutoReduce 设置低性能设备自动降级
func (sm *SettingsManager) SetAutoReduce(enabled bool) {
	sm.settings.AutoReduce = enabled
}
