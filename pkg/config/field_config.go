package config

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// FieldOptions 粒子场的全部可配置选项
// 零值不可直接使用，请从 DefaultFieldOptions() 开始修改
type FieldOptions struct {
	Variant            string  `yaml:"variant"`
	Intensity          string  `yaml:"intensity"`
	ParticleCount      int     `yaml:"particle_count"`
	Interactive        bool    `yaml:"interactive"`
	ScrollEffect       bool    `yaml:"scroll_effect"`
	MouseRadius        float64 `yaml:"mouse_radius"`        // 指针排斥半径（像素），再乘以 connection 倍数
	ConnectionDistance float64 `yaml:"connection_distance"` // 连线距离阈值（像素），0 = 不画连线
	ShowTrails         bool    `yaml:"show_trails"`
	EnableGlow         bool    `yaml:"enable_glow"`
	Speed              float64 `yaml:"speed"`
	DepthRange         float64 `yaml:"depth_range"` // 深度范围，必须 > 0
}

// 默认选项
const (
	DefaultParticleCount      = 120
	DefaultMouseRadius        = 150.0
	DefaultConnectionDistance = 120.0
	DefaultSpeed              = 1.0
	DefaultDepthRange         = 150.0
)

// DefaultFieldOptions 返回默认选项
func DefaultFieldOptions() FieldOptions {
	return FieldOptions{
		Variant:            string(DefaultVariant),
		Intensity:          string(DefaultIntensity),
		ParticleCount:      DefaultParticleCount,
		Interactive:        true,
		ScrollEffect:       true,
		MouseRadius:        DefaultMouseRadius,
		ConnectionDistance: DefaultConnectionDistance,
		ShowTrails:         true,
		EnableGlow:         true,
		Speed:              DefaultSpeed,
		DepthRange:         DefaultDepthRange,
	}
}

// Normalize returns a copy with out-of-range numeric values replaced.
// Negative counts become 0, non-positive or non-finite depth falls back to
// the default, negative distances and speeds are clamped to 0.
func (o FieldOptions) Normalize() FieldOptions {
	if o.ParticleCount < 0 {
		o.ParticleCount = 0
	}
	if !finite(o.DepthRange) || o.DepthRange <= 0 {
		o.DepthRange = DefaultDepthRange
	}
	if !finite(o.Speed) || o.Speed < 0 {
		o.Speed = 0
	}
	if !finite(o.MouseRadius) || o.MouseRadius < 0 {
		o.MouseRadius = 0
	}
	if !finite(o.ConnectionDistance) || o.ConnectionDistance < 0 {
		o.ConnectionDistance = 0
	}
	o.Variant = normalizeName(o.Variant)
	o.Intensity = normalizeName(o.Intensity)
	return o
}

// ReinitKey 标识需要重新分配粒子存储的选项组合
// 这些字段任一变化都会触发完整的重新初始化
type ReinitKey struct {
	Variant       string
	Intensity     string
	ParticleCount int
	DepthRange    float64
	Speed         float64
}

// ReinitKey returns the subset of options whose change forces reallocation.
func (o FieldOptions) ReinitKey() ReinitKey {
	n := o.Normalize()
	return ReinitKey{
		Variant:       n.Variant,
		Intensity:     n.Intensity,
		ParticleCount: n.ParticleCount,
		DepthRange:    n.DepthRange,
		Speed:         n.Speed,
	}
}

// String 用于日志
func (o FieldOptions) String() string {
	return fmt.Sprintf("%s/%s count=%d speed=%.2f depth=%.0f conn=%.0f trails=%t glow=%t",
		o.Variant, o.Intensity, o.ParticleCount, o.Speed, o.DepthRange,
		o.ConnectionDistance, o.ShowTrails, o.EnableGlow)
}

// FieldOverride 命名预设对默认选项的局部覆盖
// 指针字段为 nil 表示沿用基础值
type FieldOverride struct {
	Variant            *string  `yaml:"variant,omitempty"`
	Intensity          *string  `yaml:"intensity,omitempty"`
	ParticleCount      *int     `yaml:"particle_count,omitempty"`
	Interactive        *bool    `yaml:"interactive,omitempty"`
	ScrollEffect       *bool    `yaml:"scroll_effect,omitempty"`
	MouseRadius        *float64 `yaml:"mouse_radius,omitempty"`
	ConnectionDistance *float64 `yaml:"connection_distance,omitempty"`
	ShowTrails         *bool    `yaml:"show_trails,omitempty"`
	EnableGlow         *bool    `yaml:"enable_glow,omitempty"`
	Speed              *float64 `yaml:"speed,omitempty"`
	DepthRange         *float64 `yaml:"depth_range,omitempty"`
}

// Apply overlays the non-nil fields of f onto base.
func (f FieldOverride) Apply(base FieldOptions) FieldOptions {
	if f.Variant != nil {
		base.Variant = *f.Variant
	}
	if f.Intensity != nil {
		base.Intensity = *f.Intensity
	}
	if f.ParticleCount != nil {
		base.ParticleCount = *f.ParticleCount
	}
	if f.Interactive != nil {
		base.Interactive = *f.Interactive
	}
	if f.ScrollEffect != nil {
		base.ScrollEffect = *f.ScrollEffect
	}
	if f.MouseRadius != nil {
		base.MouseRadius = *f.MouseRadius
	}
	if f.ConnectionDistance != nil {
		base.ConnectionDistance = *f.ConnectionDistance
	}
	if f.ShowTrails != nil {
		base.ShowTrails = *f.ShowTrails
	}
	if f.EnableGlow != nil {
		base.EnableGlow = *f.EnableGlow
	}
	if f.Speed != nil {
		base.Speed = *f.Speed
	}
	if f.DepthRange != nil {
		base.DepthRange = *f.DepthRange
	}
	return base
}

// 内置命名粒子场
const (
	FieldAuroraQuantum = "aurora-quantum"
	FieldCosmicQuantum = "cosmic-quantum"
	FieldNeuralNetwork = "neural-network"
	FieldEnergyFlow    = "energy-flow"
	FieldNebula        = "nebula"
)

func ptr[T any](v T) *T { return &v }

// DefaultNamedFields 返回内置命名粒子场
func DefaultNamedFields() map[string]FieldOverride {
	return map[string]FieldOverride{
		FieldAuroraQuantum: {
			Variant:       ptr(string(VariantAurora)),
			Intensity:     ptr(string(IntensityNormal)),
			ParticleCount: ptr(100),
			ShowTrails:    ptr(true),
			EnableGlow:    ptr(true),
		},
		FieldCosmicQuantum: {
			Variant:       ptr(string(VariantCosmic)),
			Intensity:     ptr(string(IntensityIntense)),
			ParticleCount: ptr(150),
			ShowTrails:    ptr(true),
			EnableGlow:    ptr(true),
			Speed:         ptr(0.8),
		},
		FieldNeuralNetwork: {
			Variant:            ptr(string(VariantNeural)),
			Intensity:          ptr(string(IntensityNormal)),
			ParticleCount:      ptr(80),
			ConnectionDistance: ptr(180.0),
			ShowTrails:         ptr(false),
			EnableGlow:         ptr(true),
		},
		FieldEnergyFlow: {
			Variant:       ptr(string(VariantEnergy)),
			Intensity:     ptr(string(IntensityIntense)),
			ParticleCount: ptr(120),
			ShowTrails:    ptr(true),
			Speed:         ptr(1.2),
		},
		FieldNebula: {
			Variant:       ptr(string(VariantNebula)),
			Intensity:     ptr(string(IntensitySubtle)),
			ParticleCount: ptr(200),
			ShowTrails:    ptr(true),
			EnableGlow:    ptr(true),
			Speed:         ptr(0.5),
			DepthRange:    ptr(200.0),
		},
	}
}

// LookupField returns the override registered under name.
// The lookup is case-insensitive.
func LookupField(fields map[string]FieldOverride, name string) (FieldOverride, error) {
	f, ok := fields[normalizeName(name)]
	if !ok {
		return FieldOverride{}, fmt.Errorf("field %q (known: %s): %w",
			name, strings.Join(FieldNames(fields), ", "), ErrUnknownPreset)
	}
	return f, nil
}

// NamedField looks up a named field in fields and applies it over the
// defaults.
func NamedField(fields map[string]FieldOverride, name string) (FieldOptions, error) {
	f, err := LookupField(fields, name)
	if err != nil {
		return FieldOptions{}, err
	}
	return f.Apply(DefaultFieldOptions()), nil
}

// FieldNames returns the sorted field names.
func FieldNames(fields map[string]FieldOverride) []string {
	names := make([]string, 0, len(fields))
	for n := range fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
