package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gonewx/particlefield/internal/particle"
	"github.com/gonewx/particlefield/pkg/embedded"
	"gopkg.in/yaml.v3"
)

// DefaultPresetsPath 内嵌默认预设文件路径
const DefaultPresetsPath = "data/presets.yaml"

// PresetFile 预设文件的顶层结构
//
// 示例：
//
//	variants:
//	  sunset:
//	    primary: {h: 20, s: 90, l: 55}
//	    secondary: {h: 340, s: 80, l: 50}
//	    accent: {h: 50, s: 95, l: 60}
//	    glow: "rgba(251, 146, 60, 0.6)"
//	intensities:
//	  calm: {count: 0.3, size: 0.8, glow: 0.3, speed: 0.4, connection: 0.6}
//	fields:
//	  sunset-calm: {variant: sunset, intensity: calm, particle_count: 60}
//	spawn:
//	  baseSize: "[2 4]"
type PresetFile struct {
	Variants    map[string]Palette       `yaml:"variants,omitempty"`
	Intensities map[string]Multipliers   `yaml:"intensities,omitempty"`
	Fields      map[string]FieldOverride `yaml:"fields,omitempty"`
	Spawn       *particle.SpawnRanges    `yaml:"spawn,omitempty"`
}

// Presets 合并后的完整预设集合：预设表 + 命名粒子场 + 生成范围
type Presets struct {
	Table  *PresetTable
	Fields map[string]FieldOverride
	Spawn  particle.SpawnRanges
}

// DefaultPresets 返回内置预设（不读取任何文件）
func DefaultPresets() *Presets {
	return &Presets{
		Table:  DefaultPresetTable(),
		Fields: DefaultNamedFields(),
		Spawn:  particle.DefaultSpawnRanges(),
	}
}

// ParsePresetFile decodes a preset document. Unknown keys are rejected so
// typos surface as errors instead of silently falling back to defaults.
func ParsePresetFile(data []byte) (*PresetFile, error) {
	var pf PresetFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		// 空文档视为空预设
		if errors.Is(err, io.EOF) {
			return &pf, nil
		}
		return nil, fmt.Errorf("failed to parse preset file: %w", err)
	}
	if err := pf.Validate(); err != nil {
		return nil, err
	}
	return &pf, nil
}

// Validate checks value ranges of every entry in the file.
func (pf *PresetFile) Validate() error {
	for name, p := range pf.Variants {
		if name == "" {
			return fmt.Errorf("variant with empty name")
		}
		for _, c := range []HSL{p.Primary, p.Secondary, p.Accent} {
			if !finite(c.H) || !finite(c.S) || !finite(c.L) {
				return fmt.Errorf("variant %q: hue, saturation and lightness must be finite", name)
			}
			if c.S < 0 || c.S > 100 || c.L < 0 || c.L > 100 {
				return fmt.Errorf("variant %q: saturation and lightness must be within [0, 100]", name)
			}
		}
		if p.Glow != "" {
			if _, err := ParseRGBA(p.Glow); err != nil {
				return fmt.Errorf("variant %q: %w", name, err)
			}
		}
	}
	for name, m := range pf.Intensities {
		for _, v := range []float64{m.Count, m.Size, m.Glow, m.Speed, m.Connection} {
			if !finite(v) || v < 0 {
				return fmt.Errorf("intensity %q: multipliers must be finite and non-negative", name)
			}
		}
		if m.Count > MaxCountMultiplier {
			return fmt.Errorf("intensity %q: count multiplier %g exceeds %g", name, m.Count, MaxCountMultiplier)
		}
	}
	if pf.Spawn != nil {
		merged := particle.DefaultSpawnRanges().Merge(*pf.Spawn)
		if err := merged.Validate(); err != nil {
			return fmt.Errorf("spawn: %w", err)
		}
	}
	return nil
}

// Apply merges the file over base and returns a new preset set.
// base is not modified.
func (pf *PresetFile) Apply(base *Presets) *Presets {
	out := &Presets{
		Table:  base.Table.Clone(),
		Fields: make(map[string]FieldOverride, len(base.Fields)+len(pf.Fields)),
		Spawn:  base.Spawn,
	}
	for k, v := range base.Fields {
		out.Fields[k] = v
	}

	for name, p := range pf.Variants {
		out.Table.Variants[Variant(normalizeName(name))] = p
	}
	for name, m := range pf.Intensities {
		out.Table.Intensities[Intensity(normalizeName(name))] = m
	}
	for name, f := range pf.Fields {
		out.Fields[normalizeName(name)] = f
	}
	if pf.Spawn != nil {
		out.Spawn = out.Spawn.Merge(*pf.Spawn)
	}
	return out
}

// LoadPresetFile reads and merges a preset file from disk over the
// built-in presets.
func LoadPresetFile(path string) (*Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file %s: %w", path, err)
	}
	pf, err := ParsePresetFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pf.Apply(DefaultPresets()), nil
}

// LoadEmbeddedPresets 加载内嵌的默认预设文件
// 内嵌文件系统未初始化时返回内置预设
func LoadEmbeddedPresets() (*Presets, error) {
	if !embedded.IsInitialized() {
		return DefaultPresets(), nil
	}
	data, err := embedded.ReadFile(DefaultPresetsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded presets: %w", err)
	}
	pf, err := ParsePresetFile(data)
	if err != nil {
		return nil, fmt.Errorf("embedded presets: %w", err)
	}
	return pf.Apply(DefaultPresets()), nil
}

// MarshalPresets 将预设集合序列化为预设文件格式（用于导出）
func MarshalPresets(p *Presets) ([]byte, error) {
	pf := PresetFile{
		Variants:    make(map[string]Palette, len(p.Table.Variants)),
		Intensities: make(map[string]Multipliers, len(p.Table.Intensities)),
		Fields:      p.Fields,
		Spawn:       &p.Spawn,
	}
	for k, v := range p.Table.Variants {
		pf.Variants[string(k)] = v
	}
	for k, v := range p.Table.Intensities {
		pf.Intensities[string(k)] = v
	}
	data, err := yaml.Marshal(&pf)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal presets: %w", err)
	}
	return data, nil
}
