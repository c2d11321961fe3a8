package config

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Variant 选择粒子场的调色板
type Variant string

const (
	VariantAurora  Variant = "aurora"
	VariantCosmic  Variant = "cosmic"
	VariantNeural  Variant = "neural"
	VariantEnergy  Variant = "energy"
	VariantQuantum Variant = "quantum"
	VariantNebula  Variant = "nebula"

	// DefaultVariant 未知变体回退到 aurora
	DefaultVariant = VariantAurora
)

// Intensity 选择倍数档位
type Intensity string

const (
	IntensitySubtle  Intensity = "subtle"
	IntensityNormal  Intensity = "normal"
	IntensityIntense Intensity = "intense"
	IntensityExtreme Intensity = "extreme"

	// DefaultIntensity 未知档位回退到 normal
	DefaultIntensity = IntensityNormal
)

const (
	// MaxParticleCount 解析后的粒子数上限，超出部分被截断
	MaxParticleCount = 5000
	// MaxCountMultiplier 预设文件中数量倍数的上限
	MaxCountMultiplier = 10.0
)

// ErrUnknownPreset is returned by the strict parsers for names that are not
// in the preset table.
var ErrUnknownPreset = errors.New("unknown preset")

// HSL is a hue/saturation/lightness triplet.
// Hue in degrees [0, 360), saturation and lightness in percent [0, 100].
type HSL struct {
	H float64 `yaml:"h"`
	S float64 `yaml:"s"`
	L float64 `yaml:"l"`
}

// Palette 调色板：三个锚点颜色 + 光晕颜色
type Palette struct {
	Primary   HSL    `yaml:"primary"`
	Secondary HSL    `yaml:"secondary"`
	Accent    HSL    `yaml:"accent"`
	Glow      string `yaml:"glow"` // CSS rgba() 字符串，例如 "rgba(139, 92, 246, 0.6)"
}

// GlowColor parses Glow into a non-premultiplied color.
// An unparsable glow string yields a neutral violet.
func (p Palette) GlowColor() color.NRGBA {
	c, err := ParseRGBA(p.Glow)
	if err != nil {
		return color.NRGBA{R: 139, G: 92, B: 246, A: 153}
	}
	return c
}

// Multipliers 强度档位倍数
type Multipliers struct {
	Count      float64 `yaml:"count"`
	Size       float64 `yaml:"size"`
	Glow       float64 `yaml:"glow"`
	Speed      float64 `yaml:"speed"`
	Connection float64 `yaml:"connection"`
}

// PresetTable maps variants to palettes and intensities to multipliers.
// Tables are treated as immutable once built; overrides produce a copy.
type PresetTable struct {
	Variants    map[Variant]Palette
	Intensities map[Intensity]Multipliers
}

// DefaultPresetTable 返回内置预设表
func DefaultPresetTable() *PresetTable {
	return &PresetTable{
		Variants: map[Variant]Palette{
			VariantAurora: {
				Primary:   HSL{280, 80, 60}, // 紫罗兰
				Secondary: HSL{320, 90, 55}, // 品红
				Accent:    HSL{190, 85, 55}, // 青色
				Glow:      "rgba(139, 92, 246, 0.6)",
			},
			VariantCosmic: {
				Primary:   HSL{260, 70, 50}, // 靛蓝
				Secondary: HSL{200, 80, 45}, // 蓝
				Accent:    HSL{170, 75, 50}, // 蓝绿
				Glow:      "rgba(99, 102, 241, 0.6)",
			},
			VariantNeural: {
				Primary:   HSL{200, 90, 55}, // 青色
				Secondary: HSL{260, 75, 60}, // 紫色
				Accent:    HSL{45, 95, 55},  // 金色
				Glow:      "rgba(6, 182, 212, 0.6)",
			},
			VariantEnergy: {
				Primary:   HSL{160, 85, 50}, // 翡翠绿
				Secondary: HSL{130, 70, 55}, // 绿
				Accent:    HSL{45, 95, 60},  // 黄
				Glow:      "rgba(16, 185, 129, 0.6)",
			},
			VariantQuantum: {
				Primary:   HSL{280, 100, 65}, // 亮紫
				Secondary: HSL{200, 100, 60}, // 亮青
				Accent:    HSL{330, 100, 65}, // 亮粉
				Glow:      "rgba(167, 139, 250, 0.7)",
			},
			VariantNebula: {
				Primary:   HSL{300, 70, 45}, // 深紫
				Secondary: HSL{340, 80, 50}, // 玫瑰
				Accent:    HSL{20, 90, 55},  // 橙
				Glow:      "rgba(192, 132, 252, 0.6)",
			},
		},
		Intensities: map[Intensity]Multipliers{
			IntensitySubtle:  {Count: 0.5, Size: 0.7, Glow: 0.4, Speed: 0.6, Connection: 0.5},
			IntensityNormal:  {Count: 1, Size: 1, Glow: 0.7, Speed: 1, Connection: 1},
			IntensityIntense: {Count: 1.5, Size: 1.2, Glow: 1, Speed: 1.3, Connection: 1.3},
			IntensityExtreme: {Count: 2, Size: 1.5, Glow: 1.3, Speed: 1.6, Connection: 1.5},
		},
	}
}

// Clone returns a deep copy of the table.
func (t *PresetTable) Clone() *PresetTable {
	c := &PresetTable{
		Variants:    make(map[Variant]Palette, len(t.Variants)),
		Intensities: make(map[Intensity]Multipliers, len(t.Intensities)),
	}
	for k, v := range t.Variants {
		c.Variants[k] = v
	}
	for k, v := range t.Intensities {
		c.Intensities[k] = v
	}
	return c
}

// VariantNames returns the variant names in sorted order.
func (t *PresetTable) VariantNames() []Variant {
	names := make([]Variant, 0, len(t.Variants))
	for v := range t.Variants {
		names = append(names, v)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// IntensityNames returns the intensity names ordered by count multiplier.
func (t *PresetTable) IntensityNames() []Intensity {
	names := make([]Intensity, 0, len(t.Intensities))
	for i := range t.Intensities {
		names = append(names, i)
	}
	sort.Slice(names, func(a, b int) bool {
		ma, mb := t.Intensities[names[a]], t.Intensities[names[b]]
		if ma.Count != mb.Count {
			return ma.Count < mb.Count
		}
		return names[a] < names[b]
	})
	return names
}

// ResolvedPreset 是配置解析的结果
type ResolvedPreset struct {
	Variant     Variant
	Intensity   Intensity
	Count       int // 请求数量 × count 倍数（向下取整）
	Multipliers Multipliers
	Palette     Palette

	// VariantFallback / IntensityFallback 标记输入是否被回退到默认值
	VariantFallback   bool
	IntensityFallback bool
}

// Resolve maps (variant, intensity, requested count) to concrete parameters.
//
// Unknown variant or intensity names fall back to DefaultVariant and
// DefaultIntensity; the fallback is reported on the result rather than as an
// error. Names are matched case-insensitively. Negative counts resolve to 0.
// The function is pure: identical inputs against the same table always yield
// identical output.
func (t *PresetTable) Resolve(variant, intensity string, requestedCount int) ResolvedPreset {
	out := ResolvedPreset{}

	v := Variant(normalizeName(variant))
	palette, ok := t.Variants[v]
	if !ok {
		v = DefaultVariant
		palette, ok = t.Variants[v]
		if !ok {
			palette = DefaultPresetTable().Variants[DefaultVariant]
		}
		out.VariantFallback = true
	}

	in := Intensity(normalizeName(intensity))
	mult, ok := t.Intensities[in]
	if !ok {
		in = DefaultIntensity
		mult, ok = t.Intensities[in]
		if !ok {
			mult = DefaultPresetTable().Intensities[DefaultIntensity]
		}
		out.IntensityFallback = true
	}

	if requestedCount < 0 {
		requestedCount = 0
	}

	out.Variant = v
	out.Intensity = in
	out.Palette = palette
	out.Multipliers = mult
	count := math.Floor(float64(requestedCount) * mult.Count)
	switch {
	case math.IsNaN(count) || count < 0:
		count = 0
	case count > MaxParticleCount:
		count = MaxParticleCount
	}
	out.Count = int(count)
	return out
}

// Resolve resolves against the built-in preset table.
func Resolve(variant, intensity string, requestedCount int) ResolvedPreset {
	return builtinTable.Resolve(variant, intensity, requestedCount)
}

var builtinTable = DefaultPresetTable()

// ParseVariant strictly parses a variant name against the table.
func (t *PresetTable) ParseVariant(s string) (Variant, error) {
	v := Variant(normalizeName(s))
	if _, ok := t.Variants[v]; !ok {
		return "", fmt.Errorf("variant %q: %w", s, ErrUnknownPreset)
	}
	return v, nil
}

// ParseIntensity strictly parses an intensity name against the table.
func (t *PresetTable) ParseIntensity(s string) (Intensity, error) {
	in := Intensity(normalizeName(s))
	if _, ok := t.Intensities[in]; !ok {
		return "", fmt.Errorf("intensity %q: %w", s, ErrUnknownPreset)
	}
	return in, nil
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseRGBA parses a CSS "rgba(r, g, b, a)" or "rgb(r, g, b)" string.
func ParseRGBA(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	var body string
	switch {
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		body = s[len("rgba(") : len(s)-1]
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		body = s[len("rgb(") : len(s)-1]
	default:
		return color.NRGBA{}, fmt.Errorf("color %q: expected rgb() or rgba()", s)
	}

	parts := strings.Split(body, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("color %q: expected 3 or 4 components", s)
	}

	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return color.NRGBA{}, fmt.Errorf("color %q: channel %d out of range", s, i)
		}
		rgb[i] = uint8(n)
	}

	alpha := 1.0
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return color.NRGBA{}, fmt.Errorf("color %q: alpha out of range", s)
		}
		alpha = a
	}

	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: uint8(math.Round(alpha * 255))}, nil
}
