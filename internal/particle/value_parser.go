// Package particle provides the spawn-parameter schema used to seed
// particle-field particles, along with the range and keyframe syntax those
// parameters are written in.
package particle

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Range is a closed-open numeric interval [Min, Max) that is sampled
// uniformly when a particle is created.
type Range struct {
	Min float64
	Max float64
}

// Fixed returns a Range that always samples v.
func Fixed(v float64) Range {
	return Range{Min: v, Max: v}
}

// IsZero reports whether the range is unset.
func (r Range) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

// Sample draws a value from the range using rng.
func (r Range) Sample(rng *rand.Rand) float64 {
	return RandomInRange(rng, r.Min, r.Max)
}

// String formats the range in the same syntax ParseRange accepts.
func (r Range) String() string {
	if r.Min == r.Max {
		return strconv.FormatFloat(r.Min, 'g', -1, 64)
	}
	return fmt.Sprintf("[%s %s]",
		strconv.FormatFloat(r.Min, 'g', -1, 64),
		strconv.FormatFloat(r.Max, 'g', -1, 64))
}

// ParseRange parses a range value.
// Supports:
//   - Fixed value: "1500" → [1500, 1500]
//   - Range: "[0.7 0.9]" → [0.7, 0.9]
//   - Single bracketed value: "[2]" → [2, 2]
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, fmt.Errorf("empty range")
	}

	if strings.HasPrefix(s, "[") || strings.HasSuffix(s, "]") {
		if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
			return Range{}, fmt.Errorf("unbalanced brackets in range %q", s)
		}
		parts := strings.Fields(strings.TrimSuffix(strings.TrimPrefix(s, "["), "]"))
		switch len(parts) {
		case 1:
			v, err := strconv.ParseFloat(parts[0], 64)
			if err != nil {
				return Range{}, fmt.Errorf("invalid range %q: %w", s, err)
			}
			return Fixed(v), nil
		case 2:
			lo, err := strconv.ParseFloat(parts[0], 64)
			if err != nil {
				return Range{}, fmt.Errorf("invalid range min %q: %w", s, err)
			}
			hi, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return Range{}, fmt.Errorf("invalid range max %q: %w", s, err)
			}
			if lo > hi {
				return Range{}, fmt.Errorf("range %q has min > max", s)
			}
			return Range{Min: lo, Max: hi}, nil
		default:
			return Range{}, fmt.Errorf("range %q must have one or two values", s)
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Range{}, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return Fixed(v), nil
}

// UnmarshalYAML accepts either a bare number or a range string.
func (r *Range) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: range must be a scalar", node.Line)
	}
	parsed, err := ParseRange(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*r = parsed
	return nil
}

// MarshalYAML writes the range back in its string form.
func (r Range) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}

// Keyframe is a single point of a curve over normalized time (0-1).
type Keyframe struct {
	Time  float64
	Value float64
}

// Curve is a piecewise-linear function of normalized time, written as
// "time,value" pairs: "0,0.7 0.5,1 1,0.7".
type Curve []Keyframe

// ParseCurve parses "time,value" pairs separated by whitespace.
// Keyframes must be given in ascending time order.
func ParseCurve(s string) (Curve, error) {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty curve")
	}

	curve := make(Curve, 0, len(parts))
	for _, part := range parts {
		pair := strings.Split(part, ",")
		if len(pair) != 2 {
			return nil, fmt.Errorf("keyframe %q must be time,value", part)
		}
		tm, err1 := strconv.ParseFloat(pair[0], 64)
		val, err2 := strconv.ParseFloat(pair[1], 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("keyframe %q is not numeric", part)
		}
		if n := len(curve); n > 0 && tm < curve[n-1].Time {
			return nil, fmt.Errorf("keyframe %q is out of order", part)
		}
		curve = append(curve, Keyframe{Time: tm, Value: val})
	}
	return curve, nil
}

// UnmarshalYAML reads a curve from its string form.
func (c *Curve) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseCurve(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*c = parsed
	return nil
}

// MarshalYAML writes the curve back as "time,value" pairs.
func (c Curve) MarshalYAML() (interface{}, error) {
	parts := make([]string, len(c))
	for i, k := range c {
		parts[i] = strconv.FormatFloat(k.Time, 'g', -1, 64) + "," + strconv.FormatFloat(k.Value, 'g', -1, 64)
	}
	return strings.Join(parts, " "), nil
}

// Evaluate returns the linearly interpolated value at t, clamped to the
// first and last keyframes. An empty curve evaluates to 1.
func (c Curve) Evaluate(t float64) float64 {
	if len(c) == 0 {
		return 1
	}
	if len(c) == 1 || t <= c[0].Time {
		return c[0].Value
	}

	for i := 0; i < len(c)-1; i++ {
		k0, k1 := c[i], c[i+1]
		if t >= k0.Time && t <= k1.Time {
			span := k1.Time - k0.Time
			if span <= 0 {
				return k0.Value
			}
			ratio := (t - k0.Time) / span
			return k0.Value + ratio*(k1.Value-k0.Value)
		}
	}
	return c[len(c)-1].Value
}

// RandomInRange returns a random float64 in [min, max).
// A nil rng falls back to the package-level source.
func RandomInRange(rng *rand.Rand, min, max float64) float64 {
	if min >= max {
		return min
	}
	var f float64
	if rng != nil {
		f = rng.Float64()
	} else {
		f = rand.Float64()
	}
	v := min + f*(max-min)
	// Float rounding can land exactly on max for tiny spans.
	if v >= max {
		v = math.Nextafter(max, min)
	}
	return v
}

func errorf(format string, args ...interface{}) error {
	return fmt.Errorf("spawn ranges: "+format, args...)
}
