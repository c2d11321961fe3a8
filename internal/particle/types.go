package particle

// SpawnRanges describes the randomized initial state of a field particle.
//
// Every range is written in the range syntax understood by ParseRange, so a
// preset file can say `baseSize: "[1.5 4.5]"` or `orbitRadius: 30`.
// Sizes are in pixels before the intensity size multiplier is applied;
// lifetimes are in normalized frames (1 frame ≈ 1/60 s).
type SpawnRanges struct {
	// Size (尺寸, 像素)
	BaseSize Range `yaml:"baseSize,omitempty"`

	// Base transparency (0-1); re-sampled on every life wrap
	Alpha Range `yaml:"alpha,omitempty"`

	// Lifecycle (生命周期, 帧)
	MaxLife Range `yaml:"maxLife,omitempty"`

	// Initial responsiveness; the relaxation baseline is drawn from EnergyBaseline
	Energy         Range `yaml:"energy,omitempty"`
	EnergyBaseline Range `yaml:"energyBaseline,omitempty"`

	// Orbit (轨道运动)
	OrbitRadius Range `yaml:"orbitRadius,omitempty"`
	OrbitSpeed  Range `yaml:"orbitSpeed,omitempty"` // radians per frame

	// Velocity spread (速度), centered on zero and scaled by the speed option
	Velocity      Range `yaml:"velocity,omitempty"`
	DepthVelocity Range `yaml:"depthVelocity,omitempty"`

	// LifeFade maps normalized life (0-1) to an alpha multiplier.
	LifeFade Curve `yaml:"lifeFade,omitempty"`
}

// DefaultSpawnRanges returns the built-in spawn ranges.
func DefaultSpawnRanges() SpawnRanges {
	return SpawnRanges{
		BaseSize:       Range{Min: 1.5, Max: 4.5},
		Alpha:          Range{Min: 0.4, Max: 1.0},
		MaxLife:        Range{Min: 300, Max: 500},
		Energy:         Range{Min: 0.5, Max: 1.0},
		EnergyBaseline: Range{Min: 0.5, Max: 0.8},
		OrbitRadius:    Range{Min: 20, Max: 60},
		OrbitSpeed:     Range{Min: 0.01, Max: 0.03},
		Velocity:       Range{Min: -0.15, Max: 0.15},
		DepthVelocity:  Range{Min: -0.075, Max: 0.075},
		// 出生和消亡时较暗：1 - |life/maxLife - 0.5| * 0.6
		LifeFade: Curve{{Time: 0, Value: 0.7}, {Time: 0.5, Value: 1}, {Time: 1, Value: 0.7}},
	}
}

// Merge returns s with every non-zero field of override applied on top.
func (s SpawnRanges) Merge(override SpawnRanges) SpawnRanges {
	merged := s
	mergeRange(&merged.BaseSize, override.BaseSize)
	mergeRange(&merged.Alpha, override.Alpha)
	mergeRange(&merged.MaxLife, override.MaxLife)
	mergeRange(&merged.Energy, override.Energy)
	mergeRange(&merged.EnergyBaseline, override.EnergyBaseline)
	mergeRange(&merged.OrbitRadius, override.OrbitRadius)
	mergeRange(&merged.OrbitSpeed, override.OrbitSpeed)
	mergeRange(&merged.Velocity, override.Velocity)
	mergeRange(&merged.DepthVelocity, override.DepthVelocity)
	if len(override.LifeFade) > 0 {
		merged.LifeFade = append(Curve(nil), override.LifeFade...)
	}
	return merged
}

// Validate checks the constraints the simulation relies on.
func (s SpawnRanges) Validate() error {
	if s.MaxLife.Min <= 0 {
		return errorf("maxLife must be positive, got %s", s.MaxLife)
	}
	if s.BaseSize.Min < 0 {
		return errorf("baseSize must be non-negative, got %s", s.BaseSize)
	}
	if s.Alpha.Min < 0 || s.Alpha.Max > 1 {
		return errorf("alpha must lie in [0, 1], got %s", s.Alpha)
	}
	return nil
}

func mergeRange(dst *Range, src Range) {
	if !src.IsZero() {
		*dst = src
	}
}
