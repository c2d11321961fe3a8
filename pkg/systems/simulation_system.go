package systems

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"

	"github.com/gonewx/particlefield/internal/particle"
	"github.com/gonewx/particlefield/pkg/components"
	"github.com/gonewx/particlefield/pkg/config"
	"github.com/gonewx/particlefield/pkg/utils"
)

// Perlin noise parameters (噪声参数)
const (
	noiseAlpha  = 2.0
	noiseBeta   = 2.0
	noiseOctave = 3
)

// SimulationParams 模拟每帧使用的选项（从 FieldOptions 和强度倍数派生）
type SimulationParams struct {
	Interactive  bool
	ScrollEffect bool
	ShowTrails   bool
	Speed        float64
	// PointerRadius 有效排斥半径 = mouseRadius × connection 倍数
	PointerRadius float64
}

// NewSimulationParams derives per-frame parameters from options.
func NewSimulationParams(opts config.FieldOptions, mult config.Multipliers) SimulationParams {
	opts = opts.Normalize()
	return SimulationParams{
		Interactive:   opts.Interactive,
		ScrollEffect:  opts.ScrollEffect,
		ShowTrails:    opts.ShowTrails,
		Speed:         opts.Speed * mult.Speed,
		PointerRadius: opts.MouseRadius * mult.Connection,
	}
}

// SimulationSystem advances every particle of a store by one frame.
//
// The step is pure math over the store: no drawing, no I/O. Each particle
// runs through drift, orbital bias, scroll parallax, pointer repulsion,
// damping, integration, energy relaxation, boundary wrap, life accounting
// and trail sampling, in that order.
//
// All per-frame randomness comes from the injected rng so a fixed seed
// reproduces a run exactly.
type SimulationSystem struct {
	params SimulationParams
	noise  *perlin.Perlin
	rng    *rand.Rand
}

// NewSimulationSystem creates a simulation system. A nil rng uses a
// randomly seeded source.
func NewSimulationSystem(params SimulationParams, rng *rand.Rand) *SimulationSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &SimulationSystem{
		params: params,
		noise:  perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctave, rng.Int63()),
		rng:    rng,
	}
}

// Params 返回当前参数
func (s *SimulationSystem) Params() SimulationParams { return s.params }

// SetParams 更新参数（不需要重建粒子的选项变化，如开关拖尾）
func (s *SimulationSystem) SetParams(params SimulationParams) { s.params = params }

// ClampDelta normalizes a frame delta to (0, MaxDeltaTime].
// Non-finite or non-positive deltas return 0, meaning "skip this step".
func ClampDelta(dt float64) float64 {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return 0
	}
	if dt > config.MaxDeltaTime {
		return config.MaxDeltaTime
	}
	return dt
}

// Update advances the store by dt normalized frames (1 ≈ one 60 fps frame).
func (s *SimulationSystem) Update(store *components.ParticleStore, inputs components.FrameInputs, dt float64) {
	dt = ClampDelta(dt)
	if dt == 0 || store == nil {
		return
	}

	store.Time += dt * config.TimeScale
	if store.Empty() {
		return
	}
	// 手工构造的存储没有生成范围时使用默认值
	if store.Spawn.MaxLife.IsZero() {
		store.Spawn = particle.DefaultSpawnRanges()
	}

	for i := range store.Particles {
		s.step(store, &store.Particles[i], inputs, dt)
	}
}

func (s *SimulationSystem) step(store *components.ParticleStore, p *components.Particle, in components.FrameInputs, dt float64) {
	params := s.params
	t := store.Time
	depth := store.DepthRange

	// 1. 有机漂移：噪声映射到 [-1, 1]
	noiseX := utils.Clamp(s.noise.Noise2D(p.X*config.NoiseScale, t*config.NoiseTimeScale), -1, 1)
	noiseY := utils.Clamp(s.noise.Noise2D(p.Y*config.NoiseScale, t*config.NoiseTimeScale+config.NoiseYOffset), -1, 1)

	// 2. 轨道偏置
	p.OrbitAngle = math.Mod(p.OrbitAngle+p.OrbitSpeed*dt, 2*math.Pi)
	orbitX := math.Cos(p.OrbitAngle) * p.OrbitRadius * config.OrbitRadiusScale
	orbitY := math.Sin(p.OrbitAngle) * p.OrbitRadius * config.OrbitRadiusScale

	p.VX += noiseX*config.NoiseForce*params.Speed + orbitX*config.OrbitForce
	p.VY += noiseY*config.NoiseForce*params.Speed + orbitY*config.OrbitForce

	// 3. 滚动视差：近处（z 小）受影响更大
	if params.ScrollEffect && depth > 0 {
		depthFactor := 1 - p.Z/depth
		p.VY += in.Scroll * depthFactor * config.ScrollForce
	}

	// 4. 指针排斥
	if params.Interactive && in.PointerActive && params.PointerRadius > 0 {
		dx := in.PointerX - p.X
		dy := in.PointerY - p.Y
		dist := math.Hypot(dx, dy)
		if dist < params.PointerRadius {
			force := utils.EaseOutExpo(1-dist/params.PointerRadius) * config.PointerForce
			angle := math.Atan2(dy, dx)
			p.VX -= math.Cos(angle) * force * config.PointerImpulse
			p.VY -= math.Sin(angle) * force * config.PointerImpulse
			p.Energy = math.Min(config.EnergyMax, p.Energy+force*config.PointerEnergyGain)
		}
	}

	// 5. 阻尼
	p.VX *= config.Friction
	p.VY *= config.Friction
	p.VZ *= config.DepthFriction

	// 6. 积分
	p.X += p.VX * dt
	p.Y += p.VY * dt
	p.Z += p.VZ * dt

	// 7. 能量回落到随机基线
	baseline := store.Spawn.EnergyBaseline.Sample(s.rng)
	p.Energy = utils.Clamp(utils.Lerp(p.Energy, baseline, config.EnergyRelaxRate), config.EnergyMin, config.EnergyMax)

	// 8. 边界环绕
	x, y := p.X, p.Y
	p.X = utils.Wrap(p.X, -store.Margin, store.Width+store.Margin)
	p.Y = utils.Wrap(p.Y, -store.Margin, store.Height+store.Margin)
	p.Z = utils.Wrap(p.Z, 0, depth)
	// 穿越边界后旧采样点在另一侧，丢弃以免拖尾横跨面板
	if p.X != x || p.Y != y {
		p.Trail.Clear()
	}

	// 9. 生命周期：原地重置，不重新定位
	p.Life += dt
	if p.Life >= p.MaxLife {
		p.Life = 0
		p.Alpha = store.Spawn.Alpha.Sample(s.rng)
	}

	// 10. 拖尾采样
	if params.ShowTrails {
		p.Trail.Push(components.TrailPoint{X: p.X, Y: p.Y, Alpha: config.TrailSampleAlpha})
	} else if p.Trail.Len() > 0 {
		p.Trail.Clear()
	}
}
