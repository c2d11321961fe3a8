package entities

import (
	"math"
	"math/rand"

	"github.com/gonewx/particlefield/internal/particle"
	"github.com/gonewx/particlefield/pkg/components"
	"github.com/gonewx/particlefield/pkg/config"
	"github.com/gonewx/particlefield/pkg/utils"
)

// colorBucket 调色板中的一个锚点颜色及其抖动幅度
type colorBucket struct {
	threshold float64 // 累计概率上限
	base      config.HSL
	hue       float64 // 色相抖动总幅度（±一半）
	sat       float64
	light     float64
}

// 饱和度和亮度的生成边界
const (
	minSaturation = 50.0
	maxSaturation = 100.0
	minLightness  = 40.0
	maxLightness  = 75.0
)

func paletteBuckets(p config.Palette) [3]colorBucket {
	return [3]colorBucket{
		{threshold: 0.4, base: p.Primary, hue: 30, sat: 20, light: 15},
		{threshold: 0.75, base: p.Secondary, hue: 25, sat: 20, light: 15},
		{threshold: 1, base: p.Accent, hue: 20, sat: 15, light: 10},
	}
}

// NewParticleStore creates the particle store for one field instance using
// the default spawn ranges. See NewParticleStoreWithSpawn.
func NewParticleStore(resolved config.ResolvedPreset, opts config.FieldOptions, width, height float64, rng *rand.Rand) *components.ParticleStore {
	return NewParticleStoreWithSpawn(resolved, opts, particle.DefaultSpawnRanges(), width, height, rng)
}

// NewParticleStoreWithSpawn allocates resolved.Count particles inside the
// given bounds.
//
// Parameters:
//   - resolved: 配置解析结果（数量、倍数、调色板）
//   - opts: 粒子场选项（speed、depthRange）
//   - spawn: 生成范围
//   - width, height: 逻辑像素尺寸；任一 <= 0 时返回空存储
//   - rng: 随机源；nil 时使用全局随机源
//
// Returns a store whose every particle satisfies the position, depth, life
// and color invariants. This is the sole creation point for particles:
// resize and option changes call it again and replace the whole store.
//
// Example:
//
//	resolved := config.Resolve("aurora", "normal", 120)
//	store := entities.NewParticleStore(resolved, config.DefaultFieldOptions(), 800, 600, rng)
func NewParticleStoreWithSpawn(resolved config.ResolvedPreset, opts config.FieldOptions, spawn particle.SpawnRanges, width, height float64, rng *rand.Rand) *components.ParticleStore {
	opts = opts.Normalize()
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	store := &components.ParticleStore{
		Width:      width,
		Height:     height,
		Margin:     config.EdgeMargin,
		DepthRange: opts.DepthRange,
		Spawn:      spawn,
	}

	// 零尺寸容器：不分配粒子
	if width <= 0 || height <= 0 || resolved.Count <= 0 {
		return store
	}

	buckets := paletteBuckets(resolved.Palette)
	sizeMult := resolved.Multipliers.Size
	// 初速度同时受用户速度和强度速度倍数影响
	speed := opts.Speed * resolved.Multipliers.Speed

	count := resolved.Count
	if count > config.MaxParticleCount {
		count = config.MaxParticleCount
	}
	store.Particles = make([]components.Particle, count)
	for i := range store.Particles {
		store.Particles[i] = newParticle(rng, buckets, spawn, sizeMult, speed, width, height, opts.DepthRange)
	}
	return store
}

func newParticle(rng *rand.Rand, buckets [3]colorBucket, spawn particle.SpawnRanges, sizeMult, speed, width, height, depth float64) components.Particle {
	// 按权重选择颜色锚点：primary 40%, secondary 35%, accent 25%
	roll := rng.Float64()
	b := buckets[len(buckets)-1]
	for _, candidate := range buckets {
		if roll < candidate.threshold {
			b = candidate
			break
		}
	}

	hue := b.base.H + (rng.Float64()-0.5)*b.hue
	sat := b.base.S + (rng.Float64()-0.5)*b.sat
	light := b.base.L + (rng.Float64()-0.5)*b.light

	maxLife := spawn.MaxLife.Sample(rng)
	if maxLife <= 0 {
		maxLife = 1
	}

	return components.Particle{
		X:           rng.Float64() * width,
		Y:           rng.Float64() * height,
		Z:           rng.Float64() * depth,
		VX:          spawn.Velocity.Sample(rng) * speed,
		VY:          spawn.Velocity.Sample(rng) * speed,
		VZ:          spawn.DepthVelocity.Sample(rng) * speed,
		BaseSize:    spawn.BaseSize.Sample(rng) * sizeMult,
		Hue:         normalizeHue(hue),
		Saturation:  utils.Clamp(sat, minSaturation, maxSaturation),
		Lightness:   utils.Clamp(light, minLightness, maxLightness),
		Alpha:       spawn.Alpha.Sample(rng),
		Life:        rng.Float64() * maxLife,
		MaxLife:     maxLife,
		Energy:      utils.Clamp(spawn.Energy.Sample(rng), config.EnergyMin, config.EnergyMax),
		OrbitRadius: spawn.OrbitRadius.Sample(rng),
		OrbitSpeed:  spawn.OrbitSpeed.Sample(rng),
		OrbitAngle:  rng.Float64() * 2 * math.Pi,
		PulsePhase:  rng.Float64() * 2 * math.Pi,
	}
}

// normalizeHue 把色相映射到 [0, 360)
func normalizeHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}
