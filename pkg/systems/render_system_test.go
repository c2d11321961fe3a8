package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/gonewx/particlefield/internal/particle"
	"github.com/gonewx/particlefield/pkg/components"
	"github.com/gonewx/particlefield/pkg/config"
	"github.com/gonewx/particlefield/pkg/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countKinds(cmds []components.DrawCommand) map[components.DrawKind]int {
	out := make(map[components.DrawKind]int)
	for _, c := range cmds {
		out[c.Kind]++
	}
	return out
}

func singleParticleStore() *components.ParticleStore {
	return &components.ParticleStore{
		Width: 200, Height: 200, Margin: config.EdgeMargin, DepthRange: 150,
		Particles: []components.Particle{{
			X: 100, Y: 100, Z: 0,
			BaseSize: 2, Energy: 1, Alpha: 0.5,
			Hue: 280, Saturation: 80, Lightness: 60,
			Life: 200, MaxLife: 400,
		}},
	}
}

func TestBuildFrame_FadeClearFirst(t *testing.T) {
	cmds := NewRenderSystem().BuildFrame(singleParticleStore(), 0, FrameOptions{})
	require.NotEmpty(t, cmds)

	fade := cmds[0]
	assert.Equal(t, components.DrawFillRect, fade.Kind)
	assert.Equal(t, 200.0, fade.W)
	assert.InDelta(t, 0.08, fade.Color.A, 1e-6)
	assert.InDelta(t, 3.0/255, fade.Color.R, 1e-6)
	assert.InDelta(t, 8.0/255, fade.Color.B, 1e-6)
}

// 单个粒子：z=0 → depthScale 1.3，life=maxLife/2 → lifeAlpha 1，t=0 且相位 0 → pulse 0.9
func TestBuildFrame_VisualScaling(t *testing.T) {
	cmds := NewRenderSystem().BuildFrame(singleParticleStore(), 0, FrameOptions{})
	kinds := countKinds(cmds)
	require.Equal(t, 1, kinds[components.DrawRadialGradient], "only the core without glow")
	require.Equal(t, 1, kinds[components.DrawCircle])

	wantSize := 2 * 1.3 * 0.9
	wantAlpha := 0.5 * 1.3

	core := cmds[1]
	assert.Equal(t, components.DrawRadialGradient, core.Kind)
	assert.InDelta(t, wantSize, core.Radius, 1e-9)
	assert.InDelta(t, 100-wantSize*0.2, core.FocusX, 1e-9)
	require.Len(t, core.Stops, 3)
	assert.InDelta(t, wantAlpha, core.Stops[0].Color.A, 1e-6)
	assert.InDelta(t, wantAlpha*0.9, core.Stops[1].Color.A, 1e-6)
	assert.InDelta(t, wantAlpha*0.6, core.Stops[2].Color.A, 1e-6)

	highlight := cmds[2]
	assert.Equal(t, components.DrawCircle, highlight.Kind)
	assert.InDelta(t, wantSize*0.3, highlight.Radius, 1e-9)
	assert.InDelta(t, wantAlpha*0.5, highlight.Color.A, 1e-6)
}

func TestBuildFrame_Glow(t *testing.T) {
	cmds := NewRenderSystem().BuildFrame(singleParticleStore(), 0, FrameOptions{EnableGlow: true, GlowMult: 0.7})

	glow := cmds[1]
	require.Equal(t, components.DrawRadialGradient, glow.Kind)
	assert.InDelta(t, 2*1.3*0.9*4*0.7, glow.Radius, 1e-9)
	require.Len(t, glow.Stops, 3)
	assert.Equal(t, 0.4, glow.Stops[1].Offset)
	assert.InDelta(t, 0.65*0.4, glow.Stops[0].Color.A, 1e-6)
	assert.Equal(t, float32(0), glow.Stops[2].Color.A)
}

func TestBuildFrame_Trail(t *testing.T) {
	store := singleParticleStore()
	p := &store.Particles[0]

	// 单个采样点不画拖尾
	p.Trail.Push(components.TrailPoint{X: 90, Y: 100})
	cmds := NewRenderSystem().BuildFrame(store, 0, FrameOptions{ShowTrails: true})
	assert.Zero(t, countKinds(cmds)[components.DrawPolyline])

	p.Trail.Push(components.TrailPoint{X: 95, Y: 100})
	p.Trail.Push(components.TrailPoint{X: 100, Y: 100})
	cmds = NewRenderSystem().BuildFrame(store, 0, FrameOptions{ShowTrails: true})
	require.Equal(t, 1, countKinds(cmds)[components.DrawPolyline])

	trail := cmds[1]
	assert.Equal(t, components.DrawPolyline, trail.Kind)
	assert.Equal(t, components.Point{X: 90, Y: 100}, trail.Points[0])
	// 终点是最后两个采样点的中点
	last := trail.Points[len(trail.Points)-1]
	assert.InDelta(t, 97.5, last.X, 1e-9)
	assert.InDelta(t, 2*1.3*0.9*0.5, trail.Width, 1e-9)
	assert.Equal(t, float32(0), trail.Stops[0].Color.A)
	assert.InDelta(t, 0.65*0.3, trail.Stops[1].Color.A, 1e-6)

	// 关闭拖尾
	cmds = NewRenderSystem().BuildFrame(store, 0, FrameOptions{ShowTrails: false})
	assert.Zero(t, countKinds(cmds)[components.DrawPolyline])
}

func TestBuildFrame_Connections(t *testing.T) {
	store := singleParticleStore()
	other := store.Particles[0]
	other.X = 160
	other.Hue = 190
	store.Particles = append(store.Particles, other)

	rs := NewRenderSystem()
	cmds := rs.BuildFrame(store, 0, FrameOptions{ConnectionDistance: 120})
	require.Equal(t, 1, countKinds(cmds)[components.DrawLine])

	var line components.DrawCommand
	for _, c := range cmds {
		if c.Kind == components.DrawLine {
			line = c
		}
	}
	d := 60.0
	x := (d - 120) / (0 - 120)
	want := x * x * (3 - 2*x) * 0.25 * 0.65
	require.Len(t, line.Stops, 3)
	assert.InDelta(t, want, line.Stops[0].Color.A, 1e-6)
	assert.InDelta(t, want*0.7, line.Stops[1].Color.A, 1e-6)
	assert.InDelta(t, math.Min(2*1.3*0.9*0.3, 1.5), line.Width, 1e-9)
	assert.Equal(t, 160.0, line.X2)

	// connectionDistance = 0 → 没有连线
	cmds = rs.BuildFrame(store, 0, FrameOptions{ConnectionDistance: 0})
	assert.Zero(t, countKinds(cmds)[components.DrawLine])
}

// 静态模式只输出背景，不输出任何粒子命令
func TestBuildFrame_StaticDrawsNoParticles(t *testing.T) {
	opts := config.DefaultFieldOptions()
	resolved := config.Resolve("aurora", "normal", 120)
	store := entities.NewParticleStore(resolved, opts, 800, 600, rand.New(rand.NewSource(1)))

	frame := NewFrameOptions(opts, resolved)
	frame.Static = true
	cmds := NewRenderSystem().BuildFrame(store, 1, frame)

	require.Len(t, cmds, 1)
	assert.Equal(t, components.DrawLinearGradient, cmds[0].Kind)
	assert.Equal(t, 800.0, cmds[0].W)
	assert.Equal(t, float32(1), cmds[0].Stops[2].Color.A)
}

func TestBuildFrame_EmptyStore(t *testing.T) {
	rs := NewRenderSystem()
	assert.Nil(t, rs.BuildFrame(nil, 0, FrameOptions{}))
	assert.Nil(t, rs.BuildFrame(&components.ParticleStore{}, 0, FrameOptions{}))

	cmds := rs.BuildFrame(&components.ParticleStore{Width: 10, Height: 10, DepthRange: 150}, 0, FrameOptions{})
	require.Len(t, cmds, 1)
	assert.Equal(t, components.DrawFillRect, cmds[0].Kind)
}

func TestBuildFrame_FullField(t *testing.T) {
	opts := config.DefaultFieldOptions()
	resolved := config.Resolve("neural", "intense", 100)
	store := entities.NewParticleStore(resolved, opts, 800, 600, rand.New(rand.NewSource(4)))
	sim := NewSimulationSystem(NewSimulationParams(opts, resolved.Multipliers), rand.New(rand.NewSource(5)))
	for i := 0; i < 10; i++ {
		sim.Update(store, components.FrameInputs{}, 1)
	}

	cmds := NewRenderSystem().BuildFrame(store, store.Time, NewFrameOptions(opts, resolved))
	kinds := countKinds(cmds)

	assert.Equal(t, 1, kinds[components.DrawFillRect])
	assert.Equal(t, store.Len(), kinds[components.DrawCircle])
	assert.Equal(t, store.Len(), kinds[components.DrawPolyline])
	assert.Equal(t, 2*store.Len(), kinds[components.DrawRadialGradient])

	for _, c := range cmds {
		for _, s := range c.Stops {
			assert.True(t, s.Color.A >= 0 && s.Color.A <= 1, "alpha out of range: %v", s.Color.A)
		}
	}
}

func TestNewFrameOptions(t *testing.T) {
	opts := config.DefaultFieldOptions()
	resolved := config.Resolve("aurora", "extreme", 10)
	frame := NewFrameOptions(opts, resolved)

	assert.Equal(t, 120*1.5, frame.ConnectionDistance)
	assert.Equal(t, 1.3, frame.GlowMult)
	assert.True(t, frame.ShowTrails)
	assert.False(t, frame.Static)
}

// 默认 LifeFade 曲线与内置公式一致，自定义曲线替换生命淡入淡出
func TestVisualOf_LifeFade(t *testing.T) {
	p := &components.Particle{BaseSize: 2, Energy: 1, Alpha: 0.5, MaxLife: 400}
	curve := particle.DefaultSpawnRanges().LifeFade

	for _, life := range []float64{0, 50, 200, 320, 400} {
		p.Life = life
		assert.InDelta(t, visualOf(p, 0, 150, nil).alpha, visualOf(p, 0, 150, curve).alpha, 1e-9, "life %v", life)
	}

	p.Life = 200
	flat := particle.Curve{{Time: 0, Value: 0.25}}
	// depthScale 1.3 × alpha 0.5 × 0.25
	assert.InDelta(t, 0.1625, visualOf(p, 0, 150, flat).alpha, 1e-9)
}
