package systems

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/gonewx/particlefield/internal/particle"
	"github.com/gonewx/particlefield/pkg/components"
	"github.com/gonewx/particlefield/pkg/config"
	"github.com/gonewx/particlefield/pkg/utils"
)

// FrameOptions 单帧渲染选项
type FrameOptions struct {
	ShowTrails bool
	EnableGlow bool
	// GlowMult 强度 glow 倍数
	GlowMult float64
	// ConnectionDistance 有效连线阈值（已乘以 connection 倍数和降级系数），<= 0 不画连线
	ConnectionDistance float64
	// Static 静态降级：只输出背景渐变，不输出任何粒子命令
	Static bool
	// Palette 静态背景使用的调色板
	Palette config.Palette
	// LifeFade 归一化生命 → 透明度倍数，为空时使用 1 - |t-0.5|*0.6
	LifeFade particle.Curve
}

// NewFrameOptions derives render options from field options and the
// resolved preset.
func NewFrameOptions(opts config.FieldOptions, resolved config.ResolvedPreset) FrameOptions {
	opts = opts.Normalize()
	return FrameOptions{
		ShowTrails:         opts.ShowTrails,
		EnableGlow:         opts.EnableGlow,
		GlowMult:           resolved.Multipliers.Glow,
		ConnectionDistance: opts.ConnectionDistance * resolved.Multipliers.Connection,
		Palette:            resolved.Palette,
	}
}

// RenderSystem 把粒子存储转换为绘制命令
//
// 职责范围：
//   - 残影清屏、拖尾、光晕、粒子核心与高光、连线
//   - 纯函数式：只读粒子存储，不修改任何状态，不接触图形 API
//
// 不包括：
//   - 实际绘制由 render 包的后端（Ebiten、终端）执行
//
// 绘制顺序（从底到顶）：清屏 → 每个粒子（拖尾 → 光晕 → 核心 → 高光 → 以它为起点的连线）
type RenderSystem struct {
	connections *ConnectionSystem
}

// NewRenderSystem 创建渲染系统
func NewRenderSystem() *RenderSystem {
	return &RenderSystem{connections: NewConnectionSystem()}
}

// particleVisual 单个粒子本帧的视觉参数
type particleVisual struct {
	size  float64
	alpha float64
}

// 曲线细分段数（每段二次贝塞尔）
const curveSegments = 4

// BuildFrame produces the draw commands for one frame.
// time is the simulation time driving the pulse.
func (s *RenderSystem) BuildFrame(store *components.ParticleStore, time float64, opts FrameOptions) []components.DrawCommand {
	if store == nil || store.Width <= 0 || store.Height <= 0 {
		return nil
	}
	if opts.Static {
		return []components.DrawCommand{StaticBackground(store.Width, store.Height, opts.Palette)}
	}

	cmds := make([]components.DrawCommand, 0, 1+len(store.Particles)*4)
	cmds = append(cmds, FadeRect(store.Width, store.Height))

	var conns []components.Connection
	if opts.ConnectionDistance > 0 {
		conns = s.connections.Find(store, opts.ConnectionDistance)
	}
	band := store.DepthRange * config.DepthBandRatio

	next := 0
	for i := range store.Particles {
		p := &store.Particles[i]
		v := visualOf(p, time, store.DepthRange, opts.LifeFade)
		base := hslColor(p.Hue, p.Saturation, p.Lightness)

		if opts.ShowTrails && p.Trail.Len() > 1 {
			cmds = append(cmds, trailCommand(p, base, v))
		}

		if opts.EnableGlow {
			if glow, ok := glowCommand(p, base, v, opts.GlowMult); ok {
				cmds = append(cmds, glow)
			}
		}

		if v.size > 0 {
			cmds = append(cmds, coreCommand(p, base, v), highlightCommand(p, v))
		}

		// 连线按 (A, B) 排序，依次消费以 i 为起点的连线
		for next < len(conns) && conns[next].A < i {
			next++
		}
		for next < len(conns) && conns[next].A == i {
			c := conns[next]
			if line, ok := connectionCommand(p, &store.Particles[c.B], base, v, c, opts.ConnectionDistance, band); ok {
				cmds = append(cmds, line)
			}
			next++
		}
	}
	return cmds
}

// FadeRect 返回残影清屏命令 rgba(3, 3, 8, 0.08)
func FadeRect(w, h float64) components.DrawCommand {
	return components.DrawCommand{
		Kind: components.DrawFillRect,
		W:    w,
		H:    h,
		Color: components.Color{
			R: float32(config.FadeColor[0]) / 255,
			G: float32(config.FadeColor[1]) / 255,
			B: float32(config.FadeColor[2]) / 255,
			A: config.FadeAlpha,
		},
	}
}

// StaticBackground 静态降级背景：调色板主色到暗色的纵向渐变
func StaticBackground(w, h float64, palette config.Palette) components.DrawCommand {
	dark := components.Color{
		R: float32(config.FadeColor[0]) / 255,
		G: float32(config.FadeColor[1]) / 255,
		B: float32(config.FadeColor[2]) / 255,
		A: 1,
	}
	top := hslColor(palette.Primary.H, palette.Primary.S, palette.Primary.L*0.35)
	top.A = 1
	mid := hslColor(palette.Secondary.H, palette.Secondary.S, palette.Secondary.L*0.2)
	mid.A = 1
	return components.DrawCommand{
		Kind: components.DrawLinearGradient,
		W:    w,
		H:    h,
		Stops: []components.GradientStop{
			{Offset: 0, Color: top},
			{Offset: 0.6, Color: mid},
			{Offset: 1, Color: dark},
		},
	}
}

// visualOf 计算深度缩放、生命淡入淡出和脉冲后的尺寸与透明度
func visualOf(p *components.Particle, time, depth float64, fade particle.Curve) particleVisual {
	depthScale := 0.5 + 0.8
	if depth > 0 {
		depthScale = 0.5 + (1-p.Z/depth)*0.8
	}
	lifeAlpha := 1.0
	if p.MaxLife > 0 {
		t := p.Life / p.MaxLife
		if len(fade) > 0 {
			lifeAlpha = fade.Evaluate(t)
		} else {
			lifeAlpha = 1 - math.Abs(t-0.5)*0.6
		}
	}
	pulse := 0.9 + math.Sin(time*3+p.PulsePhase)*0.2

	size := p.BaseSize * depthScale * pulse * p.Energy
	alpha := utils.Clamp(p.Alpha*lifeAlpha*depthScale, 0, 1)
	if size < 0 || math.IsNaN(size) {
		size = 0
	}
	return particleVisual{size: size, alpha: alpha}
}

func trailCommand(p *components.Particle, base components.Color, v particleVisual) components.DrawCommand {
	n := p.Trail.Len()
	pts := make([]components.Point, 0, 1+(n-1)*curveSegments)

	first := p.Trail.At(0)
	pts = append(pts, components.Point{X: first.X, Y: first.Y})
	cur := pts[0]
	// 经过相邻采样点中点的二次曲线，控制点为前一个采样点
	for t := 1; t < n; t++ {
		prev := p.Trail.At(t - 1)
		pt := p.Trail.At(t)
		end := components.Point{X: (pt.X + prev.X) / 2, Y: (pt.Y + prev.Y) / 2}
		ctrl := components.Point{X: prev.X, Y: prev.Y}
		for k := 1; k <= curveSegments; k++ {
			u := float64(k) / curveSegments
			pts = append(pts, quadPoint(cur, ctrl, end, u))
		}
		cur = end
	}

	return components.DrawCommand{
		Kind:   components.DrawPolyline,
		Points: pts,
		Width:  v.size * 0.5,
		Stops: []components.GradientStop{
			{Offset: 0, Color: base.WithAlpha(0)},
			{Offset: 1, Color: base.WithAlpha(float32(v.alpha * 0.3))},
		},
	}
}

func quadPoint(p0, c, p1 components.Point, u float64) components.Point {
	a := (1 - u) * (1 - u)
	b := 2 * (1 - u) * u
	d := u * u
	return components.Point{
		X: a*p0.X + b*c.X + d*p1.X,
		Y: a*p0.Y + b*c.Y + d*p1.Y,
	}
}

func glowCommand(p *components.Particle, base components.Color, v particleVisual, glowMult float64) (components.DrawCommand, bool) {
	radius := v.size * config.GlowRadiusScale * glowMult
	if radius <= 0 {
		return components.DrawCommand{}, false
	}
	return components.DrawCommand{
		Kind:   components.DrawRadialGradient,
		X:      p.X,
		Y:      p.Y,
		FocusX: p.X,
		FocusY: p.Y,
		Radius: radius,
		Stops: []components.GradientStop{
			{Offset: 0, Color: base.WithAlpha(float32(v.alpha * 0.4))},
			{Offset: 0.4, Color: base.WithAlpha(float32(v.alpha * 0.15))},
			{Offset: 1, Color: base.WithAlpha(0)},
		},
	}, true
}

func coreCommand(p *components.Particle, base components.Color, v particleVisual) components.DrawCommand {
	light := hslColor(p.Hue, math.Min(100, p.Saturation+20), math.Min(90, p.Lightness+25))
	dark := hslColor(p.Hue, p.Saturation, p.Lightness-10)
	offset := v.size * 0.2
	return components.DrawCommand{
		Kind:   components.DrawRadialGradient,
		X:      p.X,
		Y:      p.Y,
		FocusX: p.X - offset,
		FocusY: p.Y - offset,
		Radius: v.size,
		Stops: []components.GradientStop{
			{Offset: 0, Color: light.WithAlpha(float32(v.alpha))},
			{Offset: 0.5, Color: base.WithAlpha(float32(v.alpha * 0.9))},
			{Offset: 1, Color: dark.WithAlpha(float32(v.alpha * 0.6))},
		},
	}
}

func highlightCommand(p *components.Particle, v particleVisual) components.DrawCommand {
	offset := v.size * 0.2
	return components.DrawCommand{
		Kind:   components.DrawCircle,
		X:      p.X - offset,
		Y:      p.Y - offset,
		Radius: v.size * 0.3,
		Color:  hslColor(p.Hue, 100, 90).WithAlpha(float32(v.alpha * 0.5)),
	}
}

func connectionCommand(a, b *components.Particle, baseA components.Color, v particleVisual, c components.Connection, threshold, band float64) (components.DrawCommand, bool) {
	if band <= 0 {
		return components.DrawCommand{}, false
	}
	alpha := utils.Smoothstep(threshold, 0, c.Distance) * config.ConnectionAlpha * v.alpha
	alpha *= 1 - c.DepthDelta/band
	if alpha <= 0 {
		return components.DrawCommand{}, false
	}

	baseB := hslColor(b.Hue, b.Saturation, b.Lightness)
	mid := hslColor((a.Hue+b.Hue)/2, (a.Saturation+b.Saturation)/2, (a.Lightness+b.Lightness)/2)

	return components.DrawCommand{
		Kind:  components.DrawLine,
		X:     a.X,
		Y:     a.Y,
		X2:    b.X,
		Y2:    b.Y,
		Width: math.Min(v.size*0.3, config.ConnectionMaxWidth),
		Stops: []components.GradientStop{
			{Offset: 0, Color: baseA.WithAlpha(float32(alpha))},
			{Offset: 0.5, Color: mid.WithAlpha(float32(alpha * config.ConnectionMidAlpha))},
			{Offset: 1, Color: baseB.WithAlpha(float32(alpha))},
		},
	}, true
}

// hslColor 把 HSL（色相度数，饱和度/亮度百分比）转换为不透明颜色
func hslColor(h, s, l float64) components.Color {
	c := colorful.Hsl(h, utils.Clamp(s/100, 0, 1), utils.Clamp(l/100, 0, 1)).Clamped()
	return components.Color{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: 1}
}

// HSLColor 导出给后端（终端后端需要同样的颜色转换）
func HSLColor(c config.HSL) components.Color {
	return hslColor(c.H, c.S, c.L)
}
