// Package render executes draw commands on concrete backends: an Ebitengine
// image and a tcell terminal screen.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gonewx/particlefield/pkg/components"
)

// circleSegments 圆和径向渐变的细分段数
const circleSegments = 24

// maxBatchVertices uint16 索引上限，超过后先提交一批
const maxBatchVertices = 65535 - 4*circleSegments*4

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// EbitenRenderer 在 ebiten.Image 上执行绘制命令
//
// 所有命令都被细分为带顶点颜色的三角形，使用同一张白色纹理，
// 因此一帧通常只需一次 DrawTriangles 调用。顶点数组跨帧复用。
type EbitenRenderer struct {
	batch triangleBatch
	// Additive 使用加法混合（光晕叠加更亮），默认普通 Alpha 混合
	Additive bool
}

// NewEbitenRenderer 创建 Ebiten 后端
func NewEbitenRenderer() *EbitenRenderer {
	return &EbitenRenderer{
		batch: triangleBatch{
			vertices: make([]ebiten.Vertex, 0, 16384),
			indices:  make([]uint16, 0, 32768),
		},
	}
}

// Render draws cmds onto dst. scale converts logical pixels to device
// pixels (the capped device scale factor).
func (r *EbitenRenderer) Render(dst *ebiten.Image, cmds []components.DrawCommand, scale float64) {
	if dst == nil || len(cmds) == 0 {
		return
	}
	if scale <= 0 {
		scale = 1
	}

	r.batch.reset(scale)
	for i := range cmds {
		if len(r.batch.vertices) > maxBatchVertices {
			r.flush(dst)
			r.batch.reset(scale)
		}
		r.batch.appendCommand(&cmds[i])
	}
	r.flush(dst)
}

func (r *EbitenRenderer) flush(dst *ebiten.Image) {
	if len(r.batch.vertices) == 0 {
		return
	}
	op := &ebiten.DrawTrianglesOptions{}
	op.AntiAlias = true
	if r.Additive {
		op.Blend = ebiten.BlendLighter
	}
	dst.DrawTriangles(r.batch.vertices, r.batch.indices, whiteSubImage, op)
}

// triangleBatch 把绘制命令细分为三角形（纯计算，可单独测试）
type triangleBatch struct {
	vertices []ebiten.Vertex
	indices  []uint16
	scale    float64
}

func (b *triangleBatch) reset(scale float64) {
	b.vertices = b.vertices[:0]
	b.indices = b.indices[:0]
	b.scale = scale
}

func (b *triangleBatch) vertex(x, y float64, c components.Color) uint16 {
	idx := uint16(len(b.vertices))
	b.vertices = append(b.vertices, ebiten.Vertex{
		DstX:   float32(x * b.scale),
		DstY:   float32(y * b.scale),
		SrcX:   1,
		SrcY:   1,
		ColorR: c.R,
		ColorG: c.G,
		ColorB: c.B,
		ColorA: c.A,
	})
	return idx
}

func (b *triangleBatch) quad(v0, v1, v2, v3 uint16) {
	// v0-v1 为一条边，v2-v3 为对边（同向）
	b.indices = append(b.indices, v0, v1, v2, v1, v3, v2)
}

func (b *triangleBatch) appendCommand(cmd *components.DrawCommand) {
	switch cmd.Kind {
	case components.DrawFillRect:
		b.appendRect(cmd.X, cmd.Y, cmd.W, cmd.H, cmd.Color, cmd.Color)
	case components.DrawLinearGradient:
		b.appendLinearGradient(cmd)
	case components.DrawRadialGradient:
		b.appendRadial(cmd)
	case components.DrawCircle:
		b.appendDisc(cmd.X, cmd.Y, cmd.Radius, cmd.Color)
	case components.DrawPolyline:
		b.appendPolyline(cmd)
	case components.DrawLine:
		b.appendLine(cmd)
	}
}

func (b *triangleBatch) appendRect(x, y, w, h float64, top, bottom components.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	v0 := b.vertex(x, y, top)
	v1 := b.vertex(x+w, y, top)
	v2 := b.vertex(x, y+h, bottom)
	v3 := b.vertex(x+w, y+h, bottom)
	b.quad(v0, v1, v2, v3)
}

func (b *triangleBatch) appendLinearGradient(cmd *components.DrawCommand) {
	stops := cmd.Stops
	if len(stops) == 0 {
		return
	}
	if len(stops) == 1 {
		b.appendRect(cmd.X, cmd.Y, cmd.W, cmd.H, stops[0].Color, stops[0].Color)
		return
	}
	for i := 0; i < len(stops)-1; i++ {
		y0 := cmd.Y + stops[i].Offset*cmd.H
		y1 := cmd.Y + stops[i+1].Offset*cmd.H
		b.appendRect(cmd.X, y0, cmd.W, y1-y0, stops[i].Color, stops[i+1].Color)
	}
}

func (b *triangleBatch) appendDisc(cx, cy, radius float64, c components.Color) {
	if radius <= 0 || c.A <= 0 {
		return
	}
	center := b.vertex(cx, cy, c)
	first := uint16(len(b.vertices))
	for i := 0; i < circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		b.vertex(cx+math.Cos(a)*radius, cy+math.Sin(a)*radius, c)
	}
	for i := 0; i < circleSegments; i++ {
		next := (i + 1) % circleSegments
		b.indices = append(b.indices, center, first+uint16(i), first+uint16(next))
	}
}

// appendRadial 径向渐变：每个色标对应一个环，环心在焦点和圆心之间插值
func (b *triangleBatch) appendRadial(cmd *components.DrawCommand) {
	stops := cmd.Stops
	if cmd.Radius <= 0 || len(stops) == 0 {
		return
	}

	ringCenter := func(offset float64) (float64, float64) {
		return cmd.FocusX + (cmd.X-cmd.FocusX)*offset, cmd.FocusY + (cmd.Y-cmd.FocusY)*offset
	}

	// 第一个色标之内用纯色填充
	if stops[0].Offset > 0 {
		x, y := ringCenter(stops[0].Offset)
		b.appendDisc(x, y, stops[0].Offset*cmd.Radius, stops[0].Color)
	}

	var prev uint16
	for s, stop := range stops {
		x, y := ringCenter(stop.Offset)
		r := stop.Offset * cmd.Radius
		if r <= 0 {
			// 退化为单点的环
			first := uint16(len(b.vertices))
			for i := 0; i < circleSegments; i++ {
				b.vertex(x, y, stop.Color)
			}
			prev = first
			continue
		}
		first := uint16(len(b.vertices))
		for i := 0; i < circleSegments; i++ {
			a := 2 * math.Pi * float64(i) / circleSegments
			b.vertex(x+math.Cos(a)*r, y+math.Sin(a)*r, stop.Color)
		}
		if s > 0 {
			for i := 0; i < circleSegments; i++ {
				next := (i + 1) % circleSegments
				b.quad(prev+uint16(i), prev+uint16(next), first+uint16(i), first+uint16(next))
			}
		}
		prev = first
	}
}

// appendPolyline 沿折线生成等宽条带，透明度按累计长度在色标间插值
func (b *triangleBatch) appendPolyline(cmd *components.DrawCommand) {
	pts := cmd.Points
	if len(pts) < 2 || cmd.Width <= 0 || len(cmd.Stops) == 0 {
		return
	}

	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	if total == 0 {
		return
	}

	half := cmd.Width / 2
	acc := 0.0
	for i := 0; i < len(pts)-1; i++ {
		p0, p1 := pts[i], pts[i+1]
		seg := math.Hypot(p1.X-p0.X, p1.Y-p0.Y)
		if seg == 0 {
			continue
		}
		nx, ny := -(p1.Y-p0.Y)/seg*half, (p1.X-p0.X)/seg*half
		c0 := sampleStops(cmd.Stops, acc/total)
		acc += seg
		c1 := sampleStops(cmd.Stops, acc/total)

		v0 := b.vertex(p0.X+nx, p0.Y+ny, c0)
		v1 := b.vertex(p0.X-nx, p0.Y-ny, c0)
		v2 := b.vertex(p1.X+nx, p1.Y+ny, c1)
		v3 := b.vertex(p1.X-nx, p1.Y-ny, c1)
		b.quad(v0, v1, v2, v3)
	}
}

// appendLine 两段条带：起点→中点→终点，对应三个色标
func (b *triangleBatch) appendLine(cmd *components.DrawCommand) {
	line := components.DrawCommand{
		Kind:  components.DrawPolyline,
		Width: cmd.Width,
		Stops: cmd.Stops,
		Points: []components.Point{
			{X: cmd.X, Y: cmd.Y},
			{X: (cmd.X + cmd.X2) / 2, Y: (cmd.Y + cmd.Y2) / 2},
			{X: cmd.X2, Y: cmd.Y2},
		},
	}
	b.appendPolyline(&line)
}

// sampleStops 在色标间线性插值
func sampleStops(stops []components.GradientStop, t float64) components.Color {
	if len(stops) == 0 {
		return components.Color{}
	}
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	for i := 0; i < len(stops)-1; i++ {
		s0, s1 := stops[i], stops[i+1]
		if t <= s1.Offset {
			span := s1.Offset - s0.Offset
			if span <= 0 {
				return s1.Color
			}
			u := float32((t - s0.Offset) / span)
			return components.Color{
				R: s0.Color.R + (s1.Color.R-s0.Color.R)*u,
				G: s0.Color.G + (s1.Color.G-s0.Color.G)*u,
				B: s0.Color.B + (s1.Color.B-s0.Color.B)*u,
				A: s0.Color.A + (s1.Color.A-s0.Color.A)*u,
			}
		}
	}
	return stops[len(stops)-1].Color
}
