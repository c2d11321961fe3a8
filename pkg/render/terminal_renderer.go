package render

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/gonewx/particlefield/pkg/components"
)

// CellScreen is the subset of tcell.Screen the terminal backend writes to.
type CellScreen interface {
	Size() (width, height int)
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
}

// luminanceRamp 由暗到亮的字符梯度
var luminanceRamp = []rune(" .·:-=+*#%@")

// minVisibleLuminance 低于该亮度的单元格输出空格
const minVisibleLuminance = 0.02

// cellColor 单元格的累积颜色（直通 Alpha 合成后的不透明结果）
type cellColor struct {
	r, g, b float64
}

// TerminalRenderer 在字符终端上执行绘制命令
//
// 每个单元格保存一份浮点颜色，跨帧保留，残影清屏命令会把它逐渐压暗，
// 和像素后端的拖影效果一致。形状按单元格中心采样，小于一个单元格的
// 粒子按面积比例混合到所在单元格。
type TerminalRenderer struct {
	cells      []cellColor
	cols, rows int
	// 每个单元格对应的逻辑像素
	sx, sy float64
}

// NewTerminalRenderer 创建终端后端
func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{}
}

// Render composites cmds, drawn in a logicalW × logicalH coordinate space,
// onto the screen's cell grid. The caller shows the screen.
func (r *TerminalRenderer) Render(screen CellScreen, cmds []components.DrawCommand, logicalW, logicalH float64) {
	if screen == nil || logicalW <= 0 || logicalH <= 0 {
		return
	}
	cols, rows := screen.Size()
	if cols <= 0 || rows <= 0 {
		return
	}
	if cols != r.cols || rows != r.rows {
		r.cols, r.rows = cols, rows
		r.cells = make([]cellColor, cols*rows)
	}
	r.sx = logicalW / float64(cols)
	r.sy = logicalH / float64(rows)

	for i := range cmds {
		r.apply(&cmds[i])
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			ch, style := cellGlyph(r.cells[y*cols+x])
			screen.SetContent(x, y, ch, nil, style)
		}
	}
}

// Reset 清空累积颜色（例如场景重建后）
func (r *TerminalRenderer) Reset() {
	for i := range r.cells {
		r.cells[i] = cellColor{}
	}
}

func (r *TerminalRenderer) apply(cmd *components.DrawCommand) {
	switch cmd.Kind {
	case components.DrawFillRect:
		r.fillRect(cmd.X, cmd.Y, cmd.W, cmd.H, cmd.Color)
	case components.DrawLinearGradient:
		r.linearGradient(cmd)
	case components.DrawRadialGradient:
		r.radial(cmd.X, cmd.Y, cmd.Radius, cmd.Stops)
	case components.DrawCircle:
		r.radial(cmd.X, cmd.Y, cmd.Radius, []components.GradientStop{
			{Offset: 0, Color: cmd.Color},
			{Offset: 1, Color: cmd.Color},
		})
	case components.DrawPolyline:
		r.polyline(cmd.Points, cmd.Stops)
	case components.DrawLine:
		r.polyline([]components.Point{{X: cmd.X, Y: cmd.Y}, {X: cmd.X2, Y: cmd.Y2}}, cmd.Stops)
	}
}

// blend 源覆盖合成，weight 为额外的覆盖率
func (r *TerminalRenderer) blend(x, y int, c components.Color, weight float64) {
	if x < 0 || y < 0 || x >= r.cols || y >= r.rows {
		return
	}
	a := float64(c.A) * weight
	if a <= 0 {
		return
	}
	if a > 1 {
		a = 1
	}
	cell := &r.cells[y*r.cols+x]
	cell.r += (float64(c.R) - cell.r) * a
	cell.g += (float64(c.G) - cell.g) * a
	cell.b += (float64(c.B) - cell.b) * a
}

func (r *TerminalRenderer) cellRange(x0, y0, x1, y1 float64) (cx0, cy0, cx1, cy1 int) {
	cx0 = int(math.Floor(x0 / r.sx))
	cy0 = int(math.Floor(y0 / r.sy))
	cx1 = int(math.Ceil(x1 / r.sx))
	cy1 = int(math.Ceil(y1 / r.sy))
	return max(cx0, 0), max(cy0, 0), min(cx1, r.cols), min(cy1, r.rows)
}

func (r *TerminalRenderer) fillRect(x, y, w, h float64, c components.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	cx0, cy0, cx1, cy1 := r.cellRange(x, y, x+w, y+h)
	for cy := cy0; cy < cy1; cy++ {
		for cx := cx0; cx < cx1; cx++ {
			r.blend(cx, cy, c, 1)
		}
	}
}

func (r *TerminalRenderer) linearGradient(cmd *components.DrawCommand) {
	if cmd.W <= 0 || cmd.H <= 0 || len(cmd.Stops) == 0 {
		return
	}
	cx0, cy0, cx1, cy1 := r.cellRange(cmd.X, cmd.Y, cmd.X+cmd.W, cmd.Y+cmd.H)
	for cy := cy0; cy < cy1; cy++ {
		t := ((float64(cy)+0.5)*r.sy - cmd.Y) / cmd.H
		c := sampleStops(cmd.Stops, t)
		for cx := cx0; cx < cx1; cx++ {
			r.blend(cx, cy, c, 1)
		}
	}
}

func (r *TerminalRenderer) radial(x, y, radius float64, stops []components.GradientStop) {
	if radius <= 0 || len(stops) == 0 {
		return
	}
	cx0, cy0, cx1, cy1 := r.cellRange(x-radius, y-radius, x+radius, y+radius)
	hit := false
	for cy := cy0; cy < cy1; cy++ {
		py := (float64(cy) + 0.5) * r.sy
		for cx := cx0; cx < cx1; cx++ {
			px := (float64(cx) + 0.5) * r.sx
			d := math.Hypot(px-x, py-y)
			if d > radius {
				continue
			}
			hit = true
			r.blend(cx, cy, sampleStops(stops, d/radius), 1)
		}
	}
	if hit {
		return
	}
	// 比单元格小的形状：按面积比例混合到所在单元格
	coverage := math.Pi * radius * radius / (r.sx * r.sy)
	r.blend(int(math.Floor(x/r.sx)), int(math.Floor(y/r.sy)), stops[0].Color, math.Min(coverage, 1))
}

// polyline 用 Bresenham 在单元格网格上描线，颜色按点序号插值
func (r *TerminalRenderer) polyline(pts []components.Point, stops []components.GradientStop) {
	if len(pts) < 2 || len(stops) == 0 {
		return
	}
	segs := float64(len(pts) - 1)
	for i := 0; i < len(pts)-1; i++ {
		x0, y0 := int(math.Floor(pts[i].X/r.sx)), int(math.Floor(pts[i].Y/r.sy))
		x1, y1 := int(math.Floor(pts[i+1].X/r.sx)), int(math.Floor(pts[i+1].Y/r.sy))
		steps := max(abs(x1-x0), abs(y1-y0))
		dx, dy := abs(x1-x0), -abs(y1-y0)
		sx, sy := 1, 1
		if x0 > x1 {
			sx = -1
		}
		if y0 > y1 {
			sy = -1
		}
		e := dx + dy
		for k := 0; ; k++ {
			t := float64(i) / segs
			if steps > 0 {
				t = (float64(i) + float64(k)/float64(steps)) / segs
			}
			r.blend(x0, y0, sampleStops(stops, t), 1)
			if x0 == x1 && y0 == y1 {
				break
			}
			e2 := 2 * e
			if e2 >= dy {
				e += dy
				x0 += sx
			}
			if e2 <= dx {
				e += dx
				y0 += sy
			}
		}
	}
}

// cellGlyph 亮度决定字符，前景色为归一化后的色相
func cellGlyph(c cellColor) (rune, tcell.Style) {
	lum := 0.2126*c.r + 0.7152*c.g + 0.0722*c.b
	if lum < minVisibleLuminance {
		return ' ', tcell.StyleDefault.Background(tcell.ColorBlack)
	}
	idx := int(math.Sqrt(math.Min(lum, 1))*float64(len(luminanceRamp)-1) + 0.5)
	idx = max(idx, 1)

	peak := math.Max(c.r, math.Max(c.g, c.b))
	fg := tcell.NewRGBColor(channel(c.r/peak), channel(c.g/peak), channel(c.b/peak))
	return luminanceRamp[idx], tcell.StyleDefault.Foreground(fg).Background(tcell.ColorBlack)
}

func channel(v float64) int32 {
	return int32(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
