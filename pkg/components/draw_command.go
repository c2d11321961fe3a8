package components

// DrawKind 绘制命令类型
type DrawKind uint8

const (
	// DrawFillRect 填充矩形（残影清屏、静态背景）
	DrawFillRect DrawKind = iota
	// DrawRadialGradient 径向渐变圆（光晕、粒子核心）
	DrawRadialGradient
	// DrawCircle 纯色圆（高光）
	DrawCircle
	// DrawPolyline 沿路径渐变透明度的折线（拖尾）
	DrawPolyline
	// DrawLine 两端颜色不同、中点有色标的线段（连线）
	DrawLine
	// DrawLinearGradient 纵向线性渐变矩形（静态降级背景）
	DrawLinearGradient
)

// String 用于日志和测试输出
func (k DrawKind) String() string {
	switch k {
	case DrawFillRect:
		return "FillRect"
	case DrawRadialGradient:
		return "RadialGradient"
	case DrawCircle:
		return "Circle"
	case DrawPolyline:
		return "Polyline"
	case DrawLine:
		return "Line"
	case DrawLinearGradient:
		return "LinearGradient"
	}
	return "Unknown"
}

// Color 非预乘 RGBA，分量范围 [0, 1]
type Color struct {
	R, G, B, A float32
}

// WithAlpha 返回替换透明度后的颜色
func (c Color) WithAlpha(a float32) Color {
	c.A = a
	return c
}

// GradientStop 渐变色标
type GradientStop struct {
	Offset float64 // [0, 1]
	Color  Color
}

// Point 二维点
type Point struct {
	X, Y float64
}

// DrawCommand 渲染器输出的单条绘制命令（纯数据，不可变）
//
// 设计目的:
//
//	解除模拟/渲染逻辑与具体图形后端的耦合。RenderSystem 只产出命令，
//	Ebiten 后端和终端后端各自解释执行；测试可以直接断言命令列表。
//
// 字段按 Kind 解释:
//   - DrawFillRect:       X, Y, W, H, Color
//   - DrawLinearGradient: X, Y, W, H, Stops（自上而下）
//   - DrawRadialGradient: X, Y 圆心，Radius，FocusX/FocusY 渐变起点，Stops
//   - DrawCircle:         X, Y, Radius, Color
//   - DrawPolyline:       Points（已平滑），Width，Stops（沿路径从旧到新）
//   - DrawLine:           X, Y → X2, Y2，Width，Stops（起点、中点、终点）
//
// 注意事项:
//   - 坐标为逻辑像素，后端负责乘以设备像素比
//   - Stops 和 Points 切片归命令所有，后端不得修改
type DrawCommand struct {
	Kind DrawKind

	X, Y   float64
	X2, Y2 float64
	W, H   float64

	Radius         float64
	FocusX, FocusY float64

	Width float64

	Color  Color
	Stops  []GradientStop
	Points []Point
}
