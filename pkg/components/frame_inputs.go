package components

// FrameInputs 单帧的外部输入快照
// 由宿主场景在每帧开始时采样（指针和滚动已经过弹簧平滑）。
type FrameInputs struct {
	// PointerX / PointerY 指针位置（逻辑像素，相对于粒子场左上角）
	PointerX, PointerY float64
	// PointerActive 指针在粒子场内；离开后为 false，排斥力失效
	PointerActive bool

	// Scroll 滚动进度 [0, 1]
	Scroll float64
}
