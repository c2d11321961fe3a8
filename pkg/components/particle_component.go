package components

// Particle 粒子场中的单个粒子（纯数据）
//
// 由 entities.NewParticleStore 创建，由 SimulationSystem 每帧更新，
// 由 RenderSystem 读取生成绘制命令。粒子从不被删除：生命周期结束时
// 原地重置 Life 和 Alpha。
type Particle struct {
	// Position (位置, 像素)
	// X ∈ [-margin, width+margin], Y ∈ [-margin, height+margin]
	X, Y float64
	// Z 深度 ∈ [0, depthRange]，只用于缩放和视差，不做透视投影
	Z float64

	// Velocity (速度, 像素/帧)
	VX, VY, VZ float64

	// BaseSize 创建时确定的基础尺寸（已乘以强度 size 倍数）
	BaseSize float64

	// Color (HSL)
	Hue        float64 // 色相 [0, 360)
	Saturation float64 // 饱和度 [50, 100]
	Lightness  float64 // 亮度 [40, 75]

	// Alpha 基础透明度 [0.4, 1.0]，每次生命周期结束重新采样
	Alpha float64

	// Lifecycle (生命周期, 帧)
	Life    float64 // ∈ [0, MaxLife)
	MaxLife float64

	// Energy 活跃度，放大尺寸；靠近指针时提升，随后回落到 EnergyBaseline 附近
	Energy float64

	// Orbit (轨道偏置)
	OrbitRadius float64
	OrbitSpeed  float64 // 弧度/帧
	OrbitAngle  float64

	// PulsePhase 脉冲相位 [0, 2π)
	PulsePhase float64

	Trail Trail
}
