package config

import "time"

// 引擎常量配置
// 本文件定义粒子场模拟与渲染的固定参数。所有时间量使用"归一化帧"
// （1 帧 ≈ 60fps 下的 16.67ms），速度单位为 像素/帧。

// Simulation (模拟参数)
const (
	// FrameDuration 是归一化时间的基准帧长
	FrameDuration = 16670 * time.Microsecond

	// MaxDeltaTime 限制单帧最大步长（归一化帧），防止切回标签页后粒子瞬移
	MaxDeltaTime = 4.0

	// TimeScale 将归一化帧换算为噪声/脉冲使用的模拟时间
	TimeScale = 0.016

	// EdgeMargin 是 x/y 环绕边界向外扩展的像素数
	EdgeMargin = 50.0

	// Friction 每帧平面速度衰减系数（< 1）
	Friction = 0.985

	// DepthFriction 每帧深度速度衰减系数
	DepthFriction = 0.99

	// NoiseScale 位置到噪声空间的缩放
	NoiseScale = 0.005
	// NoiseTimeScale 模拟时间到噪声空间的缩放
	NoiseTimeScale = 0.3
	// NoiseForce 噪声漂移力度（再乘以 speed 选项）
	NoiseForce = 0.003
	// NoiseYOffset 让 y 轴噪声与 x 轴去相关
	NoiseYOffset = 100.0

	// OrbitRadiusScale 与 OrbitForce 共同决定轨道偏置的幅度
	OrbitRadiusScale = 0.01
	OrbitForce       = 0.1

	// ScrollForce 滚动视差力度
	ScrollForce = 0.5

	// PointerForce 指针排斥的最大力度
	PointerForce = 0.8
	// PointerImpulse 排斥力转换为速度增量的系数
	PointerImpulse = 0.5
	// PointerEnergyGain 排斥力转换为能量增量的系数
	PointerEnergyGain = 0.1

	// EnergyMin / EnergyMax 是能量的硬性边界
	EnergyMin = 0.3
	EnergyMax = 1.5
	// EnergyRelaxRate 每帧向基线靠拢的比例
	EnergyRelaxRate = 0.02

	// TrailSampleAlpha 新拖尾采样点的初始透明度
	TrailSampleAlpha = 0.6
)

// Connections (连线参数)
const (
	// DepthBandRatio 连线允许的最大深度差（占 depthRange 的比例）
	DepthBandRatio = 0.3
	// ConnectionAlpha 连线最大透明度系数
	ConnectionAlpha = 0.25
	// ConnectionMidAlpha 连线中点透明度相对两端的比例
	ConnectionMidAlpha = 0.7
	// ConnectionMaxWidth 连线最大宽度（像素）
	ConnectionMaxWidth = 1.5
)

// Rendering (渲染参数)
const (
	// FadeAlpha 每帧覆盖的暗色矩形透明度（产生残影）
	FadeAlpha = 0.08

	// GlowRadiusScale 光晕半径 = 尺寸 × GlowRadiusScale × glow 倍数
	GlowRadiusScale = 4.0

	// MaxDevicePixelRatio 画布像素比上限
	MaxDevicePixelRatio = 2.0

	// MaxConsecutiveFaults 连续帧故障达到该次数后降级为静态背景
	MaxConsecutiveFaults = 30
)

// FadeColor 是残影清屏使用的暗色 rgba(3, 3, 8)
var FadeColor = [3]uint8{3, 3, 8}

// Input (输入参数)
const (
	// PointerThrottle 指针采样最小间隔
	PointerThrottle = 16 * time.Millisecond

	// PointerSpringFrequency / PointerSpringDamping 指针平滑弹簧参数
	PointerSpringFrequency = 6.0
	PointerSpringDamping   = 1.0

	// ScrollSpringFrequency / ScrollSpringDamping 滚动进度平滑弹簧参数
	ScrollSpringFrequency = 4.0
	ScrollSpringDamping   = 1.0

	// ScrollWheelStep 每个滚轮刻度对应的滚动进度
	ScrollWheelStep = 0.05
)

// Degraded mode (低性能降级参数)
const (
	DegradedCountScale      = 0.5
	DegradedConnectionScale = 0.6
)
