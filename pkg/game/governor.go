package game

import (
	"go.uber.org/zap"

	"github.com/gonewx/particlefield/pkg/config"
)

// Mode 粒子场运行模式
type Mode int

const (
	// ModeFull 完整模拟与渲染
	ModeFull Mode = iota
	// ModeDegraded 低性能设备：粒子减半、连线距离缩短、关闭拖尾和光晕
	ModeDegraded
	// ModeStatic 静态渐变背景，不模拟也不绘制粒子
	ModeStatic
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeDegraded:
		return "degraded"
	case ModeStatic:
		return "static"
	}
	return "unknown"
}

// Decide maps the probed environment onto a run mode.
//
//   - reduced motion, hidden surface or disabled field → ModeStatic
//   - low performance device → ModeDegraded
//   - otherwise → ModeFull
func Decide(caps Capabilities, visible, enabled bool) Mode {
	if caps.ReducedMotion || !visible || !enabled {
		return ModeStatic
	}
	if caps.LowPerformance() {
		return ModeDegraded
	}
	return ModeFull
}

// ApplyMode returns opts adjusted for mode. Only ModeDegraded changes
// anything; the static mode is handled by skipping the loop entirely.
func ApplyMode(mode Mode, opts config.FieldOptions) config.FieldOptions {
	if mode != ModeDegraded {
		return opts
	}
	opts.ParticleCount = int(float64(opts.ParticleCount) * config.DegradedCountScale)
	opts.ConnectionDistance *= config.DegradedConnectionScale
	opts.ShowTrails = false
	opts.EnableGlow = false
	return opts
}

// PerformanceGovernor 性能调节器
//
// 挂载时探测一次设备能力，每帧询问可见性，输出当前模式。
// 判断只作参考：探测失败时按高性能设备处理。
type PerformanceGovernor struct {
	caps       Capabilities
	visibility VisibilitySource
	enabled    bool
	mode       Mode
	primed     bool
	logger     *zap.Logger
}

// NewPerformanceGovernor creates a governor. A nil visibility source is
// treated as always visible.
func NewPerformanceGovernor(caps Capabilities, visibility VisibilitySource, logger *zap.Logger) *PerformanceGovernor {
	if visibility == nil {
		visibility = AlwaysVisible
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PerformanceGovernor{
		caps:       caps,
		visibility: visibility,
		enabled:    true,
		logger:     logger,
	}
}

// Capabilities 返回探测结果
func (g *PerformanceGovernor) Capabilities() Capabilities { return g.caps }

// SetReducedMotion 由设置或命令行覆盖减少动态效果偏好
func (g *PerformanceGovernor) SetReducedMotion(reduced bool) { g.caps.ReducedMotion = reduced }

// SetEnabled 启用或停用粒子场
func (g *PerformanceGovernor) SetEnabled(enabled bool) { g.enabled = enabled }

// Enabled 粒子场是否启用
func (g *PerformanceGovernor) Enabled() bool { return g.enabled }

// Mode evaluates the current mode and logs transitions.
func (g *PerformanceGovernor) Mode() Mode {
	mode := Decide(g.caps, g.visibility.Visible(), g.enabled)
	if !g.primed || mode != g.mode {
		g.logger.Info("field mode",
			zap.Stringer("mode", mode),
			zap.Stringer("previous", g.mode),
			zap.Bool("lowPerformance", g.caps.LowPerformance()),
			zap.Bool("reducedMotion", g.caps.ReducedMotion))
		g.mode = mode
		g.primed = true
	}
	return mode
}
