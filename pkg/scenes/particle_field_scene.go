// Package scenes hosts particle fields on Ebitengine panels.
package scenes

import (
	"context"
	"fmt"
	"image"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/gonewx/particlefield/pkg/components"
	"github.com/gonewx/particlefield/pkg/config"
	"github.com/gonewx/particlefield/pkg/entities"
	"github.com/gonewx/particlefield/pkg/game"
	"github.com/gonewx/particlefield/pkg/render"
	"github.com/gonewx/particlefield/pkg/systems"
	"github.com/gonewx/particlefield/pkg/utils"
)

// FieldSceneConfig 创建粒子场场景的参数
type FieldSceneConfig struct {
	Options config.FieldOptions
	// Presets 为 nil 时使用内置预设
	Presets *config.Presets
	// Governor 为 nil 时始终以完整模式运行
	Governor *game.PerformanceGovernor
	// WatchPath 非空时监听该预设文件并热重载
	WatchPath string
	Logger    *zap.Logger
	// Seed 为 0 时随机
	Seed int64
	// Now 为 nil 时使用 time.Now
	Now func() time.Time
}

// Stats 调试叠加层显示的运行统计
type Stats struct {
	FPS       float64
	Particles int
	Commands  int
	Mode      game.Mode
	Faulted   bool
	Faults    int
	Frames    uint64
}

// springAxis 一个轴上的弹簧平滑值
type springAxis struct {
	pos, vel, target float64
}

func (a *springAxis) step(s harmonica.Spring) {
	a.pos, a.vel = s.Update(a.pos, a.vel, a.target)
}

func (a *springAxis) snap(v float64) {
	a.pos, a.vel, a.target = v, 0, v
}

// ParticleFieldScene 一个自包含的粒子场实例
//
// 每个实例拥有自己的粒子存储、随机源、预设、弹簧和生命周期，实例之间不共享任何状态。
// 每次 Update：取出热重载的预设 → 询问调节器 → 计算 dt → 弹簧平滑输入 →
// 模拟 → 生成绘制命令。Draw 只执行已生成的命令。
type ParticleFieldScene struct {
	id     string
	logger *zap.Logger

	opts      config.FieldOptions // 请求的选项
	effective config.FieldOptions // 调节器调整后的选项
	key       config.ReinitKey
	presets   *config.Presets
	resolved  config.ResolvedPreset

	store    *components.ParticleStore
	sim      *systems.SimulationSystem
	renderer *systems.RenderSystem
	frame    systems.FrameOptions
	cmds     []components.DrawCommand
	fresh    bool // cmds 尚未绘制

	backend    *render.EbitenRenderer
	surface    *ebiten.Image
	needsClear bool

	governor *game.PerformanceGovernor
	mode     game.Mode
	watcher  *config.PresetWatcher

	width, height int
	scale         float64

	rng  *rand.Rand
	now  func() time.Time
	last time.Time

	pointerX, pointerY springAxis // 归一化坐标 [0, 1]
	pointerActive      bool
	scroll             springAxis
	throttle           *utils.Throttle

	faults  int
	faulted bool

	warnedVariant   bool
	warnedIntensity bool

	stats     Stats
	lifecycle *Lifecycle
	running   bool
}

var (
	_ game.Scene    = (*ParticleFieldScene)(nil)
	_ game.Saveable = (*ParticleFieldScene)(nil)
)

// NewParticleFieldScene creates a field. The store is allocated on the first
// Resize with a non-zero size. The returned error only reports a preset
// watcher that could not start; the scene itself is usable either way.
func NewParticleFieldScene(cfg FieldSceneConfig) (*ParticleFieldScene, error) {
	id := uuid.NewString()
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("field").With(zap.String("instance", id))

	presets := cfg.Presets
	if presets == nil {
		presets = config.DefaultPresets()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &ParticleFieldScene{
		id:        id,
		logger:    logger,
		opts:      cfg.Options,
		presets:   presets,
		renderer:  systems.NewRenderSystem(),
		backend:   render.NewEbitenRenderer(),
		governor:  cfg.Governor,
		scale:     1,
		rng:       rand.New(rand.NewSource(seed)),
		now:       now,
		throttle:  utils.NewThrottle(config.PointerThrottle),
		lifecycle: NewLifecycle(logger),
		running:   true,
	}
	s.pointerX.snap(0.5)
	s.pointerY.snap(0.5)
	s.mode = s.currentMode()

	s.lifecycle.Add("frame loop", func() error {
		s.running = false
		return nil
	})
	s.lifecycle.Add("surface", func() error {
		if s.surface != nil {
			s.surface.Deallocate()
			s.surface = nil
		}
		return nil
	})

	if cfg.WatchPath == "" {
		return s, nil
	}
	w, err := config.NewPresetWatcher(cfg.WatchPath, logger)
	if err != nil {
		return s, fmt.Errorf("watch presets: %w", err)
	}
	if err := w.Start(context.Background()); err != nil {
		w.Close()
		return s, fmt.Errorf("watch presets: %w", err)
	}
	s.watcher = w
	s.lifecycle.Add("preset watcher", w.Close)
	return s, nil
}

// ID 实例标识（日志字段 instance）
func (s *ParticleFieldScene) ID() string { return s.id }

// Options 返回请求的选项
func (s *ParticleFieldScene) Options() config.FieldOptions { return s.opts }

// Effective 返回调节器调整后的选项
func (s *ParticleFieldScene) Effective() config.FieldOptions { return s.effective }

// Resolved 返回当前解析结果
func (s *ParticleFieldScene) Resolved() config.ResolvedPreset { return s.resolved }

// Store 返回粒子存储（尺寸为零时为 nil）
func (s *ParticleFieldScene) Store() *components.ParticleStore { return s.store }

// Commands 返回最近一帧的绘制命令，供非 Ebiten 后端使用
func (s *ParticleFieldScene) Commands() []components.DrawCommand { return s.cmds }

// Mode 返回当前运行模式（故障降级时为 ModeStatic）
func (s *ParticleFieldScene) Mode() game.Mode {
	if s.faulted {
		return game.ModeStatic
	}
	return s.mode
}

// Stats 返回运行统计
func (s *ParticleFieldScene) Stats() Stats {
	st := s.stats
	st.Particles = s.store.Len()
	st.Commands = len(s.cmds)
	st.Mode = s.Mode()
	st.Faulted = s.faulted
	st.Faults = s.faults
	return st
}

// Resize sets the container size in logical pixels and the device scale
// factor. Any size change reallocates the store.
func (s *ParticleFieldScene) Resize(width, height int, deviceScale float64) {
	if deviceScale <= 0 || math.IsNaN(deviceScale) {
		deviceScale = 1
	}
	scale := math.Min(deviceScale, config.MaxDevicePixelRatio)
	width, height = max(width, 0), max(height, 0)

	if width == s.width && height == s.height && scale == s.scale && (s.store != nil || width == 0 || height == 0) {
		return
	}
	s.width, s.height, s.scale = width, height, scale
	s.reinit("resize")
}

// SetOptions changes the field options. Variant, intensity, count, depth or
// speed changes reallocate the store; the rest apply in place.
func (s *ParticleFieldScene) SetOptions(opts config.FieldOptions) {
	s.opts = opts
	s.applyOptions("options")
}

// ApplyPresets replaces the preset tables and reallocates the store.
func (s *ParticleFieldScene) ApplyPresets(p *config.Presets) {
	if p == nil {
		return
	}
	s.presets = p
	s.warnedVariant, s.warnedIntensity = false, false
	s.reinit("presets")
}

// SetPointer records a pointer sample in logical panel coordinates.
// Samples closer than the throttle interval are dropped. A sample outside
// the panel counts as the pointer leaving: the target returns to the
// center and repulsion stops.
func (s *ParticleFieldScene) SetPointer(x, y float64, inside bool) {
	if !inside {
		s.PointerLeave()
		return
	}
	if s.width == 0 || s.height == 0 || !s.throttle.Allow(s.now()) {
		return
	}
	s.pointerX.target = utils.Clamp(x/float64(s.width), 0, 1)
	s.pointerY.target = utils.Clamp(y/float64(s.height), 0, 1)
	s.pointerActive = true
}

// PointerLeave 指针离开面板
func (s *ParticleFieldScene) PointerLeave() {
	s.pointerActive = false
	s.pointerX.target = 0.5
	s.pointerY.target = 0.5
	s.throttle.Reset()
}

// SetScroll 设置滚动进度目标 [0, 1]
func (s *ParticleFieldScene) SetScroll(progress float64) {
	s.scroll.target = utils.Clamp(progress, 0, 1)
}

// Update advances the field to now.
func (s *ParticleFieldScene) Update(now time.Time) {
	if !s.running {
		return
	}
	s.drainPresets()

	if mode := s.currentMode(); mode != s.mode {
		// 离开静态模式时表面上还是不透明背景，需要先清空再恢复残影
		if s.mode == game.ModeStatic {
			s.needsClear = true
		}
		s.mode = mode
		s.applyOptions("mode")
	}

	dt := 1.0
	if !s.last.IsZero() {
		dt = float64(now.Sub(s.last)) / float64(config.FrameDuration)
	}
	s.last = now
	s.stats.Frames++
	if dt > 0 {
		fps := 60 / dt
		if s.stats.FPS == 0 {
			s.stats.FPS = fps
		} else {
			s.stats.FPS = s.stats.FPS*0.9 + fps*0.1
		}
	}

	if s.store == nil {
		s.cmds = s.cmds[:0]
		return
	}
	if s.Mode() == game.ModeStatic {
		s.cmds = append(s.cmds[:0], systems.StaticBackground(s.store.Width, s.store.Height, s.resolved.Palette))
		s.fresh = true
		return
	}

	s.stepSprings(systems.ClampDelta(dt))
	if err := s.runFrame(dt); err != nil {
		s.faults++
		s.cmds = s.cmds[:0]
		s.logger.Error("frame fault", zap.Error(err), zap.Int("consecutive", s.faults))
		if s.faults >= config.MaxConsecutiveFaults {
			s.faulted = true
			s.needsClear = true
			s.logger.Warn("too many consecutive frame faults, switching to static background",
				zap.Int("faults", s.faults))
		}
		return
	}
	s.faults = 0
	s.fresh = true
}

// runFrame 单帧模拟与命令生成，panic 被转换为错误，帧被跳过
func (s *ParticleFieldScene) runFrame(dt float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("frame panic: %v", r)
		}
	}()
	s.sim.Update(s.store, s.inputs(), dt)
	s.cmds = s.renderer.BuildFrame(s.store, s.store.Time, s.frame)
	return nil
}

// inputs 当前帧的输入（弹簧平滑后的像素坐标）
func (s *ParticleFieldScene) inputs() components.FrameInputs {
	return components.FrameInputs{
		PointerX:      s.pointerX.pos * float64(s.width),
		PointerY:      s.pointerY.pos * float64(s.height),
		PointerActive: s.pointerActive,
		Scroll:        s.scroll.pos,
	}
}

func (s *ParticleFieldScene) stepSprings(dt float64) {
	if dt == 0 {
		return
	}
	step := harmonica.FPS(60) * dt
	pointer := harmonica.NewSpring(step, config.PointerSpringFrequency, config.PointerSpringDamping)
	s.pointerX.step(pointer)
	s.pointerY.step(pointer)
	s.scroll.step(harmonica.NewSpring(step, config.ScrollSpringFrequency, config.ScrollSpringDamping))
}

// Draw executes the latest commands on the persistent surface and copies it
// into panel. panel is in device pixels.
func (s *ParticleFieldScene) Draw(panel *ebiten.Image) {
	if panel == nil || s.store == nil || !s.running {
		return
	}
	s.ensureSurface()
	if s.needsClear {
		s.surface.Clear()
		s.needsClear = false
	}

	if s.fresh {
		if s.Mode() == game.ModeStatic {
			render.DrawStaticFallback(s.surface, s.resolved.Palette)
		} else {
			s.backend.Render(s.surface, s.cmds, s.scale)
		}
		s.fresh = false
	}

	op := &ebiten.DrawImageOptions{}
	origin := panel.Bounds().Min
	op.GeoM.Translate(float64(origin.X), float64(origin.Y))
	panel.DrawImage(s.surface, op)
}

// SurfaceSize 后备图像尺寸（逻辑尺寸 × 设备像素比）
func (s *ParticleFieldScene) SurfaceSize() image.Point {
	return image.Pt(int(math.Ceil(float64(s.width)*s.scale)), int(math.Ceil(float64(s.height)*s.scale)))
}

func (s *ParticleFieldScene) ensureSurface() {
	size := s.SurfaceSize()
	if s.surface != nil && s.surface.Bounds().Size() == size {
		return
	}
	if s.surface != nil {
		s.surface.Deallocate()
	}
	s.surface = ebiten.NewImage(size.X, size.Y)
	s.needsClear = false
}

// SaveOnExit 粒子场没有需要保存的状态
func (s *ParticleFieldScene) SaveOnExit() bool { return true }

// Close releases the scene's resources. Safe to call more than once.
func (s *ParticleFieldScene) Close() error {
	return s.lifecycle.Close()
}

func (s *ParticleFieldScene) currentMode() game.Mode {
	if s.governor == nil {
		return game.ModeFull
	}
	return s.governor.Mode()
}

// drainPresets 非阻塞地取出监听器发布的最新预设
func (s *ParticleFieldScene) drainPresets() {
	if s.watcher == nil {
		return
	}
	select {
	case p := <-s.watcher.Updates():
		s.logger.Info("presets reloaded", zap.String("path", s.watcher.Path()))
		s.ApplyPresets(p)
	default:
	}
}

// applyOptions 只有 ReinitKey 变化时才重建存储
func (s *ParticleFieldScene) applyOptions(reason string) {
	eff := game.ApplyMode(s.mode, s.opts).Normalize()
	if s.store == nil || eff.ReinitKey() != s.key {
		s.reinit(reason)
		return
	}
	s.effective = eff
	s.sim.SetParams(systems.NewSimulationParams(eff, s.resolved.Multipliers))
	s.frame = systems.NewFrameOptions(eff, s.resolved)
	s.frame.LifeFade = s.presets.Spawn.LifeFade
}

func (s *ParticleFieldScene) reinit(reason string) {
	eff := game.ApplyMode(s.mode, s.opts).Normalize()
	s.effective = eff
	s.key = eff.ReinitKey()
	s.resolved = s.presets.Table.Resolve(eff.Variant, eff.Intensity, eff.ParticleCount)
	s.warnFallbacks(eff)

	s.faults = 0
	s.faulted = false
	s.cmds = s.cmds[:0]
	s.needsClear = true

	if s.width == 0 || s.height == 0 {
		s.store = nil
		s.logger.Debug("zero-size container, nothing to draw", zap.String("reason", reason))
		return
	}

	w, h := float64(s.width), float64(s.height)
	s.store = entities.NewParticleStoreWithSpawn(s.resolved, eff, s.presets.Spawn, w, h, s.rng)
	s.sim = systems.NewSimulationSystem(systems.NewSimulationParams(eff, s.resolved.Multipliers), s.rng)
	s.frame = systems.NewFrameOptions(eff, s.resolved)
	s.frame.LifeFade = s.presets.Spawn.LifeFade

	s.logger.Debug("field initialized",
		zap.String("reason", reason),
		zap.Int("width", s.width),
		zap.Int("height", s.height),
		zap.Float64("scale", s.scale),
		zap.Stringer("mode", s.mode),
		zap.Int("particles", s.store.Len()),
		zap.Stringer("options", eff))
}

func (s *ParticleFieldScene) warnFallbacks(eff config.FieldOptions) {
	if s.resolved.VariantFallback && !s.warnedVariant {
		s.warnedVariant = true
		s.logger.Warn("unknown variant, using default",
			zap.String("variant", eff.Variant), zap.String("default", string(s.resolved.Variant)))
	}
	if s.resolved.IntensityFallback && !s.warnedIntensity {
		s.warnedIntensity = true
		s.logger.Warn("unknown intensity, using default",
			zap.String("intensity", eff.Intensity), zap.String("default", string(s.resolved.Intensity)))
	}
}
