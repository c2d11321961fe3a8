// Package app 提供仪表盘应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/gonewx/particlefield/pkg/config"
	"github.com/gonewx/particlefield/pkg/game"
	"github.com/gonewx/particlefield/pkg/scenes"
	"github.com/gonewx/particlefield/pkg/utils"
)

// 面板布局
const (
	// PanelGap 面板之间的间距（逻辑像素）
	PanelGap = 12
	// MaxPanels 面板数量上限
	MaxPanels = 9
)

var (
	backgroundColor  = color.RGBA{R: 3, G: 3, B: 8, A: 255}
	panelBorderColor = color.RGBA{R: 139, G: 92, B: 246, A: 90}
)

// Config 定义应用启动配置
type Config struct {
	Options config.FieldOptions
	// Presets 为 nil 时使用内置预设
	Presets *config.Presets
	// WatchPath 非空时每个面板独立监听该预设文件
	WatchPath string
	// Panels 面板数量；大于 1 时其余面板依次使用后续变体
	Panels int
	// Capabilities 设备能力（通常来自 game.ProbeCapabilities）
	Capabilities game.Capabilities
	// Visibility 为 nil 时使用窗口焦点
	Visibility game.VisibilitySource
	// Settings 可为 nil（不持久化）
	Settings *game.SettingsManager
	// SaveSettings 退出时保存当前选项
	SaveSettings bool
	Logger       *zap.Logger
	// Seed 非 0 时第 i 个面板使用 Seed+i
	Seed int64
}

// panel 仪表盘上的一个面板
type panel struct {
	scene *scenes.ParticleFieldScene
	// governor 每个面板独立，可见性和降级判断互不影响
	governor *game.PerformanceGovernor
	bounds   image.Rectangle // 逻辑像素
}

// App 是仪表盘应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	cfg      Config
	logger   *zap.Logger
	panels   []*panel
	settings *game.SettingsManager

	outsideW, outsideH int
	scale              float64
	scroll             float64
	showOverlay        bool
	closed             bool

	pendingWindowSizeReset   bool
	windowSizeResetCountdown int
	windowW, windowH         int
}

// NewApp 创建并初始化仪表盘应用
//
// 如需从内嵌文件加载预设，调用此函数前必须先调用 embedded.Init()。
func NewApp(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Presets == nil {
		presets, err := config.LoadEmbeddedPresets()
		if err != nil {
			return nil, fmt.Errorf("load presets: %w", err)
		}
		cfg.Presets = presets
	}
	n := cfg.Panels
	if n < 1 {
		n = 1
	}
	if n > MaxPanels {
		logger.Warn("too many panels, clamping", zap.Int("requested", n), zap.Int("max", MaxPanels))
		n = MaxPanels
	}

	if cfg.Visibility == nil {
		cfg.Visibility = game.EbitenVisibility{}
	}
	caps := cfg.Capabilities
	if s := cfg.Settings; s != nil {
		st := s.Settings()
		if st.ReducedMotion {
			caps.ReducedMotion = true
		}
		if !st.AutoReduce && caps.LowPerformance() {
			logger.Info("auto reduce disabled by settings, running full quality")
			caps = fullQuality(caps)
		}
	}

	a := &App{
		cfg:      cfg,
		logger:   logger,
		settings: cfg.Settings,
		scale:    1,
	}

	variants := cfg.Presets.Table.VariantNames()
	for i := 0; i < n; i++ {
		opts := cfg.Options
		if i > 0 {
			opts.Variant = string(nextVariant(variants, cfg.Options.Variant, i))
		}
		var seed int64
		if cfg.Seed != 0 {
			seed = cfg.Seed + int64(i)
		}
		governor := game.NewPerformanceGovernor(caps, cfg.Visibility, logger.Named("governor").With(zap.Int("panel", i)))
		if cfg.Settings != nil {
			governor.SetEnabled(cfg.Settings.Settings().Enabled)
		}
		scene, err := scenes.NewParticleFieldScene(scenes.FieldSceneConfig{
			Options:   opts,
			Presets:   cfg.Presets,
			Governor:  governor,
			WatchPath: cfg.WatchPath,
			Logger:    logger,
			Seed:      seed,
		})
		if err != nil {
			// 监听失败不影响面板运行
			logger.Warn("preset hot reload unavailable", zap.Error(err))
		}
		a.panels = append(a.panels, &panel{scene: scene, governor: governor})
	}

	logger.Info("dashboard ready",
		zap.Int("panels", n),
		zap.Stringer("options", cfg.Options),
		zap.Bool("lowPerformance", cfg.Capabilities.LowPerformance()))
	return a, nil
}

// fullQuality 清除低性能信号，保留减少动态效果偏好
func fullQuality(c game.Capabilities) game.Capabilities {
	return game.Capabilities{ReducedMotion: c.ReducedMotion}
}

// nextVariant 从 current 开始按名称顺序取第 offset 个变体
func nextVariant(variants []config.Variant, current string, offset int) config.Variant {
	if len(variants) == 0 {
		return config.Variant(current)
	}
	start := 0
	for i, v := range variants {
		if string(v) == current {
			start = i
			break
		}
	}
	return variants[(start+offset)%len(variants)]
}

// Update 更新逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	if a.closed {
		return ebiten.Termination
	}
	if ebiten.IsWindowBeingClosed() {
		a.Close()
		return ebiten.Termination
	}

	a.handleKeys()

	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.windowW, a.windowH)
			a.pendingWindowSizeReset = false
		}
	}

	if wheel := utils.WheelDelta(); wheel != 0 {
		a.scroll = utils.Clamp(a.scroll+wheel*config.ScrollWheelStep, 0, 1)
	}

	now := time.Now()
	for _, p := range a.panels {
		device := scaleRect(p.bounds, a.scale)
		sample := utils.SamplePointer(device)
		p.scene.SetPointer(sample.X/a.scale, sample.Y/a.scale, sample.Inside)
		p.scene.SetScroll(a.scroll)
		p.scene.Update(now)
	}
	return nil
}

func (a *App) handleKeys() {
	// F3 调试叠加层
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		a.showOverlay = !a.showOverlay
	}

	// M 切换减少动态效果
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		a.toggleReducedMotion()
	}

	// Space 暂停/启用粒子场
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		a.toggleEnabled()
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
		} else {
			a.windowW, a.windowH = ebiten.WindowSize()
			ebiten.SetFullscreen(true)
		}
	}
}

// Draw 绘制所有面板
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	for i, p := range a.panels {
		device := scaleRect(p.bounds, a.scale)
		if device.Empty() {
			continue
		}
		sub := screen.SubImage(device).(*ebiten.Image)
		p.scene.Draw(sub)

		vector.StrokeRect(screen, float32(device.Min.X), float32(device.Min.Y),
			float32(device.Dx()), float32(device.Dy()), float32(a.scale), panelBorderColor, true)

		if a.showOverlay {
			ebitenutil.DebugPrintAt(screen, overlayText(i, p.scene), device.Min.X+8, device.Min.Y+8)
		}
	}
}

// overlayText 调试叠加层内容
func overlayText(index int, s *scenes.ParticleFieldScene) string {
	st := s.Stats()
	r := s.Resolved()
	text := fmt.Sprintf("panel %d  %s/%s\nFPS %.1f  particles %d  cmds %d\nmode %s  frames %d",
		index, r.Variant, r.Intensity, st.FPS, st.Particles, st.Commands, st.Mode, st.Frames)
	if st.Faulted {
		text += "  FAULTED"
	}
	return text
}

// Layout 返回设备像素尺寸的屏幕，面板按逻辑像素布局后乘以设备像素比
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale := ebiten.Monitor().DeviceScaleFactor()
	a.layout(outsideWidth, outsideHeight, scale)
	return int(math.Ceil(float64(outsideWidth) * a.scale)), int(math.Ceil(float64(outsideHeight) * a.scale))
}

// layout 尺寸或像素比变化时重新排列面板
func (a *App) layout(w, h int, deviceScale float64) {
	if deviceScale <= 0 {
		deviceScale = 1
	}
	scale := math.Min(deviceScale, config.MaxDevicePixelRatio)
	if w == a.outsideW && h == a.outsideH && scale == a.scale {
		return
	}
	a.outsideW, a.outsideH, a.scale = w, h, scale

	rects := PanelRects(w, h, len(a.panels), PanelGap)
	for i, p := range a.panels {
		p.bounds = rects[i]
		p.scene.Resize(rects[i].Dx(), rects[i].Dy(), deviceScale)
	}
}

// PanelRects splits a w × h area into n panels laid out on a near-square
// grid with gap pixels around and between them.
func PanelRects(w, h, n, gap int) []image.Rectangle {
	if n <= 0 {
		return nil
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols

	cellW := (w - gap*(cols+1)) / cols
	cellH := (h - gap*(rows+1)) / rows
	cellW, cellH = max(cellW, 0), max(cellH, 0)

	rects := make([]image.Rectangle, n)
	for i := range rects {
		c, r := i%cols, i/cols
		x := gap + c*(cellW+gap)
		y := gap + r*(cellH+gap)
		rects[i] = image.Rect(x, y, x+cellW, y+cellH)
	}
	return rects
}

func scaleRect(r image.Rectangle, s float64) image.Rectangle {
	return image.Rect(
		int(math.Round(float64(r.Min.X)*s)),
		int(math.Round(float64(r.Min.Y)*s)),
		int(math.Round(float64(r.Max.X)*s)),
		int(math.Round(float64(r.Max.Y)*s)),
	)
}

// Scenes 返回所有面板的场景
func (a *App) Scenes() []*scenes.ParticleFieldScene {
	out := make([]*scenes.ParticleFieldScene, len(a.panels))
	for i, p := range a.panels {
		out[i] = p.scene
	}
	return out
}

// toggleReducedMotion 对所有面板切换减少动态效果并立即保存
func (a *App) toggleReducedMotion() {
	reduced := !a.panels[0].governor.Capabilities().ReducedMotion
	for _, p := range a.panels {
		p.governor.SetReducedMotion(reduced)
	}
	a.logger.Info("reduced motion toggled", zap.Bool("reducedMotion", reduced))
	if a.settings != nil {
		a.settings.SetReducedMotion(reduced)
		a.persistSettings()
	}
}

// toggleEnabled 对所有面板暂停或恢复并立即保存
func (a *App) toggleEnabled() {
	enabled := !a.panels[0].governor.Enabled()
	for _, p := range a.panels {
		p.governor.SetEnabled(enabled)
	}
	a.logger.Info("field toggled", zap.Bool("enabled", enabled))
	if a.settings != nil {
		a.settings.SetEnabled(enabled)
		a.persistSettings()
	}
}

// persistSettings 保存偏好开关；仅内存模式时静默跳过
func (a *App) persistSettings() bool {
	if err := a.settings.Save(); err != nil {
		if errors.Is(err, game.ErrNoStorage) {
			return true
		}
		a.logger.Warn("failed to save settings", zap.Error(err))
		return false
	}
	return true
}

var _ game.Saveable = (*App)(nil)

// SaveOnExit 退出时保存设置
func (a *App) SaveOnExit() bool {
	ok := true
	for _, p := range a.panels {
		var s game.Scene = p.scene
		if sv, isSaveable := s.(game.Saveable); isSaveable && !sv.SaveOnExit() {
			ok = false
		}
	}
	if !a.cfg.SaveSettings || a.settings == nil {
		return ok
	}
	a.settings.Record(a.cfg.Options)
	return a.persistSettings() && ok
}

// Close 保存设置并释放所有面板，可重复调用
func (a *App) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.SaveOnExit()

	var errs []error
	for _, p := range a.panels {
		if err := p.scene.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
