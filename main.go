// Package main 粒子场仪表盘入口
//
// 用法：
//
//	particlefield [flags]
//
// 快捷键：
//
//	F3     调试叠加层（FPS、粒子数、模式）
//	F11    切换全屏
//	M      切换减少动态效果
//	Space  暂停/启用粒子场
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/quasilyte/gdata/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gonewx/particlefield/pkg/app"
	"github.com/gonewx/particlefield/pkg/config"
	"github.com/gonewx/particlefield/pkg/embedded"
	"github.com/gonewx/particlefield/pkg/game"
)

// appName gdata 存储目录名
const appName = "particlefield"

// rootFlags 命令行参数
type rootFlags struct {
	variant       string
	intensity     string
	count         int
	preset        string
	presetsFile   string
	watch         bool
	panels        int
	width         int
	height        int
	noInteractive bool
	noScroll      bool
	noTrails      bool
	noGlow        bool
	speed         float64
	depth         float64
	reducedMotion bool
	verbose       bool
	jsonLogs      bool
	saveSettings  bool
	seed          int64
}

var logger *zap.Logger

func newRootCmd() (*cobra.Command, *rootFlags) {
	f := &rootFlags{}
	defaults := config.DefaultFieldOptions()

	cmd := &cobra.Command{
		Use:   "particlefield",
		Short: "Animated particle-field background dashboard",
		Long: `particlefield renders depth-sorted drifting particles with glow,
trails and proximity connections. Each panel is an independent engine that
reacts to the pointer and scroll wheel.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = buildLogger(f.verbose, f.jsonLogs)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.variant, "variant", defaults.Variant, "color variant (quantum, cosmic, neural, energy, nebula, ...)")
	fl.StringVar(&f.intensity, "intensity", defaults.Intensity, "intensity (subtle, normal, intense)")
	fl.IntVar(&f.count, "count", defaults.ParticleCount, "requested particle count before the intensity multiplier")
	fl.StringVar(&f.preset, "preset", "", "named field preset (e.g. neural-network)")
	fl.StringVar(&f.presetsFile, "presets-file", "", "YAML preset file merged over the built-in presets")
	fl.BoolVar(&f.watch, "watch", false, "reload --presets-file when it changes")
	fl.IntVar(&f.panels, "panels", 1, "number of independent panels")
	fl.IntVar(&f.width, "width", 1280, "window width (logical pixels)")
	fl.IntVar(&f.height, "height", 720, "window height (logical pixels)")
	fl.BoolVar(&f.noInteractive, "no-interactive", false, "ignore the pointer")
	fl.BoolVar(&f.noScroll, "no-scroll", false, "ignore the scroll wheel")
	fl.BoolVar(&f.noTrails, "no-trails", false, "disable particle trails")
	fl.BoolVar(&f.noGlow, "no-glow", false, "disable glow halos")
	fl.Float64Var(&f.speed, "speed", defaults.Speed, "simulation speed multiplier")
	fl.Float64Var(&f.depth, "depth", defaults.DepthRange, "depth range (must be > 0)")
	fl.BoolVar(&f.reducedMotion, "reduced-motion", false, "render the static background only")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
	fl.BoolVar(&f.jsonLogs, "json-logs", false, "production JSON log encoding")
	fl.BoolVar(&f.saveSettings, "save-settings", false, "persist the chosen options on exit")
	fl.Int64Var(&f.seed, "seed", 0, "random seed (0 = time based)")

	return cmd, f
}

// buildLogger 开发模式默认彩色控制台输出，--json-logs 切换为生产 JSON
func buildLogger(verbose, jsonLogs bool) (*zap.Logger, error) {
	var cfg zap.Config
	if jsonLogs {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

// loadPresets 依次尝试 --presets-file 和内嵌预设
func loadPresets(path string) (*config.Presets, error) {
	if path != "" {
		return config.LoadPresetFile(path)
	}
	return config.LoadEmbeddedPresets()
}

// resolveOptions 按优先级合并选项：默认值 < 保存的设置 < 命名预设 < 显式参数
func resolveOptions(cmd *cobra.Command, f *rootFlags, presets *config.Presets, settings *game.FieldSettings) (config.FieldOptions, error) {
	opts := config.DefaultFieldOptions()
	if settings != nil {
		opts = settings.ApplyTo(opts)
	}

	preset := f.preset
	if preset == "" && settings != nil {
		preset = settings.Preset
	}
	if preset != "" {
		// 预设只覆盖它显式设置的字段，其余保留已保存的设置
		override, err := config.LookupField(presets.Fields, preset)
		if err != nil {
			return opts, err
		}
		opts = override.Apply(opts)
	}

	fl := cmd.Flags()
	if fl.Changed("variant") {
		opts.Variant = f.variant
	}
	if fl.Changed("intensity") {
		opts.Intensity = f.intensity
	}
	if fl.Changed("count") {
		opts.ParticleCount = f.count
	}
	if fl.Changed("speed") {
		opts.Speed = f.speed
	}
	if fl.Changed("depth") {
		opts.DepthRange = f.depth
	}
	if f.noInteractive {
		opts.Interactive = false
	}
	if f.noScroll {
		opts.ScrollEffect = false
	}
	if f.noTrails {
		opts.ShowTrails = false
	}
	if f.noGlow {
		opts.EnableGlow = false
	}
	return opts, nil
}

func openSettings(log *zap.Logger) *game.SettingsManager {
	gdataManager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Warn("settings storage unavailable, using memory only", zap.Error(err))
		gdataManager = nil
	}
	// NewSettingsManager 已经加载过保存的设置
	return game.NewSettingsManager(gdataManager, log)
}

func runDashboard(cmd *cobra.Command, f *rootFlags) error {
	// 初始化内嵌数据（dataFS 在 embed.go 中声明）
	embedded.Init(dataFS)

	presets, err := loadPresets(f.presetsFile)
	if err != nil {
		return fmt.Errorf("load presets: %w", err)
	}

	settings := openSettings(logger)
	opts, err := resolveOptions(cmd, f, presets, settings.Settings())
	if err != nil {
		if errors.Is(err, config.ErrUnknownPreset) {
			return fmt.Errorf("--preset: %w", err)
		}
		return err
	}
	if f.preset != "" {
		settings.SetPreset(f.preset)
	}

	caps := game.ProbeCapabilities()
	if f.reducedMotion {
		caps.ReducedMotion = true
	}

	watchPath := ""
	if f.watch {
		if f.presetsFile == "" {
			logger.Warn("--watch requires --presets-file, hot reload disabled")
		} else {
			watchPath = f.presetsFile
		}
	}

	dashboard, err := app.NewApp(app.Config{
		Options:      opts,
		Presets:      presets,
		WatchPath:    watchPath,
		Panels:       f.panels,
		Capabilities: caps,
		Settings:     settings,
		SaveSettings: f.saveSettings,
		Logger:       logger,
		Seed:         f.seed,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize dashboard: %w", err)
	}

	ebiten.SetWindowSize(f.width, f.height)
	ebiten.SetWindowTitle("particlefield")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)

	runErr := ebiten.RunGame(dashboard)
	if err := dashboard.Close(); err != nil {
		logger.Warn("failed to release panels", zap.Error(err))
	}
	if runErr != nil && !errors.Is(runErr, ebiten.Termination) {
		return runErr
	}
	return nil
}

func main() {
	cmd, _ := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
