// Package main runs the particle field in a terminal through tcell.
//
// Usage:
//
//	go run ./cmd/termfield [flags]
//
// Controls:
//
//	Mouse      - Repel particles
//	V / I      - Next variant / intensity
//	+ / -      - More / fewer particles
//	Esc/Ctrl-C - Quit
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gonewx/particlefield/pkg/config"
	"github.com/gonewx/particlefield/pkg/game"
	"github.com/gonewx/particlefield/pkg/render"
	"github.com/gonewx/particlefield/pkg/scenes"
)

// 每个字符单元对应的逻辑像素（终端字符约为 1:2）
const (
	cellWidth  = 8
	cellHeight = 16
	countStep  = 20
)

// TermField 终端粒子场
type TermField struct {
	screen   tcell.Screen
	scene    *scenes.ParticleFieldScene
	renderer *render.TerminalRenderer
	presets  *config.Presets
	opts     config.FieldOptions
	logger   *zap.Logger

	cols, rows int
}

// NewTermField creates a field sized to the screen.
func NewTermField(screen tcell.Screen, presets *config.Presets, opts config.FieldOptions, logger *zap.Logger) (*TermField, error) {
	governor := game.NewPerformanceGovernor(game.ProbeCapabilities(), game.AlwaysVisible, logger.Named("governor"))
	scene, err := scenes.NewParticleFieldScene(scenes.FieldSceneConfig{
		Options:  opts,
		Presets:  presets,
		Governor: governor,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	tf := &TermField{
		screen:   screen,
		scene:    scene,
		renderer: render.NewTerminalRenderer(),
		presets:  presets,
		opts:     opts,
		logger:   logger,
	}
	tf.resize()
	return tf, nil
}

func (tf *TermField) resize() {
	tf.cols, tf.rows = tf.screen.Size()
	tf.scene.Resize(tf.cols*cellWidth, tf.rows*cellHeight, 1)
	tf.renderer.Reset()
	tf.screen.Clear()
}

// handleEvent returns false when the program should quit
func (tf *TermField) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case 'v', 'V':
			tf.opts.Variant = string(next(tf.presets.Table.VariantNames(), tf.scene.Resolved().Variant))
			tf.scene.SetOptions(tf.opts)
		case 'i', 'I':
			tf.opts.Intensity = string(next(tf.presets.Table.IntensityNames(), tf.scene.Resolved().Intensity))
			tf.scene.SetOptions(tf.opts)
		case '+', '=':
			tf.opts.ParticleCount += countStep
			tf.scene.SetOptions(tf.opts)
		case '-':
			tf.opts.ParticleCount = max(tf.opts.ParticleCount-countStep, 0)
			tf.scene.SetOptions(tf.opts)
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		inside := x >= 0 && y >= 0 && x < tf.cols && y < tf.rows
		tf.scene.SetPointer(float64(x*cellWidth+cellWidth/2), float64(y*cellHeight+cellHeight/2), inside)

	case *tcell.EventResize:
		tf.resize()
		tf.screen.Sync()
	}
	return true
}

// frame advances the simulation and paints the cells
func (tf *TermField) frame(now time.Time) {
	tf.scene.Update(now)
	tf.renderer.Render(tf.screen, tf.scene.Commands(),
		float64(tf.cols*cellWidth), float64(tf.rows*cellHeight))
	tf.screen.Show()
}

// Close releases the scene
func (tf *TermField) Close() error {
	return tf.scene.Close()
}

func (tf *TermField) run() {
	ticker := time.NewTicker(config.FrameDuration)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := tf.screen.PollEvent()
			if ev == nil {
				// Fini 之后 PollEvent 返回 nil
				close(events)
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok || !tf.handleEvent(ev) {
				return
			}
		case now := <-ticker.C:
			tf.frame(now)
		}
	}
}

// next 返回 current 之后的名称
func next[T comparable](names []T, current T) T {
	for i, n := range names {
		if n == current {
			return names[(i+1)%len(names)]
		}
	}
	if len(names) == 0 {
		return current
	}
	return names[0]
}

func main() {
	var (
		variant     string
		intensity   string
		count       int
		presetsFile string
		logFile     string
	)
	defaults := config.DefaultFieldOptions()

	cmd := &cobra.Command{
		Use:          "termfield",
		Short:        "Run the particle field in a terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// 终端被占用，日志只能写文件
			logger := zap.NewNop()
			if logFile != "" {
				cfg := zap.NewDevelopmentConfig()
				cfg.OutputPaths = []string{logFile}
				cfg.ErrorOutputPaths = []string{logFile}
				l, err := cfg.Build()
				if err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
				logger = l
			}
			defer logger.Sync()

			presets := config.DefaultPresets()
			if presetsFile != "" {
				var err error
				if presets, err = config.LoadPresetFile(presetsFile); err != nil {
					return err
				}
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("failed to create screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("failed to initialize screen: %w", err)
			}
			defer screen.Fini()
			screen.EnableMouse(tcell.MouseMotionEvents)
			screen.HideCursor()

			opts := defaults
			opts.Variant, opts.Intensity, opts.ParticleCount = variant, intensity, count
			tf, err := NewTermField(screen, presets, opts, logger)
			if err != nil {
				return err
			}
			defer tf.Close()

			tf.run()
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&variant, "variant", defaults.Variant, "color variant")
	fl.StringVar(&intensity, "intensity", defaults.Intensity, "intensity")
	fl.IntVar(&count, "count", 80, "requested particle count")
	fl.StringVar(&presetsFile, "presets-file", "", "YAML preset file merged over the built-ins")
	fl.StringVar(&logFile, "log-file", "", "write logs to this file")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
