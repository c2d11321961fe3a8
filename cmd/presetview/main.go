// Package main provides a preset viewer for browsing every color variant and
// intensity of the particle field.
//
// Usage:
//
//	go run ./cmd/presetview [flags]
//
// Flags:
//
//	--variant <name>       Start with a variant (e.g. --variant=cosmic)
//	--intensity <name>     Start with an intensity (e.g. --intensity=intense)
//	--presets-file <path>  Merge a YAML preset file over the built-ins
//	--verbose              Debug logging
//
// Controls:
//
//	Left/Right Arrow  - Previous/next variant
//	Up/Down Arrow     - Next/previous intensity
//	N                 - Cycle named fields (aurora-quantum, nebula, ...)
//	O                 - Open a preset file (native dialog)
//	S                 - Export the current presets to a YAML file
//	T / G             - Toggle trails / glow
//	Space             - Pause
//	Q/Escape          - Quit
package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/ncruces/zenity"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gonewx/particlefield/pkg/config"
	"github.com/gonewx/particlefield/pkg/game"
	"github.com/gonewx/particlefield/pkg/scenes"
	"github.com/gonewx/particlefield/pkg/utils"
)

const (
	screenWidth  = 1024
	screenHeight = 768
)

// presetResult 后台文件对话框的结果
type presetResult struct {
	path    string
	presets *config.Presets
	err     error
}

// PresetViewer implements ebiten.Game for browsing presets
type PresetViewer struct {
	scene   *scenes.ParticleFieldScene
	presets *config.Presets
	opts    config.FieldOptions
	logger  *zap.Logger

	variants    []config.Variant
	intensities []config.Intensity
	fields      []string
	variantIdx  int
	intensIdx   int
	fieldIdx    int // -1 = 未选择命名粒子场

	paused        bool
	dialogOpen    bool
	loaded        chan presetResult
	statusMessage string
}

// NewPresetViewer creates the viewer and its single field scene
func NewPresetViewer(presets *config.Presets, opts config.FieldOptions, logger *zap.Logger) (*PresetViewer, error) {
	scene, err := scenes.NewParticleFieldScene(scenes.FieldSceneConfig{
		Options:  opts,
		Presets:  presets,
		Governor: game.NewPerformanceGovernor(game.Capabilities{}, game.AlwaysVisible, logger.Named("governor")),
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	scene.Resize(screenWidth, screenHeight, 1)

	v := &PresetViewer{
		scene:    scene,
		logger:   logger,
		fieldIdx: -1,
		loaded:   make(chan presetResult, 1),
		opts:     opts,
	}
	v.setPresets(presets)
	v.variantIdx = indexOf(v.variants, config.Variant(opts.Variant))
	v.intensIdx = indexOf(v.intensities, config.Intensity(opts.Intensity))
	v.updateStatusMessage()
	return v, nil
}

func (v *PresetViewer) setPresets(p *config.Presets) {
	v.presets = p
	v.variants = p.Table.VariantNames()
	v.intensities = p.Table.IntensityNames()
	v.fields = config.FieldNames(p.Fields)
}

// Update handles input and advances the scene
func (v *PresetViewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	select {
	case r := <-v.loaded:
		v.dialogOpen = false
		v.applyLoaded(r)
	default:
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		v.variantIdx = cycle(v.variantIdx, 1, len(v.variants))
		v.selectCurrent()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		v.variantIdx = cycle(v.variantIdx, -1, len(v.variants))
		v.selectCurrent()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		v.intensIdx = cycle(v.intensIdx, 1, len(v.intensities))
		v.selectCurrent()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		v.intensIdx = cycle(v.intensIdx, -1, len(v.intensities))
		v.selectCurrent()
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		v.nextField()
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		v.opts.ShowTrails = !v.opts.ShowTrails
		v.scene.SetOptions(v.opts)
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		v.opts.EnableGlow = !v.opts.EnableGlow
		v.scene.SetOptions(v.opts)
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		v.paused = !v.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		v.openPresetDialog()
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		v.exportPresets()
	}

	if v.paused {
		return nil
	}
	p := utils.SamplePointer(image.Rect(0, 0, screenWidth, screenHeight))
	v.scene.SetPointer(p.X, p.Y, p.Inside)
	v.scene.Update(time.Now())
	return nil
}

// selectCurrent 应用当前变体和档位，清除命名粒子场选择
func (v *PresetViewer) selectCurrent() {
	if len(v.variants) == 0 || len(v.intensities) == 0 {
		return
	}
	v.fieldIdx = -1
	v.opts.Variant = string(v.variants[v.variantIdx])
	v.opts.Intensity = string(v.intensities[v.intensIdx])
	v.scene.SetOptions(v.opts)
	v.updateStatusMessage()
}

func (v *PresetViewer) nextField() {
	if len(v.fields) == 0 {
		return
	}
	v.fieldIdx = cycle(v.fieldIdx, 1, len(v.fields))
	name := v.fields[v.fieldIdx]
	opts, err := config.NamedField(v.presets.Fields, name)
	if err != nil {
		v.statusMessage = fmt.Sprintf("Error: %v", err)
		return
	}
	v.opts = opts
	v.variantIdx = indexOf(v.variants, config.Variant(opts.Variant))
	v.intensIdx = indexOf(v.intensities, config.Intensity(opts.Intensity))
	v.scene.SetOptions(opts)
	v.statusMessage = fmt.Sprintf("Field: %s", name)
	v.logger.Info("named field selected", zap.String("field", name), zap.Stringer("options", opts))
}

// openPresetDialog 在后台 goroutine 打开文件对话框，避免阻塞帧循环
func (v *PresetViewer) openPresetDialog() {
	if v.dialogOpen {
		return
	}
	v.dialogOpen = true
	go func() {
		path, err := zenity.SelectFile(
			zenity.Title("Open Preset File"),
			zenity.FileFilters{{
				Name:     "Presets",
				Patterns: []string{"*.yaml", "*.yml"},
			}},
		)
		if err != nil {
			v.loaded <- presetResult{err: err}
			return
		}
		p, err := config.LoadPresetFile(path)
		v.loaded <- presetResult{path: path, presets: p, err: err}
	}()
}

func (v *PresetViewer) applyLoaded(r presetResult) {
	if r.err != nil {
		if errors.Is(r.err, zenity.ErrCanceled) {
			v.statusMessage = "Open canceled"
			return
		}
		v.logger.Warn("failed to load preset file", zap.Error(r.err))
		v.statusMessage = fmt.Sprintf("Error: %v", r.err)
		return
	}
	v.setPresets(r.presets)
	v.scene.ApplyPresets(r.presets)
	v.variantIdx = indexOf(v.variants, config.Variant(v.opts.Variant))
	v.intensIdx = indexOf(v.intensities, config.Intensity(v.opts.Intensity))
	v.fieldIdx = -1
	v.statusMessage = fmt.Sprintf("Loaded: %s (%d variants)", r.path, len(v.variants))
	v.logger.Info("preset file loaded", zap.String("path", r.path), zap.Int("variants", len(v.variants)))
}

func (v *PresetViewer) exportPresets() {
	path, err := zenity.SelectFileSave(
		zenity.Title("Export Presets"),
		zenity.Filename("presets.yaml"),
		zenity.ConfirmOverwrite(),
	)
	if err != nil {
		if !errors.Is(err, zenity.ErrCanceled) {
			v.statusMessage = fmt.Sprintf("Error: %v", err)
		}
		return
	}
	data, err := config.MarshalPresets(v.presets)
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		v.logger.Warn("failed to export presets", zap.Error(err))
		v.statusMessage = fmt.Sprintf("Error: %v", err)
		return
	}
	v.statusMessage = fmt.Sprintf("Exported: %s", path)
}

func (v *PresetViewer) updateStatusMessage() {
	r := v.scene.Resolved()
	v.statusMessage = fmt.Sprintf("%s / %s  (%d particles)", r.Variant, r.Intensity, r.Count)
}

// Draw renders the field and the overlay
func (v *PresetViewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{3, 3, 8, 255})
	v.scene.Draw(screen)
	v.drawUI(screen)
}

func (v *PresetViewer) drawUI(screen *ebiten.Image) {
	st := v.scene.Stats()
	title := fmt.Sprintf("Preset Viewer - Variant %d/%d  Intensity %d/%d",
		v.variantIdx+1, len(v.variants), v.intensIdx+1, len(v.intensities))
	ebitenutil.DebugPrintAt(screen, title, 10, 10)
	ebitenutil.DebugPrintAt(screen, v.statusMessage, 10, 30)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS %.1f  particles %d  cmds %d  trails %t  glow %t",
		st.FPS, st.Particles, st.Commands, v.opts.ShowTrails, v.opts.EnableGlow), 10, 50)

	controls := []string{
		"Browse:  <-/-> = Variant  Up/Down = Intensity  N = Named field",
		"Actions: O = Open presets  S = Export  T = Trails  G = Glow  Space = Pause  Q = Quit",
	}
	y := screenHeight - len(controls)*20 - 10
	for i, line := range controls {
		ebitenutil.DebugPrintAt(screen, line, 10, y+i*20)
	}
	if v.paused {
		ebitenutil.DebugPrintAt(screen, "PAUSED (Press Space to resume)", screenWidth-220, 10)
	}
}

// Layout returns the fixed viewer size
func (v *PresetViewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// cycle 在 [0, n) 内循环移动索引
func cycle(i, delta, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i+delta)%n + n) % n
}

func indexOf[T comparable](items []T, item T) int {
	for i, it := range items {
		if it == item {
			return i
		}
	}
	return 0
}

func main() {
	var (
		variant     string
		intensity   string
		presetsFile string
		verbose     bool
	)
	defaults := config.DefaultFieldOptions()

	cmd := &cobra.Command{
		Use:          "presetview",
		Short:        "Browse particle field variants and intensities",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()

			presets := config.DefaultPresets()
			if presetsFile != "" {
				if presets, err = config.LoadPresetFile(presetsFile); err != nil {
					return err
				}
			}

			opts := defaults
			opts.Variant, opts.Intensity = variant, intensity
			viewer, err := NewPresetViewer(presets, opts, logger)
			if err != nil {
				return fmt.Errorf("failed to create viewer: %w", err)
			}
			defer viewer.scene.Close()

			ebiten.SetWindowSize(screenWidth, screenHeight)
			ebiten.SetWindowTitle("particlefield - Preset Viewer")
			return ebiten.RunGame(viewer)
		},
	}
	cmd.Flags().StringVar(&variant, "variant", defaults.Variant, "initial variant")
	cmd.Flags().StringVar(&intensity, "intensity", defaults.Intensity, "initial intensity")
	cmd.Flags().StringVar(&presetsFile, "presets-file", "", "YAML preset file merged over the built-ins")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
