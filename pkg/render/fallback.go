package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/gonewx/particlefield/pkg/components"
	"github.com/gonewx/particlefield/pkg/config"
	"github.com/gonewx/particlefield/pkg/systems"
)

// fallbackBands 静态背景渐变的水平色带数量
const fallbackBands = 48

// DrawStaticFallback paints the static background gradient for palette
// without touching the triangle batch. Used when the field is static
// (reduced motion, hidden, disabled) or after repeated frame faults.
func DrawStaticFallback(dst *ebiten.Image, palette config.Palette) {
	if dst == nil {
		return
	}
	b := dst.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	if w <= 0 || h <= 0 {
		return
	}

	bg := systems.StaticBackground(w, h, palette)
	bandH := h / fallbackBands
	for i := 0; i < fallbackBands; i++ {
		t := (float64(i) + 0.5) / fallbackBands
		c := sampleStops(bg.Stops, t)
		y := float64(b.Min.Y) + float64(i)*bandH
		// 多画 1 像素，避免色带之间出现缝隙
		vector.DrawFilledRect(dst, float32(b.Min.X), float32(y), float32(w), float32(bandH+1), toNRGBA(c), false)
	}
}

func toNRGBA(c components.Color) color.NRGBA {
	return color.NRGBA{
		R: unit8(c.R),
		G: unit8(c.G),
		B: unit8(c.B),
		A: unit8(c.A),
	}
}

func unit8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}
