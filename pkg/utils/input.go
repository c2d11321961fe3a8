// Package utils 提供通用工具函数
package utils

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// PointerSample is the pointer state for one frame, expressed in the
// coordinate space of a panel.
type PointerSample struct {
	// X, Y 相对面板左上角的坐标（像素）
	X, Y float64
	// Inside 指针是否位于面板内
	Inside bool
	// IsTouching 是否来自触摸输入
	IsTouching bool
}

// SamplePointer 获取当前帧的指针状态并映射到 bounds 内
// 同时支持鼠标和触摸输入，优先检测触摸
func SamplePointer(bounds image.Rectangle) PointerSample {
	touchIDs := ebiten.AppendTouchIDs(nil)
	if len(touchIDs) > 0 {
		x, y := ebiten.TouchPosition(touchIDs[0])
		s := PointerIn(x, y, bounds)
		s.IsTouching = true
		return s
	}

	x, y := ebiten.CursorPosition()
	return PointerIn(x, y, bounds)
}

// PointerIn maps screen coordinates into bounds-relative coordinates.
func PointerIn(x, y int, bounds image.Rectangle) PointerSample {
	return PointerSample{
		X:      float64(x - bounds.Min.X),
		Y:      float64(y - bounds.Min.Y),
		Inside: image.Pt(x, y).In(bounds),
	}
}

// WheelDelta 返回本帧垂直滚轮增量（向下滚动为正）
func WheelDelta() float64 {
	_, dy := ebiten.Wheel()
	return -dy
}
