package game

import "github.com/hajimehoshi/ebiten/v2"

// VisibilitySource 报告粒子场当前是否可见
type VisibilitySource interface {
	Visible() bool
}

// VisibilityFunc adapts a function to VisibilitySource.
type VisibilityFunc func() bool

func (f VisibilityFunc) Visible() bool { return f() }

// AlwaysVisible 测试和无窗口后端使用
var AlwaysVisible VisibilitySource = VisibilityFunc(func() bool { return true })

// EbitenVisibility 窗口获得焦点且未最小化时可见
type EbitenVisibility struct{}

func (EbitenVisibility) Visible() bool {
	return ebiten.IsFocused() && !ebiten.IsWindowMinimized()
}
