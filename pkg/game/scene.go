package game

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Scene is one self-contained surface hosted by the app (one dashboard
// panel). Scenes share nothing with each other.
type Scene interface {
	// Update advances the scene to now. Called once per tick.
	Update(now time.Time)

	// Draw renders the scene onto its panel image.
	Draw(panel *ebiten.Image)

	// Resize reports the panel size in logical pixels and the device scale
	// factor. Called from Layout whenever either changes.
	Resize(width, height int, deviceScale float64)

	// Close releases the scene's resources. Safe to call more than once.
	Close() error
}

// Saveable 是一个可选接口，用于支持场景在退出时保存设置
//
// 实现此接口的场景会在以下时机被调用 SaveOnExit()：
//   - 窗口关闭
//   - 用户通过 OS 命令关闭程序
type Saveable interface {
	// SaveOnExit 在退出时保存设置
	// 返回 true 表示保存成功或无需保存
	SaveOnExit() bool
}
