//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此包用于构建 Android (.aar) 和 iOS (.xcframework) 包。
// 使用 ebitenmobile 工具构建时会自动调用 init() 函数。
//
// 此文件仅在使用 -tags mobile 构建时编译：
//
//	# Android
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.gonewx.particlefield -o build/android/particlefield.aar -v ./mobile
//
//	# iOS (仅 macOS)
//	ebitenmobile bind -target ios -tags mobile -o build/ios/ParticleField.xcframework -v ./mobile
//
// 移动端不嵌入预设文件，直接使用内置预设。
package mobile

import (
	"github.com/hajimehoshi/ebiten/v2/mobile"
	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"

	"github.com/gonewx/particlefield/pkg/app"
	"github.com/gonewx/particlefield/pkg/config"
	"github.com/gonewx/particlefield/pkg/game"
)

func init() {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}

	var storage *gdata.Manager
	if m, err := gdata.Open(gdata.Config{AppName: "particlefield"}); err == nil {
		storage = m
	} else {
		logger.Warn("settings storage unavailable", zap.Error(err))
	}
	settings := game.NewSettingsManager(storage, logger.Named("settings"))
	if err := settings.Load(); err != nil {
		logger.Warn("failed to load settings", zap.Error(err))
	}

	// 移动端能力探测总是返回 Mobile=true，由调控器自动降级
	dashboard, err := app.NewApp(app.Config{
		Options:      settings.Settings().ApplyTo(config.DefaultFieldOptions()),
		Presets:      config.DefaultPresets(),
		Panels:       1,
		Capabilities: game.ProbeCapabilities(),
		Settings:     settings,
		SaveSettings: true,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("dashboard initialization failed", zap.Error(err))
	}

	// 注册到 ebitenmobile
	mobile.SetGame(dashboard)
}

// Dummy 是一个空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}
