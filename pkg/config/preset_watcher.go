package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// PresetReloadDebounce 连续保存合并为一次重载的窗口
const PresetReloadDebounce = 200 * time.Millisecond

// PresetWatcher watches a preset file and publishes the merged presets on
// every successful reload.
//
// The parent directory is watched rather than the file itself so editors
// that save by rename keep triggering reloads. A file that fails to parse is
// logged and skipped; subscribers keep the previous presets.
type PresetWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	logger   *zap.Logger

	updates chan *Presets
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
	closed  bool

	stats PresetWatcherStats
}

// PresetWatcherStats 监视器统计（调试用）
type PresetWatcherStats struct {
	Events    int
	Reloads   int
	Failures  int
	LastError error
}

// NewPresetWatcher creates a watcher for path. logger may be nil.
func NewPresetWatcher(path string, logger *zap.Logger) (*PresetWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve preset path %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create preset watcher: %w", err)
	}
	return &PresetWatcher{
		watcher:  w,
		path:     abs,
		debounce: PresetReloadDebounce,
		logger:   logger.Named("presets"),
		updates:  make(chan *Presets, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetDebounce 修改防抖窗口，必须在 Start 之前调用
func (pw *PresetWatcher) SetDebounce(d time.Duration) {
	pw.mu.Lock()
	pw.debounce = d
	pw.mu.Unlock()
}

// Path returns the absolute path being watched.
func (pw *PresetWatcher) Path() string { return pw.path }

// Updates delivers reloaded presets. Only the latest unread reload is kept.
func (pw *PresetWatcher) Updates() <-chan *Presets { return pw.updates }

// Start begins watching. It is non-blocking; a second call is a no-op.
func (pw *PresetWatcher) Start(ctx context.Context) error {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	if pw.closed {
		return fmt.Errorf("preset watcher already closed")
	}
	if pw.running {
		return nil
	}

	dir := filepath.Dir(pw.path)
	if err := pw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	pw.running = true
	pw.logger.Info("watching preset file", zap.String("path", pw.path))

	go pw.run(ctx, pw.debounce)
	return nil
}

// Close stops the watcher goroutine and waits for it. Safe to call more
// than once and before Start.
func (pw *PresetWatcher) Close() error {
	pw.mu.Lock()
	if pw.closed {
		pw.mu.Unlock()
		return nil
	}
	pw.closed = true
	wasRunning := pw.running
	pw.running = false
	pw.mu.Unlock()

	close(pw.stopCh)
	if wasRunning {
		<-pw.doneCh
	}
	if err := pw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close preset watcher: %w", err)
	}
	return nil
}

// Stats 返回统计快照
func (pw *PresetWatcher) Stats() PresetWatcherStats {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	return pw.stats
}

func (pw *PresetWatcher) run(ctx context.Context, debounce time.Duration) {
	defer close(pw.doneCh)

	// 防抖定时器，只在有待处理事件时启动
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-pw.stopCh:
			return

		case event, ok := <-pw.watcher.Events:
			if !ok {
				return
			}
			if !pw.relevant(event) {
				continue
			}
			pw.mu.Lock()
			pw.stats.Events++
			pw.mu.Unlock()
			pw.logger.Debug("preset file event", zap.String("op", event.Op.String()))
			timer.Reset(debounce)

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			pw.logger.Warn("preset watcher error", zap.Error(err))

		case <-timer.C:
			pw.reload()
		}
	}
}

func (pw *PresetWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != pw.path {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}

func (pw *PresetWatcher) reload() {
	presets, err := LoadPresetFile(pw.path)

	pw.mu.Lock()
	if err != nil {
		pw.stats.Failures++
		pw.stats.LastError = err
	} else {
		pw.stats.Reloads++
		pw.stats.LastError = nil
	}
	pw.mu.Unlock()

	if err != nil {
		pw.logger.Warn("preset reload failed, keeping previous presets", zap.Error(err))
		return
	}

	// 丢弃尚未被读取的旧版本，只保留最新
	select {
	case <-pw.updates:
	default:
	}
	pw.updates <- presets
	pw.logger.Info("presets reloaded",
		zap.Int("variants", len(presets.Table.Variants)),
		zap.Int("fields", len(presets.Fields)))
}
