package scenes

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Lifecycle 一个场景实例持有的全部资源
//
// 挂载时逐个登记（帧循环标志、预设监听、输入订阅），卸载时一次性按登记的
// 逆序释放。Close 可重复调用，只有第一次生效。
type Lifecycle struct {
	mu      sync.Mutex
	closers []namedCloser
	closed  bool
	logger  *zap.Logger
}

type namedCloser struct {
	name string
	fn   func() error
}

// NewLifecycle creates an empty lifecycle.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lifecycle{logger: logger}
}

// Add registers a release function. Adding to a closed lifecycle releases
// the resource immediately.
func (l *Lifecycle) Add(name string, fn func() error) {
	l.mu.Lock()
	if !l.closed {
		l.closers = append(l.closers, namedCloser{name: name, fn: fn})
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	if err := fn(); err != nil {
		l.logger.Warn("release after close failed", zap.String("resource", name), zap.Error(err))
	}
}

// Closed reports whether Close has been called.
func (l *Lifecycle) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Close releases every registered resource in reverse order and joins
// their errors.
func (l *Lifecycle) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	closers := l.closers
	l.closers = nil
	l.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if err := c.fn(); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", c.name, err))
		}
	}
	l.logger.Debug("lifecycle closed", zap.Int("resources", len(closers)))
	return errors.Join(errs...)
}
