package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestPresetWatcher_Reload(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "presets.yaml")
	writeFile(t, path, "intensities:\n  calm: {count: 0.3}\n")

	w, err := NewPresetWatcher(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)
	require.NoError(t, w.Start(context.Background()))

	writeFile(t, path, sunsetPresets)

	select {
	case presets := <-w.Updates():
		_, ok := presets.Table.Variants["sunset"]
		assert.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	require.NoError(t, w.Close())
	assert.GreaterOrEqual(t, w.Stats().Reloads, 1)
}

func TestPresetWatcher_InvalidFileKeepsPrevious(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "presets.yaml")
	writeFile(t, path, sunsetPresets)

	w, err := NewPresetWatcher(path, nil)
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)
	require.NoError(t, w.Start(context.Background()))
	defer w.Close()

	writeFile(t, path, "variants: [\n")

	require.Eventually(t, func() bool {
		return w.Stats().Failures > 0
	}, 5*time.Second, 10*time.Millisecond)

	select {
	case <-w.Updates():
		t.Fatal("invalid file must not publish presets")
	default:
	}
	assert.Error(t, w.Stats().LastError)
}

func TestPresetWatcher_IgnoresSiblings(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "presets.yaml")
	writeFile(t, path, sunsetPresets)

	w, err := NewPresetWatcher(path, nil)
	require.NoError(t, err)
	w.SetDebounce(10 * time.Millisecond)
	require.NoError(t, w.Start(context.Background()))

	writeFile(t, filepath.Join(dir, "other.yaml"), "x: 1\n")
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 0, w.Stats().Events)
	require.NoError(t, w.Close())
}

func TestPresetWatcher_CloseIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "presets.yaml")
	writeFile(t, path, "")

	w, err := NewPresetWatcher(path, nil)
	require.NoError(t, err)

	// 未启动也可以关闭
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Error(t, w.Start(context.Background()))
}

func TestPresetWatcher_ContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "presets.yaml")
	writeFile(t, path, "")

	w, err := NewPresetWatcher(path, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	require.NoError(t, w.Close())
}
