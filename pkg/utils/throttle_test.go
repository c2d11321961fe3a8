package utils

import (
	"testing"
	"time"
)

// TestThrottle_Allow 测试最小间隔节流
func TestThrottle_Allow(t *testing.T) {
	th := NewThrottle(16 * time.Millisecond)
	base := time.Unix(1000, 0)

	steps := []struct {
		offset time.Duration
		want   bool
	}{
		{0, true},
		{5 * time.Millisecond, false},
		{15 * time.Millisecond, false},
		{16 * time.Millisecond, true},
		{20 * time.Millisecond, false},
		{40 * time.Millisecond, true},
	}

	for _, s := range steps {
		if got := th.Allow(base.Add(s.offset)); got != s.want {
			t.Errorf("Allow(+%v) = %v, want %v", s.offset, got, s.want)
		}
	}
}

// TestThrottle_Reset 测试重置后立即放行
func TestThrottle_Reset(t *testing.T) {
	th := NewThrottle(time.Second)
	now := time.Unix(50, 0)
	th.Allow(now)
	if th.Allow(now.Add(time.Millisecond)) {
		t.Fatal("second event inside interval should be throttled")
	}
	th.Reset()
	if !th.Allow(now.Add(2 * time.Millisecond)) {
		t.Error("event after Reset should pass")
	}
}
