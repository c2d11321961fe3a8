package utils

import (
	"image"
	"testing"
)

// TestPointerIn 测试屏幕坐标到面板坐标的映射
func TestPointerIn(t *testing.T) {
	bounds := image.Rect(100, 50, 500, 350)

	tests := []struct {
		name       string
		x, y       int
		wantX      float64
		wantY      float64
		wantInside bool
	}{
		{"面板左上角", 100, 50, 0, 0, true},
		{"面板内部", 300, 200, 200, 150, true},
		{"右边界外", 500, 200, 400, 150, false},
		{"面板上方", 120, 10, 20, -40, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := PointerIn(tt.x, tt.y, bounds)
			if s.X != tt.wantX || s.Y != tt.wantY {
				t.Errorf("PointerIn(%d, %d) = (%v, %v), want (%v, %v)", tt.x, tt.y, s.X, s.Y, tt.wantX, tt.wantY)
			}
			if s.Inside != tt.wantInside {
				t.Errorf("PointerIn(%d, %d).Inside = %v, want %v", tt.x, tt.y, s.Inside, tt.wantInside)
			}
		})
	}
}
