package utils

import (
	"math"
	"testing"
)

// TestEaseOutExpo 测试指数缓出函数
func TestEaseOutExpo(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"起点", 0.0, 0.0},
		{"终点", 1.0, 1.0},
		{"超出终点", 1.5, 1.0},
		{"十分之一", 0.1, 0.5}, // 1 - 2^-1
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EaseOutExpo(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("EaseOutExpo(%v) = %v, 期望 %v", tt.input, result, tt.expected)
			}
		})
	}
}

// TestSmoothstep 测试 Hermite 插值（含反向边界）
func TestSmoothstep(t *testing.T) {
	tests := []struct {
		name           string
		edge0, edge1   float64
		x              float64
		expected       float64
	}{
		{"上升沿起点", 0, 1, 0, 0},
		{"上升沿中点", 0, 1, 0.5, 0.5},
		{"上升沿终点", 0, 1, 1, 1},
		{"下降沿近端", 120, 0, 0, 1},
		{"下降沿远端", 120, 0, 120, 0},
		{"下降沿超出", 120, 0, 200, 0},
		{"退化边界", 0, 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Smoothstep(tt.edge0, tt.edge1, tt.x)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Smoothstep(%v, %v, %v) = %v, 期望 %v", tt.edge0, tt.edge1, tt.x, result, tt.expected)
			}
		})
	}
}

// TestLerp 测试线性插值
func TestLerp(t *testing.T) {
	if got := Lerp(0, 10, 0.25); got != 2.5 {
		t.Errorf("Lerp(0, 10, 0.25) = %v, 期望 2.5", got)
	}
	if got := Lerp(5, 5, 0.9); got != 5 {
		t.Errorf("Lerp(5, 5, 0.9) = %v, 期望 5", got)
	}
}

// TestWrap 测试环绕边界
func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		v        float64
		expected float64
	}{
		{"范围内", 100, 100},
		{"下界", -50, -50},
		{"上界", 850, 850},
		{"略低于下界", -51, 849},
		{"略高于上界", 851, -49},
		{"远低于下界", -50 - 900*3 - 10, 840},
		{"远高于上界", 850 + 900*2 + 10, -40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Wrap(tt.v, -50, 850)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Wrap(%v) = %v, 期望 %v", tt.v, result, tt.expected)
			}
		})
	}

	if got := Wrap(math.NaN(), 0, 10); got != 0 {
		t.Errorf("Wrap(NaN) = %v, 期望 0", got)
	}
	if got := Wrap(5, 3, 3); got != 3 {
		t.Errorf("Wrap with empty span = %v, 期望 3", got)
	}
}
