package utils

import "math"

// Easing Functions (缓动函数)
//
// 所有缓动函数接受进度值 t ∈ [0, 1]，返回缓动后的值 ∈ [0, 1]。
// 参考：https://easings.net/

// EaseOutExpo 指数缓出
// 特点：开始非常快，结束非常慢（指针排斥力的衰减曲线）
// 公式：f(t) = 1 - 2^(-10t)
func EaseOutExpo(t float64) float64 {
	if t >= 1.0 {
		return 1.0
	}
	return 1 - math.Pow(2, -10*t)
}

// Smoothstep Hermite 插值
// edge0 > edge1 is allowed and yields a falling edge, so
// Smoothstep(threshold, 0, d) is 1 at d=0 and 0 at d>=threshold.
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Lerp 线性插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Wrap folds v into [lo, hi] by teleporting it to the opposite edge.
// Values that overshoot by more than one span are folded with a modulo so
// the result is in range after any step size.
func Wrap(v, lo, hi float64) float64 {
	if v >= lo && v <= hi {
		return v
	}
	span := hi - lo
	if span <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return lo
	}
	if v < lo {
		if lo-v <= span {
			return hi - (lo - v)
		}
		return hi - math.Mod(lo-v, span)
	}
	if v-hi <= span {
		return lo + (v - hi)
	}
	return lo + math.Mod(v-hi, span)
}
