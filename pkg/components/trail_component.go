package components

// TrailCapacity 拖尾环形缓冲区容量
const TrailCapacity = 8

// TrailPoint 拖尾采样点
type TrailPoint struct {
	X, Y  float64
	Alpha float64
}

// Trail 固定容量的 FIFO 环形缓冲区
// 超出容量时淘汰最旧的采样点；零值即空拖尾，无需分配。
type Trail struct {
	points [TrailCapacity]TrailPoint
	start  int
	n      int
}

// Push appends a sample, evicting the oldest one when full.
func (t *Trail) Push(p TrailPoint) {
	if t.n < TrailCapacity {
		t.points[(t.start+t.n)%TrailCapacity] = p
		t.n++
		return
	}
	t.points[t.start] = p
	t.start = (t.start + 1) % TrailCapacity
}

// Len 返回当前采样点数量
func (t *Trail) Len() int { return t.n }

// At returns the i-th sample, oldest first.
func (t *Trail) At(i int) TrailPoint {
	return t.points[(t.start+i)%TrailCapacity]
}

// Clear 清空拖尾
func (t *Trail) Clear() {
	t.start = 0
	t.n = 0
}

// AppendTo appends the samples (oldest first) to dst and returns it.
func (t *Trail) AppendTo(dst []TrailPoint) []TrailPoint {
	for i := 0; i < t.n; i++ {
		dst = append(dst, t.At(i))
	}
	return dst
}
