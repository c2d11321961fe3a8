package components

// Connection 两个粒子之间的连线（每帧重新计算）
// A < B 恒成立：连线关系无自环、无重复。
type Connection struct {
	A, B       int     // 粒子下标
	Distance   float64 // 平面距离
	DepthDelta float64 // |zA - zB|
}
