package components

import "github.com/gonewx/particlefield/internal/particle"

// ParticleStore 一个粒子场实例拥有的全部粒子
//
// 每个 (尺寸, 配置) 组合分配一次；尺寸或影响初始化的选项变化时整体重建，
// 从不增量修补。实例之间不共享任何状态。
type ParticleStore struct {
	Particles []Particle

	// Bounds (逻辑像素)
	Width, Height float64
	// Margin x/y 环绕边界外扩
	Margin float64
	// DepthRange 深度范围 (> 0)
	DepthRange float64

	// Time 模拟时间，由 SimulationSystem 推进，RenderSystem 读取（脉冲、噪声）
	Time float64

	// Spawn 生成范围，生命周期重置时重新采样 Alpha 和能量基线
	Spawn particle.SpawnRanges
}

// Len 返回粒子数量
func (s *ParticleStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Particles)
}

// Empty 存储为空或尺寸无效
func (s *ParticleStore) Empty() bool {
	return s.Len() == 0 || s.Width <= 0 || s.Height <= 0
}
