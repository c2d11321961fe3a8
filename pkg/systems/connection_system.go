package systems

import (
	"math"
	"sort"

	"github.com/gonewx/particlefield/pkg/components"
	"github.com/gonewx/particlefield/pkg/config"
)

// ConnectionSystem finds particle pairs close enough to be linked.
//
// Pairs qualify when their planar distance is below the threshold and their
// depth delta is below DepthBandRatio × depthRange. Candidates come from a
// uniform grid whose cell size equals the threshold, so only the 3×3 block
// around a particle's cell is scanned. Results are ordered by (A, B) with
// A < B.
//
// Buffers are reused between frames; the returned slice is only valid until
// the next call.
type ConnectionSystem struct {
	cells   [][]int
	results []components.Connection
}

// NewConnectionSystem creates a connection system.
func NewConnectionSystem() *ConnectionSystem {
	return &ConnectionSystem{}
}

// maxCellsPerParticle 网格过细时（阈值很小）退化为两两比较
const maxCellsPerParticle = 4

// Find returns the connections for the current particle positions.
// A non-positive threshold yields no connections.
func (c *ConnectionSystem) Find(store *components.ParticleStore, threshold float64) []components.Connection {
	c.results = c.results[:0]
	if store == nil || threshold <= 0 || math.IsNaN(threshold) || len(store.Particles) < 2 {
		return c.results
	}

	band := store.DepthRange * config.DepthBandRatio
	if band <= 0 {
		return c.results
	}

	minX := -store.Margin
	minY := -store.Margin
	spanX := store.Width + 2*store.Margin
	spanY := store.Height + 2*store.Margin
	fx := math.Ceil(spanX/threshold) + 1
	fy := math.Ceil(spanY/threshold) + 1

	n := len(store.Particles)
	if !(fx >= 1 && fy >= 1 && fx*fy <= float64(maxCellsPerParticle*n+16)) {
		c.bruteForce(store.Particles, threshold, band)
		return c.results
	}
	cols, rows := int(fx), int(fy)

	c.resetCells(cols * rows)
	cellOf := func(p *components.Particle) (int, int) {
		cx := int((p.X - minX) / threshold)
		cy := int((p.Y - minY) / threshold)
		return clampInt(cx, 0, cols-1), clampInt(cy, 0, rows-1)
	}

	for i := range store.Particles {
		cx, cy := cellOf(&store.Particles[i])
		idx := cy*cols + cx
		c.cells[idx] = append(c.cells[idx], i)
	}

	for i := range store.Particles {
		a := &store.Particles[i]
		cx, cy := cellOf(a)
		for y := cy - 1; y <= cy+1; y++ {
			if y < 0 || y >= rows {
				continue
			}
			for x := cx - 1; x <= cx+1; x++ {
				if x < 0 || x >= cols {
					continue
				}
				for _, j := range c.cells[y*cols+x] {
					if j <= i {
						continue
					}
					c.consider(i, j, a, &store.Particles[j], threshold, band)
				}
			}
		}
	}

	sort.Slice(c.results, func(x, y int) bool {
		rx, ry := c.results[x], c.results[y]
		if rx.A != ry.A {
			return rx.A < ry.A
		}
		return rx.B < ry.B
	})
	return c.results
}

func (c *ConnectionSystem) bruteForce(particles []components.Particle, threshold, band float64) {
	for i := range particles {
		for j := i + 1; j < len(particles); j++ {
			c.consider(i, j, &particles[i], &particles[j], threshold, band)
		}
	}
}

func (c *ConnectionSystem) consider(i, j int, a, b *components.Particle, threshold, band float64) {
	dz := math.Abs(a.Z - b.Z)
	if dz >= band {
		return
	}
	dist := math.Hypot(a.X-b.X, a.Y-b.Y)
	if dist >= threshold {
		return
	}
	c.results = append(c.results, components.Connection{A: i, B: j, Distance: dist, DepthDelta: dz})
}

func (c *ConnectionSystem) resetCells(n int) {
	if cap(c.cells) < n {
		c.cells = make([][]int, n)
		return
	}
	c.cells = c.cells[:n]
	for i := range c.cells {
		c.cells[i] = c.cells[i][:0]
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
