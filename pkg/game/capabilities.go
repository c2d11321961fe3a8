package game

import (
	"bufio"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/gonewx/particlefield/pkg/utils"
)

// 低性能判定阈值
const (
	LowMemoryGiB = 4.0
	LowCoreCount = 4
)

// ReducedMotionEnv 设置为 1 时请求静态背景
const ReducedMotionEnv = "PREFERS_REDUCED_MOTION"

// Capabilities 设备能力信号
type Capabilities struct {
	// MemoryGiB 物理内存，0 表示未知
	MemoryGiB float64
	// Cores 逻辑核心数，0 表示未知
	Cores  int
	Mobile bool
	// ReducedMotion 用户偏好减少动态效果
	ReducedMotion bool
}

// LowPerformance reports whether the device should run degraded.
// Unknown signals never count against the device.
func (c Capabilities) LowPerformance() bool {
	if c.MemoryGiB > 0 && c.MemoryGiB <= LowMemoryGiB {
		return true
	}
	if c.Cores > 0 && c.Cores <= LowCoreCount {
		return true
	}
	return c.Mobile
}

// ProbeCapabilities 探测当前设备
func ProbeCapabilities() Capabilities {
	caps := Capabilities{
		Cores:         runtime.NumCPU(),
		Mobile:        utils.IsMobile(),
		ReducedMotion: os.Getenv(ReducedMotionEnv) == "1",
	}
	if f, err := os.Open("/proc/meminfo"); err == nil {
		caps.MemoryGiB = parseMemTotal(f)
		f.Close()
	}
	return caps
}

// parseMemTotal 读取 /proc/meminfo 的 MemTotal 行（单位 kB），返回 GiB
func parseMemTotal(r io.Reader) float64 {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(line, "MemTotal:"))
		if len(fields) == 0 {
			return 0
		}
		kb, err := strconv.ParseFloat(fields[0], 64)
		if err != nil || kb < 0 {
			return 0
		}
		return kb / (1024 * 1024)
	}
	return 0
}
