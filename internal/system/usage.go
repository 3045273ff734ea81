package system

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

const mb = 1024 * 1024

// sampleInterval is how long CPU percentages are measured over.
var sampleInterval = 50 * time.Millisecond

// GetMemoryUsage returns system memory usage
func GetMemoryUsage(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	memStat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get memory info: %w", err)
	}
	return memStat, nil
}

// GetDiskUsage returns disk usage information for the specified path
func GetDiskUsage(ctx context.Context, path string) (DiskInfo, error) {
	diskStat, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return DiskInfo{}, fmt.Errorf("failed to get disk usage for path %s: %w", path, err)
	}

	return DiskInfo{
		Total:   float64(diskStat.Total),
		Used:    float64(diskStat.Used),
		Free:    float64(diskStat.Free),
		Percent: diskStat.UsedPercent,
	}, nil
}

// GetCPUPercent samples whole-system CPU usage
func GetCPUPercent(ctx context.Context) (float64, error) {
	cpuPercent, err := cpu.PercentWithContext(ctx, sampleInterval, false)
	if err != nil {
		return 0, fmt.Errorf("failed to get CPU usage: %w", err)
	}
	if len(cpuPercent) == 0 {
		return 0, fmt.Errorf("no CPU usage available")
	}
	return cpuPercent[0], nil
}

// ProcessUsage is the resident memory in bytes and CPU percent of this process.
type ProcessUsage struct {
	RSS        uint64
	CPUPercent float64
}

// GetProcessUsage measures the current process
func GetProcessUsage(ctx context.Context) (ProcessUsage, error) {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return ProcessUsage{}, fmt.Errorf("failed to open process: %w", err)
	}
	memInfo, err := p.MemoryInfoWithContext(ctx)
	if err != nil {
		return ProcessUsage{}, fmt.Errorf("failed to get process memory: %w", err)
	}
	pct, err := p.PercentWithContext(ctx, sampleInterval)
	if err != nil {
		return ProcessUsage{}, fmt.Errorf("failed to get process CPU: %w", err)
	}
	return ProcessUsage{RSS: memInfo.RSS, CPUPercent: pct}, nil
}

// DirSize sums the sizes of regular files below root. Unreadable entries are
// skipped.
func DirSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total, err
}
