package system

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
)

// UnknownCPU is reported when the processor model cannot be read.
const UnknownCPU = "未知处理器"

// TimeLayout formats start and boot times.
const TimeLayout = "2006-01-02 15:04:05"

// GetOSInfo returns formatted OS information
func GetOSInfo(ctx context.Context) (string, error) {
	hostStat, err := host.InfoWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get host info: %w", err)
	}

	parts := []string{hostStat.Platform, hostStat.PlatformVersion, hostStat.KernelArch}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " "), nil
}

// GetCPUModel returns the model name of the first processor
func GetCPUModel(ctx context.Context) string {
	cpuStat, err := cpu.InfoWithContext(ctx)
	if err != nil || len(cpuStat) == 0 || cpuStat[0].ModelName == "" {
		return UnknownCPU
	}
	return strings.TrimSpace(cpuStat[0].ModelName)
}

// GetCPUCores counts logical processors, never less than one.
func GetCPUCores(ctx context.Context) int {
	n, err := cpu.CountsWithContext(ctx, true)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// GetBootTime returns the unix time the host booted
func GetBootTime(ctx context.Context) (int64, error) {
	boot, err := host.BootTimeWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get boot time: %w", err)
	}
	return int64(boot), nil
}
