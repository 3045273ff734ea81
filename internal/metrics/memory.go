package metrics

import "math"

// Framework memory floor.
//
// Some backends report a system "used" figure smaller than the bot process
// itself. When the resolved used memory is below FloorFactor times the
// framework's RSS, the panel shows FallbackFactor times the RSS instead.
//
// TODO: drop once the backend reports system used memory consistently; the
// numbers are a display heuristic, not a measurement.
const (
	FrameworkFloorFactor    = 1.2
	FrameworkFallbackFactor = 4.0
)

// ApplyFrameworkMemoryFloor applies the framework memory floor to usedMB.
func ApplyFrameworkMemoryFloor(usedMB, frameworkMB float64) float64 {
	if usedMB < frameworkMB*FrameworkFloorFactor {
		return frameworkMB * FrameworkFallbackFactor
	}
	return usedMB
}

// UsedMemoryMB resolves the used system memory in MB from whichever fields the
// snapshot carries, then applies the framework memory floor.
func UsedMemoryMB(s Snapshot) float64 {
	framework := value(s.FrameworkMemoryTotal)
	percent := value(s.MemoryPercent)

	used := value(s.SystemMemoryUsed)
	if used == 0 {
		used = value(s.MemoryUsed)
	}
	if used == 0 {
		switch {
		case percent != 0 && value(s.SystemMemoryTotalBytes) != 0:
			used = value(s.SystemMemoryTotalBytes) * percent / (100 * mebibyte)
		case percent != 0 && value(s.TotalMemory) != 0:
			used = value(s.TotalMemory) * percent / 100
		default:
			used = framework * FrameworkFallbackFactor
		}
	}

	return ApplyFrameworkMemoryFloor(used, framework)
}

// MemoryUsagePercent is usedMB as a share of the total system memory, rounded
// to one decimal. Without a total it falls back to memory_percent, then 50.
func MemoryUsagePercent(s Snapshot, usedMB float64) float64 {
	switch {
	case value(s.SystemMemoryTotalBytes) != 0:
		return round1(usedMB / (value(s.SystemMemoryTotalBytes) / mebibyte) * 100)
	case value(s.TotalMemory) != 0:
		return round1(usedMB / value(s.TotalMemory) * 100)
	case value(s.MemoryPercent) != 0:
		return value(s.MemoryPercent)
	}
	return 50
}

func value[T int | int64 | float64](p *T) T {
	if p == nil {
		return 0
	}
	return *p
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
