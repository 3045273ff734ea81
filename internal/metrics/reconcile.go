// Package metrics turns system-info snapshots into display values.
package metrics

import (
	"strconv"
	"strings"

	"botpanel/internal/logger"
)

// Render target keys owned by the dashboard layout.
const (
	KeyCPUText                = "cpu-text"
	KeyCPUProgress            = "cpu-progress"
	KeyCPUCores               = "cpu-cores"
	KeyCPUModel               = "cpu-model"
	KeyFrameworkCPU           = "framework-cpu"
	KeyMemoryText             = "memory-text"
	KeyMemoryProgress         = "memory-progress"
	KeyFrameworkMemoryPercent = "framework-memory-percent"
	KeyTotalMemory            = "total-memory"
	KeyTotalMemoryProgress    = "total-memory-progress"
	KeyTotalSystemMemory      = "total-system-memory"
	KeyUsedSystemMemory       = "used-system-memory"
	KeyFrameworkMemoryTotal   = "framework-memory-total"
	KeyGCCount                = "gc-count"
	KeyObjectsCount           = "objects-count"
	KeyDiskTotal              = "disk-total"
	KeyDiskUsed               = "disk-used"
	KeyDiskProgress           = "disk-progress"
	KeyFrameworkDiskUsage     = "framework-disk-usage"
	KeyFrameworkDisk          = "framework-disk"
	KeyFrameworkUptime        = "framework-uptime"
	KeySystemUptime           = "system-uptime"
	KeyFrameworkBootTime      = "framework-boot-time"
	KeyBootTime               = "boot-time"
	KeySystemVersion          = "system-version"
)

// Keys lists every render target the reconciler writes.
var Keys = []string{
	KeyCPUText, KeyCPUProgress, KeyCPUCores, KeyCPUModel, KeyFrameworkCPU,
	KeyMemoryText, KeyMemoryProgress, KeyFrameworkMemoryPercent,
	KeyTotalMemory, KeyTotalMemoryProgress, KeyTotalSystemMemory, KeyUsedSystemMemory,
	KeyFrameworkMemoryTotal, KeyGCCount, KeyObjectsCount,
	KeyDiskTotal, KeyDiskUsed, KeyDiskProgress, KeyFrameworkDiskUsage, KeyFrameworkDisk,
	KeyFrameworkUptime, KeySystemUptime, KeyFrameworkBootTime, KeyBootTime, KeySystemVersion,
}

// Bar classes.
const (
	ClassSuccess = "bg-success"
	ClassWarning = "bg-warning"
	ClassDanger  = "bg-danger"
)

// Thresholds for bar classes. Load bars (CPU, memory percent) and capacity
// bars (used memory, disk) escalate at different levels.
const (
	LoadWarning     = 50.0
	LoadDanger      = 80.0
	CapacityWarning = 70.0
	CapacityDanger  = 90.0
)

// Target is a display surface addressed by stable keys. Writes to keys the
// surface does not have are skipped by the surface.
type Target interface {
	SetText(key, value string)
	SetWidthPercent(key string, percent float64)
	SetStyleClass(key string, classes ...string)
}

// BarClass picks the bar class for percent given the warning and danger levels.
func BarClass(percent, warning, danger float64) string {
	switch {
	case percent > danger:
		return ClassDanger
	case percent > warning:
		return ClassWarning
	}
	return ClassSuccess
}

// Reconciler writes derived snapshot values into a Target. It is the only
// writer of the target.
type Reconciler struct {
	target Target
	log    logger.Logger
}

// NewReconciler creates a reconciler for target.
func NewReconciler(target Target, log logger.Logger) *Reconciler {
	if log == nil {
		log = logger.Noop()
	}
	return &Reconciler{target: target, log: log}
}

// Ingest decodes a wire payload. Malformed fields are logged and dropped.
func (r *Reconciler) Ingest(payload any) Snapshot {
	s, err := Decode(payload)
	if err != nil {
		r.log.Debug("%v", strings.TrimSpace(err.Error()))
	}
	return s
}

// Apply renders every field present in s.
func (r *Reconciler) Apply(s Snapshot) {
	r.applyCPU(s)
	r.applyMemory(s)
	r.applyRuntime(s)
	r.applyDisk(s)
	r.applyTimes(s)
}

func (r *Reconciler) bar(key string, percent, warning, danger float64) {
	r.target.SetWidthPercent(key, percent)
	r.target.SetStyleClass(key, BarClass(percent, warning, danger))
}

func (r *Reconciler) applyCPU(s Snapshot) {
	if s.CPUPercent != nil {
		r.target.SetText(KeyCPUText, FormatPercent(*s.CPUPercent))
		r.bar(KeyCPUProgress, *s.CPUPercent, LoadWarning, LoadDanger)
	}
	if s.CPUCores != nil {
		r.target.SetText(KeyCPUCores, strconv.Itoa(*s.CPUCores))
	}
	if s.CPUModel != nil && *s.CPUModel != "" {
		r.target.SetText(KeyCPUModel, *s.CPUModel)
	}
	if s.FrameworkCPUPercent != nil {
		r.target.SetText(KeyFrameworkCPU, FormatPercent(*s.FrameworkCPUPercent))
	}
}

func (r *Reconciler) applyMemory(s Snapshot) {
	if s.MemoryPercent != nil {
		r.target.SetText(KeyMemoryText, FormatPercent(*s.MemoryPercent))
		r.bar(KeyMemoryProgress, *s.MemoryPercent, LoadWarning, LoadDanger)
	}
	if s.FrameworkMemoryPercent != nil {
		r.target.SetText(KeyFrameworkMemoryPercent, FormatPercent(*s.FrameworkMemoryPercent))
	}

	if s.hasMemory() {
		used := UsedMemoryMB(s)
		r.target.SetText(KeyTotalMemory, FormatMemory(used*mebibyte))
		r.bar(KeyTotalMemoryProgress, MemoryUsagePercent(s, used), CapacityWarning, CapacityDanger)
	}

	if total := value(s.SystemMemoryTotalBytes); total != 0 {
		r.target.SetText(KeyTotalSystemMemory, FormatDiskSize(total))
	} else if total := value(s.TotalMemory); total != 0 {
		r.target.SetText(KeyTotalSystemMemory, FormatWholeMB(total))
	}

	used := value(s.SystemMemoryUsed)
	if used == 0 {
		used = value(s.MemoryUsed)
	}
	if used != 0 {
		r.target.SetText(KeyUsedSystemMemory, FormatMemory(used*mebibyte))
	}

	framework := s.FrameworkMemoryTotal
	if framework == nil || *framework == 0 {
		if s.FrameworkMemory != nil {
			framework = s.FrameworkMemory
		}
	}
	if framework != nil {
		r.target.SetText(KeyFrameworkMemoryTotal, FormatMemory(*framework*mebibyte))
	}
}

func (r *Reconciler) applyRuntime(s Snapshot) {
	if s.GCCounts != nil {
		var gen [3]int64
		copy(gen[:], s.GCCounts)
		r.target.SetText(KeyGCCount, strconv.FormatInt(gen[0], 10)+"/"+
			strconv.FormatInt(gen[1], 10)+"/"+strconv.FormatInt(gen[2], 10))
	}
	if s.ObjectsCount != nil {
		r.target.SetText(KeyObjectsCount, strconv.FormatInt(*s.ObjectsCount, 10))
	}
}

func (r *Reconciler) applyDisk(s Snapshot) {
	if s.Disk == nil {
		return
	}
	total := value(s.Disk.Total)
	used := value(s.Disk.Used)
	r.target.SetText(KeyDiskTotal, FormatBytes(total))
	r.target.SetText(KeyDiskUsed, FormatBytes(used))

	if usage := value(s.Disk.FrameworkUsage); usage != 0 {
		formatted := FormatBytes(usage)
		r.target.SetText(KeyFrameworkDiskUsage, formatted)
		r.target.SetText(KeyFrameworkDisk, formatted)
	}

	if total != 0 && used != 0 {
		r.bar(KeyDiskProgress, round1(used/total*100), CapacityWarning, CapacityDanger)
	}
}

func (r *Reconciler) applyTimes(s Snapshot) {
	if s.Uptime != nil {
		r.target.SetText(KeyFrameworkUptime, FormatUptime(*s.Uptime))
	}
	if s.SystemUptime != nil {
		r.target.SetText(KeySystemUptime, FormatUptime(*s.SystemUptime))
	}
	if s.StartTime != nil && *s.StartTime != "" {
		r.target.SetText(KeyFrameworkBootTime, FormatClock(*s.StartTime, false))
	}
	if s.BootTime != nil && *s.BootTime != "" {
		r.target.SetText(KeyBootTime, FormatClock(*s.BootTime, true))
	}
	if s.SystemVersion != nil && *s.SystemVersion != "" {
		r.target.SetText(KeySystemVersion, *s.SystemVersion)
	}
}
