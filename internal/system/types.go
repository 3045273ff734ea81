package system

// Info is the system_info payload sent to dashboards. Memory quantities are
// megabytes unless the field name says bytes.
type Info struct {
	CPUPercent          float64 `json:"cpu_percent"`
	FrameworkCPUPercent float64 `json:"framework_cpu_percent"`
	CPUCores            int     `json:"cpu_cores"`
	CPUModel            string  `json:"cpu_model"`

	MemoryPercent          float64 `json:"memory_percent"`
	MemoryUsed             float64 `json:"memory_used"`
	MemoryTotal            float64 `json:"memory_total"`
	TotalMemory            float64 `json:"total_memory"`
	SystemMemoryTotalBytes float64 `json:"system_memory_total_bytes"`
	FrameworkMemoryPercent float64 `json:"framework_memory_percent"`
	FrameworkMemoryTotal   float64 `json:"framework_memory_total"`

	// GCCounts holds completed GC cycles, forced cycles and live goroutines.
	GCCounts     [3]int64 `json:"gc_counts"`
	ObjectsCount int64    `json:"objects_count"`

	Disk DiskInfo `json:"disk_info"`

	Uptime        int64  `json:"uptime"`
	SystemUptime  int64  `json:"system_uptime"`
	StartTime     string `json:"start_time"`
	BootTime      string `json:"boot_time"`
	SystemVersion string `json:"system_version"`
}

// DiskInfo describes the disk holding the bot, in bytes.
type DiskInfo struct {
	Total          float64 `json:"total"`
	Used           float64 `json:"used"`
	Free           float64 `json:"free"`
	Percent        float64 `json:"percent"`
	FrameworkUsage float64 `json:"framework_usage"`
}
