package metrics

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"botpanel/internal/errors"
)

// Snapshot is one point-in-time metrics payload. Every field is optional; a
// nil field was absent from the payload and leaves its render targets alone.
//
// Memory quantities without a Bytes suffix are megabytes, as sent by the panel
// backend.
type Snapshot struct {
	CPUPercent          *float64
	FrameworkCPUPercent *float64
	CPUCores            *int
	CPUModel            *string

	MemoryPercent          *float64
	MemoryUsed             *float64
	SystemMemoryUsed       *float64
	TotalMemory            *float64
	SystemMemoryTotalBytes *float64
	FrameworkMemoryPercent *float64
	FrameworkMemoryTotal   *float64
	FrameworkMemory        *float64

	GCCounts     []int64
	ObjectsCount *int64

	Disk *DiskInfo

	Uptime        *float64
	SystemUptime  *float64
	StartTime     *string
	BootTime      *string
	SystemVersion *string
}

// DiskInfo carries raw byte counts for the disk holding the bot.
type DiskInfo struct {
	Total          *float64
	Used           *float64
	Free           *float64
	Percent        *float64
	FrameworkUsage *float64
}

// IsEmpty reports whether no field is set.
func (s Snapshot) IsEmpty() bool {
	return s.CPUPercent == nil && s.FrameworkCPUPercent == nil && s.CPUCores == nil &&
		s.CPUModel == nil && !s.hasMemory() && s.FrameworkMemoryPercent == nil &&
		s.FrameworkMemory == nil && s.GCCounts == nil && s.ObjectsCount == nil &&
		s.Disk == nil && s.Uptime == nil && s.SystemUptime == nil &&
		s.StartTime == nil && s.BootTime == nil && s.SystemVersion == nil
}

func (s Snapshot) hasMemory() bool {
	return s.MemoryPercent != nil || s.MemoryUsed != nil || s.SystemMemoryUsed != nil ||
		s.TotalMemory != nil || s.SystemMemoryTotalBytes != nil || s.FrameworkMemoryTotal != nil
}

// Merge overlays newer on s field by field. Fields set in newer win.
func (s Snapshot) Merge(newer Snapshot) Snapshot {
	out := s
	pick(&out.CPUPercent, newer.CPUPercent)
	pick(&out.FrameworkCPUPercent, newer.FrameworkCPUPercent)
	pick(&out.CPUCores, newer.CPUCores)
	pick(&out.CPUModel, newer.CPUModel)
	pick(&out.MemoryPercent, newer.MemoryPercent)
	pick(&out.MemoryUsed, newer.MemoryUsed)
	pick(&out.SystemMemoryUsed, newer.SystemMemoryUsed)
	pick(&out.TotalMemory, newer.TotalMemory)
	pick(&out.SystemMemoryTotalBytes, newer.SystemMemoryTotalBytes)
	pick(&out.FrameworkMemoryPercent, newer.FrameworkMemoryPercent)
	pick(&out.FrameworkMemoryTotal, newer.FrameworkMemoryTotal)
	pick(&out.FrameworkMemory, newer.FrameworkMemory)
	pick(&out.ObjectsCount, newer.ObjectsCount)
	pick(&out.Uptime, newer.Uptime)
	pick(&out.SystemUptime, newer.SystemUptime)
	pick(&out.StartTime, newer.StartTime)
	pick(&out.BootTime, newer.BootTime)
	pick(&out.SystemVersion, newer.SystemVersion)
	if newer.GCCounts != nil {
		out.GCCounts = newer.GCCounts
	}

	switch {
	case newer.Disk == nil:
	case out.Disk == nil:
		out.Disk = newer.Disk
	default:
		disk := *out.Disk
		pick(&disk.Total, newer.Disk.Total)
		pick(&disk.Used, newer.Disk.Used)
		pick(&disk.Free, newer.Disk.Free)
		pick(&disk.Percent, newer.Disk.Percent)
		pick(&disk.FrameworkUsage, newer.Disk.FrameworkUsage)
		out.Disk = &disk
	}
	return out
}

func pick[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

// Decode turns a wire payload into a Snapshot. Fields holding a value of the
// wrong type are dropped and reported in the returned SNAPSHOT error; the
// snapshot is usable either way.
func Decode(payload any) (Snapshot, error) {
	var s Snapshot

	data, err := cast.ToStringMapE(payload)
	if err != nil {
		return s, errors.WrapWithCode(err, errors.ErrSnapshot,
			fmt.Sprintf("snapshot payload is %T, not an object", payload), "")
	}

	d := decoder{data: data}
	s.CPUPercent = d.floatField("cpu_percent")
	s.FrameworkCPUPercent = d.floatField("framework_cpu_percent")
	s.CPUCores = d.intField("cpu_cores")
	s.CPUModel = d.stringField("cpu_model")
	s.MemoryPercent = d.floatField("memory_percent")
	s.MemoryUsed = d.floatField("memory_used")
	s.SystemMemoryUsed = d.floatField("system_memory_used")
	s.TotalMemory = d.floatField("total_memory")
	s.SystemMemoryTotalBytes = d.floatField("system_memory_total_bytes")
	s.FrameworkMemoryPercent = d.floatField("framework_memory_percent")
	s.FrameworkMemoryTotal = d.floatField("framework_memory_total")
	s.FrameworkMemory = d.floatField("framework_memory")
	s.GCCounts = d.countsField("gc_counts")
	s.ObjectsCount = d.int64Field("objects_count")
	s.Uptime = d.floatField("uptime")
	s.SystemUptime = d.floatField("system_uptime")
	s.StartTime = d.stringField("start_time")
	s.BootTime = d.stringField("boot_time")
	s.SystemVersion = d.stringField("system_version")

	if raw, ok := data["disk_info"]; ok && raw != nil {
		diskData, err := cast.ToStringMapE(raw)
		if err != nil {
			d.fail("disk_info")
		} else {
			dd := decoder{data: diskData, prefix: "disk_info."}
			s.Disk = &DiskInfo{
				Total:          dd.floatField("total"),
				Used:           dd.floatField("used"),
				Free:           dd.floatField("free"),
				Percent:        dd.floatField("percent"),
				FrameworkUsage: dd.floatField("framework_usage"),
			}
			d.bad = append(d.bad, dd.bad...)
		}
	}

	if len(d.bad) > 0 {
		sort.Strings(d.bad)
		return s, errors.New(errors.ErrSnapshot,
			"malformed snapshot fields: "+strings.Join(d.bad, ", "), "")
	}
	return s, nil
}

type decoder struct {
	data   map[string]any
	prefix string
	bad    []string
}

func (d *decoder) fail(key string) {
	d.bad = append(d.bad, d.prefix+key)
}

func (d *decoder) raw(key string) (any, bool) {
	v, ok := d.data[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (d *decoder) floatField(key string) *float64 {
	v, ok := d.raw(key)
	if !ok {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		d.fail(key)
		return nil
	}
	return &f
}

func (d *decoder) intField(key string) *int {
	v, ok := d.raw(key)
	if !ok {
		return nil
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		d.fail(key)
		return nil
	}
	return &i
}

func (d *decoder) int64Field(key string) *int64 {
	v, ok := d.raw(key)
	if !ok {
		return nil
	}
	i, err := cast.ToInt64E(v)
	if err != nil {
		d.fail(key)
		return nil
	}
	return &i
}

func (d *decoder) stringField(key string) *string {
	v, ok := d.raw(key)
	if !ok {
		return nil
	}
	str, err := cast.ToStringE(v)
	if err != nil {
		d.fail(key)
		return nil
	}
	return &str
}

func (d *decoder) countsField(key string) []int64 {
	v, ok := d.raw(key)
	if !ok {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		d.fail(key)
		return nil
	}
	counts := make([]int64, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		n, err := cast.ToInt64E(rv.Index(i).Interface())
		if err != nil {
			d.fail(key)
			return nil
		}
		counts = append(counts, n)
	}
	return counts
}
