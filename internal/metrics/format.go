package metrics

import (
	"math"
	"strconv"
	"time"

	"github.com/spf13/cast"
)

const mebibyte = 1024 * 1024

func properUnitHelper(bytes uint64, pow uint8, unit string) string {
	quotient := bytes >> pow
	temp := bytes & ((1 << pow) - 1)
	temp = ((temp * 10) + ((1 << pow) >> 1)) >> pow
	if temp == 10 {
		temp = 0
		quotient += 1
	}
	return strconv.FormatUint(quotient, 10) +
		"." + strconv.FormatUint(temp, 10) + " " + unit
}

// FormatBytes converts a raw byte count to B/KB/MB/GB/TB with one decimal.
func FormatBytes(bytes float64) string {
	if !(bytes > 0) {
		return "0 B"
	}
	byteNum := uint64(math.Round(bytes))
	if byteNum >= 1<<40 {
		return properUnitHelper(byteNum, 40, "TB")
	} else if byteNum >= 1<<30 {
		return properUnitHelper(byteNum, 30, "GB")
	} else if byteNum >= 1<<20 {
		return properUnitHelper(byteNum, 20, "MB")
	} else if byteNum >= 1<<10 {
		return properUnitHelper(byteNum, 10, "KB")
	}
	return strconv.FormatUint(byteNum, 10) + " B"
}

// FormatMemory renders bytes as rounded MB, or GB with two decimals from
// 1024 MB up.
func FormatMemory(bytes float64) string {
	return formatMegabytes(bytes, "0 MB")
}

// FormatDiskSize is FormatMemory with a GB placeholder for empty values.
func FormatDiskSize(bytes float64) string {
	return formatMegabytes(bytes, "0 GB")
}

// FormatWholeMB renders a megabyte count rounded to whole MB, never switching
// to GB.
func FormatWholeMB(mb float64) string {
	return strconv.FormatFloat(math.Round(mb), 'f', 0, 64) + " MB"
}

func formatMegabytes(bytes float64, zero string) string {
	if bytes == 0 || math.IsNaN(bytes) {
		return zero
	}
	mb := bytes / mebibyte
	if mb >= 1024 {
		return strconv.FormatFloat(mb/1024, 'f', 2, 64) + " GB"
	}
	return strconv.FormatFloat(math.Round(mb), 'f', 0, 64) + " MB"
}

// FormatPercent renders a percentage with one decimal.
func FormatPercent(percent float64) string {
	return strconv.FormatFloat(percent, 'f', 1, 64) + "%"
}

// FormatUptime renders seconds as "{d}天 {h}小时 {m}分钟", leaving out the day
// segment when it is zero.
func FormatUptime(seconds float64) string {
	total := int64(math.Floor(seconds))
	if total < 0 {
		total = 0
	}
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60

	out := ""
	if days > 0 {
		out = strconv.FormatInt(days, 10) + "天 "
	}
	return out + strconv.FormatInt(hours, 10) + "小时 " + strconv.FormatInt(minutes, 10) + "分钟"
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp reads the timestamp formats the backend sends: local
// date-times, RFC 3339 and unix seconds.
func ParseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, true
		}
	}
	if secs, err := cast.ToFloat64E(raw); err == nil && secs > 0 {
		sec, frac := math.Modf(secs)
		return time.Unix(int64(sec), int64(frac*1e9)).In(time.Local), true
	}
	return time.Time{}, false
}

// FormatClock renders a timestamp as "MM/DD HH:mm", with a leading year when
// withYear is set. Unparseable input is returned unchanged.
func FormatClock(raw string, withYear bool) string {
	t, ok := ParseTimestamp(raw)
	if !ok {
		return raw
	}
	if withYear {
		return t.Format("2006/01/02 15:04")
	}
	return t.Format("01/02 15:04")
}
