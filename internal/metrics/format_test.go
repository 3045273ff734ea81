package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes  float64
		expect string
	}{
		{0, "0 B"},
		{-5, "0 B"},
		{512, "512 B"},
		{1536, "1.5 KB"},
		{1 << 20, "1.0 MB"},
		{1073741824, "1.0 GB"},
		{1.5 * (1 << 40), "1.5 TB"},
		{(1 << 30) - 1, "1024.0 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.expect, func(t *testing.T) {
			assert.Equal(t, tt.expect, FormatBytes(tt.bytes))
		})
	}
}

func TestFormatMemory(t *testing.T) {
	tests := []struct {
		name   string
		bytes  float64
		expect string
	}{
		{"zero", 0, "0 MB"},
		{"exactly 1024 MB", 1024 * mebibyte, "1.00 GB"},
		{"rounds MB", 400.6 * mebibyte, "401 MB"},
		{"below 1 MB", 1024, "0 MB"},
		{"large", 16 * 1024 * mebibyte, "16.00 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, FormatMemory(tt.bytes))
		})
	}
}

func TestFormatDiskSize(t *testing.T) {
	assert.Equal(t, "0 GB", FormatDiskSize(0))
	assert.Equal(t, "8.00 GB", FormatDiskSize(8*1024*mebibyte))
	assert.Equal(t, "512 MB", FormatDiskSize(512*mebibyte))
}

func TestFormatWholeMB(t *testing.T) {
	assert.Equal(t, "512 MB", FormatWholeMB(511.5))
	assert.Equal(t, "16384 MB", FormatWholeMB(16384))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "0.0%", FormatPercent(0))
	assert.Equal(t, "42.4%", FormatPercent(42.42))
	assert.Equal(t, "100.0%", FormatPercent(100))
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		seconds float64
		expect  string
	}{
		{90000, "1天 1小时 0分钟"},
		{3600, "1小时 0分钟"},
		{59, "0小时 0分钟"},
		{86400*3 + 7200 + 61, "3天 2小时 1分钟"},
		{-10, "0小时 0分钟"},
	}

	for _, tt := range tests {
		t.Run(tt.expect, func(t *testing.T) {
			assert.Equal(t, tt.expect, FormatUptime(tt.seconds))
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "10/19 14:05", FormatClock("2026-10-19 14:05:33", false))
	assert.Equal(t, "2026/10/19 14:05", FormatClock("2026-10-19 14:05:33", true))
	assert.Equal(t, "not a date", FormatClock("not a date", true))
	assert.Equal(t, "", FormatClock("", false))

	assert.Equal(t, "2026/03/04 05:06", FormatClock("2026-03-04T05:06:00", true))
}

func TestParseTimestampUnixSeconds(t *testing.T) {
	got, ok := ParseTimestamp("1772600760")
	assert.True(t, ok)
	assert.Equal(t, int64(1772600760), got.Unix())
	assert.Equal(t, time.Local, got.Location())

	_, ok = ParseTimestamp("0")
	assert.False(t, ok)
}
