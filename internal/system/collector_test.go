package system

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botpanel/internal/logger"
	"botpanel/internal/metrics"
)

func TestDirSize(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), make([]byte, 100), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "plugins", "x"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "plugins", "x", "b.txt"), make([]byte, 28), 0644))

	size, err := DirSize(root)
	require.NoError(t, err)
	assert.Equal(t, int64(128), size)

	_, err = DirSize(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestFallbackDecodes(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	info := Fallback(now)
	assert.Equal(t, "2026-03-01 12:00:00", info.StartTime)
	assert.Equal(t, "2026-02-28 12:00:00", info.BootTime)

	snap := decode(t, info)
	require.NotNil(t, snap.CPUCores)
	assert.Equal(t, 4, *snap.CPUCores)
	require.NotNil(t, snap.Disk)
	assert.Equal(t, 50.0, *snap.Disk.Percent)
	assert.Equal(t, []int64{0, 0, 0}, snap.GCCounts)
}

func TestCollectSamplesHost(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "bot.py"), make([]byte, 64), 0644))

	start := time.Now().Add(-90 * time.Second)
	c := NewCollector(start, root, logger.NewBufferLogger())
	info := c.Collect(context.Background())

	assert.GreaterOrEqual(t, info.CPUCores, 1)
	assert.NotEmpty(t, info.CPUModel)
	assert.Greater(t, info.TotalMemory, 0.0)
	assert.Equal(t, info.TotalMemory, info.MemoryTotal)
	assert.Greater(t, info.CPUPercent, 0.0)
	assert.Greater(t, info.FrameworkCPUPercent, 0.0)
	assert.GreaterOrEqual(t, info.Uptime, int64(90))
	assert.Equal(t, start.Format(TimeLayout), info.StartTime)
	assert.NotEmpty(t, info.SystemVersion)

	snap := decode(t, info)
	require.NotNil(t, snap.Uptime)
	require.NotNil(t, snap.SystemMemoryTotalBytes)
}

func TestFrameworkSizeIsCached(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a"), make([]byte, 10), 0644))

	now := time.Now()
	c := NewCollector(now, root, nil)
	c.now = func() time.Time { return now }

	first := c.disk(context.Background(), now)
	require.NoError(t, os.WriteFile(filepath.Join(root, "b"), make([]byte, 10), 0644))
	cached := c.disk(context.Background(), now.Add(time.Second))
	fresh := c.disk(context.Background(), now.Add(dirSizeTTL))

	assert.Equal(t, 10.0, first.FrameworkUsage)
	assert.Equal(t, 10.0, cached.FrameworkUsage)
	assert.Equal(t, 20.0, fresh.FrameworkUsage)
}

func decode(t *testing.T, info Info) metrics.Snapshot {
	t.Helper()
	raw, err := json.Marshal(info)
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	snap, err := metrics.Decode(payload)
	require.NoError(t, err)
	return snap
}
