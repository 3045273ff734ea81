package looptest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualFiresInDueOrder(t *testing.T) {
	m := NewManual()
	var got []string
	m.AfterFunc(300*time.Millisecond, func() { got = append(got, "b") })
	m.AfterFunc(100*time.Millisecond, func() { got = append(got, "a") })
	m.AfterFunc(300*time.Millisecond, func() { got = append(got, "c") })

	m.Advance(200 * time.Millisecond)
	assert.Equal(t, []string{"a"}, got)
	assert.Equal(t, 2, m.Pending())

	m.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 300*time.Millisecond, m.Elapsed())
}

func TestManualZeroDelayIsDeferred(t *testing.T) {
	m := NewManual()
	calls := 0
	m.AfterFunc(0, func() { calls++ })
	assert.Equal(t, 0, calls)

	m.Flush()
	assert.Equal(t, 1, calls)
}

func TestManualTimersScheduledFromCallbacks(t *testing.T) {
	m := NewManual()
	var at []time.Duration
	var tick func()
	tick = func() {
		at = append(at, m.Elapsed())
		if len(at) < 3 {
			m.AfterFunc(time.Second, tick)
		}
	}
	m.AfterFunc(time.Second, tick)

	m.Advance(10 * time.Second)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, at)
}

func TestManualStop(t *testing.T) {
	m := NewManual()
	calls := 0
	timer := m.AfterFunc(time.Second, func() { calls++ })
	assert.True(t, timer.Stop())
	m.Advance(2 * time.Second)
	assert.Equal(t, 0, calls)
	assert.False(t, timer.Stop())
}

func TestManualPost(t *testing.T) {
	m := NewManual()
	var got []int
	m.Post(func() {
		got = append(got, 1)
		m.Post(func() { got = append(got, 2) })
	})
	m.Flush()
	assert.Equal(t, []int{1, 2}, got)
}
