package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"botpanel/internal/loop/looptest"
)

type call struct {
	at  time.Duration
	arg int
}

func recorder(m *looptest.Manual) (*[]call, func(int)) {
	var calls []call
	return &calls, func(arg int) {
		calls = append(calls, call{at: m.Elapsed(), arg: arg})
	}
}

// callAt advances the clock to at and calls fn there.
func callAt(m *looptest.Manual, at time.Duration, fn func()) {
	m.Advance(at - m.Elapsed())
	fn()
}

func TestThrottleLeadingAndTrailing(t *testing.T) {
	m := looptest.NewManual()
	calls, fn := recorder(m)
	th := Throttle(m, 500*time.Millisecond, fn)

	for _, at := range []time.Duration{0, 100, 200, 600} {
		at := at * time.Millisecond
		callAt(m, at, func() { th.Call(int(at / time.Millisecond)) })
	}
	m.Advance(2 * time.Second)

	assert.Equal(t, []call{
		{at: 0, arg: 0},
		{at: 500 * time.Millisecond, arg: 200},
		{at: 1000 * time.Millisecond, arg: 600},
	}, *calls)
}

func TestThrottleAfterQuietPeriodRunsImmediately(t *testing.T) {
	m := looptest.NewManual()
	calls, fn := recorder(m)
	th := Throttle(m, 500*time.Millisecond, fn)

	th.Call(1)
	m.Advance(501 * time.Millisecond)
	th.Call(2)

	assert.Equal(t, []call{{at: 0, arg: 1}, {at: 501 * time.Millisecond, arg: 2}}, *calls)
	assert.False(t, th.Pending())
}

func TestThrottleZeroIntervalDefersSecondCall(t *testing.T) {
	m := looptest.NewManual()
	calls, fn := recorder(m)
	th := Throttle(m, 0, fn)

	th.Call(1)
	th.Call(2)
	th.Call(3)
	assert.Len(t, *calls, 1, "only the first call runs synchronously")

	m.Flush()
	assert.Equal(t, []call{{at: 0, arg: 1}, {at: 0, arg: 3}}, *calls)
}

func TestThrottleCancelDropsTrailing(t *testing.T) {
	m := looptest.NewManual()
	calls, fn := recorder(m)
	th := Throttle(m, 500*time.Millisecond, fn)

	th.Call(1)
	m.Advance(100 * time.Millisecond)
	th.Call(2)
	assert.True(t, th.Pending())

	th.Cancel()
	m.Advance(time.Second)
	assert.Equal(t, []call{{at: 0, arg: 1}}, *calls)
	assert.Equal(t, 0, m.Pending())
}

func TestDebounce(t *testing.T) {
	m := looptest.NewManual()
	calls, fn := recorder(m)
	d := Debounce(m, 200*time.Millisecond, fn)

	d.Call(1)
	m.Advance(150 * time.Millisecond)
	d.Call(2)
	m.Advance(150 * time.Millisecond)
	assert.Empty(t, *calls)
	assert.True(t, d.Pending())

	m.Advance(50 * time.Millisecond)
	assert.Equal(t, []call{{at: 350 * time.Millisecond, arg: 2}}, *calls)
	assert.False(t, d.Pending())
}

func TestDebounceZeroDelayAndCancel(t *testing.T) {
	m := looptest.NewManual()
	calls, fn := recorder(m)
	d := Debounce(m, 0, fn)

	d.Call(1)
	assert.Empty(t, *calls)
	m.Flush()
	assert.Len(t, *calls, 1)

	d.Call(2)
	d.Cancel()
	m.Flush()
	assert.Len(t, *calls, 1)
}
