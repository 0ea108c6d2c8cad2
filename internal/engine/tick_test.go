package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepInvokesCallbacksOnSchedule(t *testing.T) {
	e := NewEngine()
	e.ReportEvery = 3
	e.SaveEvery = 5

	var ticks, reports, saves int
	e.OnTick = func(delta, speed float64) {
		ticks++
		assert.Equal(t, 1.0, delta)
		assert.Equal(t, 1.0, speed)
	}
	e.OnReport = func(tick uint64) { reports++ }
	e.OnSave = func(tick uint64) { saves++ }

	for i := 0; i < 15; i++ {
		e.Step()
	}

	assert.Equal(t, 15, ticks)
	assert.Equal(t, 5, reports)
	assert.Equal(t, 3, saves)
	assert.Equal(t, uint64(15), e.Tick)
}

func TestStepPassesSpeedThrough(t *testing.T) {
	e := NewEngine()
	e.Speed = 4
	e.BaseDelta = 0.5

	var gotDelta, gotSpeed float64
	e.OnTick = func(delta, speed float64) { gotDelta, gotSpeed = delta, speed }
	e.Step()

	assert.Equal(t, 0.5, gotDelta)
	assert.Equal(t, 4.0, gotSpeed)
}

func TestStepWithNilCallbacks(t *testing.T) {
	e := NewEngine()
	e.ReportEvery = 1
	e.SaveEvery = 1
	assert.NotPanics(t, func() { e.Step() })
}

func TestFormatSimTime(t *testing.T) {
	assert.Equal(t, "Day 1, 00:00:00", FormatSimTime(0))
	assert.Equal(t, "Day 1, 00:01:05", FormatSimTime(65))
	assert.Equal(t, "Day 1, 23:59:59", FormatSimTime(86399))
	assert.Equal(t, "Day 2, 00:00:00", FormatSimTime(86400))
	assert.Equal(t, "Day 3, 01:02:03", FormatSimTime(2*86400+3723.9))
}
