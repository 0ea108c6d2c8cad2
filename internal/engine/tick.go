// Package engine provides the tick-based simulation loop and the
// simulation context that wires the economy systems together.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Engine drives the simulation forward at a fixed base delta per tick,
// scaled by the global speed multiplier.
type Engine struct {
	Tick      uint64        // Current tick counter (monotonic, never resets)
	Speed     float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval  time.Duration // Wall-clock tick interval at speed 1.0
	BaseDelta float64       // Sim-seconds advanced per tick before the speed multiplier
	Running   bool

	// Callbacks — populated during setup.
	OnTick   func(delta, speed float64) // Every tick
	OnReport func(tick uint64)          // Every ReportEvery ticks
	OnSave   func(tick uint64)          // Every SaveEvery ticks

	ReportEvery uint64
	SaveEvery   uint64
}

// NewEngine creates a simulation engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Speed:       1.0,
		Interval:    time.Second,
		BaseDelta:   1.0,
		ReportEvery: 300,
		SaveEvery:   600,
	}
}

// Run starts the simulation loop. Blocks until Stop() is called.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed)

	for e.Running {
		if e.Speed <= 0 {
			// Paused — sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.Step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick)
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.Running = false
}

// Step advances the simulation by one tick. All component updates for
// the tick run to completion before the next tick begins; there is no
// preemption within a tick.
func (e *Engine) Step() {
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.BaseDelta, e.Speed)
	}
	if e.ReportEvery > 0 && e.Tick%e.ReportEvery == 0 && e.OnReport != nil {
		e.OnReport(e.Tick)
	}
	if e.SaveEvery > 0 && e.Tick%e.SaveEvery == 0 && e.OnSave != nil {
		e.OnSave(e.Tick)
	}
}

// FormatSimTime renders a simulation timestamp (sim-seconds) as a
// human-readable day/clock string.
func FormatSimTime(simTime float64) string {
	total := uint64(math.Floor(simTime))
	seconds := total % 60
	totalMinutes := total / 60
	minutes := totalMinutes % 60
	totalHours := totalMinutes / 60
	hours := totalHours % 24
	days := totalHours/24 + 1

	return fmt.Sprintf("Day %d, %02d:%02d:%02d", days, hours, minutes, seconds)
}
