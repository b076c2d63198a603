// Package engine provides the tick-based simulation loop.
package engine

import (
	"log/slog"
	"time"
)

// Engine drives the simulation forward one tick at a time.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval
	Running  bool

	// OnTick runs every tick, after injected functions.
	OnTick func(tick uint64)

	inject chan func()
}

// NewEngine creates a simulation engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: 50 * time.Millisecond,
		inject:   make(chan func(), 64),
	}
}

// Do queues fn to run at the start of the next tick, on the tick goroutine.
// This is how other goroutines (the HTTP API) touch simulation state without
// racing the tick. Returns false if the queue is full.
func (e *Engine) Do(fn func()) bool {
	select {
	case e.inject <- fn:
		return true
	default:
		return false
	}
}

// Run starts the simulation loop. Blocks until Stop is called.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed)

	for e.Running {
		if e.Speed <= 0 {
			// Paused. Keep draining injected functions so the API stays
			// responsive and can unpause.
			e.drain()
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.Step()

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

// Step advances the simulation by one tick.
func (e *Engine) Step() {
	e.Tick++
	e.drain()
	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}
}

func (e *Engine) drain() {
	for {
		select {
		case fn := <-e.inject:
			fn()
		default:
			return
		}
	}
}
