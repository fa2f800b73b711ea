// Package autoplay drives the time axis forward at a fixed interval.
//
// The driver does not run a goroutine of its own. Its owner selects on C()
// from the same loop that handles user commands, so a tick can never
// interleave with a manual change. C() returns nil while stopped; a nil
// channel never becomes ready, so once Stop returns no further tick is
// delivered.
package autoplay

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultInterval is the autoplay step.
const DefaultInterval = time.Second

// State is Stopped or Running.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Button labels shown for each state.
const (
	LabelPlay  = "Play"
	LabelPause = "Pause"
)

// Driver is a two-state autoplay timer. It is not safe for concurrent use;
// it belongs to the goroutine that reads C().
type Driver struct {
	clock    clockwork.Clock
	interval time.Duration
	ticker   clockwork.Ticker
}

// New creates a stopped driver. A nil clock means real time; a non-positive
// interval means DefaultInterval.
func New(clock clockwork.Clock, interval time.Duration) *Driver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Driver{clock: clock, interval: interval}
}

// Start moves to Running and returns the button label for the new state.
// Starting a running driver keeps the current ticker.
func (d *Driver) Start() string {
	if d.ticker == nil {
		d.ticker = d.clock.NewTicker(d.interval)
	}
	return LabelPause
}

// Stop moves to Stopped, cancelling future ticks, and returns the label.
func (d *Driver) Stop() string {
	if d.ticker != nil {
		d.ticker.Stop()
		d.ticker = nil
	}
	return LabelPlay
}

// Toggle flips the state and returns the new label.
func (d *Driver) Toggle() string {
	if d.Running() {
		return d.Stop()
	}
	return d.Start()
}

// C delivers ticks while running and is nil while stopped.
func (d *Driver) C() <-chan time.Time {
	if d.ticker == nil {
		return nil
	}
	return d.ticker.Chan()
}

// Running reports whether the driver is ticking.
func (d *Driver) Running() bool { return d.ticker != nil }

// State returns the current state.
func (d *Driver) State() State {
	if d.Running() {
		return Running
	}
	return Stopped
}

// Label returns the button label for the current state.
func (d *Driver) Label() string {
	if d.Running() {
		return LabelPause
	}
	return LabelPlay
}

// Interval returns the tick interval.
func (d *Driver) Interval() time.Duration { return d.interval }
