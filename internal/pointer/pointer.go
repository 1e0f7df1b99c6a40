// Package pointer drives the virtual pointer with bounded quantized steps.
// Hosts apply non-linear smoothing and acceleration to large single jumps;
// issuing movement as a train of small fixed-size steps keeps the observed
// motion linear and predictable.
package pointer

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/TSKoduru/rpi-gamehawk/internal/hid"
)

// ErrStuckButton indicates a button-release report was not delivered. The
// host still believes the button is down, which corrupts every following
// gesture, so callers must retry the release before continuing.
var ErrStuckButton = errors.New("pointer: button release was not delivered")

// Options configure a Controller.
type Options struct {
	// MaxStep bounds the per-axis magnitude of each emitted movement step.
	// Must be positive.
	MaxStep int

	// StepDelay is the pause between emitted steps. It paces the virtual
	// device to the host's expected input cadence and is part of the
	// movement contract, not a tuning knob.
	StepDelay time.Duration

	// RecalSweeps is how many maximum-negative steps Recalibrate issues
	// per axis.
	RecalSweeps int
}

// DefaultOptions match the delta and cadence the device was tuned with.
func DefaultOptions() Options {
	return Options{
		MaxStep:     10,
		StepDelay:   2 * time.Millisecond,
		RecalSweeps: 20,
	}
}

// Controller tracks the virtual pointer's position and held buttons, and
// turns target coordinates into trains of bounded steps. Its state is
// owned by a single gesture run at a time; it is not safe for concurrent
// use.
type Controller struct {
	transport hid.Transport
	opts      Options

	x, y    int
	buttons uint8
	dropped int
}

// NewController validates opts and wraps transport.
func NewController(transport hid.Transport, opts Options) (*Controller, error) {
	if opts.MaxStep <= 0 {
		return nil, fmt.Errorf("pointer: MaxStep must be positive, got %d", opts.MaxStep)
	}
	if opts.RecalSweeps <= 0 {
		opts.RecalSweeps = DefaultOptions().RecalSweeps
	}
	return &Controller{transport: transport, opts: opts}, nil
}

// Position returns the tracked pointer position.
func (c *Controller) Position() (x, y int) {
	return c.x, c.y
}

// Buttons returns the currently held button bitmask.
func (c *Controller) Buttons() uint8 {
	return c.buttons
}

// Dropped returns how many states failed to deliver since construction.
func (c *Controller) Dropped() int {
	return c.dropped
}

// Goto advances the pointer to (x, y). Each tick moves both axes at once,
// each by at most MaxStep toward its target, and emits the new position
// with the currently held buttons. The loop ends only when the tracked
// position equals the target exactly.
func (c *Controller) Goto(x, y int) {
	for c.x != x || c.y != y {
		c.x += axisStep(x-c.x, c.opts.MaxStep)
		c.y += axisStep(y-c.y, c.opts.MaxStep)
		c.send()
		c.pause(c.opts.StepDelay)
	}
}

// Press adds button to the held bitmask and reports it at the current
// position.
func (c *Controller) Press(button uint8) {
	c.buttons |= button
	c.send()
}

// Release clears all held buttons and reports it at the current position.
// Unlike intermediate movement states, a failed release is escalated: see
// ErrStuckButton.
func (c *Controller) Release() error {
	c.buttons = 0
	err := c.transport.Send(hid.State{Buttons: 0, X: c.x, Y: c.y})
	if err != nil {
		c.dropped++
		return fmt.Errorf("%w: %v", ErrStuckButton, err)
	}
	return nil
}

// Recalibrate drives the pointer into the top-left corner and resets the
// tracked position to (0, 0). It deliberately overshoots: each sweep steps
// a full MaxStep past the edge and relies on the host clamping the pointer
// at the boundary. That clamping is host behavior this controller cannot
// verify; on hosts that wrap instead of clamp, recalibration is unsound.
func (c *Controller) Recalibrate() {
	log.Printf("Pointer: Recalibrating to (0,0), %d sweeps per axis", c.opts.RecalSweeps)
	for i := 0; i < c.opts.RecalSweeps; i++ {
		c.x -= c.opts.MaxStep
		c.send()
		c.pause(c.opts.StepDelay)
	}
	for i := 0; i < c.opts.RecalSweeps; i++ {
		c.y -= c.opts.MaxStep
		c.send()
		c.pause(c.opts.StepDelay)
	}
	c.x, c.y = 0, 0
}

// send emits the current state. Delivery failures are logged and counted
// but do not stop the move: losing one intermediate frame is cheaper than
// losing position tracking for the rest of the gesture plan.
func (c *Controller) send() {
	if err := c.transport.Send(hid.State{Buttons: c.buttons, X: c.x, Y: c.y}); err != nil {
		c.dropped++
		log.Printf("Pointer: dropped state at (%d,%d): %v", c.x, c.y, err)
	}
}

func (c *Controller) pause(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// axisStep clips delta to [-max, max].
func axisStep(delta, max int) int {
	if delta > max {
		return max
	}
	if delta < -max {
		return -max
	}
	return delta
}
