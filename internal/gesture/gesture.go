// Package gesture replays solved words as pointer swipes: hover over the
// first cell, press, drag through the remaining cells, release.
package gesture

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/TSKoduru/rpi-gamehawk/internal/calibration"
	"github.com/TSKoduru/rpi-gamehawk/internal/hid"
	"github.com/TSKoduru/rpi-gamehawk/internal/pointer"
	"github.com/TSKoduru/rpi-gamehawk/internal/solver"
)

// Options configure a Sequencer. All delays are explicit contract values:
// the game's touch handling needs time to register each phase, so they
// must not be collapsed into best-effort waits.
type Options struct {
	// HoverDelay is the settle time after moving onto the first cell.
	HoverDelay time.Duration

	// PressDelay is the settle time after the press report.
	PressDelay time.Duration

	// DragDelay is the settle time after dragging onto each cell.
	DragDelay time.Duration

	// ReleaseDelay is the settle time after the release report.
	ReleaseDelay time.Duration

	// RecalEvery recalibrates the pointer after this many completed words
	// to bound accumulated drift. 0 disables periodic recalibration.
	RecalEvery int

	// RecalSettle is the pause after a periodic recalibration.
	RecalSettle time.Duration
}

// DefaultOptions carry the cadence the device was tuned with against the
// real game.
func DefaultOptions() Options {
	return Options{
		HoverDelay:   15 * time.Millisecond,
		PressDelay:   50 * time.Millisecond,
		DragDelay:    70 * time.Millisecond,
		ReleaseDelay: 50 * time.Millisecond,
		RecalEvery:   3,
		RecalSettle:  300 * time.Millisecond,
	}
}

// Sequencer replays ranked words through a Controller. It owns the
// controller's state for the duration of a run; runs must not interleave.
type Sequencer struct {
	ctrl   *pointer.Controller
	mapper calibration.Mapper
	opts   Options

	onWord func(word string, index, total int)
}

// NewSequencer wires a controller to a coordinate mapper.
func NewSequencer(ctrl *pointer.Controller, mapper calibration.Mapper, opts Options) *Sequencer {
	return &Sequencer{ctrl: ctrl, mapper: mapper, opts: opts}
}

// SetOnWord registers a progress callback invoked after each completed
// word. index is 1-based.
func (s *Sequencer) SetOnWord(fn func(word string, index, total int)) {
	s.onWord = fn
}

// Run swipes every result in order. Cancellation is honored between words,
// never mid-drag, so the held button is always released before Run
// returns. A stuck release aborts the run immediately: every remaining
// gesture would be corrupted by the phantom held button.
func (s *Sequencer) Run(ctx context.Context, results []solver.Result) error {
	total := len(results)
	for i, res := range results {
		if err := ctx.Err(); err != nil {
			log.Printf("Gesture: interrupted after %d/%d words", i, total)
			return err
		}

		if err := s.swipe(res); err != nil {
			return fmt.Errorf("gesture: word %q (%d/%d): %w", res.Word, i+1, total, err)
		}

		if s.onWord != nil {
			s.onWord(res.Word, i+1, total)
		}

		if s.opts.RecalEvery > 0 && (i+1)%s.opts.RecalEvery == 0 && i+1 < total {
			s.ctrl.Recalibrate()
			s.pause(s.opts.RecalSettle)
		}
	}
	return nil
}

// swipe performs the hover, press, drag, release sequence for one word.
func (s *Sequencer) swipe(res solver.Result) error {
	if len(res.Path) == 0 {
		return nil
	}

	first := s.mapper.CellCoords(res.Path[0])
	s.ctrl.Goto(first.X, first.Y)
	s.pause(s.opts.HoverDelay)

	s.ctrl.Press(hid.ButtonLeft)
	s.pause(s.opts.PressDelay)

	for _, cell := range res.Path[1:] {
		pt := s.mapper.CellCoords(cell)
		s.ctrl.Goto(pt.X, pt.Y)
		s.pause(s.opts.DragDelay)
	}

	if err := s.ctrl.Release(); err != nil {
		return err
	}
	s.pause(s.opts.ReleaseDelay)
	return nil
}

func (s *Sequencer) pause(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
