// Package calibrate implements the interactive per-cell calibration
// session. The pointer is parked on each cell in turn and the operator
// nudges it with the arrow keys while watching the paired host's screen;
// accepted positions are written back to the calibration table.
package calibrate

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/TSKoduru/rpi-gamehawk/internal/calibration"
	"github.com/TSKoduru/rpi-gamehawk/internal/pointer"
)

// nudge sizes in device units
const (
	nudgeFine   = 25
	nudgeCoarse = 250
)

// Session walks the operator through every cell of a calibration table.
type Session struct {
	ctrl  *pointer.Controller
	table *calibration.Table
	path  string
	in    *os.File
	out   io.Writer
}

// NewSession prepares a calibration pass over table, saving to path.
func NewSession(ctrl *pointer.Controller, table *calibration.Table, path string) *Session {
	return &Session{
		ctrl:  ctrl,
		table: table,
		path:  path,
		in:    os.Stdin,
		out:   os.Stdout,
	}
}

// Run iterates every cell: move there, let the operator nudge, record.
// Arrow keys nudge fine, w/a/x/d nudge coarse ('s' is taken by skip),
// Enter accepts, q saves progress and quits.
func (s *Session) Run() error {
	rows, cols := s.table.Size()
	total := rows * cols

	fmt.Fprintln(s.out, "Calibration: arrows nudge fine, w/a/x/d nudge coarse,")
	fmt.Fprintln(s.out, "Enter accepts, s skips, q saves progress and quits.")

	s.ctrl.Recalibrate()
	time.Sleep(300 * time.Millisecond)

	for idx := 0; idx < total; idx++ {
		pt := s.table.Cell(idx)
		fmt.Fprintf(s.out, "\nCell %d/%d: moving to (%d, %d)\n", idx+1, total, pt.X, pt.Y)
		s.ctrl.Goto(pt.X, pt.Y)

		accepted, quit, err := s.adjustCell(idx)
		if err != nil {
			return err
		}
		if accepted {
			x, y := s.ctrl.Position()
			s.table.SetCell(idx, calibration.Point{X: x, Y: y})
			fmt.Fprintf(s.out, "Cell %d recorded at (%d, %d)\n", idx, x, y)
		}
		if quit {
			log.Printf("Calibrate: Quitting early, saving progress")
			break
		}
	}

	if err := s.table.Save(s.path); err != nil {
		return fmt.Errorf("calibrate: save table: %w", err)
	}
	log.Printf("Calibrate: Saved table to %s", s.path)
	return nil
}

// adjustCell reads keys in raw mode until the operator accepts, skips or
// quits. Returns whether the current pointer position should be recorded.
func (s *Session) adjustCell(idx int) (accepted, quit bool, err error) {
	fd := int(s.in.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return false, false, fmt.Errorf("calibrate: raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	buf := make([]byte, 3)
	for {
		n, err := s.in.Read(buf)
		if err != nil {
			return false, false, fmt.Errorf("calibrate: read key: %w", err)
		}

		dx, dy := 0, 0
		switch {
		case n == 1 && (buf[0] == '\r' || buf[0] == '\n'):
			return true, false, nil
		case n == 1 && (buf[0] == 's' || buf[0] == 'S'):
			return false, false, nil
		case n == 1 && (buf[0] == 'q' || buf[0] == 'Q'):
			return false, true, nil
		case n == 1 && buf[0] == 3: // Ctrl-C
			return false, true, nil
		case n == 1 && (buf[0] == 'w'):
			dy = -nudgeCoarse
		case n == 1 && (buf[0] == 'a'):
			dx = -nudgeCoarse
		case n == 1 && (buf[0] == 'd'):
			dx = nudgeCoarse
		case n == 1 && (buf[0] == 'x'):
			dy = nudgeCoarse
		case n == 3 && buf[0] == 0x1B && buf[1] == '[':
			switch buf[2] {
			case 'A':
				dy = -nudgeFine
			case 'B':
				dy = nudgeFine
			case 'C':
				dx = nudgeFine
			case 'D':
				dx = -nudgeFine
			}
		}

		if dx != 0 || dy != 0 {
			x, y := s.ctrl.Position()
			s.ctrl.Goto(clampCoord(x+dx), clampCoord(y+dy))
		}
	}
}

func clampCoord(v int) int {
	if v < 0 {
		return 0
	}
	if v > calibration.MaxCoord {
		return calibration.MaxCoord
	}
	return v
}
