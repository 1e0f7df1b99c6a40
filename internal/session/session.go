// Package session wires the solve pipeline together: dictionary, coordinate
// mapper, movement controller and gesture sequencer, behind one entry point
// the CLI and the API share.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/TSKoduru/rpi-gamehawk/internal/board"
	"github.com/TSKoduru/rpi-gamehawk/internal/calibration"
	"github.com/TSKoduru/rpi-gamehawk/internal/config"
	"github.com/TSKoduru/rpi-gamehawk/internal/gesture"
	"github.com/TSKoduru/rpi-gamehawk/internal/hid"
	"github.com/TSKoduru/rpi-gamehawk/internal/pointer"
	"github.com/TSKoduru/rpi-gamehawk/internal/solver"
	"github.com/TSKoduru/rpi-gamehawk/internal/trie"
)

// Session owns one solve-and-swipe pipeline. The mutex serializes runs:
// two gesture sequences must never interleave on the same transport.
type Session struct {
	mu        sync.Mutex // guards the fields below
	runMu     sync.Mutex // serializes gesture runs on the shared transport
	cfg       *config.Config
	dict      *trie.Node
	mapper    calibration.Mapper
	ctrl      *pointer.Controller
	seq       *gesture.Sequencer
	running   bool
	lastBoard string

	// Callbacks for progress notifications (consumed by the API layer)
	onWord func(word string, index, total int)
}

// New builds a Session from configuration. Dictionary and calibration
// problems surface here, before any gesture is attempted.
func New(cfgMgr *config.Manager, transport hid.Transport) (*Session, error) {
	cfg := cfgMgr.Get()

	dict, err := loadDictionary(cfg.Dictionary)
	if err != nil {
		return nil, err
	}

	mapper, err := buildMapper(cfg)
	if err != nil {
		return nil, err
	}

	ctrl, err := pointer.NewController(transport, cfg.Pointer.PointerOptions())
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg:    cfg,
		dict:   dict,
		mapper: mapper,
		ctrl:   ctrl,
	}
	s.seq = gesture.NewSequencer(ctrl, mapper, cfg.Gesture.GestureOptions())
	s.seq.SetOnWord(func(word string, index, total int) {
		s.mu.Lock()
		fn := s.onWord
		s.mu.Unlock()
		if fn != nil {
			fn(word, index, total)
		}
	})
	return s, nil
}

// loadDictionary prefers the compiled trie and falls back to compiling the
// raw word list when only that is configured.
func loadDictionary(dc config.DictionaryConfig) (*trie.Node, error) {
	dict, err := trie.Load(dc.TriePath)
	if err == nil {
		return dict, nil
	}
	if dc.WordList == "" {
		return nil, fmt.Errorf("session: no usable dictionary: %w", err)
	}

	log.Printf("Session: Compiling dictionary from %s", dc.WordList)
	dict, count, buildErr := trie.BuildFromFile(dc.WordList)
	if buildErr != nil {
		return nil, fmt.Errorf("session: no usable dictionary: %w", buildErr)
	}
	log.Printf("Session: Compiled %d words", count)

	if saveErr := dict.Save(dc.TriePath); saveErr != nil {
		log.Printf("Session: Could not persist compiled dictionary: %v", saveErr)
	}
	return dict, nil
}

// buildMapper constructs the configured coordinate mapper.
func buildMapper(cfg *config.Config) (calibration.Mapper, error) {
	switch cfg.Calibration.Mode {
	case "table":
		return calibration.LoadTable(cfg.Calibration.Positions, cfg.Grid.Rows, cfg.Grid.Cols)
	case "interp", "":
		return calibration.Interpolate(cfg.Calibration.TopLeft, cfg.Calibration.BottomRight,
			cfg.Grid.Rows, cfg.Grid.Cols)
	default:
		return nil, fmt.Errorf("session: unknown calibration mode %q", cfg.Calibration.Mode)
	}
}

// SetOnWord registers a per-word progress callback.
func (s *Session) SetOnWord(fn func(word string, index, total int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onWord = fn
}

// Solve parses raw board input and returns the ranked word list without
// touching the pointer.
func (s *Session) Solve(raw string) ([]solver.Result, error) {
	letters := board.Sanitize(raw)
	b, err := board.Parse(letters, s.cfg.Grid.Rows, s.cfg.Grid.Cols)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results := solver.RankAndLimit(solver.FindWords(b, s.dict), s.cfg.Gesture.WordLimit)
	log.Printf("Session: Found %d words in %s", len(results), time.Since(start).Round(time.Microsecond))

	s.mu.Lock()
	s.lastBoard = letters
	s.mu.Unlock()
	return results, nil
}

// Run solves the board and replays every ranked word as a swipe. Only one
// run executes at a time; a second caller blocks until the first finishes.
// Cancellation lands between words, never mid-drag.
func (s *Session) Run(ctx context.Context, raw string) ([]solver.Result, error) {
	results, err := s.Solve(raw)
	if err != nil {
		return nil, err
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	log.Printf("Session: Swiping %d words", len(results))
	if err := s.seq.Run(ctx, results); err != nil {
		return results, err
	}
	return results, nil
}

// Recalibrate forces the pointer back to the device origin.
func (s *Session) Recalibrate() {
	s.ctrl.Recalibrate()
}

// ForceRelease retries the button release after a stuck-button failure.
func (s *Session) ForceRelease() error {
	return s.ctrl.Release()
}

// Status reports whether a run is in flight and the last solved board.
func (s *Session) Status() (running bool, lastBoard string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running, s.lastBoard
}
