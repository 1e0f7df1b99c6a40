// Package config provides configuration management for the gamehawk
// service.
package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/TSKoduru/rpi-gamehawk/internal/calibration"
	"github.com/TSKoduru/rpi-gamehawk/internal/gesture"
	"github.com/TSKoduru/rpi-gamehawk/internal/pointer"
	"github.com/TSKoduru/rpi-gamehawk/internal/solver"
)

// Config represents the application configuration
type Config struct {
	// Grid describes the puzzle geometry
	Grid GridConfig `json:"grid"`

	// Dictionary locates the word list and compiled trie
	Dictionary DictionaryConfig `json:"dictionary"`

	// Calibration selects how grid cells map to pointer coordinates
	Calibration CalibrationConfig `json:"calibration"`

	// Pointer tunes the movement controller
	Pointer PointerConfig `json:"pointer"`

	// Gesture tunes swipe pacing and recalibration cadence
	Gesture GestureConfig `json:"gesture"`

	// API contains the remote board-submission server settings
	API APIConfig `json:"api"`
}

// GridConfig describes the board dimensions
type GridConfig struct {
	// Rows is the number of grid rows (default: 4)
	Rows int `json:"rows"`

	// Cols is the number of grid columns (default: 4)
	Cols int `json:"cols"`
}

// DictionaryConfig locates dictionary data
type DictionaryConfig struct {
	// WordList is a newline-delimited word list to compile on demand
	WordList string `json:"word_list,omitempty"`

	// TriePath is the compiled dictionary file
	TriePath string `json:"trie_path"`
}

// CalibrationConfig selects the coordinate mapping mode
type CalibrationConfig struct {
	// Mode is "table" (measured per-cell file) or "interp" (corner interpolation)
	Mode string `json:"mode"`

	// Positions is the per-cell calibration file for table mode
	Positions string `json:"positions,omitempty"`

	// TopLeft is the measured center of cell (0,0) for interp mode
	TopLeft calibration.Point `json:"top_left"`

	// BottomRight is the measured center of the last cell for interp mode
	BottomRight calibration.Point `json:"bottom_right"`
}

// PointerConfig tunes the movement controller
type PointerConfig struct {
	// MaxStep is the per-axis step bound in device units
	MaxStep int `json:"max_step"`

	// StepDelayMs is the pause between movement steps
	StepDelayMs int `json:"step_delay_ms"`

	// RecalSweeps is the number of max-negative moves per axis during recalibration
	RecalSweeps int `json:"recal_sweeps"`
}

// GestureConfig tunes swipe pacing
type GestureConfig struct {
	// HoverDelayMs is the settle time after reaching a word's first cell
	HoverDelayMs int `json:"hover_delay_ms"`

	// PressDelayMs is the settle time after pressing
	PressDelayMs int `json:"press_delay_ms"`

	// DragDelayMs is the settle time after each dragged cell
	DragDelayMs int `json:"drag_delay_ms"`

	// ReleaseDelayMs is the settle time after releasing
	ReleaseDelayMs int `json:"release_delay_ms"`

	// RecalEvery recalibrates after this many words (0 disables)
	RecalEvery int `json:"recal_every"`

	// RecalSettleMs is the pause after a periodic recalibration
	RecalSettleMs int `json:"recal_settle_ms"`

	// WordLimit caps how many ranked words a round swipes
	WordLimit int `json:"word_limit"`
}

// APIConfig contains the remote control server settings
type APIConfig struct {
	// Enabled turns the HTTP/WebSocket server on
	Enabled bool `json:"enabled"`

	// Port is the listen port (default: 18090)
	Port int `json:"port"`

	// Token is an optional bearer token for API requests
	Token string `json:"token,omitempty"`
}

// DefaultConfig returns a new Config with the values the device was tuned
// with against the real game
func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{Rows: 4, Cols: 4},
		Dictionary: DictionaryConfig{
			TriePath: "trie.json",
		},
		Calibration: CalibrationConfig{
			Mode:        "interp",
			TopLeft:     calibration.Point{X: 7500, Y: 15750},
			BottomRight: calibration.Point{X: 25000, Y: 24000},
		},
		Pointer: PointerConfig{
			MaxStep:     10,
			StepDelayMs: 2,
			RecalSweeps: 20,
		},
		Gesture: GestureConfig{
			HoverDelayMs:   15,
			PressDelayMs:   50,
			DragDelayMs:    70,
			ReleaseDelayMs: 50,
			RecalEvery:     3,
			RecalSettleMs:  300,
			WordLimit:      solver.DefaultLimit,
		},
		API: APIConfig{
			Enabled: false,
			Port:    18090,
		},
	}
}

// PointerOptions converts the pointer section to controller options
func (p PointerConfig) PointerOptions() pointer.Options {
	return pointer.Options{
		MaxStep:     p.MaxStep,
		StepDelay:   time.Duration(p.StepDelayMs) * time.Millisecond,
		RecalSweeps: p.RecalSweeps,
	}
}

// GestureOptions converts the gesture section to sequencer options
func (g GestureConfig) GestureOptions() gesture.Options {
	return gesture.Options{
		HoverDelay:   time.Duration(g.HoverDelayMs) * time.Millisecond,
		PressDelay:   time.Duration(g.PressDelayMs) * time.Millisecond,
		DragDelay:    time.Duration(g.DragDelayMs) * time.Millisecond,
		ReleaseDelay: time.Duration(g.ReleaseDelayMs) * time.Millisecond,
		RecalEvery:   g.RecalEvery,
		RecalSettle:  time.Duration(g.RecalSettleMs) * time.Millisecond,
	}
}

// Manager handles loading and saving configuration
type Manager struct {
	mu         sync.Mutex
	configPath string
	config     *Config
}

// NewManager creates a configuration manager at the platform config path
func NewManager() (*Manager, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return NewManagerAt(configPath), nil
}

// NewManagerAt creates a configuration manager for an explicit file path
func NewManagerAt(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
		config:     DefaultConfig(),
	}
}

// getConfigPath returns the path to the configuration file
func getConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "gamehawk")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config", "gamehawk")
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Path returns the backing config file path
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads the configuration from disk
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.configPath)
	if os.IsNotExist(err) {
		// No config file, use defaults
		return nil
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, m.config)
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return err
	}

	log.Printf("Config: Saving configuration to %s (%d bytes)", m.configPath, len(data))
	return os.WriteFile(m.configPath, data, 0644)
}

// Get returns the current configuration
func (m *Manager) Get() *Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Set updates the configuration
func (m *Manager) Set(config *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = config
}
