// Package calibration maps logical grid cells to absolute pointer
// coordinates. Coordinates come either from a measured per-cell table or
// from linear interpolation between the two calibrated grid corners.
package calibration

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/TSKoduru/rpi-gamehawk/internal/board"
)

// MaxCoord is the upper bound of the absolute coordinate space the HID
// descriptor advertises. Mapped coordinates are clamped here, never wrapped.
const MaxCoord = 32767

var (
	// ErrIncompleteTable indicates the calibration table is missing one or
	// more cell entries for the configured grid.
	ErrIncompleteTable = errors.New("calibration: table is missing cells")

	// ErrBadGrid indicates grid dimensions too small to interpolate over.
	ErrBadGrid = errors.New("calibration: grid must be at least 2x2 to interpolate")
)

// Point is an absolute pointer coordinate in device units.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Mapper resolves a grid cell to its absolute pointer coordinate.
type Mapper interface {
	CellCoords(p board.Position) Point
}

// Table is a complete per-cell coordinate lookup. Completeness is checked
// at construction, so lookups cannot fail mid-gesture.
type Table struct {
	rows, cols int
	points     []Point // row-major by cell index
}

// cellEntry is the on-disk representation of one table row, matching the
// format the interactive calibration tool writes.
type cellEntry struct {
	Cell int `json:"cell"`
	X    int `json:"x"`
	Y    int `json:"y"`
}

// NewTable validates that points covers every cell index 0..rows*cols-1
// and returns the table. Coordinates are clamped into device range.
func NewTable(points map[int]Point, rows, cols int) (*Table, error) {
	t := &Table{rows: rows, cols: cols, points: make([]Point, rows*cols)}
	for idx := 0; idx < rows*cols; idx++ {
		pt, ok := points[idx]
		if !ok {
			return nil, fmt.Errorf("%w: cell %d", ErrIncompleteTable, idx)
		}
		t.points[idx] = Point{X: clamp(pt.X), Y: clamp(pt.Y)}
	}
	return t, nil
}

// LoadTable reads a calibration file written by SaveTable (or the
// calibration tool) and validates it against the grid dimensions.
func LoadTable(path string, rows, cols int) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("calibration: read %s: %w", path, err)
	}
	var entries []cellEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("calibration: parse %s: %w", path, err)
	}
	points := make(map[int]Point, len(entries))
	for _, e := range entries {
		points[e.Cell] = Point{X: e.X, Y: e.Y}
	}
	return NewTable(points, rows, cols)
}

// Save writes the table in the same JSON format LoadTable reads.
func (t *Table) Save(path string) error {
	entries := make([]cellEntry, len(t.points))
	for idx, pt := range t.points {
		entries[idx] = cellEntry{Cell: idx, X: pt.X, Y: pt.Y}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Cell < entries[j].Cell })
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CellCoords returns the calibrated coordinate for p.
func (t *Table) CellCoords(p board.Position) Point {
	return t.points[p.Index(t.cols)]
}

// Cell returns the coordinate for a raw cell index. Used by the
// calibration tool, which iterates indices rather than positions.
func (t *Table) Cell(idx int) Point {
	return t.points[idx]
}

// SetCell overwrites the coordinate for a raw cell index.
func (t *Table) SetCell(idx int, pt Point) {
	t.points[idx] = Point{X: clamp(pt.X), Y: clamp(pt.Y)}
}

// Size returns the grid dimensions the table was built for.
func (t *Table) Size() (rows, cols int) {
	return t.rows, t.cols
}

// Interpolate derives a full table from the measured centers of the
// top-left and bottom-right cells. The per-axis step is
// (bottomRight-topLeft)/(dim-1); cell centers are rounded to the nearest
// device unit and clamped into range.
func Interpolate(topLeft, bottomRight Point, rows, cols int) (*Table, error) {
	if rows < 2 || cols < 2 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadGrid, rows, cols)
	}
	stepX := float64(bottomRight.X-topLeft.X) / float64(cols-1)
	stepY := float64(bottomRight.Y-topLeft.Y) / float64(rows-1)

	t := &Table{rows: rows, cols: cols, points: make([]Point, rows*cols)}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x := clamp(int(math.Round(float64(topLeft.X) + float64(col)*stepX)))
			y := clamp(int(math.Round(float64(topLeft.Y) + float64(row)*stepY)))
			t.points[row*cols+col] = Point{X: x, Y: y}
		}
	}
	return t, nil
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxCoord {
		return MaxCoord
	}
	return v
}
