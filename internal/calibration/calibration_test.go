package calibration

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TSKoduru/rpi-gamehawk/internal/board"
)

func TestInterpolateCornersAndMiddle(t *testing.T) {
	tbl, err := Interpolate(Point{0, 0}, Point{30, 30}, 4, 4)
	require.NoError(t, err)

	require.Equal(t, Point{X: 0, Y: 0}, tbl.CellCoords(board.Position{Row: 0, Col: 0}))
	require.Equal(t, Point{X: 30, Y: 30}, tbl.CellCoords(board.Position{Row: 3, Col: 3}))

	// Step is 10 per axis: column drives X, row drives Y.
	require.Equal(t, Point{X: 20, Y: 10}, tbl.CellCoords(board.Position{Row: 1, Col: 2}))
	require.Equal(t, Point{X: 10, Y: 20}, tbl.CellCoords(board.Position{Row: 2, Col: 1}))
}

func TestInterpolateRealGeometry(t *testing.T) {
	// The corner values the device actually runs with.
	tbl, err := Interpolate(Point{7500, 15750}, Point{25000, 24000}, 4, 4)
	require.NoError(t, err)

	require.Equal(t, Point{X: 7500, Y: 15750}, tbl.CellCoords(board.Position{Row: 0, Col: 0}))
	require.Equal(t, Point{X: 25000, Y: 24000}, tbl.CellCoords(board.Position{Row: 3, Col: 3}))

	// (25000-7500)/3 rounds to 13333 -> col 1 X is 7500+5833.
	got := tbl.CellCoords(board.Position{Row: 0, Col: 1})
	require.Equal(t, 13333, got.X)
	require.Equal(t, 15750, got.Y)
}

func TestInterpolateClamps(t *testing.T) {
	tbl, err := Interpolate(Point{-100, 0}, Point{40000, 30}, 4, 4)
	require.NoError(t, err)

	tl := tbl.CellCoords(board.Position{Row: 0, Col: 0})
	require.Equal(t, 0, tl.X, "negative coordinates clamp to 0, never wrap")

	br := tbl.CellCoords(board.Position{Row: 3, Col: 3})
	require.Equal(t, MaxCoord, br.X, "out-of-range coordinates clamp to MaxCoord")
}

func TestInterpolateBadGrid(t *testing.T) {
	_, err := Interpolate(Point{0, 0}, Point{30, 30}, 1, 4)
	require.True(t, errors.Is(err, ErrBadGrid))
}

func TestNewTableIncomplete(t *testing.T) {
	points := map[int]Point{}
	for idx := 0; idx < 15; idx++ { // cell 15 missing
		points[idx] = Point{X: idx, Y: idx}
	}
	_, err := NewTable(points, 4, 4)
	require.True(t, errors.Is(err, ErrIncompleteTable))
}

func TestTableSaveLoadRoundTrip(t *testing.T) {
	points := make(map[int]Point, 16)
	for idx := 0; idx < 16; idx++ {
		points[idx] = Point{X: 100 * idx, Y: 200 * idx}
	}
	tbl, err := NewTable(points, 4, 4)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mouse_positions.json")
	require.NoError(t, tbl.Save(path))

	loaded, err := LoadTable(path, 4, 4)
	require.NoError(t, err)
	for idx := 0; idx < 16; idx++ {
		require.Equal(t, tbl.Cell(idx), loaded.Cell(idx))
	}
}

func TestLoadTableWrongGrid(t *testing.T) {
	points := make(map[int]Point, 16)
	for idx := 0; idx < 16; idx++ {
		points[idx] = Point{X: idx, Y: idx}
	}
	tbl, err := NewTable(points, 4, 4)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "positions.json")
	require.NoError(t, tbl.Save(path))

	// A 4x4 file cannot serve a 5x5 grid.
	_, err = LoadTable(path, 5, 5)
	require.True(t, errors.Is(err, ErrIncompleteTable))
}

func TestSetCellClamps(t *testing.T) {
	tbl, err := Interpolate(Point{0, 0}, Point{30, 30}, 4, 4)
	require.NoError(t, err)

	tbl.SetCell(5, Point{X: -50, Y: 99999})
	require.Equal(t, Point{X: 0, Y: MaxCoord}, tbl.Cell(5))
}
