// Package board models the R x C letter grid a puzzle round is played on,
// along with its 8-way cell adjacency.
package board

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBadLength indicates the flattened board string does not contain
	// exactly rows*cols letters.
	ErrBadLength = errors.New("board: input length does not match grid size")

	// ErrNotLetters indicates the board string contains a character
	// outside a-z.
	ErrNotLetters = errors.New("board: input must be lowercase letters a-z")
)

// Position identifies a single grid cell, 0-indexed, row-major.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Index returns the row-major cell index for a grid with numCols columns.
func (p Position) Index(numCols int) int {
	return p.Row*numCols + p.Col
}

// Board is an R x C grid of lowercase letters. It is immutable once parsed;
// a new round gets a new Board.
type Board struct {
	Rows int
	Cols int

	cells []byte // row-major
}

// Parse builds a Board from a flattened row-major string. The input must be
// exactly rows*cols lowercase letters; use Sanitize first for raw user input.
func Parse(letters string, rows, cols int) (*Board, error) {
	if len(letters) != rows*cols {
		return nil, fmt.Errorf("%w: got %d letters, want %d", ErrBadLength, len(letters), rows*cols)
	}
	for i := 0; i < len(letters); i++ {
		if letters[i] < 'a' || letters[i] > 'z' {
			return nil, fmt.Errorf("%w: %q at index %d", ErrNotLetters, letters[i], i)
		}
	}
	cells := make([]byte, len(letters))
	copy(cells, letters)
	return &Board{Rows: rows, Cols: cols, cells: cells}, nil
}

// Sanitize lowercases raw input and strips everything outside a-z, so
// "A b,C d..." style input typed on a phone keyboard still parses.
func Sanitize(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Letter returns the letter at p. The caller is responsible for bounds.
func (b *Board) Letter(p Position) byte {
	return b.cells[p.Row*b.Cols+p.Col]
}

// Letters returns the letters along path, in order.
func (b *Board) Letters(path []Position) string {
	out := make([]byte, len(path))
	for i, p := range path {
		out[i] = b.Letter(p)
	}
	return string(out)
}

// String renders the grid one row per line, for logs and the CLI.
func (b *Board) String() string {
	var sb strings.Builder
	for r := 0; r < b.Rows; r++ {
		if r > 0 {
			sb.WriteByte('\n')
		}
		sb.Write(b.cells[r*b.Cols : (r+1)*b.Cols])
	}
	return sb.String()
}

// Neighbors returns every in-bounds cell adjacent to (row, col) in the 8
// compass directions. The result depends only on the grid dimensions,
// never on board content.
func Neighbors(row, col, numRows, numCols int) []Position {
	out := make([]Position, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := row+dr, col+dc
			if r < 0 || r >= numRows || c < 0 || c >= numCols {
				continue
			}
			out = append(out, Position{Row: r, Col: c})
		}
	}
	return out
}
