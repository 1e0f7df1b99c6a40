// Package solver enumerates every dictionary word that can be traced as a
// simple path on the board, and ranks the results for replay.
package solver

import (
	"sort"

	"github.com/TSKoduru/rpi-gamehawk/internal/board"
	"github.com/TSKoduru/rpi-gamehawk/internal/trie"
)

// DefaultLimit bounds how many ranked words a round will swipe.
const DefaultLimit = 500

// Result pairs a found word with the cell path that spells it. Only the
// first path discovered for a word is kept; later paths for the same word
// are discarded.
type Result struct {
	Word string           `json:"word"`
	Path []board.Position `json:"path"`
}

// search carries the DFS state for one FindWords call. visited and path are
// mutated on descent and restored on return, so a cell can participate in
// several different words.
type search struct {
	b       *board.Board
	visited []bool
	path    []board.Position
	word    []byte
	paths   map[string][]board.Position
}

// FindWords walks the board and trie together and returns one Result per
// distinct word of length >= trie.MinWordLen. An empty result is valid:
// a board with no dictionary words is not an error.
func FindWords(b *board.Board, root *trie.Node) []Result {
	s := &search{
		b:       b,
		visited: make([]bool, b.Rows*b.Cols),
		path:    make([]board.Position, 0, b.Rows*b.Cols),
		word:    make([]byte, 0, b.Rows*b.Cols),
		paths:   make(map[string][]board.Position),
	}

	// Only keep root branches whose letter actually appears on the board.
	// The DFS would prune these on its first step anyway; skipping them
	// here avoids 16 dead map lookups per absent letter.
	start := startNode(b, root)

	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			s.dfs(board.Position{Row: r, Col: c}, start)
		}
	}

	results := make([]Result, 0, len(s.paths))
	for word, path := range s.paths {
		results = append(results, Result{Word: word, Path: path})
	}
	return results
}

// startNode returns a root restricted to letters present on the board.
func startNode(b *board.Board, root *trie.Node) *trie.Node {
	var present [26]bool
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			present[b.Letter(board.Position{Row: r, Col: c})-'a'] = true
		}
	}
	start := trie.New()
	for key, child := range root.Children {
		if len(key) == 1 && key[0] >= 'a' && key[0] <= 'z' && present[key[0]-'a'] {
			start.Children[key] = child
		}
	}
	return start
}

func (s *search) dfs(p board.Position, node *trie.Node) {
	letter := s.b.Letter(p)
	next := node.Child(letter)
	if next == nil {
		return
	}

	idx := p.Index(s.b.Cols)
	s.visited[idx] = true
	s.word = append(s.word, letter)
	s.path = append(s.path, p)

	if next.Terminal && len(s.word) >= trie.MinWordLen {
		word := string(s.word)
		if _, seen := s.paths[word]; !seen {
			s.paths[word] = append([]board.Position(nil), s.path...)
		}
	}

	for _, n := range board.Neighbors(p.Row, p.Col, s.b.Rows, s.b.Cols) {
		if !s.visited[n.Index(s.b.Cols)] {
			s.dfs(n, next)
		}
	}

	// Backtrack: the cell must be reusable by sibling paths.
	s.visited[idx] = false
	s.word = s.word[:len(s.word)-1]
	s.path = s.path[:len(s.path)-1]
}

// RankAndLimit orders results by descending word length, ties broken by
// ascending word text, and truncates to limit entries. limit <= 0 means
// DefaultLimit. The order is a strict total order, so repeated runs over
// the same board produce identical output.
func RankAndLimit(results []Result, limit int) []Result {
	if limit <= 0 {
		limit = DefaultLimit
	}
	ranked := append([]Result(nil), results...)
	sort.Slice(ranked, func(i, j int) bool {
		if len(ranked[i].Word) != len(ranked[j].Word) {
			return len(ranked[i].Word) > len(ranked[j].Word)
		}
		return ranked[i].Word < ranked[j].Word
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
