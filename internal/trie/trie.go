// Package trie holds the compiled dictionary the solver walks. Words are
// inserted character by character; a node's Terminal flag marks that a
// complete dictionary word ends there. Once built, the structure is
// read-only for the lifetime of a solving session.
package trie

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// MinWordLen is the shortest word the game accepts. Shorter wordlist
// entries are dropped at build time so no terminal marker exists for them.
const MinWordLen = 3

// ErrNoDictionary indicates a compiled dictionary file could not be read.
var ErrNoDictionary = errors.New("trie: compiled dictionary not found")

// Node is one trie node. Children is keyed by single-letter strings so the
// structure round-trips through JSON unchanged.
type Node struct {
	Children map[string]*Node `json:"c,omitempty"`
	Terminal bool             `json:"w,omitempty"`
}

// New returns an empty trie root.
func New() *Node {
	return &Node{Children: make(map[string]*Node)}
}

// Child returns the child reached by ch, or nil if the branch does not exist.
func (n *Node) Child(ch byte) *Node {
	if n.Children == nil {
		return nil
	}
	return n.Children[string(ch)]
}

// Insert adds one word and reports whether it was accepted. Words that are
// empty, shorter than MinWordLen, or contain anything outside a-z are
// rejected. Inserting the same word twice is a no-op.
func (n *Node) Insert(word string) bool {
	if len(word) < MinWordLen {
		return false
	}
	for i := 0; i < len(word); i++ {
		if word[i] < 'a' || word[i] > 'z' {
			return false
		}
	}
	cur := n
	for i := 0; i < len(word); i++ {
		key := word[i : i+1]
		if cur.Children == nil {
			cur.Children = make(map[string]*Node)
		}
		next, ok := cur.Children[key]
		if !ok {
			next = &Node{}
			cur.Children[key] = next
		}
		cur = next
	}
	cur.Terminal = true
	return true
}

// Build constructs a trie from a word list, skipping rejected entries.
func Build(words []string) *Node {
	root := New()
	for _, w := range words {
		root.Insert(w)
	}
	return root
}

// BuildFromReader ingests a newline-delimited word list and returns the
// trie plus the number of words accepted.
func BuildFromReader(r io.Reader) (*Node, int, error) {
	root := New()
	count := 0
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		word := strings.ToLower(string(trimSpace(sc.Bytes())))
		if root.Insert(word) {
			count++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, 0, fmt.Errorf("trie: reading word list: %w", err)
	}
	return root, count, nil
}

// BuildFromFile compiles a word list file into a trie.
func BuildFromFile(path string) (*Node, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("trie: open word list: %w", err)
	}
	defer f.Close()
	return BuildFromReader(f)
}

// Save persists the trie as JSON so later runs skip the compile step.
func (n *Node) Save(path string) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("trie: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a trie previously written by Save.
func Load(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNoDictionary, path)
	}
	if err != nil {
		return nil, fmt.Errorf("trie: read %s: %w", path, err)
	}
	root := New()
	if err := json.Unmarshal(data, root); err != nil {
		return nil, fmt.Errorf("trie: corrupt dictionary %s: %w", path, err)
	}
	return root, nil
}

// trimSpace is a cheap TrimSpace for wordlist lines; it avoids allocating
// through the strings package in the compile loop.
func trimSpace(b []byte) []byte {
	start := 0
	for start < len(b) && (b[start] == ' ' || b[start] == '\t' || b[start] == '\r') {
		start++
	}
	end := len(b)
	for end > start && (b[end-1] == ' ' || b[end-1] == '\t' || b[end-1] == '\r') {
		end--
	}
	return b[start:end]
}
