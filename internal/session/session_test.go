package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TSKoduru/rpi-gamehawk/internal/board"
	"github.com/TSKoduru/rpi-gamehawk/internal/config"
	"github.com/TSKoduru/rpi-gamehawk/internal/hid"
	"github.com/TSKoduru/rpi-gamehawk/internal/trie"
)

// testManager writes a small compiled dictionary into a temp dir and
// returns a config manager pointing at it, with all delays zeroed.
func testManager(t *testing.T) *config.Manager {
	t.Helper()
	dir := t.TempDir()

	dict := trie.Build([]string{"the", "than", "rat", "eat", "rand", "near"})
	triePath := filepath.Join(dir, "trie.json")
	require.NoError(t, dict.Save(triePath))

	m := config.NewManagerAt(filepath.Join(dir, "config.json"))
	cfg := m.Get()
	cfg.Dictionary.TriePath = triePath
	cfg.Pointer.StepDelayMs = 0
	cfg.Pointer.MaxStep = 500
	cfg.Gesture = config.GestureConfig{WordLimit: 100}
	return m
}

func TestSolve(t *testing.T) {
	s, err := New(testManager(t), hid.Discard{})
	require.NoError(t, err)

	results, err := s.Solve("OTHEr and EEAT xyzq")
	require.NoError(t, err)
	require.NotEmpty(t, results)

	words := make([]string, len(results))
	for i, r := range results {
		words[i] = r.Word
	}
	require.Contains(t, words, "the")

	// Ranked: longer words first.
	for i := 1; i < len(results); i++ {
		require.GreaterOrEqual(t, len(results[i-1].Word), len(results[i].Word))
	}
}

func TestSolveBadBoard(t *testing.T) {
	s, err := New(testManager(t), hid.Discard{})
	require.NoError(t, err)

	_, err = s.Solve("abc")
	require.True(t, errors.Is(err, board.ErrBadLength))
}

func TestRunEmitsStates(t *testing.T) {
	rec := &countingTransport{}
	s, err := New(testManager(t), rec)
	require.NoError(t, err)

	results, err := s.Run(context.Background(), "otherandeeatxyzq")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.NotZero(t, rec.sends, "gestures must reach the transport")

	running, last := s.Status()
	require.False(t, running)
	require.Equal(t, "otherandeeatxyzq", last)
}

func TestNewMissingDictionary(t *testing.T) {
	m := config.NewManagerAt(filepath.Join(t.TempDir(), "config.json"))
	m.Get().Dictionary.TriePath = filepath.Join(t.TempDir(), "nope.json")

	_, err := New(m, hid.Discard{})
	require.Error(t, err)
}

func TestNewCompilesWordList(t *testing.T) {
	dir := t.TempDir()
	wordList := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(wordList, []byte("the\nthere\nten\n"), 0644))

	m := config.NewManagerAt(filepath.Join(dir, "config.json"))
	cfg := m.Get()
	cfg.Dictionary.WordList = wordList
	cfg.Dictionary.TriePath = filepath.Join(dir, "trie.json")

	s, err := New(m, hid.Discard{})
	require.NoError(t, err)

	results, err := s.Solve("otherandeeatxyzq")
	require.NoError(t, err)
	require.NotEmpty(t, results)

	// The compiled trie is persisted for the next start.
	_, err = trie.Load(cfg.Dictionary.TriePath)
	require.NoError(t, err)
}

func TestNewBadCalibrationMode(t *testing.T) {
	m := testManager(t)
	m.Get().Calibration.Mode = "sideways"

	_, err := New(m, hid.Discard{})
	require.Error(t, err)
}

type countingTransport struct {
	sends int
}

func (c *countingTransport) Send(hid.State) error {
	c.sends++
	return nil
}
