package trie

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertRejections(t *testing.T) {
	cases := []struct {
		name string
		word string
		want bool
	}{
		{"Empty", "", false},
		{"TooShort", "at", false},
		{"MinLength", "the", true},
		{"Hyphenated", "co-op", false},
		{"Digit", "a1c", false},
		{"Uppercase", "The", false},
		{"Long", "dictionary", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := New()
			require.Equal(t, tc.want, root.Insert(tc.word))
		})
	}
}

func TestInsertIdempotent(t *testing.T) {
	root := New()
	require.True(t, root.Insert("the"))
	require.True(t, root.Insert("the"))

	node := root
	for i := 0; i < len("the"); i++ {
		node = node.Child("the"[i])
		require.NotNil(t, node)
	}
	require.True(t, node.Terminal)
	require.Empty(t, node.Children)
}

func TestChildAndTerminal(t *testing.T) {
	root := Build([]string{"the", "there", "ten"})

	// "the" is terminal, "th" is not.
	th := root.Child('t').Child('h')
	require.NotNil(t, th)
	require.False(t, th.Terminal)
	the := th.Child('e')
	require.NotNil(t, the)
	require.True(t, the.Terminal)

	// "there" extends past the terminal "the".
	require.NotNil(t, the.Child('r'))
	require.Nil(t, the.Child('x'))
	require.Nil(t, root.Child('z'))
}

func TestBuildFromReader(t *testing.T) {
	list := "the\nThere\n  ten \nat\nco-op\n\nhello\n"
	root, count, err := BuildFromReader(strings.NewReader(list))
	require.NoError(t, err)
	require.Equal(t, 4, count) // the, there, ten, hello

	require.True(t, root.Child('t').Child('h').Child('e').Terminal)
	require.True(t, root.Child('t').Child('e').Child('n').Terminal)
	require.Nil(t, root.Child('a'), "two-letter word must not create a branch")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trie.json")

	root := Build([]string{"the", "there", "rat", "tar"})
	require.NoError(t, root.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	for _, word := range []string{"the", "there", "rat", "tar"} {
		node := loaded
		for i := 0; i < len(word); i++ {
			node = node.Child(word[i])
			require.NotNil(t, node, "missing branch for %q", word)
		}
		require.True(t, node.Terminal, "%q lost its terminal flag", word)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNoDictionary))
}
