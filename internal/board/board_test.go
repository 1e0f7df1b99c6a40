package board

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name    string
		letters string
		wantErr error
	}{
		{"TooShort", "abc", ErrBadLength},
		{"TooLong", "abcdefghijklmnopq", ErrBadLength},
		{"Uppercase", "ABCDEFGHIJKLMNOP", ErrNotLetters},
		{"Digit", "abcdefghijklmno7", ErrNotLetters},
		{"Space", "abcdefg hijklmno", ErrNotLetters},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.letters, 4, 4)
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.wantErr), "got %v, want %v", err, tc.wantErr)
		})
	}
}

func TestParseAndLetters(t *testing.T) {
	b, err := Parse("otherandeeatxyzq", 4, 4)
	require.NoError(t, err)
	require.Equal(t, 4, b.Rows)
	require.Equal(t, 4, b.Cols)

	require.Equal(t, byte('o'), b.Letter(Position{0, 0}))
	require.Equal(t, byte('d'), b.Letter(Position{1, 3}))
	require.Equal(t, byte('q'), b.Letter(Position{3, 3}))

	path := []Position{{0, 1}, {0, 2}, {0, 3}}
	require.Equal(t, "the", b.Letters(path))

	require.Equal(t, "othe\nrand\neeat\nxyzq", b.String())
}

func TestSanitize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"OTHErandeeatxyzq", "otherandeeatxyzq"},
		{"o t h e, r a n d", "otherand"},
		{"a1b2c3", "abc"},
		{"", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Sanitize(tc.in))
	}
}

func TestNeighborsCounts(t *testing.T) {
	cases := []struct {
		name     string
		row, col int
		want     int
	}{
		{"Corner", 0, 0, 3},
		{"OppositeCorner", 3, 3, 3},
		{"Edge", 0, 2, 5},
		{"Center", 1, 2, 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Neighbors(tc.row, tc.col, 4, 4)
			require.Len(t, got, tc.want)
			for _, p := range got {
				require.GreaterOrEqual(t, p.Row, 0)
				require.Less(t, p.Row, 4)
				require.GreaterOrEqual(t, p.Col, 0)
				require.Less(t, p.Col, 4)
				require.False(t, p.Row == tc.row && p.Col == tc.col, "cell is its own neighbor")
			}
		})
	}
}

func TestPositionIndex(t *testing.T) {
	require.Equal(t, 0, Position{0, 0}.Index(4))
	require.Equal(t, 6, Position{1, 2}.Index(4))
	require.Equal(t, 15, Position{3, 3}.Index(4))
}
