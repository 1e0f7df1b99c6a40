package hid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeReport(t *testing.T) {
	cases := []struct {
		name  string
		state State
		want  []byte
	}{
		{
			"Origin",
			State{},
			[]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			"LittleEndianSplit",
			State{Buttons: ButtonLeft, X: 0x1234, Y: 0x0102},
			[]byte{0x01, 0x34, 0x12, 0x02, 0x01, 0x00},
		},
		{
			"MaxCoord",
			State{X: MaxCoord, Y: MaxCoord},
			[]byte{0x00, 0xFF, 0x7F, 0xFF, 0x7F, 0x00},
		},
		{
			"ClampsBelowZero",
			State{X: -500, Y: -1},
			[]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			"ClampsAboveMax",
			State{X: 40000, Y: 99999},
			[]byte{0x00, 0xFF, 0x7F, 0xFF, 0x7F, 0x00},
		},
		{
			"Wheel",
			State{Wheel: -1},
			[]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0xFF},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, EncodeReport(tc.state))
		})
	}
}

func TestDiscardTransport(t *testing.T) {
	var tr Transport = Discard{}
	require.NoError(t, tr.Send(State{X: 100, Y: 100}))
}
