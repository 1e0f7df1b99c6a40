// Package hid speaks to the spoofed Bluetooth pointer. It encodes absolute
// pointer reports, relays them to the HID bridge service over D-Bus, and
// registers the device profile with BlueZ so a host can pair with it.
package hid

// Button bitmask values for State.Buttons.
const (
	ButtonNone   uint8 = 0x00
	ButtonLeft   uint8 = 0x01
	ButtonRight  uint8 = 0x02
	ButtonMiddle uint8 = 0x04
)

// MaxCoord is the top of the absolute coordinate space advertised by the
// HID report descriptor.
const MaxCoord = 32767

// State is one absolute pointer report. Coordinates outside [0, MaxCoord]
// are clamped at encode time, never wrapped.
type State struct {
	Buttons uint8
	X       int
	Y       int
	Wheel   int8
}

// Transport delivers pointer states to the paired host. Every intermediate
// movement step is sent, not only endpoints.
type Transport interface {
	Send(s State) error
}

// EncodeReport serializes a State to the 6-byte absolute-mouse report:
// [buttons, x_lo, x_hi, y_lo, y_hi, wheel], X/Y little-endian.
func EncodeReport(s State) []byte {
	x := clamp(s.X)
	y := clamp(s.Y)
	return []byte{
		s.Buttons,
		byte(x & 0xFF),
		byte(x >> 8),
		byte(y & 0xFF),
		byte(y >> 8),
		byte(s.Wheel),
	}
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

// Discard is a Transport that drops every state. Used for --solve-only
// runs where no device is attached.
type Discard struct{}

// Send implements Transport.
func (Discard) Send(State) error { return nil }
