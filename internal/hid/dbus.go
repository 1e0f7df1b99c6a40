package hid

import (
	"fmt"
	"log"

	"github.com/godbus/dbus/v5"
)

// D-Bus identity of the Bluetooth HID bridge service that owns the
// interrupt channel to the paired host.
const (
	bridgeService = "org.thanhle.btkbservice"
	bridgePath    = "/org/thanhle/btkbservice"
	bridgeMethod  = "org.thanhle.btkbservice.send_mouse"
)

// DBusTransport relays pointer reports to the HID bridge over the system
// bus. One transport maps to one paired host connection.
type DBusTransport struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewDBusTransport connects to the system bus and binds the bridge object.
func NewDBusTransport() (*DBusTransport, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("hid: connect system bus: %w", err)
	}
	log.Printf("HID: Connected to system bus, bridge %s", bridgeService)
	return &DBusTransport{
		conn: conn,
		obj:  conn.Object(bridgeService, dbus.ObjectPath(bridgePath)),
	}, nil
}

// Send encodes and relays one pointer report.
func (t *DBusTransport) Send(s State) error {
	call := t.obj.Call(bridgeMethod, 0, byte(0), EncodeReport(s))
	if call.Err != nil {
		return fmt.Errorf("hid: send_mouse: %w", call.Err)
	}
	return nil
}

// Close releases the bus connection.
func (t *DBusTransport) Close() error {
	return t.conn.Close()
}
