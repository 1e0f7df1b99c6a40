package hid

import (
	"fmt"
	"log"
	"syscall"

	"github.com/godbus/dbus/v5"
)

// ReportDescriptor declares an absolute pointing device: three buttons and
// 16-bit X/Y axes with logical range [0, 32767]. Hosts that honor the
// descriptor treat each report as a position, not a displacement.
var ReportDescriptor = []byte{
	0x05, 0x01, // Usage Page (Generic Desktop)
	0x09, 0x02, // Usage (Mouse)
	0xA1, 0x01, // Collection (Application)
	0x09, 0x01, //   Usage (Pointer)
	0xA1, 0x00, //   Collection (Physical)
	0x05, 0x09, //     Usage Page (Button)
	0x19, 0x01, //     Usage Minimum (1)
	0x29, 0x03, //     Usage Maximum (3)
	0x15, 0x00, //     Logical Minimum (0)
	0x25, 0x01, //     Logical Maximum (1)
	0x95, 0x03, //     Report Count (3)
	0x75, 0x01, //     Report Size (1)
	0x81, 0x02, //     Input (Data,Var,Abs)
	0x95, 0x01, //     Report Count (1)
	0x75, 0x05, //     Report Size (5)
	0x81, 0x03, //     Input (Const,Var,Abs)
	0x05, 0x01, //     Usage Page (Generic Desktop)
	0x09, 0x30, //     Usage (X)
	0x09, 0x31, //     Usage (Y)
	0x15, 0x00, //     Logical Minimum (0)
	0x26, 0xFF, 0x7F, // Logical Maximum (32767)
	0x35, 0x00, //     Physical Minimum (0)
	0x46, 0xFF, 0x7F, // Physical Maximum (32767)
	0x75, 0x10, //     Report Size (16)
	0x95, 0x02, //     Report Count (2)
	0x81, 0x02, //     Input (Data,Var,Abs)
	0xC0, //   End Collection
	0xC0, // End Collection
}

const (
	hidProfileUUID = "00001124-0000-1000-8000-00805f9b34fb"
	profilePath    = "/org/gamehawk/hid"
)

// serviceRecord is the SDP record advertised to pairing hosts.
const serviceRecord = `
<record>
    <attribute id="0x0001">
        <sequence>
            <uuid value="00001124-0000-1000-8000-00805f9b34fb"/>
        </sequence>
    </attribute>
    <attribute id="0x0004">
        <sequence>
            <sequence>
                <uuid value="00000100-0000-1000-8000-00805f9b34fb"/>
            </sequence>
            <sequence>
                <uuid value="00000011-0000-1000-8000-00805f9b34fb"/>
            </sequence>
        </sequence>
    </attribute>
    <attribute id="0x0005">
        <sequence>
            <uuid value="00001002-0000-1000-8000-00805f9b34fb"/>
        </sequence>
    </attribute>
    <attribute id="0x0006">
        <sequence>
            <uint16 value="0x656e"/> <uint16 value="0x006a"/> <uint16 value="0x0100"/>
        </sequence>
    </attribute>
    <attribute id="0x000d">
        <sequence>
            <sequence>
                <sequence>
                    <uuid value="00000100-0000-1000-8000-00805f9b34fb"/>
                    <uint16 value="0x0100"/>
                </sequence>
            </sequence>
        </sequence>
    </attribute>
    <attribute id="0x0100">
        <text value="GameHawk Controller"/>
    </attribute>
</record>
`

// Profile advertises the pointer device through the BlueZ profile manager.
// The actual report channel is owned by the HID bridge; this only keeps the
// device pairable.
type Profile struct {
	conn    *dbus.Conn
	handler *profileHandler
}

// profileHandler receives org.bluez.Profile1 callbacks.
type profileHandler struct {
	fd int
}

func (h *profileHandler) Release() *dbus.Error {
	log.Printf("HID: Profile released by BlueZ")
	return nil
}

func (h *profileHandler) Cancel() *dbus.Error {
	log.Printf("HID: Profile registration cancelled")
	return nil
}

func (h *profileHandler) NewConnection(device dbus.ObjectPath, fd dbus.UnixFD, properties map[string]dbus.Variant) *dbus.Error {
	h.fd = int(fd)
	log.Printf("HID: New connection from %s (fd %d)", device, h.fd)
	return nil
}

func (h *profileHandler) RequestDisconnection(device dbus.ObjectPath) *dbus.Error {
	log.Printf("HID: Disconnection requested for %s", device)
	if h.fd > 0 {
		syscall.Close(h.fd)
		h.fd = -1
	}
	return nil
}

// RegisterProfile exports the Profile1 handler and registers the HID
// profile with BlueZ. The returned Profile must be kept alive while the
// device should stay pairable.
func RegisterProfile() (*Profile, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("hid: connect system bus: %w", err)
	}

	handler := &profileHandler{fd: -1}
	if err := conn.Export(handler, dbus.ObjectPath(profilePath), "org.bluez.Profile1"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("hid: export profile handler: %w", err)
	}

	opts := map[string]dbus.Variant{
		"ServiceRecord":         dbus.MakeVariant(serviceRecord),
		"Role":                  dbus.MakeVariant("server"),
		"RequireAuthentication": dbus.MakeVariant(false),
		"RequireAuthorization":  dbus.MakeVariant(false),
	}

	mgr := conn.Object("org.bluez", dbus.ObjectPath("/org/bluez"))
	call := mgr.Call("org.bluez.ProfileManager1.RegisterProfile", 0,
		dbus.ObjectPath(profilePath), hidProfileUUID, opts)
	if call.Err != nil {
		conn.Close()
		return nil, fmt.Errorf("hid: register profile: %w", call.Err)
	}

	log.Printf("HID: Profile registered, waiting for host pairing")
	return &Profile{conn: conn, handler: handler}, nil
}

// Close unregisters the profile and releases the bus connection.
func (p *Profile) Close() error {
	mgr := p.conn.Object("org.bluez", dbus.ObjectPath("/org/bluez"))
	if call := mgr.Call("org.bluez.ProfileManager1.UnregisterProfile", 0, dbus.ObjectPath(profilePath)); call.Err != nil {
		log.Printf("HID: Unregister profile failed: %v", call.Err)
	}
	return p.conn.Close()
}
