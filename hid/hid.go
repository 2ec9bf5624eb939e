// Package hid provides the transport contracts the device drivers are built
// against: a non-blocking per-interface channel, an opener that produces
// channels from device node paths, and the enumerator handed to a driver when
// a candidate device shows up on the bus.
package hid

import "errors"

// ErrUnsupported is returned by platform constructors on systems without a
// raw HID transport implementation.
var ErrUnsupported = errors.New("hid: raw device access not supported on this platform")

// Channel is one independently opened HID interface endpoint.
//
// Read is non-blocking: it returns (0, nil) when the device has no report
// queued, the report length when one was dequeued, and an error when the
// device left a valid state. Implementations never suspend the caller.
type Channel interface {
	// Read dequeues at most one report into p.
	Read(p []byte) (int, error)
	// Write sends one output/command report.
	Write(p []byte) (int, error)
	// Path returns the device node path the channel was opened from.
	Path() string
	Close() error
}

// Opener opens a device node path as a non-blocking Channel.
type Opener interface {
	Open(path string) (Channel, error)
}

// DeviceKind identifies the peripheral class behind an enumerated device.
type DeviceKind int

const (
	KindUnknown DeviceKind = iota
	// KindMorpheus is the PlayStation VR headset.
	KindMorpheus
	// KindPSMove is the PlayStation Move motion controller.
	KindPSMove
)

func (k DeviceKind) String() string {
	switch k {
	case KindMorpheus:
		return "morpheus"
	case KindPSMove:
		return "psmove"
	default:
		return "unknown"
	}
}

// Enumerator describes one candidate device discovered on the HID bus.
// Drivers borrow it during matching and opening only; it is never retained.
type Enumerator interface {
	// DeviceKind returns the peripheral class of the candidate.
	DeviceKind() DeviceKind
	// Path returns the identity path of the candidate device as a whole.
	Path() string
	// InterfacePath resolves the device node path of one USB interface of
	// the candidate. Returns "" when the interface is not exposed.
	InterfacePath(iface int) string
}
