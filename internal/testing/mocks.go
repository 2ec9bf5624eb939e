package testing

import (
	"strings"

	"github.com/Galtar27/PSMoveService/device"
	"github.com/Galtar27/PSMoveService/hid"
)

// FakeState is a canned device.State for API tests.
type FakeState struct {
	Seq       uint32
	ImuFrames []device.IMUSample
}

func (s FakeState) Sequence() uint32            { return s.Seq }
func (s FakeState) Samples() []device.IMUSample { return s.ImuFrames }

// FakeSession is a scriptable device.Tracked. It records lifecycle calls and
// serves canned states, newest last.
type FakeSession struct {
	DeviceKind hid.DeviceKind
	Path       string
	Opened     bool
	PollRes    device.PollResult
	MaxFail    int
	States     []FakeState
	Shape      device.TrackingShape
	Color      device.TrackingColor
}

func (f *FakeSession) Kind() hid.DeviceKind { return f.DeviceKind }
func (f *FakeSession) Identifier() string   { return f.Path }

func (f *FakeSession) Matches(enum hid.Enumerator) bool {
	if enum.DeviceKind() != f.DeviceKind {
		return false
	}
	return f.Path == "" || strings.EqualFold(f.Path, enum.Path())
}

func (f *FakeSession) Open(enum hid.Enumerator) error {
	f.Opened = true
	f.Path = enum.Path()
	return nil
}

func (f *FakeSession) Close()                  { f.Opened = false }
func (f *FakeSession) IsOpen() bool            { return f.Opened }
func (f *FakeSession) Poll() device.PollResult { return f.PollRes }

func (f *FakeSession) State(lookback int) (device.State, bool) {
	if lookback < 0 || lookback >= len(f.States) {
		return nil, false
	}
	return f.States[len(f.States)-1-lookback], true
}

func (f *FakeSession) MaxPollFailureCount() int            { return f.MaxFail }
func (f *FakeSession) TrackingShape() device.TrackingShape { return f.Shape }
func (f *FakeSession) TrackingColor() device.TrackingColor { return f.Color }

// RegisterFakeDriver installs a factory returning the given session for a
// kind and returns an enumerator matching it.
func RegisterFakeDriver(f *FakeSession, path string) *hid.MockEnumerator {
	device.Register(f.DeviceKind, func(device.Options) (device.Tracked, error) {
		return f, nil
	})
	return &hid.MockEnumerator{Kind: f.DeviceKind, DevicePath: path}
}
