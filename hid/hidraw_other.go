//go:build !linux

package hid

type unsupportedOpener struct{}

func (unsupportedOpener) Open(string) (Channel, error) { return nil, ErrUnsupported }

// DefaultOpener returns the platform channel opener.
func DefaultOpener() Opener { return unsupportedOpener{} }

// Enumerate returns no candidates on platforms without raw HID access.
func Enumerate() ([]Enumerator, error) { return nil, nil }
