package device

import (
	"fmt"
	"sync"

	"github.com/Galtar27/PSMoveService/hid"
)

// Factory constructs a fresh, closed session for one device kind.
type Factory func(o Options) (Tracked, error)

var (
	kindRegistry   = make(map[hid.DeviceKind]Factory)
	kindRegistryMu sync.RWMutex
)

// Register registers the driver factory for a device kind. It should be
// called from driver package init() functions; the last registration for a
// kind wins.
func Register(kind hid.DeviceKind, f Factory) {
	kindRegistryMu.Lock()
	defer kindRegistryMu.Unlock()
	kindRegistry[kind] = f
}

// NewForKind constructs a session for the given kind, or errors when no
// driver registered for it.
func NewForKind(kind hid.DeviceKind, o Options) (Tracked, error) {
	kindRegistryMu.RLock()
	f := kindRegistry[kind]
	kindRegistryMu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("device: no driver registered for kind %s", kind)
	}
	return f(o)
}

// RegisteredKinds returns the kinds a driver has registered for.
func RegisteredKinds() []hid.DeviceKind {
	kindRegistryMu.RLock()
	defer kindRegistryMu.RUnlock()
	kinds := make([]hid.DeviceKind, 0, len(kindRegistry))
	for k := range kindRegistry {
		kinds = append(kinds, k)
	}
	return kinds
}
