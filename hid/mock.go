package hid

import (
	"errors"
	"sync"
)

// MockChannel is an in-memory Channel scripted with a queue of read results.
// Each queued entry is returned by exactly one Read call; an empty entry
// models a drained device queue and a nil payload with Err set models a
// device error. Once the script runs out, Read keeps reporting no data.
type MockChannel struct {
	NodePath string

	mu     sync.Mutex
	script []MockRead
	writes [][]byte
	closed bool
}

// MockRead is one scripted result of MockChannel.Read.
type MockRead struct {
	Payload []byte
	Err     error
}

// QueueReport appends a successful read of the given payload to the script.
func (m *MockChannel) QueueReport(payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, MockRead{Payload: payload})
}

// QueueEmpty appends a "no data" read to the script.
func (m *MockChannel) QueueEmpty() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, MockRead{})
}

// QueueError appends a failing read to the script.
func (m *MockChannel) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, MockRead{Err: err})
}

func (m *MockChannel) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, errors.New("hid: read on closed mock channel")
	}
	if len(m.script) == 0 {
		return 0, nil
	}
	next := m.script[0]
	m.script = m.script[1:]
	if next.Err != nil {
		return 0, next.Err
	}
	return copy(p, next.Payload), nil
}

func (m *MockChannel) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, append([]byte(nil), p...))
	return len(p), nil
}

// Writes returns a copy of everything written to the channel so far.
func (m *MockChannel) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.writes...)
}

func (m *MockChannel) Path() string { return m.NodePath }

func (m *MockChannel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockChannel) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockOpener maps device node paths to prepared channels. Paths without an
// entry fail to open, which makes partial-open scenarios easy to script.
type MockOpener struct {
	Channels map[string]*MockChannel
}

func (o *MockOpener) Open(path string) (Channel, error) {
	ch, ok := o.Channels[path]
	if ok && !ch.Closed() {
		return ch, nil
	}
	return nil, errors.New("hid: no such device: " + path)
}

// MockEnumerator is a scripted Enumerator for driver tests.
type MockEnumerator struct {
	Kind       DeviceKind
	DevicePath string
	Interfaces map[int]string
}

func (e *MockEnumerator) DeviceKind() DeviceKind { return e.Kind }
func (e *MockEnumerator) Path() string           { return e.DevicePath }
func (e *MockEnumerator) InterfacePath(iface int) string {
	return e.Interfaces[iface]
}
