package morpheus

import "github.com/Galtar27/PSMoveService/device"

// State is one decoded sensor report tagged with the poll sequence number it
// arrived under.
type State struct {
	PollSequenceNumber uint32
	Report
}

// Sequence implements device.State.
func (s State) Sequence() uint32 { return s.PollSequenceNumber }

// Samples implements device.State, returning the two inertial sub-frames
// oldest first.
func (s State) Samples() []device.IMUSample {
	return []device.IMUSample{s.SensorFrames[0], s.SensorFrames[1]}
}

// History is the bounded buffer of recent states, newest last. Capacity is
// StateBufferMax; pushes past capacity evict the oldest entries.
type History struct {
	states []State
}

// Push appends a burst of states in arrival order. When the burst alone
// exceeds capacity only its newest StateBufferMax entries survive.
func (h *History) Push(states ...State) {
	if len(states) == 0 {
		return
	}
	if len(states) >= StateBufferMax {
		h.states = append(h.states[:0], states[len(states)-StateBufferMax:]...)
		return
	}
	if excess := len(h.states) + len(states) - StateBufferMax; excess > 0 {
		h.states = h.states[:copy(h.states, h.states[excess:])]
	}
	h.states = append(h.states, states...)
}

// At returns the state lookback entries behind the newest. Lookback 0 is the
// newest state; a lookback at or past the current size reports absence.
func (h *History) At(lookback int) (State, bool) {
	if lookback < 0 || lookback >= len(h.states) {
		return State{}, false
	}
	return h.states[len(h.states)-1-lookback], true
}

// Len returns the number of buffered states.
func (h *History) Len() int { return len(h.states) }

// Clear drops all buffered states.
func (h *History) Clear() { h.states = h.states[:0] }
