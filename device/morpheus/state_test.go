package morpheus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqState(seq uint32) State {
	return State{PollSequenceNumber: seq}
}

func TestHistoryPushEvictsOldest(t *testing.T) {
	var h History
	for seq := uint32(0); seq < 6; seq++ {
		h.Push(seqState(seq))
	}

	require.Equal(t, StateBufferMax, h.Len())

	newest, ok := h.At(0)
	require.True(t, ok)
	assert.Equal(t, uint32(5), newest.Sequence())

	oldest, ok := h.At(StateBufferMax - 1)
	require.True(t, ok)
	assert.Equal(t, uint32(2), oldest.Sequence())
}

func TestHistoryBurstLargerThanCapacity(t *testing.T) {
	var h History
	h.Push(seqState(0))
	h.Push(seqState(1), seqState(2), seqState(3), seqState(4), seqState(5), seqState(6))

	require.Equal(t, StateBufferMax, h.Len())
	for lookback := 0; lookback < StateBufferMax; lookback++ {
		s, ok := h.At(lookback)
		require.True(t, ok)
		assert.Equal(t, uint32(6-lookback), s.Sequence())
	}
}

func TestHistoryAtBounds(t *testing.T) {
	var h History

	_, ok := h.At(0)
	assert.False(t, ok)

	h.Push(seqState(7), seqState(8))

	s, ok := h.At(1)
	require.True(t, ok)
	assert.Equal(t, uint32(7), s.Sequence())

	_, ok = h.At(2)
	assert.False(t, ok)
	_, ok = h.At(-1)
	assert.False(t, ok)
}

func TestHistoryClear(t *testing.T) {
	var h History
	h.Push(seqState(1), seqState(2))
	h.Clear()

	assert.Equal(t, 0, h.Len())
	_, ok := h.At(0)
	assert.False(t, ok)
}

func TestStateSamplesOrder(t *testing.T) {
	var s State
	s.SensorFrames[0].RawAccel[0] = 1
	s.SensorFrames[1].RawAccel[0] = 2

	samples := s.Samples()
	require.Len(t, samples, 2)
	assert.Equal(t, int32(1), samples[0].RawAccel[0])
	assert.Equal(t, int32(2), samples[1].RawAccel[0])
}
