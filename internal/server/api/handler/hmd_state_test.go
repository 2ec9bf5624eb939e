package handler_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Galtar27/PSMoveService/apiclient"
	"github.com/Galtar27/PSMoveService/apitypes"
	"github.com/Galtar27/PSMoveService/device"
	"github.com/Galtar27/PSMoveService/hid"
	"github.com/Galtar27/PSMoveService/internal/server/api"
	"github.com/Galtar27/PSMoveService/internal/server/api/handler"
	th "github.com/Galtar27/PSMoveService/internal/testing"
	"github.com/Galtar27/PSMoveService/internal/tracker"
)

func startStateServer(t *testing.T, states []th.FakeState) (string, func()) {
	t.Helper()

	fake := &th.FakeSession{
		DeviceKind: hid.KindMorpheus,
		PollRes:    device.PollSuccessNewData,
		States:     states,
	}
	enum := th.RegisterFakeDriver(fake, "usb-1-4")

	addr, m, done := th.StartAPIServer(t, api.ServerConfig{}, func(r *api.Router, m *tracker.Manager) {
		r.Register("hmd/{id}/state", handler.HmdState(m))
	})
	m.Enumerate = func() ([]hid.Enumerator, error) {
		return []hid.Enumerator{enum}, nil
	}
	require.NoError(t, m.Rescan())
	return addr, done
}

func TestHmdState(t *testing.T) {
	states := []th.FakeState{
		{Seq: 4, ImuFrames: []device.IMUSample{{RawAccel: [3]int32{1, 2, 3}}}},
		{Seq: 5, ImuFrames: []device.IMUSample{{RawGyro: [3]int32{7, 8, 9}}}},
	}
	addr, done := startStateServer(t, states)
	defer done()

	c := apiclient.New(addr)

	// Default lookback is the newest state.
	resp, err := c.HmdState(0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), resp.Sequence)
	require.Len(t, resp.Samples, 1)
	assert.Equal(t, [3]int32{7, 8, 9}, resp.Samples[0].RawGyro)

	// Lookback 1 walks one state back.
	resp, err = c.HmdState(0, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), resp.Sequence)
	assert.Equal(t, [3]int32{1, 2, 3}, resp.Samples[0].RawAccel)
}

func TestHmdStateErrors(t *testing.T) {
	addr, done := startStateServer(t, []th.FakeState{{Seq: 1}})
	defer done()

	tr := apiclient.NewTransport(addr)

	tests := []struct {
		name           string
		path           string
		payload        any
		expectedStatus int
	}{
		{name: "unknown id", path: "hmd/9/state", expectedStatus: 404},
		{name: "non-numeric id", path: "hmd/abc/state", expectedStatus: 400},
		{name: "lookback past history", path: "hmd/0/state", payload: "5", expectedStatus: 404},
		{name: "negative lookback", path: "hmd/0/state", payload: "-1", expectedStatus: 400},
		{name: "garbage lookback", path: "hmd/0/state", payload: "zzz", expectedStatus: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := tr.Do(tt.path, tt.payload, nil)
			require.NoError(t, err)

			var apiErr apitypes.ApiError
			require.NoError(t, json.Unmarshal([]byte(line), &apiErr))
			assert.Equal(t, tt.expectedStatus, apiErr.Status)
		})
	}
}
