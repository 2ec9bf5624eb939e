package handler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Galtar27/PSMoveService/apiclient"
	"github.com/Galtar27/PSMoveService/device"
	"github.com/Galtar27/PSMoveService/hid"
	"github.com/Galtar27/PSMoveService/internal/server/api"
	"github.com/Galtar27/PSMoveService/internal/server/api/handler"
	th "github.com/Galtar27/PSMoveService/internal/testing"
	"github.com/Galtar27/PSMoveService/internal/tracker"
)

func TestHmdTracking(t *testing.T) {
	fake := &th.FakeSession{
		DeviceKind: hid.KindMorpheus,
		Shape: device.TrackingShape{
			Type:   device.ShapePointCloud,
			Points: [][3]float64{{0, 0, 0}, {1, 0, 0}},
		},
		Color: device.ColorBlue,
	}
	enum := th.RegisterFakeDriver(fake, "usb-1-4")

	addr, m, done := th.StartAPIServer(t, api.ServerConfig{}, func(r *api.Router, m *tracker.Manager) {
		r.Register("hmd/{id}/tracking", handler.HmdTracking(m))
	})
	defer done()
	m.Enumerate = func() ([]hid.Enumerator, error) {
		return []hid.Enumerator{enum}, nil
	}
	require.NoError(t, m.Rescan())

	c := apiclient.New(addr)

	resp, err := c.HmdTracking(0)
	require.NoError(t, err)
	assert.Equal(t, "pointcloud", resp.ShapeType)
	assert.Len(t, resp.Points, 2)
	assert.Equal(t, "blue", resp.Color)
	assert.Zero(t, resp.SphereRadius)

	_, err = c.HmdTracking(3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
