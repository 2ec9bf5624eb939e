package handler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Galtar27/PSMoveService/apiclient"
	"github.com/Galtar27/PSMoveService/hid"
	"github.com/Galtar27/PSMoveService/internal/server/api"
	"github.com/Galtar27/PSMoveService/internal/server/api/handler"
	th "github.com/Galtar27/PSMoveService/internal/testing"
	"github.com/Galtar27/PSMoveService/internal/tracker"
)

func TestHmdList(t *testing.T) {
	tests := []struct {
		name             string
		setup            func(t *testing.T, m *tracker.Manager)
		expectedResponse string
	}{
		{
			name:             "empty list",
			setup:            nil,
			expectedResponse: `{"hmds":[]}`,
		},
		{
			name: "list with one session",
			setup: func(t *testing.T, m *tracker.Manager) {
				fake := &th.FakeSession{DeviceKind: hid.KindMorpheus}
				enum := th.RegisterFakeDriver(fake, "usb-1-4")
				m.Enumerate = func() ([]hid.Enumerator, error) {
					return []hid.Enumerator{enum}, nil
				}
				require.NoError(t, m.Rescan())
			},
			expectedResponse: `{"hmds":[{"hmdId":0,"kind":"morpheus","path":"usb-1-4","open":true}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, m, done := th.StartAPIServer(t, api.ServerConfig{}, func(r *api.Router, m *tracker.Manager) {
				r.Register("hmd/list", handler.HmdList(m))
			})
			defer done()

			if tt.setup != nil {
				tt.setup(t, m)
			}

			c := apiclient.NewTransport(addr)
			line, err := c.Do("hmd/list", nil, nil)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedResponse, line)
		})
	}
}
