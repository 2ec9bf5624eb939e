package handler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Galtar27/PSMoveService/apiclient"
	"github.com/Galtar27/PSMoveService/internal/server/api"
	"github.com/Galtar27/PSMoveService/internal/server/api/handler"
	th "github.com/Galtar27/PSMoveService/internal/testing"
	"github.com/Galtar27/PSMoveService/internal/tracker"
)

func TestPing(t *testing.T) {
	addr, _, done := th.StartAPIServer(t, api.ServerConfig{}, func(r *api.Router, m *tracker.Manager) {
		r.Register("ping", handler.Ping())
	})
	defer done()

	c := apiclient.NewTransport(addr)
	line, err := c.Do("ping", nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, `{"server":"PSMoveService","version":"0.0.1-dev"}`, line)
}
