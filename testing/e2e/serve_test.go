package e2e_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Galtar27/PSMoveService/apiclient"
	"github.com/Galtar27/PSMoveService/internal/cmd"
	"github.com/Galtar27/PSMoveService/internal/log"
	"github.com/Galtar27/PSMoveService/internal/server/api"
	"github.com/Galtar27/PSMoveService/internal/tracker"

	_ "github.com/Galtar27/PSMoveService/internal/registry" // Register all device drivers
)

const serveAddr = "localhost:39512"

// Boots the whole serve command and talks to it through the client, the same
// path a real deployment takes.
func TestServeEndToEnd(t *testing.T) {
	s := cmd.Serve{
		TrackerConfig: tracker.Config{
			PollInterval:   2 * time.Millisecond,
			RescanInterval: 50 * time.Millisecond,
			SettingsDir:    t.TempDir(),
		},
		ApiServerConfig: api.ServerConfig{
			Addr:     serveAddr,
			Password: "e2e-secret",
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.StartServer(ctx, logger, log.NewRaw(nil))
	}()

	c := apiclient.NewWithPassword(serveAddr, "e2e-secret")
	var pingErr error
	for i := 0; i < 50; i++ {
		if _, pingErr = c.Ping(); pingErr == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	require.NoError(t, pingErr, "server did not come up")

	resp, err := c.Ping()
	require.NoError(t, err)
	assert.Equal(t, "PSMoveService", resp.Server)

	// No real headsets on the test machine; the inventory is just empty.
	list, err := c.HmdList()
	require.NoError(t, err)
	assert.Empty(t, list.Hmds)

	_, err = c.HmdState(0, 0)
	require.Error(t, err)

	wrong := apiclient.NewWithPassword(serveAddr, "not-the-password")
	_, err = wrong.Ping()
	assert.Error(t, err)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
