// Package testing holds shared helpers for API handler and client tests.
package testing

import (
	"io"
	"log/slog"
	"testing"

	"github.com/Galtar27/PSMoveService/hid"
	"github.com/Galtar27/PSMoveService/internal/server/api"
	"github.com/Galtar27/PSMoveService/internal/tracker"
)

// StartAPIServer starts an API server on an ephemeral port with a fresh
// tracker manager that never touches real hardware. The register callback
// wires the routes under test. Returns the bound address, the manager, and a
// cleanup function.
func StartAPIServer(t *testing.T, cfg api.ServerConfig, register func(r *api.Router, m *tracker.Manager)) (string, *tracker.Manager, func()) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	m := tracker.New(tracker.Config{}, logger, nil)
	m.Enumerate = func() ([]hid.Enumerator, error) { return nil, nil }

	if cfg.Addr == "" {
		cfg.Addr = "localhost:0"
	}
	srv, err := api.New(m, cfg, logger)
	if err != nil {
		t.Fatalf("create API server: %v", err)
	}
	if register != nil {
		register(srv.Router(), m)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("start API server: %v", err)
	}
	return srv.Addr(), m, srv.Close
}
