package apiclient_test

import (
	"bufio"
	"net"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Galtar27/PSMoveService/apiclient"
	"github.com/Galtar27/PSMoveService/internal/server/api/auth"
)

// serveOnce listens for a single connection and hands it to handler.
func serveOnce(t *testing.T, handler func(conn net.Conn)) (addr string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}()
	return ln.Addr().String()
}

// readRequest consumes one null-terminated request line.
func readRequest(conn net.Conn) (string, error) {
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return bufio.NewReader(conn).ReadString('\x00')
}

func TestTransportRequestFraming(t *testing.T) {
	type lookback struct {
		Frames int `json:"frames"`
	}

	cases := []struct {
		name    string
		path    string
		payload any
		params  map[string]string
		want    string
	}{
		{
			name: "path only",
			path: "hmd/list",
			want: "hmd/list\x00",
		},
		{
			name:    "path parameter substituted",
			path:    "hmd/{id}/state",
			params:  map[string]string{"id": "0"},
			payload: "2",
			want:    "hmd/0/state 2\x00",
		},
		{
			name:    "empty string payload omitted",
			path:    "hmd/{id}/state",
			params:  map[string]string{"id": "1"},
			payload: "",
			want:    "hmd/1/state\x00",
		},
		{
			name:    "raw bytes pass through",
			path:    "hmd/0/settings",
			payload: []byte(`{"tracking_color":"blue"}`),
			want:    "hmd/0/settings {\"tracking_color\":\"blue\"}\x00",
		},
		{
			name:    "struct payload marshals to json",
			path:    "hmd/0/state",
			payload: lookback{Frames: 4},
			want:    "hmd/0/state {\"frames\":4}\x00",
		},
		{
			name:    "newlines survive inside payload",
			path:    "hmd/0/settings",
			payload: "{\n  \"volume\": 11\n}",
			want:    "hmd/0/settings {\n  \"volume\": 11\n}\x00",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := make(chan string, 1)
			addr := serveOnce(t, func(conn net.Conn) {
				req, err := readRequest(conn)
				if err != nil {
					return
				}
				got <- req
				_, _ = conn.Write([]byte("[]\n"))
			})

			out, err := apiclient.NewTransport(addr).Do(tc.path, tc.payload, tc.params)
			require.NoError(t, err)
			assert.Equal(t, "[]", out)
			assert.Equal(t, tc.want, <-got)
		})
	}
}

func TestTransportPathExpansion(t *testing.T) {
	devicePath := `USB\VID_054C&PID_09AF\7&1`
	got := make(chan string, 1)
	addr := serveOnce(t, func(conn net.Conn) {
		req, err := readRequest(conn)
		if err != nil {
			return
		}
		got <- req
		_, _ = conn.Write([]byte("{}\n"))
	})

	// Routing is case-insensitive server-side, so the transport lowercases
	// after escaping the parameters.
	_, err := apiclient.NewTransport(addr).Do("HMD/{path}/State", nil, map[string]string{"path": devicePath})
	require.NoError(t, err)
	want := strings.ToLower("hmd/"+url.PathEscape(devicePath)+"/state") + "\x00"
	assert.Equal(t, want, <-got)
}

func TestTransportMultiLineResponse(t *testing.T) {
	// Pretty-printed state document with a trailing newline; only the
	// trailing newline is trimmed.
	response := "{\n  \"frame\": 4660,\n  \"on_head\": true\n}\n"
	addr := serveOnce(t, func(conn net.Conn) {
		if _, err := readRequest(conn); err != nil {
			return
		}
		_, _ = conn.Write([]byte(response))
	})

	out, err := apiclient.NewTransport(addr).Do("hmd/0/state", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSuffix(response, "\n"), out)
}

func TestTransportDialFailure(t *testing.T) {
	// A listener that is already closed guarantees a refused connection.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = apiclient.NewTransport(addr).Do("hmd/list", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial:")
}

func TestAuthenticatedTransport(t *testing.T) {
	const password = "vr-lab"
	stateJSON := `{"frame":4660,"on_head":true}`

	// stateHandler authenticates the connection the way the server does and
	// answers one state request over the encrypted channel.
	stateHandler := func(conn net.Conn) {
		key, err := auth.DeriveKey(password)
		if err != nil {
			return
		}
		r := bufio.NewReader(conn)
		clientNonce, serverNonce, err := auth.HandleAuthHandshake(r, conn, key, false)
		if err != nil {
			// The real server hangs up on a failed handshake.
			return
		}
		secure, err := auth.WrapConn(conn, auth.DeriveSessionKey(key, serverNonce, clientNonce))
		if err != nil {
			return
		}
		req, err := bufio.NewReader(secure).ReadString('\x00')
		if err != nil || strings.TrimSuffix(req, "\x00") != "hmd/0/state 2" {
			return
		}
		_, _ = secure.Write([]byte(stateJSON + "\n"))
	}

	cases := []struct {
		name     string
		password string
		handler  func(conn net.Conn)
		wantErr  string
	}{
		{
			name:     "authenticated request",
			password: password,
			handler:  stateHandler,
		},
		{
			name:     "wrong password",
			password: "guessed-wrong",
			handler:  stateHandler,
			wantErr:  "invalid password",
		},
		{
			name:     "garbled handshake reply",
			password: password,
			handler: func(conn net.Conn) {
				if _, err := bufio.NewReader(conn).Discard(6); err != nil {
					return
				}
				_, _ = conn.Write([]byte("NO\x00" + strings.Repeat("x", auth.NonceSize)))
			},
			wantErr: "invalid handshake response",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			addr := serveOnce(t, tc.handler)
			out, err := apiclient.NewTransportWithPassword(addr, tc.password).
				Do("hmd/{id}/state", "2", map[string]string{"id": "0"})

			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, stateJSON, out)
		})
	}
}
