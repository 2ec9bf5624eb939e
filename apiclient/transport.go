package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/Galtar27/PSMoveService/internal/server/api/auth"
	apierror "github.com/Galtar27/PSMoveService/internal/server/api/error"
)

// Config controls transport behavior: connection timeouts and the optional
// API password.
type Config struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Password     string
}

func defaultConfig() Config {
	return Config{
		DialTimeout:  3 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Transport speaks the server's line protocol: one request per connection,
// `<path>[ SP <payload>]\x00` out, a single response line back, then the
// server closes. Only the null byte ends a request, so a payload may carry
// newlines (pretty-printed JSON and the like). With a password set, the
// whole exchange runs inside the authenticated encrypted channel.
type Transport struct {
	addr string
	cfg  Config

	// mock short-circuits Do for tests; no networking happens when set.
	mock func(path string, payload any, pathParams map[string]string) (string, error)
}

// NewTransport creates a transport with default timeouts and no auth.
func NewTransport(addr string) *Transport { return NewTransportWithConfig(addr, nil) }

// NewTransportWithPassword creates a transport that authenticates every
// request with the given password.
func NewTransportWithPassword(addr, password string) *Transport {
	cfg := defaultConfig()
	cfg.Password = password
	return NewTransportWithConfig(addr, &cfg)
}

// NewTransportWithConfig creates a transport with explicit configuration.
func NewTransportWithConfig(addr string, cfg *Config) *Transport {
	c := defaultConfig()
	if cfg != nil {
		c = *cfg
	}
	return &Transport{addr: addr, cfg: c}
}

// NewMockTransport creates a transport serving canned responses without any
// networking. The responder sees the unexpanded path pattern plus the raw
// payload and path params.
func NewMockTransport(responder func(path string, payload any, pathParams map[string]string) (string, error)) *Transport {
	return &Transport{addr: "mock", mock: responder, cfg: defaultConfig()}
}

// Do sends one request and returns the response line without its trailing
// newline. Payloads encode by type: []byte and string are sent verbatim,
// nil sends no payload, anything else is JSON-marshaled.
func (t *Transport) Do(path string, payload any, pathParams map[string]string) (string, error) {
	return t.DoCtx(context.Background(), path, payload, pathParams)
}

// DoCtx is Do honoring the context while dialing.
func (t *Transport) DoCtx(ctx context.Context, path string, payload any, pathParams map[string]string) (string, error) {
	if t.mock != nil {
		return t.mock(path, payload, pathParams)
	}

	req := []byte(expandPath(path, pathParams))
	if pb, ok := encodePayload(payload); ok && len(pb) > 0 {
		req = append(append(req, ' '), pb...)
	}
	req = append(req, '\x00')

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("dial: %w", err)
	}
	d := &net.Dialer{Timeout: t.cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return "", fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.SetNoDelay(true); err != nil {
			slog.Warn("failed to set TCP_NODELAY", "error", err)
		}
	}
	if t.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(t.cfg.WriteTimeout))
	}

	if t.cfg.Password != "" {
		if conn, err = t.secureConn(conn); err != nil {
			return "", err
		}
	}

	if _, err := conn.Write(req); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	if t.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(t.cfg.ReadTimeout))
	}

	// The server answers with exactly one line and closes, so read to EOF.
	// A response that arrived before a late error still counts.
	resp, err := io.ReadAll(conn)
	if err != nil && len(resp) == 0 {
		return "", fmt.Errorf("read: %w", err)
	}
	return strings.TrimSuffix(string(resp), "\n"), nil
}

// secureConn runs the client half of the auth handshake and wraps the
// connection in the encrypted session channel.
func (t *Transport) secureConn(conn net.Conn) (net.Conn, error) {
	key, err := auth.DeriveKey(t.cfg.Password)
	if err != nil {
		return nil, err
	}
	r := bufio.NewReader(conn)
	clientNonce, serverNonce, err := auth.HandleAuthHandshake(r, conn, key, true)
	if err != nil {
		// A server that hangs up mid-handshake rejected our MAC.
		if strings.Contains(err.Error(), "read handshake response: EOF") {
			return nil, apierror.ErrUnauthorized("invalid password")
		}
		return nil, err
	}
	secure, err := auth.WrapConn(conn, auth.DeriveSessionKey(key, serverNonce, clientNonce))
	if err != nil {
		conn.Close()
		return nil, err
	}
	return secure, nil
}

// expandPath substitutes {name} placeholders and lowercases the result to
// match the server's case-insensitive routing.
func expandPath(pattern string, params map[string]string) string {
	if len(params) == 0 {
		return strings.ToLower(pattern)
	}
	out := pattern
	for name, value := range params {
		out = strings.ReplaceAll(out, "{"+name+"}", url.PathEscape(value))
	}
	return strings.ToLower(out)
}

func encodePayload(v any) ([]byte, bool) {
	switch p := v.(type) {
	case nil:
		return nil, true
	case []byte:
		return p, true
	case string:
		return []byte(p), true
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		return b, true
	}
}
