package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apitypes "github.com/Galtar27/PSMoveService/apitypes"
)

// Client provides a high-level interface to the PSMoveService API, handling
// request formatting, response parsing, and error handling.
type Client struct{ transport *Transport }

// New constructs a high-level API client using the internal low-level Transport.
// The addr parameter specifies the TCP address (host:port) of the API server.
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithPassword constructs a client that authenticates with the given password.
func NewWithPassword(addr, password string) *Client {
	return &Client{transport: NewTransportWithPassword(addr, password)}
}

// NewWithConfig constructs a client with custom transport timeouts.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport constructs a Client using a custom Transport implementation.
// This is primarily useful for testing or when advanced transport configuration is needed.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

// Ping returns the version and identity of the server.
func (c *Client) Ping() (*apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

// PingCtx is the context-aware version of Ping.
func (c *Client) PingCtx(ctx context.Context) (*apitypes.PingResponse, error) {
	const path = "ping"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.PingResponse](raw)
}

// HmdList retrieves the managed device sessions. Each entry includes the
// manager-assigned ID, device kind, identity path and open state.
func (c *Client) HmdList() (*apitypes.HmdListResponse, error) {
	return c.HmdListCtx(context.Background())
}

func (c *Client) HmdListCtx(ctx context.Context) (*apitypes.HmdListResponse, error) {
	const path = "hmd/list"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.HmdListResponse](raw)
}

// HmdState retrieves one entry of a session's decoded state history.
// Lookback 0 is the newest state; larger values walk backwards in time.
func (c *Client) HmdState(hmdID, lookback int) (*apitypes.HmdStateResponse, error) {
	return c.HmdStateCtx(context.Background(), hmdID, lookback)
}

func (c *Client) HmdStateCtx(ctx context.Context, hmdID, lookback int) (*apitypes.HmdStateResponse, error) {
	pathParams := map[string]string{"id": fmt.Sprintf("%d", hmdID)}
	const path = "hmd/{id}/state"
	var payload any
	if lookback > 0 {
		payload = fmt.Sprintf("%d", lookback)
	}
	raw, err := c.transport.DoCtx(ctx, path, payload, pathParams)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.HmdStateResponse](raw)
}

// HmdTracking retrieves the optical tracking descriptors of a session: its
// trackable geometry and the LED color assigned to it.
func (c *Client) HmdTracking(hmdID int) (*apitypes.HmdTrackingResponse, error) {
	return c.HmdTrackingCtx(context.Background(), hmdID)
}

func (c *Client) HmdTrackingCtx(ctx context.Context, hmdID int) (*apitypes.HmdTrackingResponse, error) {
	pathParams := map[string]string{"id": fmt.Sprintf("%d", hmdID)}
	const path = "hmd/{id}/tracking"
	raw, err := c.transport.DoCtx(ctx, path, nil, pathParams)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.HmdTrackingResponse](raw)
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem apitypes.ApiError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}
	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
