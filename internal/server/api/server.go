package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"regexp"
	"strings"

	"github.com/Galtar27/PSMoveService/internal/server/api/auth"
	"github.com/Galtar27/PSMoveService/internal/tracker"
)

// Server implements a small TCP API exposing the tracked device sessions.
type Server struct {
	tracker *tracker.Manager
	addr    string
	ln      net.Listener
	logger  *slog.Logger
	router  *Router
	config  ServerConfig

	authKey []byte
}

// New creates a new API server bound to a tracker.Manager instance.
func New(m *tracker.Manager, config ServerConfig, logger *slog.Logger) (*Server, error) {
	a := &Server{
		tracker: m,
		addr:    config.Addr,
		logger:  logger,
		config:  config,
	}
	if config.Password != "" {
		key, err := auth.DeriveKey(config.Password)
		if err != nil {
			return nil, err
		}
		a.authKey = key
	}
	a.router = NewRouter()
	return a, nil
}

// Router returns the router used by the API server so callers can register handlers.
func (a *Server) Router() *Router { return a.router }

// Tracker returns the underlying device manager.
func (a *Server) Tracker() *tracker.Manager { return a.tracker }

// Config returns the server configuration.
func (a *Server) Config() ServerConfig { return a.config }

// Start listens on the configured address and serves incoming API commands.
func (a *Server) Start() error {
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}
	a.ln = ln
	a.logger.Info("API listening", "addr", a.addr)
	go a.serve()
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (a *Server) Addr() string {
	if a.ln == nil {
		return ""
	}
	return a.ln.Addr().String()
}

// Close stops the API server.
func (a *Server) Close() {
	if a.ln != nil {
		_ = a.ln.Close()
	}
}

func (a *Server) serve() {
	for {
		c, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || strings.Contains(strings.ToLower(err.Error()), "use of closed network connection") {
				a.logger.Info("API server stopped")
				return
			}
			a.logger.Info("API accept error", "error", err)
			return
		}
		go a.handleConn(c)
	}
}

func (a *Server) writeError(w io.Writer, err error) {
	apiErr := WrapError(err)
	problemJSON, _ := json.Marshal(apiErr)
	fmt.Fprintf(w, "%s\n", string(problemJSON))
}

func (a *Server) writeOK(w io.Writer, rest string) {
	if rest == "" {
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "%s\n", rest)
	}
}

// authenticate runs the server side of the handshake when a password is
// configured and returns the connection to speak the protocol on. Without a
// password the plain connection passes through untouched.
func (a *Server) authenticate(r *bufio.Reader, conn net.Conn, logger *slog.Logger) (*bufio.Reader, net.Conn, error) {
	if a.authKey == nil {
		return r, conn, nil
	}

	isHandshake, err := auth.IsAuthHandshake(r)
	if err != nil || !isHandshake {
		return nil, nil, ErrUnauthorized("authentication required")
	}
	clientNonce, serverNonce, err := auth.HandleAuthHandshake(r, conn, a.authKey, false)
	if err != nil {
		logger.Warn("auth handshake failed", "error", err)
		return nil, nil, err
	}
	sessionKey := auth.DeriveSessionKey(a.authKey, serverNonce, clientNonce)
	secure, err := auth.WrapConn(conn, sessionKey)
	if err != nil {
		return nil, nil, err
	}
	return bufio.NewReader(secure), secure, nil
}

func (a *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	connCtx, connCancel := context.WithCancel(context.Background())
	defer connCancel()

	connLogger := a.logger.With("remote", conn.RemoteAddr().String())
	r := bufio.NewReader(conn)

	br, w, err := a.authenticate(r, conn, connLogger)
	if err != nil {
		a.writeError(conn, err)
		return
	}

	// Read until null terminator
	reqData, err := br.ReadString('\x00')
	if err != nil {
		if err == io.EOF {
			connLogger.Error("api incomplete request (no null terminator)")
		} else {
			connLogger.Error("read api data", "error", err)
		}
		return
	}
	// Remove null terminator
	reqData = strings.TrimSuffix(reqData, "\x00")

	if reqData == "" {
		connLogger.Error("api empty command")
		a.writeError(w, ErrBadRequest("empty request"))
		return
	}

	// Split on first whitespace character using regex \s
	wsRegex := regexp.MustCompile(`\s`)
	loc := wsRegex.FindStringIndex(reqData)

	var path, payload string
	if loc != nil {
		path = reqData[:loc[0]]
		payload = reqData[loc[1]:]
	} else {
		path = reqData
		payload = ""
	}

	if path == "" {
		connLogger.Error("api empty path")
		a.writeError(w, ErrBadRequest("empty path"))
		return
	}

	path = strings.ToLower(path)
	connLogger.Info("api cmd", "path", path)

	h, params := a.router.Match(path)
	if h == nil {
		connLogger.Error("api unknown path", "path", path)
		a.writeError(w, ErrNotFound(fmt.Sprintf("unknown path: %s", path)))
		return
	}

	req := &Request{Ctx: connCtx, Params: params, Payload: payload}
	res := &Response{}
	if err := h(req, res, connLogger); err != nil {
		connLogger.Error("api handler error", "path", path, "error", err)
		a.writeError(w, err)
		return
	}
	connLogger.Debug("api handler success", "path", path)
	a.writeOK(w, res.JSON)
}
