package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omochice/line-chat/internal/logger"
	"github.com/omochice/line-chat/internal/metrics"
	"github.com/omochice/line-chat/internal/transport"
	"github.com/omochice/line-chat/internal/transport/tcp"
	"github.com/omochice/line-chat/internal/transport/ws"
)

// ErrAlreadyConnected is recorded when Connect is called on an active
// connection.
var ErrAlreadyConnected = errors.New("already connected")

// Dialer opens a transport connection to host:port.
type Dialer func(ctx context.Context, host string, port int) (transport.Conn, error)

// TCPDialer returns a Dialer for plain newline-framed TCP. A zero timeout
// leaves the dial bounded only by ctx and the operating system.
func TCPDialer(timeout time.Duration) Dialer {
	return func(ctx context.Context, host string, port int) (transport.Conn, error) {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return tcp.Dial(ctx, net.JoinHostPort(host, strconv.Itoa(port)))
	}
}

// WebSocketDialer returns a Dialer that carries the same lines over a
// WebSocket at ws://host:port<path>.
func WebSocketDialer(path string, timeout time.Duration) Dialer {
	return func(ctx context.Context, host string, port int) (transport.Conn, error) {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return ws.Dial(ctx, "ws://"+net.JoinHostPort(host, strconv.Itoa(port))+path)
	}
}

// session is one physical connection. It is never reused after teardown.
type session struct {
	conn      transport.Conn
	done      chan struct{}
	listening atomic.Bool
}

// Connection owns the transport and the active flag.
//
// Connect and Disconnect are serialized by mu. IsActive, WriteLine and
// ReadLine read the state without taking mu; a write racing a teardown just
// fails.
type Connection struct {
	dial         Dialer
	logger       logger.Logger
	onDisconnect func()

	mu      sync.Mutex
	active  atomic.Bool
	current atomic.Pointer[session]

	errMu   sync.Mutex
	lastErr string
}

// NewConnection creates an inactive Connection. onDisconnect runs once per
// physical connection, on the goroutine that tore it down.
func NewConnection(dial Dialer, log logger.Logger, onDisconnect func()) *Connection {
	if dial == nil {
		dial = TCPDialer(0)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Connection{
		dial:         dial,
		logger:       log,
		onDisconnect: onDisconnect,
	}
}

// Connect opens a connection to host:port. On failure it returns false and
// records the reason for LastError.
func (c *Connection) Connect(ctx context.Context, host string, port int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active.Load() {
		c.setLastError(ErrAlreadyConnected.Error())
		c.logger.Warn("connect called on active connection", "host", host, "port", port)
		return false
	}

	conn, err := c.dial(ctx, host, port)
	if err != nil {
		c.setLastError(err.Error())
		metrics.ClientConnectFailures.Inc()
		c.logger.Warn("failed to connect", "host", host, "port", port, "error", err)
		return false
	}

	c.current.Store(&session{conn: conn, done: make(chan struct{})})
	c.active.Store(true)
	c.logger.Info("connected to server", "addr", conn.RemoteAddr())
	return true
}

// IsActive reports whether the connection is open.
func (c *Connection) IsActive() bool {
	return c.active.Load()
}

// WriteLine sends one line. It returns false without touching the socket if
// the connection is inactive, and false on a write error. A failed write does
// not tear the connection down; the listener loop discovers broken
// connections.
func (c *Connection) WriteLine(line string) bool {
	s := c.current.Load()
	if !c.active.Load() || s == nil {
		c.logger.Warn("cannot send, connection is not active")
		return false
	}

	if err := s.conn.WriteLine(line); err != nil {
		c.setLastError(err.Error())
		c.logger.Warn("failed to send line", "error", err)
		return false
	}

	metrics.ClientLinesSent.Inc()
	c.logger.Debug("line sent", "line", line)
	return true
}

// ReadLine blocks for the next line. ok is false when the connection is
// inactive or the stream ended; a read error or end of stream tears the
// connection down before ReadLine returns.
func (c *Connection) ReadLine() (line string, ok bool) {
	s := c.current.Load()
	if !c.active.Load() || s == nil {
		return "", false
	}
	return c.readFrom(s)
}

func (c *Connection) readFrom(s *session) (string, bool) {
	line, err := s.conn.ReadLine()
	if err != nil {
		if c.isCurrent(s) {
			c.logger.Info("read failed, closing connection", "error", err)
			c.setLastError(err.Error())
		}
		c.teardown(s)
		return "", false
	}

	metrics.ClientLinesReceived.Inc()
	c.logger.Debug("line received", "line", line)
	return line, true
}

// Disconnect closes the connection if it is active. Concurrent and repeated
// calls are safe; exactly one of them closes the socket and fires the
// disconnect notification.
func (c *Connection) Disconnect() {
	c.teardown(c.current.Load())
}

// teardown closes s if it is still the active session.
func (c *Connection) teardown(s *session) {
	c.mu.Lock()
	if s == nil || !c.active.Load() || c.current.Load() != s {
		c.mu.Unlock()
		return
	}
	c.active.Store(false)
	err := s.conn.Close()
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug("error closing connection", "error", err)
	}
	metrics.ClientDisconnects.Inc()
	c.logger.Info("connection closed")

	if c.onDisconnect != nil {
		c.onDisconnect()
	}
}

// isCurrent reports whether s is the active session.
func (c *Connection) isCurrent(s *session) bool {
	return c.active.Load() && c.current.Load() == s
}

// LastError returns the most recent failure description, or "" if there has
// been none.
func (c *Connection) LastError() string {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.lastErr
}

func (c *Connection) setLastError(msg string) {
	c.errMu.Lock()
	c.lastErr = msg
	c.errMu.Unlock()
}

func (c *Connection) String() string {
	s := c.current.Load()
	if !c.active.Load() || s == nil {
		return "connection(inactive)"
	}
	return fmt.Sprintf("connection(%s)", s.conn.RemoteAddr())
}
