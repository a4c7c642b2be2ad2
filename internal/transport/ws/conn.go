// Package ws provides the WebSocket transport: each line travels as one text
// frame, without the trailing newline.
package ws

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

const closeFrameTimeout = time.Second

// Conn adapts a WebSocket connection (gobwas/ws) to transport.Conn.
type Conn struct {
	conn  net.Conn
	rw    io.ReadWriter
	state ws.State

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// NewClientConn wraps the client side of an upgraded connection.
func NewClientConn(conn net.Conn) *Conn {
	return &Conn{conn: conn, rw: conn, state: ws.StateClientSide}
}

// NewServerConn wraps the server side of an upgraded connection. rw is the
// stream the upgrade was read from; it may buffer bytes beyond the handshake.
func NewServerConn(conn net.Conn, rw io.ReadWriter) *Conn {
	return &Conn{conn: conn, rw: rw, state: ws.StateServerSide}
}

// Dial performs the WebSocket handshake against url (ws://host:port/path).
func Dial(ctx context.Context, url string) (*Conn, error) {
	conn, br, _, err := ws.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	c := NewClientConn(conn)
	if br != nil {
		// The server sent frames right after the handshake; keep reading
		// through the handshake buffer.
		c.rw = struct {
			io.Reader
			io.Writer
		}{br, conn}
	}
	return c, nil
}

// Upgrade performs the server side of the handshake on conn, reading the HTTP
// request from reader. Only requests for path are accepted.
func Upgrade(conn net.Conn, reader *bufio.Reader, path string) (*Conn, error) {
	rw := struct {
		io.Reader
		io.Writer
	}{reader, conn}

	u := ws.Upgrader{
		OnRequest: func(uri []byte) error {
			if path != "" && string(uri) != path {
				return ws.RejectConnectionError(ws.RejectionStatus(404))
			}
			return nil
		},
	}
	if _, err := u.Upgrade(rw); err != nil {
		return nil, err
	}
	return NewServerConn(conn, rw), nil
}

// ReadLine implements transport.Conn.
// Control frames are handled transparently; a close frame ends the stream
// with io.EOF. Replies to pings share the write lock with WriteLine.
func (c *Conn) ReadLine() (string, error) {
	rd := wsutil.Reader{
		Source:         c.rw,
		State:          c.state,
		CheckUTF8:      true,
		OnIntermediate: c.handleControl,
	}
	for {
		hdr, err := rd.NextFrame()
		if err != nil {
			return "", c.readError(err)
		}
		if hdr.OpCode.IsControl() {
			if err := c.handleControl(hdr, &rd); err != nil {
				return "", c.readError(err)
			}
			continue
		}
		if hdr.OpCode&(ws.OpText|ws.OpBinary) == 0 {
			if err := rd.Discard(); err != nil {
				return "", c.readError(err)
			}
			continue
		}

		data, err := io.ReadAll(&rd)
		if err != nil {
			return "", c.readError(err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
}

// handleControl answers a control frame. The payload is read before the
// write lock is taken so a slow peer cannot stall WriteLine.
func (c *Conn) handleControl(h ws.Header, r io.Reader) error {
	payload := make([]byte, h.Length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wsutil.ControlFrameHandler(c.conn, c.state)(h, bytes.NewReader(payload))
}

func (c *Conn) readError(err error) error {
	var closed wsutil.ClosedError
	if errors.As(err, &closed) {
		return io.EOF
	}
	return err
}

// WriteLine implements transport.Conn.
func (c *Conn) WriteLine(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wsutil.WriteMessage(c.conn, c.state, ws.OpText, []byte(line))
}

// Close implements transport.Conn.
// A close frame is sent before the socket is closed, unless a write is in
// progress; Close never waits behind a stalled writer.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.writeMu.TryLock() {
			_ = c.conn.SetWriteDeadline(time.Now().Add(closeFrameTimeout))
			_ = wsutil.WriteMessage(c.conn, c.state, ws.OpClose, nil)
			c.writeMu.Unlock()
		}
		err = c.conn.Close()
	})
	return err
}

// RemoteAddr implements transport.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
