// Package server accepts chat connections on a single port. Each connection
// is sniffed: an HTTP GET is upgraded to a WebSocket, anything else is served
// as raw newline-delimited TCP. Both kinds share one chat.Hub.
package server

import (
	"bufio"
	"net"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/omochice/line-chat/internal/chat"
	"github.com/omochice/line-chat/internal/logger"
	"github.com/omochice/line-chat/internal/metrics"
	"github.com/omochice/line-chat/internal/transport"
	"github.com/omochice/line-chat/internal/transport/tcp"
	"github.com/omochice/line-chat/internal/transport/ws"
)

// ErrServerClosed is returned by Serve after Stop.
var ErrServerClosed = errors.New("server closed")

// Server is the reference chat server.
type Server struct {
	address string
	hub     *chat.Hub
	opts    options

	listener net.Listener
	closed   atomic.Bool
	wg       sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// New creates a server for address that delegates chat logic to hub.
func New(address string, hub *chat.Hub, opt ...Option) *Server {
	var opts options
	for _, o := range opt {
		o(&opts)
	}
	checkOptions(&opts)

	return &Server{
		address: address,
		hub:     hub,
		opts:    opts,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Listen binds the listening socket. It is split from Serve so callers can
// learn the bound address before serving. After Stop it returns
// ErrServerClosed.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.address)
	}

	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		listener.Close()
		return ErrServerClosed
	}
	s.listener = listener
	s.mu.Unlock()

	s.opts.logger.Info("server listening", "addr", listener.Addr().String(), "ws_path", s.opts.wsPath)
	return nil
}

// Serve accepts connections until Stop is called, then returns
// ErrServerClosed.
func (s *Server) Serve() error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		if s.closed.Load() {
			return ErrServerClosed
		}
		return errors.New("server is not listening")
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return ErrServerClosed
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.opts.logger.Warn("temporary accept error", "error", err)
				continue
			}
			return errors.Wrap(err, "accept failed")
		}

		if !s.track(conn) {
			conn.Close()
			return ErrServerClosed
		}
		go s.handleConnection(conn)
	}
}

// Start listens and serves. It blocks until Stop.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Stop closes the listener and every open connection, then waits for their
// handlers to finish. It is safe to call more than once.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return
	}
	s.closed.Store(true)
	if s.listener != nil {
		s.listener.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.opts.logger.Info("server stopped")
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// ClientCount returns the number of open client connections, counted from
// accept, before the client has sent anything.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// track records conn for Stop and adds it to the wait group. It fails once
// Stop has begun.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// handleConnection determines whether the connection is a WebSocket upgrade
// or a raw TCP client, then serves it.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)
	defer conn.Close()

	log := s.opts.logger.With("remote_addr", conn.RemoteAddr().String())

	reader := bufio.NewReader(conn)
	proto, err := detectProtocol(reader)
	if err != nil {
		log.Debug("connection closed before first byte", "error", err)
		return
	}

	var tc transport.Conn
	switch proto {
	case protocolHTTP:
		wc, err := ws.Upgrade(conn, reader, s.opts.wsPath)
		if err != nil {
			log.Warn("websocket upgrade failed", "error", err)
			return
		}
		tc = wc
	default:
		tc = tcp.NewConnWithReader(conn, reader)
	}

	log.Info("client connected", "protocol", proto.String())
	s.serveClient(tc, log)
}

func (s *Server) serveClient(conn transport.Conn, log logger.Logger) {
	client := chat.NewClient(conn)
	log = log.With("client_id", client.ID)

	s.hub.Register(client)
	metrics.ServerActiveConnections.Inc()
	defer metrics.ServerActiveConnections.Dec()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(client, log)
	}()

	s.hub.Serve(client)

	s.hub.Unregister(client)
	close(client.Outgoing)
	<-writerDone
	conn.Close()
	log.Info("client disconnected")
}

// writeLoop drains client.Outgoing. On a write error it closes the
// connection so the read side stops too, then keeps draining.
func (s *Server) writeLoop(client *chat.Client, log logger.Logger) {
	failed := false
	for line := range client.Outgoing {
		if failed {
			continue
		}
		if err := client.Conn.WriteLine(line); err != nil {
			log.Warn("failed to write to client", "error", err)
			client.Conn.Close()
			failed = true
		}
	}
}
