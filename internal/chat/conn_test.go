package chat_test

import (
	"io"
	"sync"

	"github.com/omochice/line-chat/internal/transport"
)

// mockConn is a mock implementation of transport.Conn for testing.
type mockConn struct {
	readCh     chan string
	writtenMu  sync.Mutex
	written    []string
	closeOnce  sync.Once
	closed     chan struct{}
	remoteAddr string
}

func newMockConn(addr string) *mockConn {
	return &mockConn{
		readCh:     make(chan string, 10),
		closed:     make(chan struct{}),
		remoteAddr: addr,
	}
}

func (m *mockConn) ReadLine() (string, error) {
	select {
	case <-m.closed:
		return "", io.EOF
	case line, ok := <-m.readCh:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

func (m *mockConn) WriteLine(line string) error {
	m.writtenMu.Lock()
	defer m.writtenMu.Unlock()
	m.written = append(m.written, line)
	return nil
}

func (m *mockConn) Close() error {
	m.closeOnce.Do(func() { close(m.closed) })
	return nil
}

func (m *mockConn) RemoteAddr() string {
	return m.remoteAddr
}

func (m *mockConn) GetWritten() []string {
	m.writtenMu.Lock()
	defer m.writtenMu.Unlock()
	return append([]string(nil), m.written...)
}

// Compile-time check that mockConn implements transport.Conn
var _ transport.Conn = (*mockConn)(nil)
