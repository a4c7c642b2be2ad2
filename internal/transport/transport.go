// Package transport defines the line-oriented connection shared by the chat
// client and the reference server. Implementations live in the tcp and ws
// subpackages.
package transport

// Conn abstracts a bidirectional line connection for both TCP and WebSocket.
type Conn interface {
	// ReadLine blocks until one full line is available and returns it without
	// its terminator. Returns io.EOF when the peer closed the stream.
	ReadLine() (string, error)

	// WriteLine sends a single line. The terminator is added by the
	// implementation. Safe for concurrent use.
	WriteLine(line string) error

	// Close closes the connection and unblocks a pending ReadLine.
	Close() error

	// RemoteAddr returns the remote address for logging.
	RemoteAddr() string
}
