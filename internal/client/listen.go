package client

import (
	"github.com/omochice/line-chat/pkg/protocol"
)

var closedDone = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// StartListening starts the background loop that reads lines from the server
// and dispatches them to listeners. It returns false if the connection is not
// active or a loop is already running for it. The loop ends, without restart,
// when the connection it was started for is closed.
func (c *Client) StartListening() bool {
	s := c.conn.current.Load()
	if s == nil || !c.conn.isCurrent(s) {
		c.logger.Warn("cannot start listening, connection is not active")
		return false
	}
	if !s.listening.CompareAndSwap(false, true) {
		c.logger.Debug("listener already running")
		return false
	}

	go c.listen(s)
	return true
}

// Done returns a channel that is closed when the listener loop for the current
// connection exits. If no loop has been started the channel is already closed.
func (c *Client) Done() <-chan struct{} {
	s := c.conn.current.Load()
	if s == nil || !s.listening.Load() {
		return closedDone
	}
	return s.done
}

func (c *Client) listen(s *session) {
	defer close(s.done)
	c.logger.Debug("listener started")

	for c.conn.isCurrent(s) {
		line, ok := c.conn.readFrom(s)
		if !ok {
			continue
		}
		if line == "" {
			continue
		}
		ev, ok := protocol.Decode(line)
		if !ok {
			c.logger.Debug("dropped line without payload", "line", line)
			continue
		}
		if !c.conn.isCurrent(s) {
			break
		}
		c.handle(ev)
	}

	c.logger.Debug("listener stopped")
}

func (c *Client) handle(ev protocol.Event) {
	switch e := ev.(type) {
	case protocol.Unrecognized:
		c.logger.Warn("unrecognized line from server", "line", e.Raw)
		return
	case protocol.CommandError:
		c.conn.setLastError(e.Detail)
	case protocol.MessageDeliveryError:
		c.conn.setLastError(e.Detail)
	case protocol.MessageAck:
		c.logger.Debug("message acknowledged")
	}
	c.dispatcher.Dispatch(ev)
}
