// Package client implements the chat client: connection lifecycle, command
// sending, and a background listener that turns server lines into events for
// registered listeners.
package client

import (
	"context"

	"github.com/omochice/line-chat/internal/logger"
	"github.com/omochice/line-chat/pkg/protocol"
)

// Client is a chat client. All methods are safe for concurrent use.
type Client struct {
	conn       *Connection
	dispatcher *Dispatcher
	logger     logger.Logger
}

// New creates a disconnected Client.
func New(opt ...Option) *Client {
	var opts options
	for _, o := range opt {
		o(&opts)
	}
	checkOptions(&opts)

	c := &Client{
		dispatcher: NewDispatcher(opts.logger),
		logger:     opts.logger,
	}
	c.conn = NewConnection(opts.dialer, opts.logger, func() {
		c.dispatcher.Dispatch(protocol.Disconnected{})
	})
	return c
}

// Connect connects to a chat server. It returns false on failure; the reason
// is available from LastError.
func (c *Client) Connect(host string, port int) bool {
	return c.ConnectContext(context.Background(), host, port)
}

// ConnectContext is Connect with a context bounding the dial.
func (c *Client) ConnectContext(ctx context.Context, host string, port int) bool {
	return c.conn.Connect(ctx, host, port)
}

// Disconnect closes the connection. Listeners receive OnDisconnect once, even
// if the listener loop hits a read error at the same moment.
func (c *Client) Disconnect() {
	c.conn.Disconnect()
}

// IsConnectionActive returns true if the connection is open.
func (c *Client) IsConnectionActive() bool {
	return c.conn.IsActive()
}

// LastError returns the last error description, or "" if there has been no
// error.
func (c *Client) LastError() string {
	return c.conn.LastError()
}

// AddListener registers a listener. Registering it again is a no-op.
func (c *Client) AddListener(l Listener) {
	c.dispatcher.Add(l)
}

// RemoveListener unregisters a listener.
func (c *Client) RemoveListener(l Listener) {
	c.dispatcher.Remove(l)
}

// TryLogin sends a login request. The outcome arrives as OnLoginResult.
func (c *Client) TryLogin(username string) bool {
	return c.send(protocol.NewLoginCommand(username))
}

// SendPublicMessage sends a message to all users.
func (c *Client) SendPublicMessage(text string) bool {
	return c.send(protocol.NewPublicMessageCommand(text))
}

// SendPrivateMessage sends a message to a single recipient.
func (c *Client) SendPrivateMessage(recipient, text string) bool {
	return c.send(protocol.NewPrivateMessageCommand(recipient, text))
}

// RefreshUserList asks the server for the users currently logged in. The
// answer arrives as OnUserList.
func (c *Client) RefreshUserList() bool {
	return c.send(protocol.NewListUsersCommand())
}

// AskSupportedCommands asks the server which commands it supports. The
// answer arrives as OnSupportedCommands.
func (c *Client) AskSupportedCommands() bool {
	return c.send(protocol.NewHelpCommand())
}

func (c *Client) send(cmd protocol.Command) bool {
	if !c.conn.IsActive() {
		c.conn.setLastError("not connected")
		c.logger.Warn("cannot send command, connection is not active", "command", cmd.Type.String())
		return false
	}

	line, err := cmd.Encode()
	if err != nil {
		c.conn.setLastError(err.Error())
		c.logger.Warn("invalid command", "command", cmd.Type.String(), "error", err)
		return false
	}

	return c.conn.WriteLine(line)
}
