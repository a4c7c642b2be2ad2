// Package chat provides the core chat domain logic shared by all transports.
package chat

import (
	"errors"
	"io"

	"github.com/omochice/line-chat/internal/metrics"
	"github.com/omochice/line-chat/pkg/protocol"
)

const (
	detailUnauthorized       = "unauthorized"
	detailIncorrectRecipient = "incorrect recipient "
	detailNotSupported       = "command not supported"
)

// Serve reads command lines from client until the connection fails and
// queues the replies. It does not close the connection.
func (h *Hub) Serve(client *Client) {
	log := h.logger.With("client_id", client.ID, "remote_addr", client.Conn.RemoteAddr())

	for {
		line, err := client.Conn.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Debug("read failed", "error", err)
			}
			return
		}
		if line == "" {
			continue
		}
		h.Handle(client, line)
	}
}

// Handle executes one command line from client.
func (h *Hub) Handle(client *Client, line string) {
	cmd, err := protocol.ParseCommand(line)
	if err != nil {
		metrics.ServerCommands.WithLabelValues("invalid").Inc()
		detail := err.Error()
		if errors.Is(err, protocol.ErrUnknownCommand) {
			detail = detailNotSupported
		}
		h.logger.Debug("rejected command", "client_id", client.ID, "error", err)
		h.Reply(client, protocol.Format(protocol.CommandError{Detail: detail}))
		return
	}

	metrics.ServerCommands.WithLabelValues(cmd.Type.String()).Inc()

	switch cmd.Type {
	case protocol.CommandLogin:
		h.handleLogin(client, cmd.Args[0])
	case protocol.CommandPublicMessage:
		h.handlePublicMessage(client, cmd.Args[0])
	case protocol.CommandPrivateMessage:
		h.handlePrivateMessage(client, cmd.Args[0], cmd.Args[1])
	case protocol.CommandListUsers:
		h.Reply(client, protocol.Format(protocol.UsersList{Usernames: h.Usernames()}))
	case protocol.CommandHelp:
		h.Reply(client, protocol.Format(protocol.SupportedCommands{Names: protocol.CommandKeywords()}))
	}
}

func (h *Hub) handleLogin(client *Client, username string) {
	if err := h.Login(client, username); err != nil {
		h.Reply(client, protocol.Format(protocol.LoginResult{Success: false, Detail: err.Error()}))
		return
	}
	h.logger.Info("user logged in", "client_id", client.ID, "username", username)
	h.Reply(client, protocol.Format(protocol.LoginResult{Success: true}))
}

func (h *Hub) handlePublicMessage(client *Client, text string) {
	sender, ok := h.username(client)
	if !ok {
		h.Reply(client, protocol.Format(protocol.MessageDeliveryError{Detail: detailUnauthorized}))
		return
	}
	n := h.Broadcast(protocol.Format(protocol.PublicMessage{Sender: sender, Text: text}), client)
	h.logger.Debug("public message", "username", sender, "recipients", n)
	h.Reply(client, protocol.Format(protocol.MessageAck{}))
}

func (h *Hub) handlePrivateMessage(client *Client, recipient, text string) {
	sender, ok := h.username(client)
	if !ok {
		h.Reply(client, protocol.Format(protocol.MessageDeliveryError{Detail: detailUnauthorized}))
		return
	}
	if !h.SendTo(recipient, protocol.Format(protocol.PrivateMessage{Sender: sender, Text: text})) {
		h.Reply(client, protocol.Format(protocol.MessageDeliveryError{Detail: detailIncorrectRecipient + recipient}))
		return
	}
	h.Reply(client, protocol.Format(protocol.MessageAck{}))
}

func (h *Hub) username(client *Client) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return client.Username, client.Username != ""
}
