package protocol

import (
	"strings"
)

// EventType identifies the variant of an inbound event.
type EventType int

const (
	EventLoginResult EventType = iota
	EventUsersList
	EventSupportedCommands
	EventPublicMessage
	EventPrivateMessage
	EventMessageDeliveryError
	EventCommandError
	EventMessageAck
	EventDisconnected
	EventUnrecognized
)

// String returns the string representation of EventType
func (et EventType) String() string {
	switch et {
	case EventLoginResult:
		return "login_result"
	case EventUsersList:
		return "users_list"
	case EventSupportedCommands:
		return "supported_commands"
	case EventPublicMessage:
		return "public_message"
	case EventPrivateMessage:
		return "private_message"
	case EventMessageDeliveryError:
		return "message_delivery_error"
	case EventCommandError:
		return "command_error"
	case EventMessageAck:
		return "message_ack"
	case EventDisconnected:
		return "disconnected"
	case EventUnrecognized:
		return "unrecognized"
	default:
		return "unknown"
	}
}

// Event is one decoded server response, or the synthetic Disconnected event.
type Event interface {
	Type() EventType
}

// LoginResult reports the outcome of a login command. Detail is empty when
// the server sent no text after the keyword.
type LoginResult struct {
	Success bool
	Detail  string
}

// UsersList carries the names of the users currently logged in.
type UsersList struct {
	Usernames []string
}

// SupportedCommands carries the command keywords the server understands.
type SupportedCommands struct {
	Names []string
}

// PublicMessage is a message broadcast by another user.
type PublicMessage struct {
	Sender string
	Text   string
}

// PrivateMessage is a message addressed to this user only.
type PrivateMessage struct {
	Sender string
	Text   string
}

// MessageDeliveryError reports that a message sent by this client was not
// delivered.
type MessageDeliveryError struct {
	Detail string
}

// CommandError reports that the server did not understand a command.
type CommandError struct {
	Detail string
}

// MessageAck confirms delivery of a message sent by this client.
type MessageAck struct{}

// Disconnected is emitted by the client when the connection goes inactive.
// It never appears on the wire.
type Disconnected struct{}

// Unrecognized holds a line whose keyword is outside the vocabulary.
type Unrecognized struct {
	Raw string
}

func (LoginResult) Type() EventType          { return EventLoginResult }
func (UsersList) Type() EventType            { return EventUsersList }
func (SupportedCommands) Type() EventType    { return EventSupportedCommands }
func (PublicMessage) Type() EventType        { return EventPublicMessage }
func (PrivateMessage) Type() EventType       { return EventPrivateMessage }
func (MessageDeliveryError) Type() EventType { return EventMessageDeliveryError }
func (CommandError) Type() EventType         { return EventCommandError }
func (MessageAck) Type() EventType           { return EventMessageAck }
func (Disconnected) Type() EventType         { return EventDisconnected }
func (Unrecognized) Type() EventType         { return EventUnrecognized }

// Decode parses one line received from the server. The trailing line break,
// if any, is ignored.
//
// ok is false when the line must be dropped without producing an event: a
// msg, privmsg, users or supported line with nothing after the keyword.
// Unknown keywords decode to Unrecognized.
func Decode(line string) (ev Event, ok bool) {
	line = strings.TrimRight(line, "\r\n")
	keyword, rest, _ := splitFirst(line)

	switch keyword {
	case KeywordLoginOK:
		return LoginResult{Success: true, Detail: rest}, true
	case KeywordLoginError:
		return LoginResult{Success: false, Detail: rest}, true
	case KeywordCommandError:
		return CommandError{Detail: rest}, true
	case KeywordMessageError:
		return MessageDeliveryError{Detail: rest}, true
	case KeywordPublicMessage:
		if rest == "" {
			return nil, false
		}
		sender, text, _ := splitFirst(rest)
		return PublicMessage{Sender: sender, Text: text}, true
	case KeywordPrivateMessage:
		if rest == "" {
			return nil, false
		}
		sender, text, _ := splitFirst(rest)
		return PrivateMessage{Sender: sender, Text: text}, true
	case KeywordMessageOK:
		return MessageAck{}, true
	case KeywordUsers:
		names := splitFields(rest)
		if len(names) == 0 {
			return nil, false
		}
		return UsersList{Usernames: names}, true
	case KeywordSupported:
		names := splitFields(rest)
		if len(names) == 0 {
			return nil, false
		}
		return SupportedCommands{Names: names}, true
	default:
		return Unrecognized{Raw: line}, true
	}
}

// Format renders an event as the server sends it. It is the inverse of Decode
// for every wire-derived variant. Disconnected has no wire form and formats
// to the empty string; Unrecognized formats to its raw line.
func Format(ev Event) string {
	switch e := ev.(type) {
	case LoginResult:
		keyword := KeywordLoginError
		if e.Success {
			keyword = KeywordLoginOK
		}
		return withPayload(keyword, e.Detail)
	case UsersList:
		return withPayload(KeywordUsers, strings.Join(e.Usernames, Separator))
	case SupportedCommands:
		return withPayload(KeywordSupported, strings.Join(e.Names, Separator))
	case PublicMessage:
		return KeywordPublicMessage + Separator + e.Sender + Separator + e.Text
	case PrivateMessage:
		return KeywordPrivateMessage + Separator + e.Sender + Separator + e.Text
	case MessageDeliveryError:
		return withPayload(KeywordMessageError, e.Detail)
	case CommandError:
		return withPayload(KeywordCommandError, e.Detail)
	case MessageAck:
		return KeywordMessageOK
	case Unrecognized:
		return e.Raw
	default:
		return ""
	}
}

func withPayload(keyword, payload string) string {
	if payload == "" {
		return keyword
	}
	return keyword + Separator + payload
}
