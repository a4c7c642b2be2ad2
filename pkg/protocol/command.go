package protocol

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is returned when a command argument cannot be carried
	// on a single wire line.
	ErrInvalidArgument = errors.New("argument contains a line break")
	// ErrUnknownCommand is returned when a line starts with a keyword outside
	// the command vocabulary.
	ErrUnknownCommand = errors.New("command not supported")
	// ErrMissingArgument is returned when a command lacks a required argument.
	ErrMissingArgument = errors.New("missing argument")
)

// CommandType identifies an outbound command.
type CommandType int

const (
	CommandLogin CommandType = iota
	CommandPublicMessage
	CommandPrivateMessage
	CommandListUsers
	CommandHelp
)

// String returns the wire keyword of the command type.
func (ct CommandType) String() string {
	switch ct {
	case CommandLogin:
		return KeywordLogin
	case CommandPublicMessage:
		return KeywordPublicMessage
	case CommandPrivateMessage:
		return KeywordPrivateMessage
	case CommandListUsers:
		return KeywordUsers
	case CommandHelp:
		return KeywordHelp
	default:
		return "unknown"
	}
}

// arity is the number of arguments each command carries. The last argument
// of a command may contain spaces.
func (ct CommandType) arity() int {
	switch ct {
	case CommandLogin, CommandPublicMessage:
		return 1
	case CommandPrivateMessage:
		return 2
	default:
		return 0
	}
}

// Command is an outbound command: a keyword plus its arguments.
type Command struct {
	Type CommandType
	Args []string
}

// NewLoginCommand creates a "login <username>" command.
func NewLoginCommand(username string) Command {
	return Command{Type: CommandLogin, Args: []string{username}}
}

// NewPublicMessageCommand creates a "msg <text>" command.
func NewPublicMessageCommand(text string) Command {
	return Command{Type: CommandPublicMessage, Args: []string{text}}
}

// NewPrivateMessageCommand creates a "privmsg <recipient> <text>" command.
func NewPrivateMessageCommand(recipient, text string) Command {
	return Command{Type: CommandPrivateMessage, Args: []string{recipient, text}}
}

// NewListUsersCommand creates a "users" command.
func NewListUsersCommand() Command {
	return Command{Type: CommandListUsers}
}

// NewHelpCommand creates a "help" command.
func NewHelpCommand() Command {
	return Command{Type: CommandHelp}
}

// Encode renders the command as one wire line without the trailing newline.
func (c Command) Encode() (string, error) {
	if len(c.Args) != c.Type.arity() {
		return "", fmt.Errorf("%s takes %d argument(s), got %d: %w",
			c.Type, c.Type.arity(), len(c.Args), ErrMissingArgument)
	}

	fields := make([]string, 0, len(c.Args)+1)
	fields = append(fields, c.Type.String())
	for _, arg := range c.Args {
		if !validField(arg) {
			return "", fmt.Errorf("%s: %w", c.Type, ErrInvalidArgument)
		}
		fields = append(fields, arg)
	}

	return strings.Join(fields, Separator), nil
}

// ParseCommand reads a command line as sent by a client. It is the inverse of
// Command.Encode and is used on the serving side of a connection.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	keyword, rest, hasRest := splitFirst(line)

	switch keyword {
	case KeywordLogin:
		if !hasRest || rest == "" {
			return Command{}, fmt.Errorf("login: username: %w", ErrMissingArgument)
		}
		return NewLoginCommand(rest), nil
	case KeywordPublicMessage:
		if !hasRest {
			return Command{}, fmt.Errorf("msg: text: %w", ErrMissingArgument)
		}
		return NewPublicMessageCommand(rest), nil
	case KeywordPrivateMessage:
		recipient, text, ok := splitFirst(rest)
		if !hasRest || !ok || recipient == "" {
			return Command{}, fmt.Errorf("privmsg: recipient and text: %w", ErrMissingArgument)
		}
		return NewPrivateMessageCommand(recipient, text), nil
	case KeywordUsers:
		return NewListUsersCommand(), nil
	case KeywordHelp:
		return NewHelpCommand(), nil
	default:
		return Command{}, fmt.Errorf("%q: %w", keyword, ErrUnknownCommand)
	}
}

// CommandKeywords lists the command keywords understood by a server.
func CommandKeywords() []string {
	return []string{KeywordLogin, KeywordPublicMessage, KeywordPrivateMessage, KeywordUsers, KeywordHelp}
}
