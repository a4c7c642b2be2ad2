package main

import (
	"strconv"
	"strings"

	"github.com/omochice/line-chat/internal/client"
	"github.com/omochice/line-chat/internal/config"
)

const usage = `commands:
  /connect [host [port]]  connect to a server
  /disconnect             close the connection
  /login <name>           log in
  /pm <user> <text>       send a private message
  /users                  list logged-in users
  /help                   show this help and ask the server what it supports
  /quit                   exit
anything else is sent as a public message`

// repl maps input lines to client calls.
type repl struct {
	client *client.Client
	cfg    config.ClientConfig
	out    *printer
}

// execute runs one input line and reports whether the user asked to quit.
func (r *repl) execute(line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		r.check(r.client.SendPublicMessage(line))
		return false
	}

	name, rest, _ := strings.Cut(line[1:], " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "quit", "exit":
		return true
	case "connect":
		r.connect(rest)
	case "disconnect":
		r.client.Disconnect()
	case "login":
		if rest == "" {
			r.out.printf("usage: /login <name>")
			return false
		}
		r.check(r.client.TryLogin(rest))
	case "pm":
		to, text, ok := strings.Cut(rest, " ")
		if !ok || to == "" || text == "" {
			r.out.printf("usage: /pm <user> <text>")
			return false
		}
		r.check(r.client.SendPrivateMessage(to, text))
	case "users":
		r.check(r.client.RefreshUserList())
	case "help":
		r.out.printf("%s", usage)
		if r.client.IsConnectionActive() {
			r.check(r.client.AskSupportedCommands())
		}
	default:
		r.out.printf("! unknown command /%s, try /help", name)
	}
	return false
}

// connect dials the configured server, or the host and port given in args,
// starts the listener and logs in when a username is configured.
func (r *repl) connect(args string) {
	host, port := r.cfg.Host, r.cfg.Port
	fields := strings.Fields(args)
	if len(fields) > 0 {
		host = fields[0]
	}
	if len(fields) > 1 {
		p, err := strconv.Atoi(fields[1])
		if err != nil {
			r.out.printf("! invalid port %q", fields[1])
			return
		}
		port = p
	}

	if !r.client.Connect(host, port) {
		r.out.printf("! connect to %s:%d failed: %s", host, port, r.client.LastError())
		return
	}
	r.client.StartListening()
	r.out.printf("* connected to %s:%d", host, port)

	if r.cfg.Username != "" {
		r.check(r.client.TryLogin(r.cfg.Username))
	}
}

func (r *repl) check(ok bool) {
	if !ok {
		r.out.printf("! not sent: %s", r.client.LastError())
	}
}
