package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/omochice/line-chat/internal/client"
)

// printer renders server events for the terminal.
type printer struct {
	mu  sync.Mutex
	out io.Writer
}

var (
	_ client.Listener    = (*printer)(nil)
	_ client.AckListener = (*printer)(nil)
)

func (p *printer) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) OnLoginResult(success bool, detail string) {
	if success {
		p.printf("* logged in")
		return
	}
	p.printf("! login failed: %s", detail)
}

func (p *printer) OnDisconnect() {
	p.printf("* disconnected from server")
}

func (p *printer) OnUserList(usernames []string) {
	p.printf("* users: %s", strings.Join(usernames, ", "))
}

func (p *printer) OnMessageReceived(msg client.TextMessage) {
	if msg.Private {
		p.printf("[pm from %s] %s", msg.Sender, msg.Text)
		return
	}
	p.printf("<%s> %s", msg.Sender, msg.Text)
}

func (p *printer) OnMessageError(detail string) {
	p.printf("! message not delivered: %s", detail)
}

func (p *printer) OnCommandError(detail string) {
	p.printf("! command error: %s", detail)
}

func (p *printer) OnSupportedCommands(commands []string) {
	p.printf("* server supports: %s", strings.Join(commands, " "))
}

func (p *printer) OnMessageAck() {}
