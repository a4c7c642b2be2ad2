package client

// TextMessage is a chat message received from another user.
type TextMessage struct {
	Sender  string
	Private bool
	Text    string
}

// Listener receives events decoded from the server. Handlers run on the
// listener goroutine, except OnDisconnect which runs on whichever goroutine
// tore the connection down. A slow handler delays every later event.
//
// Listeners are compared with ==, so implementations should be pointer types.
type Listener interface {
	OnLoginResult(success bool, detail string)
	OnDisconnect()
	OnUserList(usernames []string)
	OnMessageReceived(msg TextMessage)
	OnMessageError(detail string)
	OnCommandError(detail string)
	OnSupportedCommands(commands []string)
}

// AckListener is implemented by listeners that want delivery
// acknowledgements ("msgok") for messages they sent.
type AckListener interface {
	OnMessageAck()
}

// ListenerFuncs is a Listener built from optional callbacks. Nil fields are
// skipped. Register it by pointer.
type ListenerFuncs struct {
	LoginResult       func(success bool, detail string)
	Disconnect        func()
	UserList          func(usernames []string)
	MessageReceived   func(msg TextMessage)
	MessageError      func(detail string)
	CommandError      func(detail string)
	SupportedCommands func(commands []string)
	MessageAck        func()
}

var (
	_ Listener    = (*ListenerFuncs)(nil)
	_ AckListener = (*ListenerFuncs)(nil)
)

func (f *ListenerFuncs) OnLoginResult(success bool, detail string) {
	if f.LoginResult != nil {
		f.LoginResult(success, detail)
	}
}

func (f *ListenerFuncs) OnDisconnect() {
	if f.Disconnect != nil {
		f.Disconnect()
	}
}

func (f *ListenerFuncs) OnUserList(usernames []string) {
	if f.UserList != nil {
		f.UserList(usernames)
	}
}

func (f *ListenerFuncs) OnMessageReceived(msg TextMessage) {
	if f.MessageReceived != nil {
		f.MessageReceived(msg)
	}
}

func (f *ListenerFuncs) OnMessageError(detail string) {
	if f.MessageError != nil {
		f.MessageError(detail)
	}
}

func (f *ListenerFuncs) OnCommandError(detail string) {
	if f.CommandError != nil {
		f.CommandError(detail)
	}
}

func (f *ListenerFuncs) OnSupportedCommands(commands []string) {
	if f.SupportedCommands != nil {
		f.SupportedCommands(commands)
	}
}

func (f *ListenerFuncs) OnMessageAck() {
	if f.MessageAck != nil {
		f.MessageAck()
	}
}
