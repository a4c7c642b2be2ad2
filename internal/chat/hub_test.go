package chat_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/omochice/line-chat/internal/chat"
)

func newTestClient() *chat.Client {
	return chat.NewClient(newMockConn("127.0.0.1:1234"))
}

// drain returns every line queued for client without blocking.
func drain(client *chat.Client) []string {
	var lines []string
	for {
		select {
		case line := <-client.Outgoing:
			lines = append(lines, line)
		default:
			return lines
		}
	}
}

func TestHub_Register(t *testing.T) {
	hub := chat.NewHub(nil)
	hub.Register(newTestClient())

	if got := hub.ClientCount(); got != 1 {
		t.Errorf("ClientCount() = %d, want 1", got)
	}
}

func TestHub_Register_MultipleClients(t *testing.T) {
	hub := chat.NewHub(nil)

	for i := 0; i < 3; i++ {
		hub.Register(newTestClient())
	}

	if got := hub.ClientCount(); got != 3 {
		t.Errorf("ClientCount() = %d, want 3", got)
	}
}

func TestNewClient_UniqueIDs(t *testing.T) {
	a, b := newTestClient(), newTestClient()
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("IDs = %q, %q; want distinct non-empty", a.ID, b.ID)
	}
}

func TestHub_Login(t *testing.T) {
	hub := chat.NewHub(nil)
	alice, other := newTestClient(), newTestClient()
	hub.Register(alice)
	hub.Register(other)

	tests := []struct {
		name    string
		client  *chat.Client
		user    string
		wantErr error
	}{
		{"valid", alice, "alice", nil},
		{"same name again", alice, "alice", nil},
		{"taken", other, "alice", chat.ErrUsernameTaken},
		{"space", other, "bob smith", chat.ErrInvalidUsername},
		{"punctuation", other, "bob!", chat.ErrInvalidUsername},
		{"empty", other, "", chat.ErrInvalidUsername},
		{"underscore and digits", other, "bob_42", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := hub.Login(tt.client, tt.user)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Login(%q) error = %v, want %v", tt.user, err, tt.wantErr)
			}
		})
	}

	if got := hub.Usernames(); !slices.Equal(got, []string{"alice", "bob_42"}) {
		t.Errorf("Usernames() = %q", got)
	}
}

func TestHub_LoginAgainReleasesOldName(t *testing.T) {
	hub := chat.NewHub(nil)
	c := newTestClient()
	hub.Register(c)

	hub.Login(c, "alice")
	hub.Login(c, "alicia")

	if got := hub.Usernames(); !slices.Equal(got, []string{"alicia"}) {
		t.Errorf("Usernames() = %q, want [alicia]", got)
	}
}

func TestHub_UnregisterReleasesName(t *testing.T) {
	hub := chat.NewHub(nil)
	first, second := newTestClient(), newTestClient()
	hub.Register(first)
	hub.Register(second)
	hub.Login(first, "alice")

	hub.Unregister(first)

	if got := hub.ClientCount(); got != 1 {
		t.Errorf("ClientCount() = %d, want 1", got)
	}
	if err := hub.Login(second, "alice"); err != nil {
		t.Errorf("Login after unregister: %v", err)
	}
}

func TestHub_UsernamesSorted(t *testing.T) {
	hub := chat.NewHub(nil)
	for _, name := range []string{"carol", "alice", "bob"} {
		c := newTestClient()
		hub.Register(c)
		hub.Login(c, name)
	}

	if got := hub.Usernames(); !slices.Equal(got, []string{"alice", "bob", "carol"}) {
		t.Errorf("Usernames() = %q", got)
	}
}

func TestHub_Broadcast(t *testing.T) {
	hub := chat.NewHub(nil)
	sender, a, b, anonymous := newTestClient(), newTestClient(), newTestClient(), newTestClient()
	for _, c := range []*chat.Client{sender, a, b, anonymous} {
		hub.Register(c)
	}
	hub.Login(sender, "sender")
	hub.Login(a, "a")
	hub.Login(b, "b")

	if n := hub.Broadcast("msg sender hi", sender); n != 2 {
		t.Errorf("Broadcast() = %d, want 2", n)
	}

	for name, c := range map[string]*chat.Client{"a": a, "b": b} {
		if got := drain(c); !slices.Equal(got, []string{"msg sender hi"}) {
			t.Errorf("%s received %q", name, got)
		}
	}
	if got := drain(sender); len(got) != 0 {
		t.Errorf("sender received its own broadcast: %q", got)
	}
	if got := drain(anonymous); len(got) != 0 {
		t.Errorf("client without login received broadcast: %q", got)
	}
}

func TestHub_BroadcastFullQueue(t *testing.T) {
	hub := chat.NewHub(nil)
	sender, slow := newTestClient(), newTestClient()
	hub.Register(sender)
	hub.Register(slow)
	hub.Login(slow, "slow")

	for i := 0; i < cap(slow.Outgoing); i++ {
		slow.Outgoing <- "filler"
	}

	if n := hub.Broadcast("msg x y", sender); n != 0 {
		t.Errorf("Broadcast() to a full queue = %d, want 0", n)
	}
}

func TestHub_SendTo(t *testing.T) {
	hub := chat.NewHub(nil)
	bob := newTestClient()
	hub.Register(bob)
	hub.Login(bob, "bob")

	if !hub.SendTo("bob", "privmsg alice psst") {
		t.Fatal("SendTo(bob) = false")
	}
	if got := drain(bob); !slices.Equal(got, []string{"privmsg alice psst"}) {
		t.Errorf("bob received %q", got)
	}
	if hub.SendTo("nobody", "privmsg alice psst") {
		t.Error("SendTo(nobody) = true")
	}
}

func TestHub_ReplyAfterUnregister(t *testing.T) {
	hub := chat.NewHub(nil)
	c := newTestClient()
	hub.Register(c)
	hub.Unregister(c)

	hub.Reply(c, "loginok")

	if got := drain(c); len(got) != 0 {
		t.Errorf("unregistered client received %q", got)
	}
}
