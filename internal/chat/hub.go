package chat

import (
	"errors"
	"regexp"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/omochice/line-chat/internal/logger"
	"github.com/omochice/line-chat/internal/transport"
)

var (
	ErrUsernameTaken   = errors.New("username already in use")
	ErrInvalidUsername = errors.New("incorrect username format")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// outgoingBuffer is the number of lines queued per client before new lines
// are dropped.
const outgoingBuffer = 64

// Client represents a connected client with transport-agnostic connection.
type Client struct {
	ID       string
	Conn     transport.Conn
	Outgoing chan string

	// Username is empty until a successful login. Written only by Hub.Login
	// under the hub lock.
	Username string
}

// NewClient wraps conn with a fresh ID and outgoing queue.
func NewClient(conn transport.Conn) *Client {
	return &Client{
		ID:       uuid.NewString(),
		Conn:     conn,
		Outgoing: make(chan string, outgoingBuffer),
	}
}

// Hub manages all connected clients, their usernames and message delivery.
// TCP and WebSocket connections share a single Hub instance.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	names   map[string]*Client
	logger  logger.Logger
}

// NewHub creates a new Hub.
func NewHub(log logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		clients: make(map[*Client]bool),
		names:   make(map[string]*Client),
		logger:  log,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
}

// Unregister removes a client from the hub and releases its username. After
// Unregister returns the hub no longer sends to client.Outgoing.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
	if client.Username != "" && h.names[client.Username] == client {
		delete(h.names, client.Username)
	}
}

// ClientCount returns number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Login assigns username to client. A client logging in again gives up its
// previous name.
func (h *Hub) Login(client *Client, username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if owner, ok := h.names[username]; ok {
		if owner == client {
			return nil
		}
		return ErrUsernameTaken
	}
	if client.Username != "" {
		delete(h.names, client.Username)
	}
	client.Username = username
	h.names[username] = client
	return nil
}

// Usernames returns the logged-in usernames in sorted order.
func (h *Hub) Usernames() []string {
	h.mu.RLock()
	names := make([]string, 0, len(h.names))
	for name := range h.names {
		names = append(names, name)
	}
	h.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Broadcast queues line for every logged-in client except sender and returns
// the number of clients it was queued for.
func (h *Hub) Broadcast(line string, sender *Client) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, client := range h.names {
		if client == sender {
			continue
		}
		if h.enqueue(client, line) {
			n++
		}
	}
	return n
}

// SendTo queues line for the client logged in as username. It returns false
// if nobody uses that name.
func (h *Hub) SendTo(username, line string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.names[username]
	if !ok {
		return false
	}
	h.enqueue(client, line)
	return true
}

// Reply queues line for client if it is still registered.
func (h *Hub) Reply(client *Client, line string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.clients[client] {
		h.enqueue(client, line)
	}
}

// enqueue must be called with h.mu held.
func (h *Hub) enqueue(client *Client, line string) bool {
	select {
	case client.Outgoing <- line:
		return true
	default:
		h.logger.Warn("client queue full, dropping line", "client_id", client.ID, "username", client.Username)
		return false
	}
}
