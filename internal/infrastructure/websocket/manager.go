package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"playfolio/pkg/logger"
)

// Client is one WebSocket connection for an authenticated user.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	// rooms the client is currently subscribed to, keyed by
	// conversation ID. Guarded by the manager's mutex.
	rooms map[string]bool
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		rooms:  make(map[string]bool),
	}
}

// Manager tracks active connections and conversation-room membership.
// A room is the subscription scope for one conversation's live events;
// joining and leaving a room is how clients subscribe and tear down.
type Manager struct {
	clients map[string]*Client
	rooms   map[string]map[string]*Client

	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex

	// done closes when the registration loop exits, releasing any
	// pump still trying to unregister during shutdown.
	done chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Start runs the manager's registration loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				if existing, ok := m.clients[client.UserID]; ok && existing != client {
					m.dropLocked(existing)
				}
				m.clients[client.UserID] = client
				m.mutex.Unlock()
				logger.Info("Client registered: %s", client.UserID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				if current, ok := m.clients[client.UserID]; ok && current == client {
					m.dropLocked(client)
				}
				m.mutex.Unlock()
				logger.Info("Client unregistered: %s", client.UserID)

			case <-ctx.Done():
				close(m.done)
				return
			}
		}
	}()
}

// release hands the client to the unregister loop, or bails out if the
// manager has already shut down.
func (m *Manager) release(client *Client) {
	select {
	case m.Unregister <- client:
	case <-m.done:
	}
}

// dropLocked removes a client from every room and closes its channel.
// Caller holds the write lock.
func (m *Manager) dropLocked(client *Client) {
	for roomID := range client.rooms {
		if members, ok := m.rooms[roomID]; ok {
			delete(members, client.UserID)
			if len(members) == 0 {
				delete(m.rooms, roomID)
			}
		}
	}
	delete(m.clients, client.UserID)
	close(client.Send)
}

func (m *Manager) JoinRoom(roomID string, client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.rooms[roomID] == nil {
		m.rooms[roomID] = make(map[string]*Client)
	}
	m.rooms[roomID][client.UserID] = client
	client.rooms[roomID] = true
}

func (m *Manager) LeaveRoom(roomID string, client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if members, ok := m.rooms[roomID]; ok {
		delete(members, client.UserID)
		if len(members) == 0 {
			delete(m.rooms, roomID)
		}
	}
	delete(client.rooms, roomID)
}

// SendToUser delivers a payload to a user's connection if one exists.
// Delivery is best effort; a slow consumer is disconnected rather than
// allowed to block everyone else.
func (m *Manager) SendToUser(userID string, payload []byte) {
	m.mutex.RLock()
	client, ok := m.clients[userID]
	m.mutex.RUnlock()

	if !ok {
		return
	}

	select {
	case client.Send <- payload:
	default:
		logger.Warn("Client %s send buffer full, dropping connection", userID)
		m.mutex.Lock()
		if current, ok := m.clients[userID]; ok && current == client {
			m.dropLocked(client)
		}
		m.mutex.Unlock()
	}
}

// SendToRoom fans a payload out to every subscriber of a conversation
// room, optionally excluding one user (typically the originator).
func (m *Manager) SendToRoom(roomID string, payload []byte, excludeUserID string) {
	m.mutex.RLock()
	members := make([]*Client, 0, len(m.rooms[roomID]))
	for userID, client := range m.rooms[roomID] {
		if userID == excludeUserID {
			continue
		}
		members = append(members, client)
	}
	m.mutex.RUnlock()

	for _, client := range members {
		select {
		case client.Send <- payload:
		default:
			logger.Warn("Room %s: client %s send buffer full, skipping", roomID, client.UserID)
		}
	}
}

// ReadPump reads frames from the connection and hands them to handle.
// It owns unregistration on exit.
func (c *Client) ReadPump(m *Manager, handle func(client *Client, payload []byte)) {
	defer func() {
		m.release(c)
		c.Conn.Close()
	}()

	for {
		_, payload, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("websocket read: %v", err)
			}
			break
		}

		handle(c, payload)
	}
}

// WritePump drains the send channel into the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		payload, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Error("websocket write: %v", err)
			return
		}
	}
}
