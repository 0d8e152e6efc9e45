package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event types pushed over the socket
const (
	EventTypeChatMessage  = "chat_message"
	EventTypeNotification = "notification"
	EventTypePresence     = "presence"
)

// Event is a message sent over WebSocket
type Event struct {
	Type         string      `json:"type"`
	Message      string      `json:"message"`
	Data         interface{} `json:"data,omitempty"`
	UserID       string      `json:"userID,omitempty"`
	RequiresAuth bool        `json:"requiresAuth,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID        primitive.ObjectID
	Conn          *websocket.Conn
	Authenticated bool
	mu            sync.Mutex
}

// WriteEvent serializes writes so two goroutines never interleave frames
func (c *Client) WriteEvent(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(event)
}

// Hub maintains the set of active clients and routes events to them
type Hub struct {
	clients                map[primitive.ObjectID]*Client
	unauthenticatedClients map[*Client]bool
	register               chan *Client
	unregister             chan *Client
	mu                     sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:                make(map[primitive.ObjectID]*Client),
		unauthenticatedClients: make(map[*Client]bool),
		register:               make(chan *Client),
		unregister:             make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if client.Authenticated && client.UserID != primitive.NilObjectID {
				h.clients[client.UserID] = client
			} else {
				h.unauthenticatedClients[client] = true
			}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if client.Authenticated && client.UserID != primitive.NilObjectID {
				if _, ok := h.clients[client.UserID]; ok {
					delete(h.clients, client.UserID)
				}
			} else {
				delete(h.unauthenticatedClients, client)
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// IsOnline reports whether a user currently has an open connection
func (h *Hub) IsOnline(userID primitive.ObjectID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// SendToUser sends an event to a specific user
func (h *Hub) SendToUser(userID primitive.ObjectID, event Event) error {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user not connected")
	}

	return client.WriteEvent(event)
}

// AuthenticateClient moves a client from unauthenticated to authenticated state
func (h *Hub) AuthenticateClient(client *Client, userID primitive.ObjectID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.unauthenticatedClients, client)

	client.Authenticated = true
	client.UserID = userID
	h.clients[userID] = client

	return nil
}

// NotifyNewMessage pushes a chat message to the recipient if connected
func (h *Hub) NotifyNewMessage(recipientID primitive.ObjectID, messageData interface{}) error {
	return h.SendToUser(recipientID, Event{
		Type:    EventTypeChatMessage,
		Message: "New message received",
		Data:    messageData,
	})
}

// NotifyUser pushes an in-app notification to the user if connected
func (h *Hub) NotifyUser(userID primitive.ObjectID, title string, data interface{}) error {
	return h.SendToUser(userID, Event{
		Type:    EventTypeNotification,
		Message: title,
		Data:    data,
	})
}
