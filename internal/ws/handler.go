package ws

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/playvolley/backend/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// Client represents a connected WebSocket client.
type Client struct {
	conn       *websocket.Conn
	connID     string
	accountRef string
	matchToken string
	session    *game.Session
	send       chan []byte

	// set by readPump when the peer closed cleanly, so the session can
	// treat the leave as consented.
	intentional bool
}

// Hub maintains the set of active clients, grouped into match rooms.
type Hub struct {
	clients    map[string]*Client            // connID -> Client
	rooms      map[string]map[string]*Client // matchToken -> connID -> Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes register/unregister until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.connID] = client
	if _, exists := h.rooms[client.matchToken]; !exists {
		h.rooms[client.matchToken] = make(map[string]*Client)
	}
	h.rooms[client.matchToken][client.connID] = client
	h.mu.Unlock()

	log.Printf("[WS] %s connected to match %s", client.accountRef, client.matchToken)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	cur, ok := h.clients[client.connID]
	if ok && cur == client {
		delete(h.clients, client.connID)
		if room, exists := h.rooms[client.matchToken]; exists {
			delete(room, client.connID)
			if len(room) == 0 {
				delete(h.rooms, client.matchToken)
			}
		}
		// Closing wakes writePump immediately; buffered frames are still
		// drained before it sees the close.
		close(client.send)
	}
	h.mu.Unlock()

	if ok && cur == client && client.session != nil {
		log.Printf("[WS] %s disconnected from match %s (intentional=%v)",
			client.accountRef, client.matchToken, client.intentional)
		client.session.Leave(client.connID, client.intentional)
	}
}

// Broadcast sends a message to every client in a match room.
func (h *Hub) Broadcast(matchToken string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, exists := h.rooms[matchToken]; exists {
		for _, client := range room {
			select {
			case client.send <- data:
			default:
				log.Printf("[WS] send buffer full for %s in match %s, dropping message",
					client.accountRef, matchToken)
			}
		}
	}
}

// SendTo sends a message to one connection.
func (h *Hub) SendTo(connID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, exists := h.clients[connID]; exists {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] SendTo dropped message for %s (buffer full)", connID)
		}
	}
}

// WSMessage is the inbound frame envelope.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// newConnID generates a transport-scoped connection id.
func newConnID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "conn_" + hex.EncodeToString(bytes)
}

// writePump writes messages to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] write error for %s: %v", c.accountRef, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] ping error for %s: %v", c.accountRef, err)
				return
			}
		}
	}
}

// readPump reads frames until the connection drops, then unregisters.
func (c *Client) readPump(hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				c.intentional = true
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] unexpected close for %s: %v", c.accountRef, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		c.handleMessage(msg)
	}
}

// sendError sends an error frame to the client.
func (c *Client) sendError(message string) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
	select {
	case c.send <- data:
	default:
	}
}
