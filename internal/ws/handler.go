package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/slimepool/internal/middleware"
	"github.com/playmatatu/slimepool/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are checked by middleware.WebSocketCORSCheck
	},
}

// Client represents a connected WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	playerID  int
	sessionID string
	codec     Codec
	send      chan outbound
}

type outbound struct {
	messageType int
	data        []byte
}

// Hub maintains the set of active clients, grouped by session
type Hub struct {
	rooms      map[string]map[*Client]bool // sessionID -> clients
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns
	manager    *session.Manager
	reaper     *session.Reaper
	mu         sync.RWMutex
}

// NewHub creates a new Hub. reaper may be nil.
func NewHub(m *session.Manager, reaper *session.Reaper) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		manager:    m,
		reaper:     reaper,
	}
}

// Run processes registrations until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			if _, exists := h.rooms[client.sessionID]; !exists {
				h.rooms[client.sessionID] = make(map[*Client]bool)
			}
			h.rooms[client.sessionID][client] = true
			size := len(h.rooms[client.sessionID])
			h.mu.Unlock()

			log.Printf("[WS] Player %d connected to session %s (room_size=%d codec=%s)", client.playerID, client.sessionID, size, client.codec)

			if s, ok := h.manager.Loaded(client.sessionID); ok {
				f := s.Frame(0)
				client.sendMessage(OutMessage{Type: "frame", Frame: &f})
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.sessionID]; ok && room[client] {
				delete(room, client)
				if len(room) == 0 {
					delete(h.rooms, client.sessionID)
				}
				close(client.send)
				log.Printf("[WS] Player %d disconnected from session %s", client.playerID, client.sessionID)
			}
			h.mu.Unlock()
		}
	}
}

// RoomSize returns the number of clients watching a session.
func (h *Hub) RoomSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// BroadcastFrame sends a frame to every client of the session. Each codec is
// encoded at most once.
func (h *Hub) BroadcastFrame(sessionID string, f session.Frame) {
	h.broadcast(sessionID, OutMessage{Type: "frame", Frame: &f})
}

// BroadcastEvent forwards a session event to the session's clients.
func (h *Hub) BroadcastEvent(e session.Event) {
	h.broadcast(e.SessionID, OutMessage{Type: e.Type, Event: &e})
}

func (h *Hub) broadcast(sessionID string, m OutMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, exists := h.rooms[sessionID]
	if !exists {
		return
	}

	encoded := make(map[Codec]outbound, 2)
	for client := range room {
		out, ok := encoded[client.codec]
		if !ok {
			mt, data, err := client.codec.Encode(m)
			if err != nil {
				log.Printf("[WS] Error encoding %s for session %s: %v", m.Type, sessionID, err)
				return
			}
			out = outbound{messageType: mt, data: data}
			encoded[client.codec] = out
		}
		select {
		case client.send <- out:
		default:
			// Client's buffer is full
			log.Printf("[WS] Send buffer full for player %d in session %s, dropping %s", client.playerID, sessionID, m.Type)
		}
	}
}

// HandleWebSocket upgrades an authenticated request to a session stream.
// Expects RequirePlayer to run first.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	codec, err := ParseCodec(c.Query("codec"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	playerID := middleware.PlayerID(c)
	s, err := h.manager.GetForPlayer(c.Request.Context(), c.Param("id"), playerID)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "not your session"})
		case errors.Is(err, session.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		default:
			log.Printf("[WS] Failed to load session %s: %v", c.Param("id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	select {
	case <-h.done:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "server shutting down"})
		return
	default:
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		playerID:  playerID,
		sessionID: s.ID,
		codec:     codec,
		send:      make(chan outbound, 64),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// writePump writes messages to the WebSocket connection
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

			if err := c.conn.WriteMessage(message.messageType, message.data); err != nil {
				log.Printf("[WS] Write error for player %d: %v", c.playerID, err)
				return
			}

		case <-c.hub.done:
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for player %d: %v", c.playerID, err)
				return
			}
		}
	}
}

// sendMessage queues a message for this client only.
func (c *Client) sendMessage(m OutMessage) {
	mt, data, err := c.codec.Encode(m)
	if err != nil {
		log.Printf("[WS] Error encoding %s: %v", m.Type, err)
		return
	}
	select {
	case c.send <- outbound{messageType: mt, data: data}:
	default:
		log.Printf("[WS] Dropped %s for player %d (buffer full)", m.Type, c.playerID)
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.sendMessage(OutMessage{Type: "error", Message: message})
}
