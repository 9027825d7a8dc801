package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"ai-persona-advisors/backend/internal/models"
	"ai-persona-advisors/backend/internal/service"
	"ai-persona-advisors/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
}

// Event is the frame pushed to subscribers whenever a conversation changes.
type Event struct {
	Type           string           `json:"type"`
	ConversationID string           `json:"conversation_id"`
	Messages       []models.Message `json:"messages"`
}

// Client is one live subscriber to a conversation's message feed. The feed
// is read-only: messages are posted over HTTP, the socket only streams
// snapshots back.
type Client struct {
	conn           *websocket.Conn
	conversationID string
	hub            *Hub

	// send holds at most the latest snapshot; a slow reader skips
	// intermediate states instead of backing up the hub.
	send chan []byte
}

// Hub fans conversation updates out to the subscribers of each conversation.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*Client]bool
	log     *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]bool),
		log:     log,
	}
}

// Broadcast pushes the latest message snapshot to every subscriber of the
// conversation. Never blocks: a client that has not drained its previous
// snapshot has it replaced by this one.
func (h *Hub) Broadcast(conversationID string, messages []models.Message) {
	event := Event{
		Type:           "messages",
		ConversationID: conversationID,
		Messages:       messages,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("Error marshaling broadcast event", "error", err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[conversationID] {
		select {
		case client.send <- payload:
		default:
			// Drop the stale snapshot, queue the fresh one.
			select {
			case <-client.send:
			default:
			}
			client.send <- payload
		}
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subscribers, ok := h.clients[client.conversationID]
	if !ok {
		subscribers = make(map[*Client]bool)
		h.clients[client.conversationID] = subscribers
	}
	subscribers[client] = true
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subscribers, ok := h.clients[client.conversationID]
	if !ok {
		return
	}
	if _, ok := subscribers[client]; ok {
		delete(subscribers, client)
		close(client.send)
	}
	if len(subscribers) == 0 {
		delete(h.clients, client.conversationID)
	}
}

// readPump drains the connection so pongs and close frames are processed.
// Inbound frames are ignored.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("Unexpected WebSocket close", "error", err.Error())
			}
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Handler upgrades authenticated subscribers onto conversation feeds.
type Handler struct {
	hub           *Hub
	conversations *service.ConversationService
	log           *logger.Logger
}

func NewHandler(hub *Hub, conversations *service.ConversationService, log *logger.Logger) *Handler {
	return &Handler{hub: hub, conversations: conversations, log: log}
}

// Subscribe upgrades the request and streams the conversation's message log.
// The current snapshot is sent immediately on connect.
func (h *Handler) Subscribe(c *gin.Context) {
	raw, exists := c.Get("userId")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	userID, ok := raw.(uint)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	conversationID := c.Param("id")
	messages, err := h.conversations.GetMessages(userID, conversationID)
	if err != nil {
		switch err {
		case service.ErrConversationNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		case service.ErrNotConversationOwner:
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this conversation"})
		default:
			h.log.Error("Error loading conversation for subscription", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Error upgrading connection", "error", err.Error())
		return
	}
	conn.EnableWriteCompression(true)

	client := &Client{
		conn:           conn,
		conversationID: conversationID,
		hub:            h.hub,
		send:           make(chan []byte, 1),
	}
	h.hub.register(client)

	go client.writePump()
	go client.readPump()

	h.hub.Broadcast(conversationID, messages)
}
