package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"typing-trainer-backend/internal/middleware"
	"typing-trainer-backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	clientSendSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type Client struct {
	ID   string
	conn *websocket.Conn
	send chan *models.Event
}

type reply struct {
	client *Client
	event  *models.Event
}

// WebSocketHub fans events out to connected pages. The run loop owns the
// client set and is the only place a client's send channel is closed.
type WebSocketHub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *models.Event
	replies    chan reply
	done       chan struct{}
	logger     *zap.Logger
}

func NewWebSocketHub(logger *zap.Logger) *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *models.Event, 100),
		replies:    make(chan reply, 100),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (hub *WebSocketHub) Run(ctx context.Context) {
	defer func() {
		for client := range hub.clients {
			delete(hub.clients, client)
			close(client.send)
		}
		close(hub.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-hub.register:
			hub.clients[client] = true
			hub.logger.Debug("Client registered", zap.String("client_id", client.ID))

		case client := <-hub.unregister:
			if hub.clients[client] {
				delete(hub.clients, client)
				close(client.send)
				hub.logger.Debug("Client unregistered", zap.String("client_id", client.ID))
			}

		case r := <-hub.replies:
			if hub.clients[r.client] {
				hub.deliver(r.client, r.event)
			}

		case event := <-hub.broadcast:
			for client := range hub.clients {
				hub.deliver(client, event)
			}
		}
	}
}

// BroadcastEvent queues an event for every client. It never blocks; when
// the queue is full the event is dropped.
func (hub *WebSocketHub) BroadcastEvent(eventType string, data interface{}) {
	event := newEvent(eventType, data)

	select {
	case hub.broadcast <- event:
	default:
		hub.logger.Warn("Broadcast queue full, dropping event", zap.String("type", eventType))
	}
}

func (hub *WebSocketHub) deliver(client *Client, event *models.Event) {
	select {
	case client.send <- event:
	default:
		delete(hub.clients, client)
		close(client.send)
		hub.logger.Warn("Client too slow, disconnecting", zap.String("client_id", client.ID))
	}
}

func (hub *WebSocketHub) add(client *Client) bool {
	select {
	case hub.register <- client:
		return true
	case <-hub.done:
		return false
	}
}

func (hub *WebSocketHub) remove(client *Client) {
	select {
	case hub.unregister <- client:
	case <-hub.done:
	}
}

func (hub *WebSocketHub) reply(client *Client, event *models.Event) {
	select {
	case hub.replies <- reply{client: client, event: event}:
	case <-hub.done:
	}
}

type WebSocketHandler struct {
	hub    *WebSocketHub
	logger *zap.Logger
}

func NewWebSocketHandler(hub *WebSocketHub, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade to WebSocket", zap.Error(err))
		return
	}

	client := &Client{
		ID:   c.GetString(middleware.ContextKeyRequestID),
		conn: conn,
		send: make(chan *models.Event, clientSendSize),
	}
	if client.ID == "" {
		client.ID = models.GenerateRequestID()
	}

	if !h.hub.add(client) {
		conn.Close()
		return
	}
	defer h.hub.remove(client)

	go client.writePump(h.logger)

	for {
		var msg models.Event
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.String("client_id", client.ID), zap.Error(err))
			}
			return
		}

		if msg.Type == models.EventPing {
			h.hub.reply(client, newEvent(models.EventPong, nil))
		}
	}
}

// writePump is the only writer on the connection.
func (c *Client) writePump(logger *zap.Logger) {
	defer c.conn.Close()

	for event := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(event); err != nil {
			logger.Debug("WebSocket write error", zap.String("client_id", c.ID), zap.Error(err))
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func newEvent(eventType string, data interface{}) *models.Event {
	return &models.Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
}
