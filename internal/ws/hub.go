package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Ostech2/uhsms/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

// ApprovalEvent is pushed to dashboards so they can refresh the affected
// approval instead of reloading everything.
type ApprovalEvent struct {
	Type     string                `json:"type"`
	Approval models.WardenApproval `json:"approval"`
	SentAt   time.Time             `json:"sent_at"`
}

type approvalMessage struct {
	wardenID string
	payload  []byte
}

// ApprovalHub fans approval events out to websocket clients. Admins receive
// every event; a warden receives events about their own requests.
type ApprovalHub struct {
	register   chan *approvalClient
	unregister chan *approvalClient
	broadcast  chan approvalMessage
	clients    map[*approvalClient]struct{}
	done       chan struct{}
	connected  atomic.Int64
}

func NewApprovalHub() *ApprovalHub {
	return &ApprovalHub{
		register:   make(chan *approvalClient),
		unregister: make(chan *approvalClient),
		broadcast:  make(chan approvalMessage, 256),
		clients:    make(map[*approvalClient]struct{}),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx is cancelled, then disconnects everyone.
func (h *ApprovalHub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for client := range h.clients {
			h.drop(client)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.connected.Add(1)
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				if !client.allowAll && client.userID != msg.wardenID {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					h.drop(client)
				}
			}
		}
	}
}

// Connected reports the number of registered clients.
func (h *ApprovalHub) Connected() int {
	return int(h.connected.Load())
}

func (h *ApprovalHub) drop(client *approvalClient) {
	h.connected.Add(-1)
	delete(h.clients, client)
	close(client.send)
	client.conn.Close()
}

// ApprovalChanged publishes an event without blocking the caller. Events are
// dropped when the hub is saturated or stopped.
func (h *ApprovalHub) ApprovalChanged(event string, a models.WardenApproval) {
	if h == nil {
		return
	}
	data, err := json.Marshal(ApprovalEvent{Type: event, Approval: a, SentAt: time.Now().UTC()})
	if err != nil {
		log.Printf("ws: failed to marshal approval event: %v", err)
		return
	}
	select {
	case h.broadcast <- approvalMessage{wardenID: a.WardenID, payload: data}:
	case <-h.done:
	default:
		log.Printf("ws: approval event %s for %s dropped, hub busy", event, a.ID)
	}
}

func (h *ApprovalHub) add(c *approvalClient) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *ApprovalHub) remove(c *approvalClient) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

type approvalClient struct {
	hub      *ApprovalHub
	conn     *websocket.Conn
	send     chan []byte
	userID   string
	allowAll bool
}

func newApprovalClient(hub *ApprovalHub, conn *websocket.Conn, userID string, allowAll bool) *approvalClient {
	return &approvalClient{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		userID:   userID,
		allowAll: allowAll,
	}
}

func (c *approvalClient) readPump() {
	defer c.hub.remove(c)
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *approvalClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			if err := w.Close(); err != nil {
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
