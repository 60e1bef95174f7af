package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/konekt/internal/service"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256

	actionTimeout = 10 * time.Second
)

// Client represents a single WebSocket connection. The user id comes from
// the authenticated upgrade, never from event payloads.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	gate   Gateway
	userID uuid.UUID

	// rooms tracks which rooms this connection listens to.
	rooms map[string]struct{}
	mu    sync.RWMutex

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, gate Gateway, userID uuid.UUID) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		gate:   gate,
		userID: userID,
		rooms:  make(map[string]struct{}),
		send:   make(chan []byte, sendBufSize),
		done:   make(chan struct{}),
	}
}

// InRoom checks if this client is subscribed to a room.
func (c *Client) InRoom(room string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.rooms[room]
	return ok
}

// Join adds a room subscription.
func (c *Client) Join(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[room] = struct{}{}
}

// Leave removes a room subscription.
func (c *Client) Leave(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, room)
}

// ReadPump reads events from the WebSocket and handles them. A failed
// action answers with an unauthorized event or a log line; it never tears
// down the connection.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: client %s disconnected", c.userID)
			} else {
				log.Printf("ws: read error from %s: %v", c.userID, err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes messages from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("ws: write error to %s: %v", c.userID, err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ws: ping error to %s: %v", c.userID, err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event. Authorization is
// re-validated on every action, independently of the command path and of
// any earlier joinThread call on this connection.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeIdentify:
		var p IdentifyPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendUnauthorized("Missing userId")
			return
		}
		if p.UserID != c.userID {
			c.sendUnauthorized("You can only identify as yourself")
			return
		}
		c.Join(userRoom(c.userID))
		log.Printf("ws: %s identified", c.userID)

	case EventTypeJoinThread:
		var p JoinThreadPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.ThreadID == uuid.Nil {
			c.sendUnauthorized("Missing threadId or userId")
			return
		}
		if p.UserID != uuid.Nil && p.UserID != c.userID {
			c.sendUnauthorized("You are not authorized to join this thread")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		err := c.gate.Authorize(ctx, p.ThreadID, c.userID)
		cancel()
		switch {
		case err == nil:
			c.Join(threadRoom(p.ThreadID))
		case errors.Is(err, service.ErrThreadNotFound):
			c.sendUnauthorized("Thread does not exist")
		case errors.Is(err, service.ErrNotMember):
			c.sendUnauthorized("You are not authorized to join this thread")
		default:
			log.Printf("ws: joinThread error for %s: %v", c.userID, err)
		}

	case EventTypeLeaveThread:
		var p LeaveThreadPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return
		}
		c.Leave(threadRoom(p.ThreadID))

	case EventTypeSendMessage:
		var p SendMessagePayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.ThreadID == uuid.Nil {
			c.sendUnauthorized("Missing threadId or message")
			return
		}
		if p.UserID != uuid.Nil && p.UserID != c.userID {
			c.sendUnauthorized("You are not authorized to post in this thread")
			return
		}

		// Append goes through the same service as the command path; the
		// newMessage broadcast is triggered by its notifier.
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		_, err := c.gate.Append(ctx, p.ThreadID, c.userID, p.Message)
		cancel()
		switch {
		case err == nil:
		case errors.Is(err, service.ErrThreadNotFound), errors.Is(err, service.ErrNotMember):
			c.sendUnauthorized("You are not authorized to post in this thread")
		case errors.Is(err, service.ErrEmptyMessage):
			c.sendUnauthorized("Message is required")
		default:
			log.Printf("ws: sendMessage error for %s: %v", c.userID, err)
		}

	default:
		log.Printf("ws: unknown event type %q from %s", event.Type, c.userID)
	}
}

// sendUnauthorized emits the unauthorized signal to this connection only.
func (c *Client) sendUnauthorized(message string) {
	evt, err := NewEvent(EventTypeUnauthorized, UnauthorizedPayload{Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
