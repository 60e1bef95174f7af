package ws

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var wsConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "ws_connected_clients",
	Help: "Number of currently connected WebSocket clients",
})

// Hub manages all active WebSocket clients and routes messages. Room
// subscriptions are process-local and in-memory; clients rebuild them by
// re-identifying and re-joining after a reconnect.
type Hub struct {
	// clients holds every live connection. One user may hold several.
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMsg
}

type broadcastMsg struct {
	room string // empty means every connected client
	data []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMsg, 256),
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			wsConnectedClients.Inc()
			log.Printf("ws hub: user %s connected (%d total)", client.userID, len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Printf("ws hub: user %s disconnected (%d total)", client.userID, len(h.clients))
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				if msg.room != "" && !client.InRoom(msg.room) {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// Client buffer full - disconnect
					h.drop(client)
				}
			}
		}
	}
}

// drop detaches a client. The send channel is never closed: the read side
// may still be running and must be able to attempt sends without panicking.
// Closing done is what stops the write pump.
func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.done)
	wsConnectedClients.Dec()
}

// BroadcastToRoom sends an event to every subscriber of a room.
func (h *Hub) BroadcastToRoom(room string, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return
	}
	h.broadcast <- &broadcastMsg{room: room, data: data}
}

// BroadcastToThread sends an event to the thread's room.
func (h *Hub) BroadcastToThread(threadID uuid.UUID, event *Event) {
	h.BroadcastToRoom(threadRoom(threadID), event)
}

// BroadcastToUser sends an event to the user's private room. Only
// connections that identified as that user receive it.
func (h *Hub) BroadcastToUser(userID uuid.UUID, event *Event) {
	h.BroadcastToRoom(userRoom(userID), event)
}

// BroadcastAll sends an event to every connected client. Used for the
// public discovery events: the thread listing updates live for everyone
// even though chat content stays gated by room membership.
func (h *Hub) BroadcastAll(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return
	}
	h.broadcast <- &broadcastMsg{data: data}
}
