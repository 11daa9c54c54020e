package syncbus

import (
	"context"
	"log"
)

// Hub pushes bus signals to connected browser sessions over websocket.
// Several sessions may be open for the same user (tabs, devices); each
// gets its own client. A session that cannot keep up is dropped and
// will reconcile by polling when it reconnects.
type Hub struct {
	clients map[*Client]struct{}

	registerCh   chan *Client
	unregisterCh chan *Client

	bus *Bus
}

// NewHub creates a hub fed by the given bus
func NewHub(bus *Bus) *Hub {
	return &Hub{
		clients:      make(map[*Client]struct{}),
		registerCh:   make(chan *Client),
		unregisterCh: make(chan *Client),
		bus:          bus,
	}
}

// Register adds a connected session to the broadcast set
func (h *Hub) Register(c *Client) {
	h.registerCh <- c
}

// Unregister removes a session
func (h *Hub) Unregister(c *Client) {
	h.unregisterCh <- c
}

// Run owns the client set. It subscribes to the bus and forwards every
// signal to every connected session until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	signals, cancel := h.bus.Subscribe()
	defer cancel()

	for {
		select {
		case client := <-h.registerCh:
			h.clients[client] = struct{}{}
			log.Printf("syncbus: session connected for user %d (%d open)", client.UserID, len(h.clients))

		case client := <-h.unregisterCh:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}

		case signal, ok := <-signals:
			if !ok {
				return
			}
			for client := range h.clients {
				select {
				case client.Send <- signal:
				default:
					delete(h.clients, client)
					close(client.Send)
				}
			}

		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			return
		}
	}
}
