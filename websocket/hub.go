// Package websocket broadcasts live scan progress to connected clients.
package websocket

import (
	"sync"

	"github.com/charmbracelet/log"

	"heavymetal/types"
)

// Hub interface defines the methods for broadcasting scan progress
type Hub interface {
	Run()
	RegisterClient(client *Client)
	UnregisterClient(client *Client)
	BroadcastProgress(msg types.ProgressMessage)
}

// hub maintains the set of active clients and fans scan progress out to them
type hub struct {
	clients    map[*Client]bool
	broadcast  chan types.ProgressMessage
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() Hub {
	return &hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan types.ProgressMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Debug("scan progress client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Debug("scan progress client disconnected")

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// RegisterClient registers a client with the hub
func (h *hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient removes a client from the hub
func (h *hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

// BroadcastProgress sends a progress message to all connected clients.
// Messages are dropped rather than blocking the scanner.
func (h *hub) BroadcastProgress(msg types.ProgressMessage) {
	select {
	case h.broadcast <- msg:
	default:
		log.Debug("progress broadcast channel full, dropping message")
	}
}
