package web

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub fans out status payloads to connected websocket clients.
type Hub struct {
	clients   map[*websocket.Conn]*sync.Mutex // each connection has its own write mutex
	clientsMu sync.RWMutex
	upgrader  websocket.Upgrader
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]*sync.Mutex),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The daemon serves a single local status page.
				return true
			},
		},
	}
}

// Serve upgrades the request to a websocket, sends the greeting payload and
// keeps the connection registered until the client disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, greeting []byte) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}

	mu := &sync.Mutex{}
	h.clientsMu.Lock()
	h.clients[conn] = mu
	h.clientsMu.Unlock()

	if greeting != nil {
		mu.Lock()
		err = conn.WriteMessage(websocket.TextMessage, greeting)
		mu.Unlock()
		if err != nil {
			h.remove(conn)
			return
		}
	}

	// The feed is one-way. Reading serves only to notice the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(conn)
}

// Broadcast sends data to every connected client. Clients whose write
// fails are dropped.
func (h *Hub) Broadcast(data []byte) {
	h.clientsMu.RLock()
	conns := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for conn, mu := range h.clients {
		conns[conn] = mu
	}
	h.clientsMu.RUnlock()

	for conn, mu := range conns {
		mu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		mu.Unlock()
		if err != nil {
			h.remove(conn)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.clientsMu.Lock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
	h.clientsMu.Unlock()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.clientsMu.Lock()
	if _, ok := h.clients[conn]; ok {
		conn.Close()
		delete(h.clients, conn)
	}
	h.clientsMu.Unlock()
}
