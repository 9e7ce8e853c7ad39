package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/hovertype/internal/multitap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// clientBuffer is the number of events queued per client before new
// events are dropped for that client.
const clientBuffer = 64

// Event is one typing event as sent to websocket clients.
type Event struct {
	Type      string `json:"type"` // "preview", "commit" or "delete"
	Char      string `json:"char,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// EventHub broadcasts typing events to websocket clients. It implements
// multitap.Handler so it can be handed straight to the input machine; the
// handler methods never block on a slow client.
type EventHub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
}

var _ multitap.Handler = (*EventHub)(nil)

// NewEventHub creates a new EventHub with no clients.
func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

func (h *EventHub) Preview(r rune) {
	h.broadcast(Event{Type: "preview", Char: string(r)})
}

func (h *EventHub) Commit(r rune) {
	h.broadcast(Event{Type: "commit", Char: string(r)})
}

func (h *EventHub) Delete() {
	h.broadcast(Event{Type: "delete"})
}

// Clients returns the number of connected clients.
func (h *EventHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *EventHub) broadcast(e Event) {
	e.Timestamp = time.Now().UnixMilli()
	msg, err := json.Marshal(e)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn, send := range h.clients {
		select {
		case send <- msg:
		default:
			log.Printf("websocket client %s is slow, dropping %s event", conn.RemoteAddr(), e.Type)
		}
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan []byte, clientBuffer)

	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()

	done := make(chan struct{})
	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		close(done)
	}()

	go func() {
		for {
			select {
			case <-done:
				return
			case msg := <-send:
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			}
		}
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
