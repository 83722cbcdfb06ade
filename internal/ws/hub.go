// Package ws pushes live group updates to connected dashboards over
// websockets, so the UI refreshes without polling.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Event is one broadcast frame. Type is group_update, restoration or
// rollover.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Hub fans events out to every connected client. Dead clients are pruned on
// write failure; keepalive pings catch silent disconnects.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

// Broadcast sends the event to all clients and returns how many received it.
func (h *Hub) Broadcast(ev Event) int {
	b, err := json.Marshal(ev)
	if err != nil {
		log.WithError(err).Error("erro ao serializar evento ws")
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for c := range h.clients {
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = c.Close()
			delete(h.clients, c)
		} else {
			n++
		}
	}
	log.WithFields(log.Fields{"type": ev.Type, "clients": n}).Debug("evento ws enviado")
	return n
}

// ClientsCount returns the number of connected clients.
func (h *Hub) ClientsCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Handler upgrades the request and keeps the connection alive until the
// client goes away.
func (h *Hub) Handler(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("falha no upgrade do websocket")
		return
	}

	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mu.Unlock()
	log.WithField("clients", total).Debug("dashboard conectado")

	done := make(chan struct{})
	go func() {
		t := time.NewTicker(20 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				deadline := time.Now().Add(10 * time.Second)
				if err := c.WriteControl(websocket.PingMessage, []byte("ping"), deadline); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	c.SetReadLimit(1024)
	_ = c.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.SetPongHandler(func(string) error {
		_ = c.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			h.mu.Lock()
			delete(h.clients, c)
			total = len(h.clients)
			h.mu.Unlock()
			_ = c.Close()
			close(done)
			log.WithField("clients", total).Debug("dashboard desconectado")
			return
		}
	}
}
