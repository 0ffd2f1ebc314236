package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"
	"vehicletracker/internal/core/model"

	"golang.org/x/net/websocket"
)

// Message is the frame sent to live clients.
type Message struct {
	Type      string         `json:"type"` // "trace"
	VehicleID string         `json:"vehicle_id"`
	Data      []model.Sample `json:"data"`
}

type HubMetrics interface {
	SubscribersChanged(n int)
}

type client struct {
	vehicleID string
	conn      *websocket.Conn
	send      chan []byte
}

// Hub fans generated traces out to websocket clients grouped by vehicle id.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]bool
	total   int
	metrics HubMetrics
}

func NewHub(m HubMetrics) *Hub {
	return &Hub{
		clients: make(map[string]map[*client]bool),
		metrics: m,
	}
}

// ServeWS upgrades GET /api/live/{vehicle_id} and streams that vehicle's
// traces until the client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.PathValue("vehicle_id")
	if vehicleID == "" {
		http.Error(w, "vehicle_id required", http.StatusBadRequest)
		return
	}

	websocket.Handler(func(conn *websocket.Conn) {
		// the stream outlives the server's request deadlines
		conn.SetDeadline(time.Time{})

		c := &client{vehicleID: vehicleID, conn: conn, send: make(chan []byte, 16)}
		h.register(c)
		defer h.unregister(c)

		slog.Info("live client connected", "vehicle_id", vehicleID, "remote", r.RemoteAddr)

		go func() {
			for msg := range c.send {
				if _, err := conn.Write(msg); err != nil {
					return
				}
			}
		}()

		// reads only detect the close
		buf := make([]byte, 512)
		for {
			if _, err := conn.Read(buf); err != nil {
				return
			}
		}
	}).ServeHTTP(w, r)
}

// Broadcast sends samples to every client watching vehicleID. Slow clients
// whose buffer is full miss the frame.
func (h *Hub) Broadcast(vehicleID string, samples []model.Sample) {
	data, err := json.Marshal(Message{Type: "trace", VehicleID: vehicleID, Data: samples})
	if err != nil {
		slog.Error("marshal live frame failed", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[vehicleID] {
		select {
		case c.send <- data:
		default:
			slog.Warn("live client too slow, frame dropped", "vehicle_id", vehicleID)
		}
	}
}

func (h *Hub) Subscribers(vehicleID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[vehicleID])
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, clients := range h.clients {
		for c := range clients {
			close(c.send)
			c.conn.Close()
		}
		delete(h.clients, id)
	}
	h.total = 0
	h.reportLocked()
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c.vehicleID] == nil {
		h.clients[c.vehicleID] = make(map[*client]bool)
	}
	h.clients[c.vehicleID][c] = true
	h.total++
	h.reportLocked()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[c.vehicleID]
	if !ok || !clients[c] {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.clients, c.vehicleID)
	}
	h.total--
	h.reportLocked()
	slog.Info("live client disconnected", "vehicle_id", c.vehicleID)
}

func (h *Hub) reportLocked() {
	if h.metrics != nil {
		h.metrics.SubscribersChanged(h.total)
	}
}
