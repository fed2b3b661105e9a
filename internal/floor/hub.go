package floor

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 5 * time.Second

	// updates queued per subscriber before it counts as stalled
	sendBuffer = 16
)

// Update is pushed to every subscriber
type Update struct {
	Type    string        `json:"type"`
	FloorID string        `json:"floorId"`
	Table   *models.Table `json:"table,omitempty"`
	Floor   *models.Floor `json:"floor,omitempty"`
	At      time.Time     `json:"at"`
}

// subscriber owns one connection. Only its writer goroutine writes to conn;
// the hub closes send to stop it.
type subscriber struct {
	send chan []byte
	addr string
}

// Hub keeps the websocket subscribers of the floor plan
type Hub struct {
	mu       sync.Mutex
	subs     map[*subscriber]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub accepts upgrades from allowedOrigins, or from any origin when it contains "*"
func NewHub(logger *slog.Logger, allowedOrigins []string) *Hub {
	h := &Hub{subs: make(map[*subscriber]struct{}), logger: logger}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

// ServeHTTP upgrades the request and holds the connection until the client leaves
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	sub := &subscriber{send: make(chan []byte, sendBuffer), addr: r.RemoteAddr}
	h.register(sub)
	h.logger.Info("floor subscriber connected", "remote_addr", sub.addr)

	go h.write(conn, sub)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.unregister(sub)
	conn.Close()
	h.logger.Info("floor subscriber disconnected", "remote_addr", sub.addr)
}

// write drains sub.send onto conn until the hub closes the queue or a write fails.
// Closing conn on failure ends the read loop in ServeHTTP.
func (h *Hub) write(conn *websocket.Conn, sub *subscriber) {
	defer conn.Close()

	for data := range sub.send {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("floor subscriber write failed", "remote_addr", sub.addr, "error", err)
			return
		}
	}
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(time.Second))
}

func (h *Hub) register(sub *subscriber) {
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
}

// unregister closes the queue once, whoever gets there first
func (h *Hub) unregister(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(sub)
}

func (h *Hub) dropLocked(sub *subscriber) {
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.send)
	}
}

// Count returns the number of connected subscribers
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Broadcast queues msg for every subscriber without waiting on the network.
// A subscriber whose queue is full is disconnected.
func (h *Hub) Broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode floor update", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case sub.send <- data:
		default:
			h.logger.Warn("dropping stalled floor subscriber", "remote_addr", sub.addr)
			h.dropLocked(sub)
		}
	}
}

func (h *Hub) TableChanged(floorID string, table models.Table) {
	h.Broadcast(Update{Type: "table.updated", FloorID: floorID, Table: &table, At: time.Now()})
}

func (h *Hub) FloorChanged(floor models.Floor) {
	h.Broadcast(Update{Type: "floor.updated", FloorID: floor.ID, Floor: &floor, At: time.Now()})
}
