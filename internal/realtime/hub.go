// Package realtime is the best-effort fan-out collaborator: connected
// clients join a project-scoped room and receive broadcast events. Delivery
// is fire-and-forget; the durable record is whatever the services already
// wrote to the database.
package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teamdesk/teamdesk/internal/auth"
	"github.com/teamdesk/teamdesk/internal/services"
	"gorm.io/gorm"
)

// WriteTimeout specifies the maximum duration for completing a write operation.
const WriteTimeout = 10 * time.Second

// Event names emitted after relevant mutations.
const (
	EventNewMessage      = "new-message"
	EventProgressUpdated = "progress-updated"
)

// Envelope is the wire shape of one broadcast.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub tracks connections per project room.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[uint64]map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[uint64]map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},
	}
}

func (h *Hub) join(projectID uint64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[projectID]
	if !ok {
		room = make(map[*websocket.Conn]struct{})
		h.rooms[projectID] = room
	}
	room[conn] = struct{}{}
}

func (h *Hub) leave(projectID uint64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[projectID]; ok {
		delete(room, conn)
		if len(room) == 0 {
			delete(h.rooms, projectID)
		}
	}
}

// Broadcast sends an event to every connection in the project room. Write
// failures drop the connection and are otherwise ignored: no retry, no
// ordering, no delivery guarantee.
func (h *Hub) Broadcast(projectID uint64, event string, data interface{}) {
	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		log.Printf("broadcast marshal failed for %s: %v", event, err)
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[projectID]))
	for conn := range h.rooms[projectID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.leave(projectID, conn)
			conn.Close()
		}
	}
}

// Handler upgrades GET /ws?token=...&project=... into a room subscription.
// The token resolves the principal and view permission on the project is
// checked before the upgrade. gorilla/websocket upgrades net/http requests,
// so this handler is mounted through fiber's adaptor middleware.
func (h *Hub) Handler(tm *auth.TokenManager, db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := tm.CheckToken(r.URL.Query().Get("token"))
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		projectID, err := strconv.ParseUint(r.URL.Query().Get("project"), 10, 64)
		if err != nil {
			http.Error(w, "invalid project id", http.StatusBadRequest)
			return
		}

		project, err := services.GetProject(db, projectID)
		if err != nil {
			http.Error(w, "project not found", http.StatusNotFound)
			return
		}
		if !services.CanViewProject(principal, project) {
			http.Error(w, "no access to project", http.StatusForbidden)
			return
		}

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		h.join(projectID, conn)
		defer func() {
			h.leave(projectID, conn)
			conn.Close()
		}()

		// Subscribers only listen; drain control frames until the peer goes
		// away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
