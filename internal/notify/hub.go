// Package notify pushes group events to connected WebSocket clients.
package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/ryanuber/go-glob"
)

type EventType string

const (
	EventTransactionUpdate EventType = "transaction-update"
	EventBalanceUpdate     EventType = "balance-update"
	EventGroupSettled      EventType = "group-settled"
	EventBudgetAlert       EventType = "budget-alert"
)

// Event is one message pushed to the clients of a group room.
type Event struct {
	Type    EventType `json:"type"`
	GroupID uuid.UUID `json:"groupId"`
	Data    any       `json:"data,omitempty"`
}

const (
	writeWait = 10 * time.Second

	// sendBufferSize is the per client queue. When the queue is full the
	// event is dropped for that client, Emit never blocks a request.
	sendBufferSize = 16
)

type client struct {
	conn *websocket.Conn
	send chan Event
}

// Hub tracks the WebSocket clients per group room.
type Hub struct {
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*client]struct{}
}

// NewHub creates a hub. allowedOrigins is a space separated list of glob
// patterns that client origins are matched against.
func NewHub(allowedOrigins []string) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")

				// Non-browser clients do not send an Origin header
				if origin == "" {
					return true
				}

				for _, pattern := range allowedOrigins {
					if glob.Glob(pattern, origin) {
						return true
					}
				}

				return false
			},
		},
		rooms: make(map[uuid.UUID]map[*client]struct{}),
	}
}

// Serve upgrades the request to a WebSocket connection and joins the
// client to the room of the group.
func (h *Hub) Serve(c *gin.Context, groupID uuid.UUID) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	cl := &client{
		conn: conn,
		send: make(chan Event, sendBufferSize),
	}

	h.join(groupID, cl)

	go cl.writePump()
	go func() {
		cl.readPump()
		h.leave(groupID, cl)
	}()
}

// Emit sends an event to all clients in the room of the group. Clients
// whose queue is full miss the event. Emit never blocks.
func (h *Hub) Emit(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for cl := range h.rooms[event.GroupID] {
		select {
		case cl.send <- event:
		default:
			log.Debug().Str("group-id", event.GroupID.String()).Msg("dropping event for slow websocket client")
		}
	}
}

// ClientCount returns the number of clients in the room of the group.
func (h *Hub) ClientCount(groupID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[groupID])
}

func (h *Hub) join(groupID uuid.UUID, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[groupID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[groupID] = room
	}

	room[cl] = struct{}{}
}

func (h *Hub) leave(groupID uuid.UUID, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[groupID]
	if !ok {
		return
	}

	if _, ok := room[cl]; ok {
		delete(room, cl)
		close(cl.send)
	}

	if len(room) == 0 {
		delete(h.rooms, groupID)
	}
}

// readPump discards incoming messages, the API is push only. It returns
// when the client closes the connection.
func (c *client) readPump() {
	defer c.conn.Close()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for event := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(event); err != nil {
			return
		}
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
