package api

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// SafeConn wraps a websocket connection with a write mutex so concurrent
// stage callbacks can fan into the same socket.
type SafeConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	closed  bool
}

func NewSafeConn(conn *websocket.Conn) *SafeConn {
	return &SafeConn{conn: conn}
}

// WriteJSON writes one message. Writes to a closed connection are dropped
// silently; the hub prunes the subscriber on the next failed write.
func (sc *SafeConn) WriteJSON(v any) error {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	if sc.closed {
		return nil
	}
	if err := sc.conn.WriteJSON(v); err != nil {
		sc.closed = true
		return err
	}
	return nil
}

func (sc *SafeConn) Close() error {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	if sc.closed {
		return nil
	}
	sc.closed = true
	return sc.conn.Close()
}

// Event is one progress message pushed to subscribers of a project.
type Event struct {
	Type    string `json:"type"` // "phase", "file", "done", "error"
	Phase   string `json:"phase,omitempty"`
	Path    string `json:"path,omitempty"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
}

// Hub fans progress events out to the websocket subscribers of each
// project. Subscribing before the generate request is posted is the
// intended order; events for a project nobody watches are dropped.
type Hub struct {
	mu   sync.RWMutex
	subs map[string][]*SafeConn
	log  zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subs: make(map[string][]*SafeConn),
		log:  log,
	}
}

func (h *Hub) Subscribe(projectID string, conn *SafeConn) {
	h.mu.Lock()
	h.subs[projectID] = append(h.subs[projectID], conn)
	h.mu.Unlock()
}

func (h *Hub) Unsubscribe(projectID string, conn *SafeConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.subs[projectID]
	for i, c := range conns {
		if c == conn {
			h.subs[projectID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.subs[projectID]) == 0 {
		delete(h.subs, projectID)
	}
}

// Broadcast delivers one event to every subscriber of the project, pruning
// connections whose writes fail.
func (h *Hub) Broadcast(projectID string, ev Event) {
	h.mu.RLock()
	conns := append([]*SafeConn(nil), h.subs[projectID]...)
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.WriteJSON(ev); err != nil {
			h.log.Debug().Err(err).Str("project_id", projectID).Msg("dropping dead subscriber")
			h.Unsubscribe(projectID, c)
			_ = c.Close()
		}
	}
}
