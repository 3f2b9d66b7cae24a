package auth

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cabbooking/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// connection is one console subscribed to its session's events.
type connection struct {
	userID    string
	sessionID string
	conn      *websocket.Conn
	send      chan []byte
}

// Hub fans session events out to the consoles holding that session.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]map[*connection]struct{}
	log      *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		sessions: make(map[string]map[*connection]struct{}),
		log:      log,
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[c.sessionID]
	if !ok {
		set = make(map[*connection]struct{})
		h.sessions[c.sessionID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detach(c)
}

// detach must be called with mu held.
func (h *Hub) detach(c *connection) {
	set, ok := h.sessions[c.sessionID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.sessions, c.sessionID)
	}
	close(c.send)
}

// Connected reports how many consoles are subscribed to a session.
func (h *Hub) Connected(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions[sessionID])
}

// Push delivers an event to every console of a session. Slow clients are skipped.
func (h *Hub) Push(sessionID string, event domain.SessionEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.sessions[sessionID] {
		select {
		case c.send <- data:
		default:
			h.log.Warn("session event dropped", zap.String("session_id", sessionID), zap.String("event", string(event.Event)))
		}
	}
}

// SignedOut tells each session's consoles they were signed out, then disconnects them.
func (h *Hub) SignedOut(sessionIDs ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sid := range sessionIDs {
		data, _ := json.Marshal(domain.SessionEvent{Event: domain.SessionSignedOut, SessionID: sid})
		for c := range h.sessions[sid] {
			select {
			case c.send <- data:
			default:
			}
			h.detach(c)
		}
	}
}

// Close disconnects every console.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.sessions {
		for c := range set {
			h.detach(c)
		}
	}
}

// ServeWS registers a connection and runs its pumps; it blocks until the peer goes away.
func (h *Hub) ServeWS(conn *websocket.Conn, userID, sessionID string) {
	c := &connection{
		userID:    userID,
		sessionID: sessionID,
		conn:      conn,
		send:      make(chan []byte, 16),
	}
	h.register(c)
	h.log.Debug("session events connected", zap.String("user_id", userID), zap.String("session_id", sessionID))

	go h.writePump(c)
	h.readPump(c)
}

// readPump only services control frames; consoles never send events.
func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("session events read error", zap.String("session_id", c.sessionID), zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
