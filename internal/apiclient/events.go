package apiclient

import (
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cabbooking/internal/domain"
	"cabbooking/internal/session"
)

const (
	eventsWriteWait = 5 * time.Second
	eventsPongWait  = 70 * time.Second
)

// eventStream is the websocket carrying pushed session events for one session.
type eventStream struct {
	sessionID string
	conn      *websocket.Conn
	once      sync.Once
}

func (s *eventStream) close() {
	s.once.Do(func() {
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(eventsWriteWait))
		_ = s.conn.Close()
	})
}

func (c *Client) eventsURL(access string) string {
	u := *c.baseURL
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = u.Path + authPath + "/events"
	u.RawQuery = url.Values{"token": {access}}.Encode()
	return u.String()
}

// connectEvents dials the event stream for t. Push is best effort: a failed
// dial is logged and the session carries on without it.
func (c *Client) connectEvents(t *tokens) {
	conn, _, err := c.dialer.Dial(c.eventsURL(t.access), nil)
	if err != nil {
		c.log.Warn("session events unavailable", zap.Error(err))
		return
	}
	stream := &eventStream{sessionID: t.sessionID, conn: conn}

	c.mu.Lock()
	if c.closed || c.current == nil || c.current.sessionID != t.sessionID || c.events != nil {
		c.mu.Unlock()
		stream.close()
		return
	}
	c.events = stream
	c.mu.Unlock()

	go c.readEvents(stream)
}

func (c *Client) readEvents(s *eventStream) {
	defer func() {
		c.mu.Lock()
		if c.events == s {
			c.events = nil
		}
		c.mu.Unlock()
		s.close()
	}()

	s.conn.SetReadDeadline(time.Now().Add(eventsPongWait))
	s.conn.SetPingHandler(func(data string) error {
		s.conn.SetReadDeadline(time.Now().Add(eventsPongWait))
		return s.conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(eventsWriteWait))
	})

	for {
		var wire domain.SessionEvent
		if err := s.conn.ReadJSON(&wire); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("session events closed", zap.Error(err))
			}
			return
		}

		var expiresAt time.Time
		if t := c.snapshot(); t != nil {
			expiresAt = t.expiresAt
		}
		ev, ok := session.FromWire(wire, expiresAt)
		if !ok {
			c.log.Debug("ignoring session event", zap.String("event", string(wire.Event)))
			continue
		}

		if ev.Kind == session.EventSignedOut {
			if c.dropPushed(s) {
				c.emit(ev)
			}
			return
		}
		c.emit(ev)
	}
}

// dropPushed forgets the session after the server revoked it. It must not
// close s, which the read loop still owns. It reports false when s belongs to
// a session the client has already moved past.
func (c *Client) dropPushed(s *eventStream) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.sessionID != s.sessionID {
		return false
	}
	c.current = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.events == s {
		c.events = nil
	}
	return true
}
