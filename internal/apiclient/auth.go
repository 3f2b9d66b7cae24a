package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"cabbooking/internal/console"
	"cabbooking/internal/domain"
	"cabbooking/internal/pkg/jwt"
	"cabbooking/internal/session"
)

const (
	authPath  = "/api/v1/auth"
	adminPath = "/api/v1/admin"

	refreshTimeout = 10 * time.Second
	expirySkew     = 5 * time.Second
)

type wireSession struct {
	AccessToken  string               `json:"access_token"`
	TokenType    string               `json:"token_type"`
	ExpiresIn    int64                `json:"expires_in"`
	ExpiresAt    int64                `json:"expires_at"`
	RefreshToken string               `json:"refresh_token"`
	Purpose      domain.TokenPurpose  `json:"purpose"`
	User         domain.AdminIdentity `json:"user"`
}

// tokens is the session the client currently holds.
type tokens struct {
	access    string
	refresh   string
	expiresAt time.Time
	purpose   domain.TokenPurpose
	sessionID string
	user      domain.AdminIdentity
}

func (w wireSession) tokens() *tokens {
	t := &tokens{
		access:    w.AccessToken,
		refresh:   w.RefreshToken,
		expiresAt: time.Unix(w.ExpiresAt, 0),
		purpose:   w.Purpose,
		user:      w.User,
	}
	if claims, err := jwt.PeekClaims(w.AccessToken); err == nil {
		t.sessionID = claims.SessionID
	}
	return t
}

func (t *tokens) providerSession() *console.ProviderSession {
	return &console.ProviderSession{User: t.user, ExpiresAt: t.expiresAt, Purpose: t.purpose}
}

func (c *Client) snapshot() *tokens {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	cp := *c.current
	return &cp
}

// adopt makes t the current session, schedules its refresh and makes sure the
// event stream follows t's session id.
func (c *Client) adopt(t *tokens) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.current = t
	c.scheduleRefreshLocked(t)

	redial := c.events == nil || c.events.sessionID != t.sessionID
	if redial && c.events != nil {
		c.events.close()
		c.events = nil
	}
	c.mu.Unlock()

	if redial && t.sessionID != "" {
		c.connectEvents(t)
	}
}

// drop clears the session if it is still the one identified by sessionID;
// an empty id clears whatever is held.
func (c *Client) drop(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return false
	}
	if sessionID != "" && c.current.sessionID != sessionID {
		return false
	}
	c.current = nil
	c.stopLocked()
	return true
}

// stopLocked must be called with mu held.
func (c *Client) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.events != nil {
		c.events.close()
		c.events = nil
	}
}

func (c *Client) scheduleRefreshLocked(t *tokens) {
	if c.timer != nil {
		c.timer.Stop()
	}
	remaining := time.Until(t.expiresAt)
	delay := remaining - c.refreshMargin
	if delay <= 0 {
		delay = remaining / 2
	}
	if delay < time.Second {
		delay = time.Second
	}
	c.timer = time.AfterFunc(delay, c.autoRefresh)
}

func (c *Client) autoRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if _, err := c.Refresh(ctx); err != nil {
		c.log.Warn("automatic token refresh failed", zap.Error(err))
	}
}

func (c *Client) emit(ev session.Event) {
	c.mu.Lock()
	handlers := make([]func(session.Event), 0, len(c.handlers))
	for _, h := range c.handlers {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

type subscription struct {
	c  *Client
	id int
}

func (s subscription) Unsubscribe() {
	s.c.mu.Lock()
	delete(s.c.handlers, s.id)
	s.c.mu.Unlock()
}

// OnSessionChange registers handler for session changes, local and pushed.
func (c *Client) OnSessionChange(handler func(session.Event)) console.Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.handlers[id] = handler
	return subscription{c: c, id: id}
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*console.ProviderSession, error) {
	var ws wireSession
	err := c.do(ctx, http.MethodPost, authPath+"/token", url.Values{"grant_type": {"password"}}, "",
		map[string]string{"email": email, "password": password}, &ws)
	if err != nil {
		return nil, err
	}

	t := ws.tokens()
	c.adopt(t)
	c.emit(session.SignedIn(t.user, t.expiresAt))
	return t.providerSession(), nil
}

// Refresh rotates the held refresh token. A rejected token ends the session.
func (c *Client) Refresh(ctx context.Context) (*console.ProviderSession, error) {
	cur := c.snapshot()
	if cur == nil {
		return nil, domain.AuthError{Msg: "no session", Err: domain.ErrUnauthorized}
	}

	var ws wireSession
	err := c.do(ctx, http.MethodPost, authPath+"/token", url.Values{"grant_type": {"refresh_token"}}, "",
		map[string]string{"refresh_token": cur.refresh}, &ws)
	if err != nil {
		if domain.IsAuth(err) && c.drop(cur.sessionID) {
			c.emit(session.SignedOut())
		}
		return nil, err
	}

	t := ws.tokens()
	c.adopt(t)
	c.emit(session.TokenRefreshed(t.user, t.expiresAt))
	return t.providerSession(), nil
}

// accessToken returns a usable access token, refreshing it first when it is
// about to expire.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	cur := c.snapshot()
	if cur == nil {
		return "", domain.AuthError{Msg: "no session", Err: domain.ErrUnauthorized}
	}
	if time.Until(cur.expiresAt) > expirySkew {
		return cur.access, nil
	}
	if _, err := c.Refresh(ctx); err != nil {
		return "", err
	}
	if cur = c.snapshot(); cur == nil {
		return "", domain.AuthError{Msg: "no session", Err: domain.ErrUnauthorized}
	}
	return cur.access, nil
}

// GetSession confirms the held session with the server. It returns nil, nil
// when there is none or the server no longer accepts it.
func (c *Client) GetSession(ctx context.Context) (*console.ProviderSession, error) {
	cur := c.snapshot()
	if cur == nil {
		return nil, nil
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		if domain.IsAuth(err) {
			return nil, nil
		}
		return nil, err
	}

	var out struct {
		User domain.AdminIdentity `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, authPath+"/user", nil, token, nil, &out); err != nil {
		if domain.IsAuth(err) {
			c.drop(cur.sessionID)
			return nil, nil
		}
		return nil, err
	}

	c.mu.Lock()
	if c.current != nil && c.current.sessionID == cur.sessionID {
		c.current.user = out.User
	}
	c.mu.Unlock()

	now := c.snapshot()
	if now == nil {
		return nil, nil
	}
	return now.providerSession(), nil
}

// SetSession adopts a token pair such as the one in a reset link. On rejection
// nothing from the pair is kept.
func (c *Client) SetSession(ctx context.Context, accessToken, refreshToken string) (*console.ProviderSession, error) {
	var ws wireSession
	err := c.do(ctx, http.MethodPost, authPath+"/session", nil, "",
		map[string]string{"access_token": accessToken, "refresh_token": refreshToken}, &ws)
	if err != nil {
		if domain.IsAuth(err) {
			c.drop("")
		}
		return nil, err
	}

	t := ws.tokens()
	c.adopt(t)
	return t.providerSession(), nil
}

// SignOut revokes the session on the server and always forgets it locally.
func (c *Client) SignOut(ctx context.Context) error {
	cur := c.snapshot()
	if cur == nil {
		c.emit(session.SignedOut())
		return nil
	}

	var err error
	token, tokErr := c.accessToken(ctx)
	if tokErr == nil {
		err = c.do(ctx, http.MethodPost, authPath+"/logout", nil, token, nil, nil)
	} else if !domain.IsAuth(tokErr) {
		err = tokErr
	}

	c.drop("")
	c.emit(session.SignedOut())

	var aerr domain.AuthError
	if errors.As(err, &aerr) {
		return nil
	}
	return err
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, authPath+"/recover", nil, "", map[string]string{"email": email}, nil)
}

// UpdateCredential changes the password and adopts the rotated session.
func (c *Client) UpdateCredential(ctx context.Context, newPassword string) (*console.ProviderSession, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var ws wireSession
	if err := c.do(ctx, http.MethodPut, authPath+"/user", nil, token, map[string]string{"password": newPassword}, &ws); err != nil {
		return nil, err
	}

	t := ws.tokens()
	c.adopt(t)
	return t.providerSession(), nil
}

// SessionID is the id of the held session, empty when signed out.
func (c *Client) SessionID() string {
	if t := c.snapshot(); t != nil {
		return t.sessionID
	}
	return ""
}
