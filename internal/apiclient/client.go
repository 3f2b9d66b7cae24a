// Package apiclient talks to the cab booking API on behalf of the admin console.
// Client implements console.IdentityProvider and console.BookingAPI.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cabbooking/internal/domain"
	"cabbooking/internal/session"
)

const (
	defaultTimeout       = 15 * time.Second
	defaultRefreshMargin = 60 * time.Second
)

type Client struct {
	baseURL       *url.URL
	http          *http.Client
	dialer        *websocket.Dialer
	log           *zap.Logger
	refreshMargin time.Duration

	mu       sync.Mutex
	current  *tokens
	timer    *time.Timer
	events   *eventStream
	handlers map[int]func(session.Event)
	nextSub  int
	closed   bool
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithRefreshMargin sets how long before expiry the access token is refreshed.
func WithRefreshMargin(d time.Duration) Option {
	return func(c *Client) { c.refreshMargin = d }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base url scheme %q", u.Scheme)
	}

	c := &Client{
		baseURL:       u,
		http:          &http.Client{Timeout: defaultTimeout},
		dialer:        websocket.DefaultDialer,
		log:           zap.NewNop(),
		refreshMargin: defaultRefreshMargin,
		handlers:      make(map[int]func(session.Event)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close stops background refresh and the event stream.
func (c *Client) Close() {
	c.mu.Lock()
	c.closed = true
	c.stopLocked()
	c.mu.Unlock()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Field string `json:"field"`
		} `json:"details"`
	} `json:"error"`
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = u.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends a request and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, bearer string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.TransientError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return domain.TransientError{Op: method + " " + path, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 500 {
			return domain.TransientError{Op: method + " " + path}
		}
		return fmt.Errorf("%s %s: unexpected response (status %d)", method, path, resp.StatusCode)
	}

	if resp.StatusCode >= 400 || !env.Success {
		return decodeError(resp.StatusCode, &env, method+" "+path)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

// decodeError maps an error envelope back onto the domain taxonomy.
func decodeError(status int, env *envelope, op string) error {
	code, msg, field := "", "", ""
	if env.Error != nil {
		code, msg, field = env.Error.Code, env.Error.Message, env.Error.Details.Field
	}

	switch code {
	case "ACCOUNT_LOCKED":
		return domain.AuthError{Msg: msg, Err: domain.ErrAccountLocked}
	case "INVALID_CREDENTIALS":
		return domain.AuthError{Msg: msg, Err: domain.ErrInvalidCredentials}
	case "REFRESH_TOKEN_REUSED":
		return domain.AuthError{Msg: msg, Err: domain.ErrRefreshTokenReused}
	case "INVALID_REFRESH_TOKEN":
		return domain.AuthError{Msg: msg, Err: domain.ErrInvalidRefreshToken}
	case "INVALID_TRANSITION":
		return domain.ConflictError{Resource: "booking", Msg: msg, Err: domain.ErrInvalidTransition}
	}

	switch {
	case status == http.StatusBadRequest:
		verr := domain.ValidationError{Field: field, Msg: msg}
		if field == "password" {
			verr.Err = domain.ErrWeakPassword
		}
		return verr
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.AuthError{Msg: msg, Err: domain.ErrUnauthorized}
	case status == http.StatusNotFound:
		return domain.NotFoundError{Resource: strings.TrimSuffix(msg, " not found")}
	case status == http.StatusConflict:
		return domain.ConflictError{Msg: msg, Err: domain.ErrDuplicate}
	case status == http.StatusTooManyRequests:
		return domain.AuthError{Msg: msg, Err: domain.ErrAccountLocked}
	case status >= 500 && status != http.StatusInternalServerError:
		return domain.TransientError{Op: op}
	default:
		if msg == "" {
			msg = http.StatusText(status)
		}
		return errors.New(msg)
	}
}

// Health checks GET /healthz. It is the console's keep-alive target.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/healthz", nil), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.TransientError{Op: "healthz", Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return domain.TransientError{Op: "healthz", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	return nil
}
