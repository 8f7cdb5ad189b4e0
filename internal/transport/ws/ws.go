package ws

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/wirechat-live/internal/core"
)

// Conn is an open event channel. It is owned by exactly one client.
type Conn interface {
	// Read blocks until the next frame arrives or the channel goes away.
	Read(ctx context.Context) ([]byte, error)
	// Write sends v as a JSON frame.
	Write(ctx context.Context, v any) error
	// Close shuts the channel down with the given closure code.
	Close(code int, reason string) error
}

// Dialer opens event channels.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// WSDialer dials a fixed WebSocket endpoint.
type WSDialer struct {
	url       string
	header    stdhttp.Header
	readLimit int64
}

// Option customizes a WSDialer.
type Option func(*WSDialer)

// WithReadLimit caps the size of a single inbound frame.
func WithReadLimit(n int64) Option {
	return func(d *WSDialer) {
		d.readLimit = n
	}
}

// WithBearerToken attaches a pre-issued token to the handshake.
func WithBearerToken(token string) Option {
	return func(d *WSDialer) {
		if token != "" {
			d.header.Set("Authorization", "Bearer "+token)
		}
	}
}

// NewDialer builds a dialer for the endpoint at url.
func NewDialer(url string, opts ...Option) *WSDialer {
	d := &WSDialer{url: url, header: make(stdhttp.Header)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dial performs the WebSocket handshake.
func (d *WSDialer) Dial(ctx context.Context) (Conn, error) {
	c, _, err := websocket.Dial(ctx, d.url, &websocket.DialOptions{HTTPHeader: d.header})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", d.url, err)
	}
	if d.readLimit > 0 {
		c.SetReadLimit(d.readLimit)
	}
	return &conn{ws: c}, nil
}

type conn struct {
	ws *websocket.Conn
}

func (c *conn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.ws.Read(ctx)
	return data, err
}

func (c *conn) Write(ctx context.Context, v any) error {
	return wsjson.Write(ctx, c.ws, v)
}

func (c *conn) Close(code int, reason string) error {
	return c.ws.Close(websocket.StatusCode(code), reason)
}

// CloseCode extracts the closure code from a read error. A channel that died
// without a close frame reports abnormal closure. A frame over the read limit
// reports message too big, the code the library sends to the peer before it
// drops the socket.
func CloseCode(err error) int {
	if errors.Is(err, websocket.ErrMessageTooBig) {
		return int(websocket.StatusMessageTooBig)
	}
	if status := websocket.CloseStatus(err); status != -1 {
		return int(status)
	}
	return core.CloseAbnormalClosure
}
