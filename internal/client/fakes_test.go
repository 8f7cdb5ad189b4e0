package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-live/internal/core"
	"github.com/vovakirdan/wirechat-live/internal/proto"
	"github.com/vovakirdan/wirechat-live/internal/transport/ws"
)

type fakeStore struct {
	mu          sync.Mutex
	list        []core.Message
	listErr     error
	created     []core.Draft
	createReply core.Message
	createErr   error
	entered     chan struct{} // signalled when Create starts, if set
	release     chan struct{} // Create waits on it, if set
}

func (s *fakeStore) List(ctx context.Context) ([]core.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]core.Message, len(s.list))
	copy(out, s.list)
	return out, nil
}

func (s *fakeStore) Create(ctx context.Context, draft core.Draft) (core.Message, error) {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, draft)
	if s.createErr != nil {
		return core.Message{}, s.createErr
	}
	return s.createReply, nil
}

func (s *fakeStore) createCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created)
}

type fakeConn struct {
	frames   chan []byte
	closeCh  chan int
	done     chan struct{}
	once     sync.Once
	mu       sync.Mutex
	writes   []any
	writeErr error
	closedAt int
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		frames:  make(chan []byte, 16),
		closeCh: make(chan int, 1),
		done:    make(chan struct{}),
	}
}

func (c *fakeConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case data := <-c.frames:
		return data, nil
	case code := <-c.closeCh:
		return nil, websocket.CloseError{Code: websocket.StatusCode(code), Reason: "test"}
	case <-c.done:
		return nil, websocket.CloseError{Code: websocket.StatusNormalClosure}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeConn) Write(ctx context.Context, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.writes = append(c.writes, v)
	return nil
}

func (c *fakeConn) Close(code int, reason string) error {
	c.mu.Lock()
	if c.closedAt == 0 {
		c.closedAt = code
	}
	c.mu.Unlock()
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *fakeConn) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

// serverClose simulates the peer closing the channel with code.
func (c *fakeConn) serverClose(code int) {
	c.closeCh <- code
}

type fakeDialer struct {
	mu    sync.Mutex
	dials int
	conns []*fakeConn
	err   error
}

func (d *fakeDialer) Dial(ctx context.Context) (ws.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if d.err != nil {
		return nil, d.err
	}
	conn := newFakeConn()
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *fakeDialer) last() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

var errDialRefused = errors.New("connection refused")

type harness struct {
	client *Client
	store  *fakeStore
	dialer *fakeDialer
	clock  *clock.Mock
}

func newHarness(t *testing.T, st *fakeStore, dialer *fakeDialer) *harness {
	t.Helper()

	if st == nil {
		st = &fakeStore{}
	}
	if dialer == nil {
		dialer = &fakeDialer{}
	}
	mock := clock.NewMock()
	disabledLogger := zerolog.New(nil)

	c, err := New(Options{
		Store:  st,
		Dialer: dialer,
		Clock:  mock,
		Logger: &disabledLogger,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	return &harness{client: c, store: st, dialer: dialer, clock: mock}
}

func (h *harness) connect(t *testing.T) *fakeConn {
	t.Helper()
	if err := h.client.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return h.dialer.last()
}

func chatFrame(id any, author, text string) []byte {
	data, _ := json.Marshal(map[string]any{
		"type": proto.TypeChatMessage,
		"message": map[string]any{
			"id":              id,
			"sender_username": author,
			"text":            text,
			"created_at":      "2024-05-01T10:00:00Z",
		},
	})
	return data
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func mustEvent(t *testing.T, ch <-chan core.Event, kind core.EventKind) core.Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("events closed before %v", kind)
			}
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("expected event kind %v not received", kind)
		}
	}
}
