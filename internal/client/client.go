package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-live/internal/core"
	"github.com/vovakirdan/wirechat-live/internal/proto"
	"github.com/vovakirdan/wirechat-live/internal/store"
	"github.com/vovakirdan/wirechat-live/internal/transport/ws"
	"github.com/vovakirdan/wirechat-live/internal/utils"
)

const (
	// DefaultReconnectDelay is the wait before the single reconnect attempt.
	DefaultReconnectDelay = 3 * time.Second
	// DefaultEventBuffer is the capacity of the Events channel.
	DefaultEventBuffer = 64

	closeNormal = 1000
)

// Path tells which delivery path a Send used.
type Path int

const (
	PathNone Path = iota
	PathChannel
	PathStore
)

func (p Path) String() string {
	switch p {
	case PathChannel:
		return "channel"
	case PathStore:
		return "store"
	default:
		return "none"
	}
}

// Options configures a Client.
type Options struct {
	Store          store.Store
	Dialer         ws.Dialer
	Clock          clock.Clock
	Logger         *zerolog.Logger
	ReconnectDelay time.Duration
	EventBuffer    int
	Palette        []core.Accent
}

// Client keeps a live view of the chat room. It owns its event channel and
// message feed exclusively.
type Client struct {
	store          store.Store
	dialer         ws.Dialer
	clock          clock.Clock
	log            *zerolog.Logger
	reconnectDelay time.Duration
	palette        []core.Accent

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	inbound chan inbound

	mu     sync.Mutex
	feed   *core.Feed
	state  *core.ConnState
	conn   ws.Conn
	timer  *clock.Timer
	invite string
	closed bool

	sending atomic.Bool

	eventsMu     sync.RWMutex
	events       chan core.Event
	eventsClosed bool
}

// inbound is one item handed from a reader goroutine to the dispatcher.
type inbound struct {
	conn   ws.Conn
	data   []byte
	closed bool
	code   int
	err    error
}

// New builds a client. The event channel is not opened until Connect or Start.
func New(opts Options) (*Client, error) {
	if opts.Store == nil {
		return nil, errors.New("client: store is required")
	}
	if opts.Dialer == nil {
		return nil, errors.New("client: dialer is required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = DefaultEventBuffer
	}
	if len(opts.Palette) == 0 {
		opts.Palette = core.DefaultPalette
	}

	logger := opts.Logger.With().Str("session_id", utils.NewID()).Logger()
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		store:          opts.Store,
		dialer:         opts.Dialer,
		clock:          opts.Clock,
		log:            &logger,
		reconnectDelay: opts.ReconnectDelay,
		palette:        opts.Palette,
		ctx:            ctx,
		cancel:         cancel,
		inbound:        make(chan inbound),
		feed:           core.NewFeed(),
		state:          core.NewConnState(),
		events:         make(chan core.Event, opts.EventBuffer),
	}

	c.wg.Add(1)
	go c.dispatch()

	return c, nil
}

// Start loads the message history and then opens the event channel.
// Load and connect failures are logged; the client keeps working on the
// store fallback.
func (c *Client) Start(ctx context.Context) error {
	if c.isClosed() {
		return core.ErrClientClosed
	}
	_ = c.LoadInitialMessages(ctx)
	if err := c.Connect(ctx); errors.Is(err, core.ErrClientClosed) {
		return err
	}
	return nil
}

// LoadInitialMessages replaces the feed with the store's message list.
// On failure the feed is left untouched and the error is only logged.
func (c *Client) LoadInitialMessages(ctx context.Context) error {
	msgs, err := c.store.List(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("initial message load failed")
		return fmt.Errorf("load messages: %w", err)
	}

	c.mu.Lock()
	c.feed.Replace(msgs)
	snapshot := c.feed.Messages()
	c.mu.Unlock()

	c.log.Info().Int("count", len(snapshot)).Msg("messages loaded")
	c.emit(core.Event{Kind: core.EventHistory, Messages: snapshot})
	return nil
}

// Connect opens the event channel. A failed dial leaves the channel closed
// for good; every send then goes to the store.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return core.ErrClientClosed
	}
	if c.conn != nil || c.state.Status() == core.StatusConnecting {
		c.mu.Unlock()
		return nil
	}
	c.state.Dial()
	c.mu.Unlock()
	c.emitStatus(core.StatusConnecting)

	conn, err := c.dialer.Dial(ctx)
	if err != nil {
		c.mu.Lock()
		c.state.Failed()
		c.mu.Unlock()
		c.log.Warn().Err(err).Msg("event channel unavailable, falling back to store")
		c.emitStatus(core.StatusClosed)
		return fmt.Errorf("connect channel: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close(closeNormal, "client closed")
		return core.ErrClientClosed
	}
	c.conn = conn
	c.state.Opened()
	c.wg.Add(1)
	go c.readLoop(conn)
	c.mu.Unlock()

	c.log.Info().Msg("event channel open")
	c.emitStatus(core.StatusOpen)
	return nil
}

// Send delivers a message over the channel when it is open, otherwise (or
// when the push fails) through a direct store write. Only one send may be in
// flight at a time.
func (c *Client) Send(ctx context.Context, draft core.Draft) (Path, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return PathNone, err
	}
	if !c.sending.CompareAndSwap(false, true) {
		return PathNone, core.ErrSendInFlight
	}
	defer c.sending.Store(false)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return PathNone, core.ErrClientClosed
	}
	conn := c.conn
	open := conn != nil && c.state.Status() == core.StatusOpen
	c.mu.Unlock()

	if open {
		err := conn.Write(ctx, proto.NewChatFrame(draft))
		if err == nil {
			return PathChannel, nil
		}
		c.log.Warn().Err(err).Msg("channel push failed, falling back to store")
	}

	msg, err := c.store.Create(ctx, draft)
	if err != nil {
		var delivery *core.DeliveryError
		if !errors.As(err, &delivery) {
			err = &core.DeliveryError{Err: err}
		}
		c.log.Warn().Err(err).Msg("store write failed")
		return PathStore, err
	}

	c.mu.Lock()
	added := c.feed.Merge(msg)
	c.mu.Unlock()
	if added {
		c.emit(core.Event{Kind: core.EventMessage, Message: msg})
	}
	return PathStore, nil
}

// Reset clears the feed and the invite code. The channel stays as it is.
func (c *Client) Reset() {
	c.mu.Lock()
	c.feed.Reset()
	c.invite = ""
	c.mu.Unlock()

	c.emit(core.Event{Kind: core.EventHistory, Messages: []core.Message{}})
}

// Invite returns the session's invite code, generating one on first use.
func (c *Client) Invite() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.invite == "" {
		c.invite = utils.NewID()
	}
	return c.invite
}

// Messages returns a snapshot of the feed.
func (c *Client) Messages() []core.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.feed.Messages()
}

// Colors returns the author accents for the current feed.
func (c *Client) Colors() map[string]core.Accent {
	return core.AssignColors(c.Messages(), c.palette)
}

// Status returns the event channel status.
func (c *Client) Status() core.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Status()
}

// Events streams feed, notice and status changes. It is closed by Close.
// Events are dropped when the consumer falls behind.
func (c *Client) Events() <-chan core.Event {
	return c.events
}

// Close tears the client down: it cancels a pending reconnect, closes the
// channel and waits for background goroutines.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	conn := c.conn
	c.conn = nil
	c.state.Closed(closeNormal)
	c.mu.Unlock()

	if conn != nil {
		if err := conn.Close(closeNormal, "client closed"); err != nil {
			c.log.Debug().Err(err).Msg("close event channel")
		}
	}
	c.cancel()
	c.wg.Wait()

	c.eventsMu.Lock()
	c.eventsClosed = true
	close(c.events)
	c.eventsMu.Unlock()

	c.log.Info().Msg("client closed")
	return nil
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) emit(ev core.Event) {
	c.eventsMu.RLock()
	defer c.eventsMu.RUnlock()
	if c.eventsClosed {
		return
	}
	select {
	case c.events <- ev:
	default:
		c.log.Warn().Str("kind", ev.Kind.String()).Msg("event dropped, consumer too slow")
	}
}

func (c *Client) emitStatus(s core.Status) {
	c.emit(core.Event{Kind: core.EventStatus, Status: s})
}
