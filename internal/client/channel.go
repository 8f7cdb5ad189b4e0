package client

import (
	"strings"

	"github.com/vovakirdan/wirechat-live/internal/core"
	"github.com/vovakirdan/wirechat-live/internal/proto"
	"github.com/vovakirdan/wirechat-live/internal/transport/ws"
)

// readLoop pumps frames from conn to the dispatcher until the channel ends.
func (c *Client) readLoop(conn ws.Conn) {
	defer c.wg.Done()
	for {
		data, err := conn.Read(c.ctx)
		if err != nil {
			c.deliver(inbound{conn: conn, closed: true, code: ws.CloseCode(err), err: err})
			return
		}
		c.deliver(inbound{conn: conn, data: data})
	}
}

func (c *Client) deliver(in inbound) {
	select {
	case c.inbound <- in:
	case <-c.ctx.Done():
	}
}

// dispatch applies inbound items one at a time in arrival order.
func (c *Client) dispatch() {
	defer c.wg.Done()
	for {
		select {
		case <-c.ctx.Done():
			return
		case in := <-c.inbound:
			if in.closed {
				c.handleClose(in)
				continue
			}
			c.handleFrame(in.data)
		}
	}
}

func (c *Client) handleFrame(data []byte) {
	frame, err := proto.ParseInbound(data)
	if err != nil {
		c.log.Warn().Err(err).Msg("dropping malformed frame")
		return
	}

	switch frame.Type {
	case proto.TypeChatMessage:
		rec, err := frame.ChatRecord()
		if err != nil {
			c.log.Warn().Err(err).Msg("dropping malformed chat frame")
			return
		}
		if strings.TrimSpace(rec.Text) == "" {
			c.log.Warn().Str("id", string(rec.ID)).Msg("dropping chat frame without text")
			return
		}
		msg := proto.ToMessage(rec)

		c.mu.Lock()
		added := c.feed.Merge(msg)
		c.mu.Unlock()

		if !added {
			c.log.Debug().Str("id", string(msg.ID)).Msg("duplicate message ignored")
			return
		}
		c.emit(core.Event{Kind: core.EventMessage, Message: msg})
	case proto.TypeError:
		text := frame.ErrorText()
		c.log.Warn().Str("msg", text).Msg("server reported error")
		c.emit(core.Event{Kind: core.EventNotice, Notice: core.ServerError(text)})
	default:
		c.log.Debug().Str("type", frame.Type).Msg("ignoring frame")
	}
}

func (c *Client) handleClose(in inbound) {
	c.mu.Lock()
	if c.conn != in.conn {
		// Torn down or replaced; nothing to do.
		c.mu.Unlock()
		return
	}
	c.conn = nil
	reconnect := c.state.Closed(in.code) && !c.closed
	if reconnect {
		c.timer = c.clock.AfterFunc(c.reconnectDelay, c.reconnect)
	}
	c.mu.Unlock()

	_ = in.conn.Close(closeNormal, "")

	event := c.log.Info()
	if !reconnect {
		event = c.log.Warn()
	}
	event.Err(in.err).
		Int("code", in.code).
		Bool("reconnect", reconnect).
		Dur("delay", c.reconnectDelay).
		Msg("event channel closed")
	c.emitStatus(core.StatusClosed)
}

func (c *Client) reconnect() {
	c.mu.Lock()
	c.timer = nil
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}

	c.log.Info().Msg("reconnecting event channel")
	_ = c.Connect(c.ctx)
}
