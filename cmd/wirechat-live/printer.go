package main

import (
	"fmt"
	"io"

	"github.com/vovakirdan/wirechat-live/internal/core"
)

type printer struct {
	out io.Writer
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out}
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) message(m core.Message, colors map[string]core.Accent) {
	author := m.Author
	if accent, ok := colors[m.Author]; ok && accent.ANSI != "" {
		author = "\x1b[" + accent.ANSI + "m" + m.Author + "\x1b[0m"
	}
	target := ""
	if !m.Broadcast() {
		target = " -> " + m.Recipient
	}
	ts := m.DisplayTime()
	if ts == "" {
		ts = "--:--"
	}
	p.line("[%s] %s%s: %s", ts, author, target, m.Text)
}

func (p *printer) history(msgs []core.Message, colors map[string]core.Accent) {
	for _, m := range msgs {
		p.message(m, colors)
	}
}

func (p *printer) status(s core.Status) {
	switch s {
	case core.StatusOpen:
		p.line("[system] live channel connected")
	case core.StatusClosed:
		p.line("[system] live channel unavailable, messages go through the store")
	}
}

func (p *printer) event(ev core.Event, colors map[string]core.Accent) {
	switch ev.Kind {
	case core.EventMessage:
		p.message(ev.Message, colors)
	case core.EventHistory:
		if len(ev.Messages) == 0 {
			p.line("[system] view cleared")
			return
		}
		p.history(ev.Messages, colors)
	case core.EventNotice:
		if ev.Notice != nil {
			p.line("[notice] %s", ev.Notice.Message)
		}
	case core.EventStatus:
		p.status(ev.Status)
	}
}
