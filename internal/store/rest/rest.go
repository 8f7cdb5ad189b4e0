package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	stdhttp "net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-live/internal/core"
	"github.com/vovakirdan/wirechat-live/internal/proto"
	"github.com/vovakirdan/wirechat-live/internal/store"
)

const (
	messagesPath = "/messages/"
	maxErrorBody = 256
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store talks to the REST Message Store.
type Store struct {
	baseURL string
	client  *stdhttp.Client
	headers stdhttp.Header
	log     *zerolog.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *stdhttp.Client) Option {
	return func(s *Store) {
		if c != nil {
			s.client = c
		}
	}
}

// WithBearerToken attaches a pre-issued token to every request.
func WithBearerToken(token string) Option {
	return func(s *Store) {
		if token != "" {
			s.headers.Set("Authorization", "Bearer "+token)
		}
	}
}

// New creates a store client for the resource under baseURL.
func New(baseURL string, logger *zerolog.Logger, opts ...Option) *Store {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	s := &Store{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  stdhttp.DefaultClient,
		headers: make(stdhttp.Header),
		log:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List fetches all messages.
func (s *Store) List(ctx context.Context) ([]core.Message, error) {
	req, err := s.newRequest(ctx, stdhttp.MethodGet, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("list messages: unexpected status %d", resp.StatusCode)
	}

	var records []proto.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}

	s.log.Debug().Int("count", len(records)).Msg("messages listed")
	return proto.ToMessages(records), nil
}

// Create posts a new message and returns the echoed record.
func (s *Store) Create(ctx context.Context, draft core.Draft) (core.Message, error) {
	body, err := json.Marshal(proto.NewCreateRequest(draft))
	if err != nil {
		return core.Message{}, fmt.Errorf("encode message: %w", err)
	}

	req, err := s.newRequest(ctx, stdhttp.MethodPost, bytes.NewReader(body))
	if err != nil {
		return core.Message{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return core.Message{}, &core.DeliveryError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return core.Message{}, &core.DeliveryError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(excerpt)),
		}
	}

	var rec proto.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return core.Message{}, &core.DeliveryError{Err: fmt.Errorf("decode created message: %w", err)}
	}

	msg := proto.ToMessage(rec)
	if rec.Author() == "" {
		// Some stores echo only the id; keep what the user typed.
		msg.Author = draft.Normalize().Author
	}
	if msg.Text == "" {
		msg.Text = draft.Normalize().Text
	}
	if rec.Recipient() == "" {
		msg.Recipient = draft.Normalize().Recipient
	}
	return msg, nil
}

func (s *Store) newRequest(ctx context.Context, method string, body io.Reader) (*stdhttp.Request, error) {
	req, err := stdhttp.NewRequestWithContext(ctx, method, s.baseURL+messagesPath, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range s.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	return req, nil
}
