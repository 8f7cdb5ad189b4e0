package app

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-live/internal/client"
	"github.com/vovakirdan/wirechat-live/internal/config"
	"github.com/vovakirdan/wirechat-live/internal/store/rest"
	"github.com/vovakirdan/wirechat-live/internal/transport/ws"
)

// Session is the interactive part of a run. It must return when ctx is done
// or when the client's event stream closes.
type Session func(ctx context.Context, c *client.Client) error

// App wires together store, channel, and client.
type App struct {
	client *client.Client
	log    *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	st := rest.New(cfg.StoreURL, logger, rest.WithBearerToken(cfg.AuthToken))
	dialer := ws.NewDialer(cfg.ChannelURL,
		ws.WithReadLimit(cfg.ReadLimit),
		ws.WithBearerToken(cfg.AuthToken),
	)

	c, err := client.New(client.Options{
		Store:          st,
		Dialer:         dialer,
		Clock:          clock.New(),
		Logger:         logger,
		ReconnectDelay: cfg.ReconnectDelay,
		EventBuffer:    cfg.EventBuffer,
	})
	if err != nil {
		return nil, fmt.Errorf("init client: %w", err)
	}

	logger.Debug().
		Str("store_url", cfg.StoreURL).
		Str("channel_url", cfg.ChannelURL).
		Msg("client configured")

	return &App{client: c, log: logger}, nil
}

// Client exposes the underlying delivery client.
func (a *App) Client() *client.Client {
	return a.client
}

// Run starts the client and blocks until the session returns or ctx is
// cancelled; the client is torn down either way.
func (a *App) Run(ctx context.Context, session Session) error {
	if err := a.client.Start(ctx); err != nil {
		a.cleanup()
		return err
	}

	sessionErr := make(chan error, 1)
	go func() {
		sessionErr <- session(ctx, a.client)
	}()

	var err error
	select {
	case err = <-sessionErr:
	case <-ctx.Done():
		a.log.Info().Msg("shutting down client")
	}

	a.cleanup()
	return err
}

// cleanup closes the client and its channel.
func (a *App) cleanup() {
	if err := a.client.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close client")
	}
}
