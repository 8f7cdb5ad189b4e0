package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-live/internal/app"
	"github.com/vovakirdan/wirechat-live/internal/config"
	wlog "github.com/vovakirdan/wirechat-live/internal/log"
)

type rootOptions struct {
	configPath string
	logLevel   string
	overrides  config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "wirechat-live",
		Short:        "Live chat room client with store fallback",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file path")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error, off)")
	flags.StringVar(&opts.overrides.StoreURL, "store-url", "", "Message Store base URL")
	flags.StringVar(&opts.overrides.ChannelURL, "channel-url", "", "event channel WebSocket URL")
	flags.StringVar(&opts.overrides.AuthToken, "token", "", "pre-issued bearer token")
	flags.DurationVar(&opts.overrides.ReconnectDelay, "reconnect-delay", 0, "wait before the reconnect attempt")

	root.AddCommand(newChatCmd(opts), newHistoryCmd(opts), newSendCmd(opts))
	return root
}

// run loads configuration, builds the app and runs session until it ends or
// the process is interrupted.
func (o *rootOptions) run(cmd *cobra.Command, session app.Session) error {
	bootLogger := wlog.New(cmd.ErrOrStderr(), o.logLevel)

	cfg, path, err := config.Load(bootLogger, o.configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	o.overrides.LogLevel = o.logLevel
	cfg.UpdateFrom(o.overrides)

	logger := wlog.New(cmd.ErrOrStderr(), cfg.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(&cfg, logger)
	if err != nil {
		return err
	}

	err = application.Run(ctx, session)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
