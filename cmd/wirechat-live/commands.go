package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-live/internal/client"
	"github.com/vovakirdan/wirechat-live/internal/core"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	var user, to string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Join the room and chat interactively",
		Long: "Join the room and chat interactively.\n\n" +
			"Lines are sent as messages. /reset clears the view, /invite prints the\n" +
			"session invite code, /quit leaves.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(user) == "" {
				return errors.New("--user is required")
			}
			return opts.run(cmd, func(ctx context.Context, c *client.Client) error {
				return chatSession(ctx, c, cmd.InOrStdin(), newPrinter(cmd.OutOrStdout()), user, to)
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "display name (required)")
	cmd.Flags().StringVar(&to, "to", "", "recipient; empty sends to everyone")
	return cmd
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the room's messages and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(_ context.Context, c *client.Client) error {
				newPrinter(cmd.OutOrStdout()).history(c.Messages(), c.Colors())
				return nil
			})
		},
	}
}

func newSendCmd(opts *rootOptions) *cobra.Command {
	var user, to string

	cmd := &cobra.Command{
		Use:   "send TEXT...",
		Short: "Send one message and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := core.Draft{Author: user, Text: strings.Join(args, " "), Recipient: to}
			if err := draft.Validate(); err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, c *client.Client) error {
				path, err := c.Send(ctx, draft)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "sent via %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "display name (required)")
	cmd.Flags().StringVar(&to, "to", "", "recipient; empty sends to everyone")
	return cmd
}

func chatSession(ctx context.Context, c *client.Client, in io.Reader, p *printer, user, to string) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-c.Events():
			if !ok {
				return nil
			}
			p.event(ev, c.Colors())
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			text := strings.TrimSpace(line)
			switch text {
			case "":
				continue
			case "/quit":
				return nil
			case "/reset":
				c.Reset()
				continue
			case "/invite":
				p.line("invite code: %s", c.Invite())
				continue
			}
			if _, err := c.Send(ctx, core.Draft{Author: user, Text: text, Recipient: to}); err != nil {
				p.line("[error] %v", err)
			}
		}
	}
}
