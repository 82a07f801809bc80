package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kcidb/kcidb-go/pkg/mq"
)

func newSubscriberCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscriber",
		Short: "Manage the subscription and pull reports",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSubscriber(cmd, func(s *mq.Subscriber) error {
				return s.Init(cmd.Context())
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "cleanup",
		Short: "Delete the subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSubscriber(cmd, func(s *mq.Subscriber) error {
				return s.Cleanup(cmd.Context())
			})
		},
	})
	cmd.AddCommand(newPullCommand(a))
	return cmd
}

func newPullCommand(a *app) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Pull one report, print it and acknowledge it",
		Long: "Pull waits for a report, prints it upgraded to the latest schema as indented JSON " +
			"and acknowledges it. Nothing is printed if no report arrives within --timeout.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSubscriber(cmd, func(s *mq.Subscriber) error {
				ctx := cmd.Context()
				pullCtx := ctx
				if timeout > 0 {
					var cancel context.CancelFunc
					pullCtx, cancel = context.WithTimeout(ctx, timeout)
					defer cancel()
				}

				id, data, err := s.Pull(pullCtx)
				if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
					return nil
				}
				if err != nil {
					return err
				}

				out, err := json.MarshalIndent(data, "", "    ")
				if err != nil {
					return fmt.Errorf("failed to encode report: %w", err)
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(out)); err != nil {
					return err
				}
				return s.Ack(ctx, id)
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up waiting after this long (0 waits forever)")
	return cmd
}

func (a *app) withSubscriber(cmd *cobra.Command, fn func(*mq.Subscriber) error) error {
	return a.withBroker(cmd.Context(), func(b mq.Broker) error {
		s, err := mq.NewSubscriber(b, a.cfg.MQ.Topic, a.cfg.MQ.Subscription,
			mq.WithPullTimeout(a.cfg.MQ.PullTimeout),
			mq.WithSubscriberLogger(a.logger))
		if err != nil {
			return err
		}
		return fn(s)
	})
}
