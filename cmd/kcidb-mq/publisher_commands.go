package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kcidb/kcidb-go/pkg/mq"
	"github.com/kcidb/kcidb-go/pkg/report"
)

func newPublisherCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publisher",
		Short: "Manage the report topic and publish reports",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPublisher(cmd, func(p *mq.Publisher) error {
				return p.Init(cmd.Context())
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "cleanup",
		Short: "Delete the topic and its subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPublisher(cmd, func(p *mq.Publisher) error {
				return p.Cleanup(cmd.Context())
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "publish",
		Short: "Publish JSON reports read from standard input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPublisher(cmd, func(p *mq.Publisher) error {
				n, err := publishStream(cmd, p, cmd.InOrStdin())
				if n > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "published %d report(s)\n", n)
				}
				return err
			})
		},
	})
	return cmd
}

func (a *app) withPublisher(cmd *cobra.Command, fn func(*mq.Publisher) error) error {
	return a.withBroker(cmd.Context(), func(b mq.Broker) error {
		p, err := mq.NewPublisher(b, a.cfg.MQ.Topic, mq.WithPublisherLogger(a.logger))
		if err != nil {
			return err
		}
		return fn(p)
	})
}

// publishStream publishes each JSON value in r, stopping at the first
// failure.
func publishStream(cmd *cobra.Command, p *mq.Publisher, r io.Reader) (int, error) {
	dec := json.NewDecoder(r)
	n := 0
	for {
		var data report.Data
		err := dec.Decode(&data)
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("failed to read report %d: %w", n+1, err)
		}
		if err := p.Publish(cmd.Context(), data); err != nil {
			return n, fmt.Errorf("report %d: %w", n+1, err)
		}
		n++
	}
}
