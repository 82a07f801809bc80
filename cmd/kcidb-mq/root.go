package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(a *app) *cobra.Command {
	var topic, subscription string

	rootCmd := &cobra.Command{
		Use:           "kcidb-mq",
		Short:         "Manage the KCIDB report queue",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd.ErrOrStderr()); err != nil {
				return err
			}
			if topic != "" {
				a.cfg.MQ.Topic = topic
			}
			if subscription != "" {
				a.cfg.MQ.Subscription = subscription
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&topic, "topic", "t", "", "Topic name (default $KCIDB_MQ_TOPIC)")
	rootCmd.PersistentFlags().StringVarP(&subscription, "subscription", "s", "", "Subscription name (default $KCIDB_MQ_SUBSCRIPTION)")

	rootCmd.AddCommand(newPublisherCommand(a))
	rootCmd.AddCommand(newSubscriberCommand(a))
	return rootCmd
}
