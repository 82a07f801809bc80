package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kcidb/kcidb-go/pkg/spool"
)

func newSpoolCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spool",
		Short: "Inspect and maintain the notification spool",
	}
	cmd.AddCommand(newSpoolUnpickedCommand(a))
	cmd.AddCommand(newSpoolWipeCommand(a))
	cmd.AddCommand(newSpoolDeleteCommand(a))
	return cmd
}

// parseTime parses an RFC 3339 time. Empty means now.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, want RFC 3339: %w", s, err)
	}
	return t, nil
}

func newSpoolUnpickedCommand(a *app) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "unpicked",
		Short: "List IDs of notifications ready for delivery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTime(at)
			if err != nil {
				return err
			}
			return a.withSpool(cmd.Context(), func(sp *spool.Client) error {
				for id, err := range sp.Unpicked(cmd.Context(), t) {
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "List as of this RFC 3339 time (default now)")
	return cmd
}

func newSpoolWipeCommand(a *app) *cobra.Command {
	var until string
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Remove notifications created until a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTime(until)
			if err != nil {
				return err
			}
			return a.withSpool(cmd.Context(), func(sp *spool.Client) error {
				n, err := sp.Wipe(cmd.Context(), t)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wiped %d notification(s)\n", n)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&until, "until", "", "Remove notifications created at or before this RFC 3339 time (default now)")
	return cmd
}

func newSpoolDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Remove notifications regardless of their state",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSpool(cmd.Context(), func(sp *spool.Client) error {
				for _, id := range args {
					if err := sp.Delete(cmd.Context(), id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
