package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored journeys",
	Long:  `List, inspect, and remove the journeys stored for a session in the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls <session-id>",
	Short: "List the journeys stored for a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store ports.JourneyStore) error {
			return runSessionLs(ctx, cmd.OutOrStdout(), store, args[0])
		})
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id> <journey>",
	Short: "Decode a stored journey",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store ports.JourneyStore) error {
			token, err := store.Load(ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to load journey '%s': %w", args[1], err)
			}
			return runToken(cmd.OutOrStdout(), token)
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id> <journey>...",
	Short: "Remove stored journeys of a session",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store ports.JourneyStore) error {
			return runSessionRm(ctx, cmd.OutOrStdout(), store, args[0], args[1:])
		})
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd, sessionInspectCmd, sessionRmCmd)
}

// withStore opens the configured store for the duration of fn.
func withStore(cmd *cobra.Command, fn func(context.Context, ports.JourneyStore) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	b, err := openBackend(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() { _ = b.close() }()

	store := b.journeyStore()
	if store == nil {
		return errors.New("no store configured")
	}
	return fn(ctx, store)
}

func runSessionLs(ctx context.Context, w io.Writer, store ports.JourneyStore, sessionID string) error {
	names, err := store.List(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to list journeys: %w", err)
	}
	if len(names) == 0 {
		fmt.Fprintln(w, "No stored journeys found.")
		return nil
	}
	fmt.Fprintln(w, "Stored journeys:")
	for _, name := range names {
		fmt.Fprintln(w, "- "+name)
	}
	return nil
}

func runSessionRm(ctx context.Context, w io.Writer, store ports.JourneyStore, sessionID string, journeys []string) error {
	var failed bool
	for _, name := range journeys {
		if err := store.Delete(ctx, sessionID, name); err != nil {
			fmt.Fprintf(w, "Error removing '%s': %v\n", name, err)
			failed = true
			continue
		}
		fmt.Fprintf(w, "Removed journey '%s'\n", name)
	}
	if failed {
		return errors.New("some journeys could not be removed")
	}
	return nil
}
