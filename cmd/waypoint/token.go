package main

import (
	"fmt"
	"io"

	"github.com/aretw0/waypoint/internal/demo"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token <token>",
	Short: "Decode a journey token",
	Long:  `Prints the journey and the stage history carried by a ctx_journey token, oldest first.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToken(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(w io.Writer, token string) error {
	journey, err := domain.ParseJourney(token)
	if err != nil {
		return err
	}

	defs, err := demo.Definitions()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "journey: %s\n", journey.Name)
	for _, def := range defs {
		if def.Name() != journey.Name {
			continue
		}
		for i, id := range journey.History {
			name := "?"
			if stage, err := def.ResolveStage(id); err == nil {
				name = stage.Name
			}
			fmt.Fprintf(w, "%d. %s (%s)\n", i+1, name, id)
		}
		return nil
	}

	for i, id := range journey.History {
		fmt.Fprintf(w, "%d. %s\n", i+1, id)
	}
	return fmt.Errorf("%w '%s'", domain.ErrUnknownJourney, journey.Name)
}
