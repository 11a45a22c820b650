package main

import (
	"fmt"
	"io"

	"github.com/aretw0/waypoint/internal/demo"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the journey graphs for consistency",
	Long:  `Builds every journey and reports all definition errors at once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runValidate(cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(w io.Writer) error {
	defs, err := demo.Definitions()
	if err != nil {
		return err
	}
	for _, def := range defs {
		fmt.Fprintf(w, "%s: %d stages, %d decisions, %d transitions\n",
			def.Name(), len(def.Stages()), len(def.DecisionStages()), len(def.Edges()))
	}
	fmt.Fprintln(w, "Journeys are valid! ✅")
	return nil
}
