package main

import (
	"fmt"
	"io"

	"github.com/aretw0/waypoint/internal/demo"
	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <journey>",
	Short: "Describe the stages and transitions of a journey",
	Long:  `Prints a markdown description of a journey, styled when writing to a terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDescribe(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(w io.Writer, name string) error {
	defs, err := demo.Definitions()
	if err != nil {
		return err
	}
	for _, def := range defs {
		if def.Name() == name {
			return tui.RenderMarkdown(w, graph.GenerateMarkdown(def))
		}
	}
	return fmt.Errorf("%w '%s'", domain.ErrUnknownJourney, name)
}
