package main

import (
	"fmt"
	"io"

	"github.com/aretw0/waypoint/internal/demo"
	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <journey>",
	Short: "Export the journey graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of a journey. With --token, the stages
visited by that journey are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		return runGraph(cmd.OutOrStdout(), args[0], token)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("token", "", "Journey token to overlay on the graph")
}

func runGraph(w io.Writer, name, token string) error {
	defs, err := demo.Definitions()
	if err != nil {
		return err
	}

	for _, def := range defs {
		if def.Name() != name {
			continue
		}
		var overlay *graph.GraphOverlay
		if token != "" {
			journey, err := domain.ParseJourney(token)
			if err != nil {
				return err
			}
			if journey.Name != name {
				return fmt.Errorf("token belongs to journey '%s', not '%s'", journey.Name, name)
			}
			overlay = graph.OverlayFor(journey)
		}
		_, err := fmt.Fprint(w, graph.GenerateMermaid(def, overlay))
		return err
	}
	return fmt.Errorf("%w '%s'", domain.ErrUnknownJourney, name)
}
