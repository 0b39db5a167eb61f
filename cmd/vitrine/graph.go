package main

import (
	"fmt"

	"github.com/aretw0/vitrine/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the entity relation graph",
	Long:  `Outputs a Mermaid diagram of the declared entities, their parents (extends) and presenters (using).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		var overlay *graph.GraphOverlay
		if focus, _ := cmd.Flags().GetStringSlice("focus"); len(focus) > 0 {
			overlay = &graph.GraphOverlay{Focus: focus}
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(app.Engine.Loader().Declarations(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringSlice("focus", nil, "Highlight these entities")
}
