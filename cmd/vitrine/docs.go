package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/vitrine/internal/cli"
	"github.com/aretw0/vitrine/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs <entity>",
	Short: "Show the documentation of an entity's exposures",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		docs, err := app.Engine.Documentation(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(docs)
		}

		markdown := tui.DocsMarkdown(args[0], docs)
		if !cli.IsTerminal(os.Stdout) {
			fmt.Fprint(out, markdown)
			return nil
		}
		render, err := tui.NewRenderer(100)
		if err != nil {
			return err
		}
		styled, err := render(markdown)
		if err != nil {
			return err
		}
		fmt.Fprint(out, styled)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.Flags().Bool("json", false, "Print the raw documentation map as JSON")
}
