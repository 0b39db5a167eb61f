package main

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every declared entity for configuration errors",
	Long:  `Loads the declarations, builds every entity and reports all configuration errors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		defer app.Close()

		out := cmd.OutOrStdout()
		names := app.Engine.Entities()
		if dump, _ := cmd.Flags().GetBool("dump"); dump {
			cs := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, MaxDepth: 6}
			for _, name := range names {
				ent, err := app.Engine.Registry().Lookup(name)
				if err != nil {
					return err
				}
				exposures, err := ent.Exposures()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "== %s\n", name)
				cs.Fdump(out, exposures)
			}
		}
		fmt.Fprintf(out, "%d entities are valid! ✅\n", len(names))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("dump", false, "Dump the exposure tree of every entity")
}
