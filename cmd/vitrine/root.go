package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/vitrine/internal/cli"
	"github.com/aretw0/vitrine/internal/config"
	"github.com/aretw0/vitrine/pkg/observability"
	"github.com/spf13/cobra"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vitrine",
	Short: "Vitrine presents data through declared entities",
	Long: `Vitrine renders arbitrary objects through entities: declarative descriptions
of which fields to expose, under which names and conditions, and in which format.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if decls, _ := cmd.Flags().GetStringSlice("decl"); len(decls) > 0 {
			loaded.Declarations = decls
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel, _ = cmd.Flags().GetString("log-level")
		}
		if cmd.Flags().Changed("key-transformer") {
			loaded.KeyTransformer, _ = cmd.Flags().GetString("key-transformer")
		}

		l, err := cli.NewLogger(loaded.LogLevel)
		if err != nil {
			return err
		}
		cfg, logger = loaded, l
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// The command context is cancelled on SIGINT or SIGTERM.
func Execute() {
	ctx := cli.NewSignalContext(context.Background())
	defer ctx.Cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "vitrine.toml", "Config file (toml, yaml or json)")
	rootCmd.PersistentFlags().StringSlice("decl", nil, "Declaration files or directories (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("key-transformer", "", "Transform emitted keys: camel or snake")
}

// newApp builds the engine every subcommand works with.
func newApp(ctx context.Context, hooks ...observability.Hooks) (*cli.App, error) {
	if len(cfg.Declarations) == 0 {
		logger.Warn("no declarations configured; use --decl or the declarations config key")
	}
	return cli.NewApp(ctx, cfg, logger, hooks...)
}
