package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/vitrine/internal/cli"
	"github.com/aretw0/vitrine/pkg/encoding"
	"github.com/aretw0/vitrine/pkg/entity"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var renderCmd = &cobra.Command{
	Use:   "render <entity>",
	Short: "Render a JSON document through an entity",
	Long: `Reads a JSON object or array (from --input or Stdin), presents it with the
named entity and writes the result to Stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		path, _ := cmd.Flags().GetString("input")
		in, err := cli.OpenInput(path)
		if err != nil {
			return err
		}
		defer in.Close()
		input, err := cli.ReadInput(in)
		if err != nil {
			return err
		}

		opts, err := renderOptions(cmd)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		pretty := cli.IsTerminal(os.Stdout)
		if cmd.Flags().Changed("pretty") {
			pretty, _ = cmd.Flags().GetBool("pretty")
		}

		data, _, err := app.Engine.Encode(cmd.Context(), args[0], input, opts, format, pretty)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		out.Write(data)
		if format != "cbor" && !strings.HasSuffix(string(data), "\n") {
			fmt.Fprintln(out)
		}
		return nil
	},
}

// renderOptions collects --only, --except, --root, --no-root and --opt.
func renderOptions(cmd *cobra.Command) (entity.Options, error) {
	opts := entity.Options{}
	sets, _ := cmd.Flags().GetStringArray("opt")
	for _, kv := range sets {
		key, raw, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("--opt wants key=value, got %q", kv)
		}
		// YAML scalars give true, 42 and 1.5 their natural types.
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		opts[key] = v
	}
	if only, _ := cmd.Flags().GetStringSlice("only"); len(only) > 0 {
		opts["only"] = cli.SplitList(only)
	}
	if except, _ := cmd.Flags().GetStringSlice("except"); len(except) > 0 {
		opts["except"] = cli.SplitList(except)
	}
	if cmd.Flags().Changed("root") {
		opts["root"], _ = cmd.Flags().GetString("root")
	}
	if noRoot, _ := cmd.Flags().GetBool("no-root"); noRoot {
		opts["root"] = false
	}
	return opts, nil
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("input", "i", "-", "JSON input file, - for Stdin")
	renderCmd.Flags().StringP("format", "f", "json", "Output format: "+strings.Join(encoding.Formats(), ", "))
	renderCmd.Flags().Bool("pretty", false, "Indent JSON output (default when Stdout is a terminal)")
	renderCmd.Flags().StringSlice("only", nil, "Expose only these fields")
	renderCmd.Flags().StringSlice("except", nil, "Drop these fields")
	renderCmd.Flags().String("root", "", "Override the root key")
	renderCmd.Flags().Bool("no-root", false, "Render without a root key")
	renderCmd.Flags().StringArray("opt", nil, "Extra render option as key=value (repeatable)")
}
