package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/teranos/scriptpack/display"
	"github.com/teranos/scriptpack/errors"
	"github.com/teranos/scriptpack/logger"
)

// NewRootCmd builds the scriptpack command tree.
func NewRootCmd() *cobra.Command {
	opts := &packOptions{}

	rootCmd := &cobra.Command{
		Use:   "scriptpack --input <script> --output <executable>",
		Short: "Turn a script file into a standalone executable",
		Long: `scriptpack embeds a script file in a small Go program and compiles it
into a native executable. Running the executable writes the script to a
temp file, runs it with the wrapper's arguments, removes the file and exits
with the script's exit code.

Configuration sources (in order of precedence):
1. Environment variables (SCRIPTPACK_* prefix)
2. --config <file>
3. Project config (scriptpack.toml, searched upwards)
4. User config (~/.scriptpack/config.toml)
5. Default values

Examples:
  scriptpack --input build.bat --output build.exe
  scriptpack --input deploy.sh --output deploy --emit deploy_wrapper.go
  scriptpack --input deploy.sh --output deploy --watch
  scriptpack config init`,
		// Unknown flags and stray arguments are ignored.
		Args:               cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbosity, _ := cmd.Flags().GetCount("verbose")
			if err := logger.Initialize(display.ShouldOutputJSON(cmd), verbosity); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPack(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Output machine-readable JSON")
	rootCmd.PersistentFlags().String("config", "", "Read configuration from this file")

	rootCmd.Flags().StringVar(&opts.input, "input", "", "Script file to embed")
	rootCmd.Flags().StringVar(&opts.output, "output", "", "Path of the executable to create")
	rootCmd.Flags().StringVar(&opts.emit, "emit", "", "Also write the generated Go source to this path")
	rootCmd.Flags().BoolVar(&opts.watch, "watch", false, "Rebuild whenever the input changes")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		if cmd == rootCmd && isTrailingPathFlag(err) {
			return runPack(cmd, opts)
		}
		return err
	})

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// isTrailingPathFlag reports whether err is pflag rejecting --input or
// --output given last with no value. Flags before it are already parsed, so
// the pack runs as if the valueless flag were absent.
func isTrailingPathFlag(err error) bool {
	var required *pflag.ValueRequiredError
	if !errors.As(err, &required) || required.GetFlag() == nil {
		return false
	}
	name := required.GetFlag().Name
	return name == "input" || name == "output"
}
