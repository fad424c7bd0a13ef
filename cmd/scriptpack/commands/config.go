package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/scriptpack/config"
	"github.com/teranos/scriptpack/display"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage scriptpack configuration",
		Long: `Create and inspect scriptpack configuration.

Examples:
  scriptpack config init                  # Write scriptpack.toml with defaults
  scriptpack config init ~/.scriptpack/config.toml
  scriptpack config show                  # Show effective configuration
  scriptpack config show --format yaml    # Effective configuration as YAML
  scriptpack config show --json           # Include where each value came from`,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file (the old one is kept as .back1)")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration and its sources",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}

	showCmd.Flags().String("format", "toml", "Output format: toml, yaml")

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.ProjectConfigName
	if len(args) == 1 {
		path = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")

	if err := config.WriteDefault(path, force); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), loaded)
	}

	out := cmd.OutOrStdout()
	// Both formats take # comments.
	if len(loaded.Files) == 0 {
		fmt.Fprintln(out, "# no config files found; showing defaults")
	}
	for _, f := range loaded.Files {
		fmt.Fprintf(out, "# %s: %s\n", f.Source, f.Path)
		for _, key := range f.Unknown {
			fmt.Fprintf(out, "#   unknown key ignored: %s\n", key)
		}
	}
	for _, s := range loaded.Settings {
		if s.Source == config.SourceEnvironment {
			fmt.Fprintf(out, "# %s set by %s\n", s.Key, s.SourcePath)
		}
	}
	fmt.Fprintln(out)

	format, _ := cmd.Flags().GetString("format")
	var data []byte
	switch format {
	case "toml":
		data, err = config.Marshal(loaded.Config)
	case "yaml":
		data, err = yaml.Marshal(loaded.Config)
	default:
		return fmt.Errorf("unsupported format: %s (supported: toml, yaml; use --json for JSON)", format)
	}
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
