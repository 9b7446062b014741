package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/fieldmon/internal/config"
	"github.com/rileyhilliard/fieldmon/internal/ui"
)

var (
	configInitForce  bool
	configInitGlobal bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write or print the configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a fieldmon.yaml with the factory defaults",
	Long: `Write the factory defaults to ./fieldmon.yaml (or the --config path).

Examples:
  fieldmon config init
  fieldmon config init --global
  fieldmon config init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := Config()
		switch {
		case path != "":
		case configInitGlobal:
			path = config.GlobalPath()
		default:
			path = config.ConfigFileName
		}
		return configInitCommand(os.Stdout, path, configInitForce)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration fieldmon would run with, after defaults and
FIELDMON_* environment overrides are applied. The output is YAML even
with --json.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowCommand(os.Stdout, Config())
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing file")
	configInitCmd.Flags().BoolVar(&configInitGlobal, "global", false, "write ~/.config/fieldmon/config.yaml")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func configInitCommand(w io.Writer, path string, force bool) error {
	if err := config.Save(config.DefaultConfig(), path, force); err != nil {
		return err
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if MachineMode() {
		return WriteJSONSuccess(w, map[string]string{"path": path})
	}
	fmt.Fprintln(w, ui.SuccessStyle.Render(ui.SymbolSuccess+" Wrote "+path))
	return nil
}

func configShowCommand(w io.Writer, explicit string) error {
	cfg, path, err := config.LoadOrDefault(explicit)
	if err != nil {
		return err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	source := path
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Fprintln(w, ui.MutedStyle.Render("# source: "+source))
	_, err = w.Write(data)
	return err
}
