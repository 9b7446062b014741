package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/fieldmon/internal/config"
	"github.com/rileyhilliard/fieldmon/internal/logger"
	"github.com/rileyhilliard/fieldmon/internal/service"
	"github.com/rileyhilliard/fieldmon/internal/ui"
)

// Global flags
var (
	cfgFile string
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "fieldmon",
	Short: "Operator console for Modbus field devices",
	Long: `fieldmon is an operator console for Modbus field devices.

Without a subcommand it opens the full-screen console: device list,
live register monitor, alarm center and settings.

Examples:
  fieldmon
  fieldmon --config ./plant.yaml
  fieldmon poll --device 1 --count 5`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return consoleCommand()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./fieldmon.yaml, then ~/.config/fieldmon/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&machineMode, "json", false, "machine-readable JSON output")
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if machineMode {
			_ = WriteJSONFromError(os.Stdout, err)
		} else {
			fmt.Fprint(os.Stderr, ui.ErrorStyle.Render(err.Error()))
			fmt.Fprintln(os.Stderr)
		}
		os.Exit(1)
	}
}

// loadServices reads the effective config and builds the collaborators
// from it.
func loadServices(log logger.Logger) (*config.Config, *service.Services, error) {
	cfg, _, err := config.LoadOrDefault(Config())
	if err != nil {
		return nil, nil, err
	}
	return cfg, service.New(cfg, version, log), nil
}
