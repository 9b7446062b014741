package cli

import (
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/fieldmon/internal/config"
	"github.com/rileyhilliard/fieldmon/internal/console"
	"github.com/rileyhilliard/fieldmon/internal/errors"
	"github.com/rileyhilliard/fieldmon/internal/lock"
	"github.com/rileyhilliard/fieldmon/internal/logger"
)

// LogEnv names the file console diagnostics are appended to. It takes
// precedence over log.file; with neither set they are discarded.
const LogEnv = "FIELDMON_LOG"

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the operator console",
	Long: `Open the full-screen operator console.

Keyboard shortcuts:
  esc / backspace  Back
  ?                Help overlay
  q                Quit (from Home)
  Ctrl+C           Quit

Mouse clicks act as touches on buttons and table rows.

Set FIELDMON_LOG=/path/to/file (or log.file) to capture diagnostics while the console
owns the screen.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return consoleCommand()
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

// consoleCommand runs the interactive console until the operator quits.
func consoleCommand() error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrExec,
			"The console needs an interactive terminal",
			"Use 'fieldmon poll', 'fieldmon devices' or 'fieldmon alarms' from scripts")
	}

	log := logger.NewEnvLogger("[fieldmon]")
	cfg, svc, err := loadServices(log)
	if err != nil {
		return err
	}

	closeLog, err := redirectLog(logPath(cfg.Log.File))
	if err != nil {
		return err
	}
	defer closeLog()
	defer svc.Mqtt.Disconnect()

	bus, err := lock.TryAcquire(cfg.Serial.Port, lock.Options{Dir: cfg.Serial.LockDir, Command: "console"})
	if err != nil {
		return err
	}
	defer func() { _ = bus.Release() }()

	return console.Run(console.Options{
		Config:   cfg,
		Services: svc,
		Logger:   log,
	})
}

func logPath(configured string) string {
	if p := os.Getenv(LogEnv); p != "" {
		return p
	}
	return config.ExpandTilde(configured)
}

// redirectLog points the std logger at path, or discards it when path is
// empty, so nothing writes over the alternate screen.
func redirectLog(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, "fieldmon")
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot open log file "+path,
			"Check "+LogEnv+" points to a writable location")
	}
	return func() { _ = f.Close() }, nil
}
