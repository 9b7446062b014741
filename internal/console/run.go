package console

import (
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
)

// Run starts the console in the alternate screen with mouse reporting and
// blocks until the operator quits. Polling is always stopped on return.
func Run(opts Options, extra ...tea.ProgramOption) error {
	if opts.Zones == nil {
		zones := zone.New()
		defer zones.Close()
		opts.Zones = zones
	}
	app := New(opts)
	defer app.session.StopSession()

	progOpts := append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}, extra...)
	_, err := tea.NewProgram(app, progOpts...).Run()
	return err
}
