// Package cli implements the fieldmon command-line interface.
//
// Running fieldmon with no subcommand opens the operator console. The
// other commands work without a terminal UI:
//
//	fieldmon console              - Operator console (same as no args)
//	fieldmon poll --device N      - Poll one device, print each read
//	fieldmon devices              - List configured devices
//	fieldmon alarms [ack|clear]   - List or act on alarms
//	fieldmon config [init|show]   - Write or print the configuration
//	fieldmon version              - Version information
//
// Global flags (--config, --no-color, --json) live on the root command.
// Commands that print data honour --json and wrap their output in a
// JSONEnvelope.
package cli
