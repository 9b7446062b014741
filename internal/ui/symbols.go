package ui

// Status glyphs for CLI output.
const (
	SymbolSuccess = "✓" // Read or command succeeded
	SymbolFail    = "✗" // Read failed
	SymbolOnline  = "●" // Device answered
	SymbolOffline = "○" // Device silent
	SymbolWarning = "⚠"
)
