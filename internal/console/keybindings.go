package console

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the global bindings. Page specific keys live with the page.
type keyMap struct {
	Back     key.Binding
	Quit     key.Binding
	QuitHome key.Binding
	Help     key.Binding
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Enter    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		QuitHome: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit (home)"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h", "["),
			key.WithHelp("←/[", "previous"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l", "]"),
			key.WithHelp("→/]", "next"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
	}
}

var keys = defaultKeyMap()
