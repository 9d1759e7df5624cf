package manager

import "github.com/charmbracelet/bubbles/key"

// shellKeyMap holds the bindings active while the wizard popup is closed.
type shellKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Connect key.Binding
	Add     key.Binding
	Remove  key.Binding
	Reload  key.Binding
	Copy    key.Binding
	Help    key.Binding
	Quit    key.Binding
	Abandon key.Binding
}

func newShellKeyMap() shellKeyMap {
	return shellKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		Connect: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "connect"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add group"),
		),
		Remove: key.NewBinding(
			key.WithKeys("r", "delete"),
			key.WithHelp("r", "remove"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy command"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "save & quit"),
		),
		Abandon: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit without saving"),
		),
	}
}

func (k shellKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Connect, k.Add, k.Remove, k.Help, k.Quit}
}

func (k shellKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Connect},
		{k.Add, k.Remove, k.Reload, k.Copy},
		{k.Help, k.Quit, k.Abandon},
	}
}
