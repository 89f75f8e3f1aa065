package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Scanning
	Toggle key.Binding
	Manual key.Binding
	Submit key.Binding
	Test1  key.Binding
	Test2  key.Binding
	Test3  key.Binding

	// Result
	AddToCart key.Binding
	Back      key.Binding

	// Application
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys("s", " "),
			key.WithHelp("s", "start/stop scanning"),
		),
		Manual: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "enter code"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "look up"),
		),
		Test1: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "test mouse"),
		),
		Test2: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "test sample"),
		),
		Test3: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "test headphone"),
		),

		AddToCart: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add to cart"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("Esc", "back to scanner"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("Ctrl+C", "force quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Manual, k.Help, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Manual, k.Submit},
		{k.Test1, k.Test2, k.Test3},
		{k.AddToCart, k.Back},
		{k.Help, k.Quit, k.ForceQuit},
	}
}
