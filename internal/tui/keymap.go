package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the key bindings of the form. Printable keys are reserved for
// the text inputs, so every command uses a control or navigation key.
type KeyMap struct {
	Submit    key.Binding
	NextField key.Binding
	PrevField key.Binding
	Clear     key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the bindings shown in the footer.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "calculate"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "clear"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// footerBindings lists the bindings rendered in the footer, in order.
func (k KeyMap) footerBindings() []key.Binding {
	return []key.Binding{k.Submit, k.NextField, k.Clear, k.Quit}
}
