package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the star map.
type KeyMap struct {
	// Cursor movement on the sky.
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	// Annotation.
	Select         key.Binding // Select the star under the cursor.
	ClearSelection key.Binding
	ClearLines     key.Binding

	// Filter.
	Brighter key.Binding // Lower the magnitude limit.
	Fainter  key.Binding // Raise the magnitude limit.

	Labels key.Binding
	Reload key.Binding
	Save   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "right"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "select star"),
	),
	ClearSelection: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear selection"),
	),
	ClearLines: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "clear lines"),
	),
	Brighter: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "fewer stars"),
	),
	Fainter: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "more stars"),
	),
	Labels: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "labels"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Save: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save png"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.ClearSelection, k.ClearLines, k.Fainter, k.Brighter, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Select, k.ClearSelection, k.ClearLines},
		{k.Fainter, k.Brighter, k.Labels},
		{k.Reload, k.Save, k.Help, k.Quit},
	}
}
