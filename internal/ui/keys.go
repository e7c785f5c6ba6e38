package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding of the main screen
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Add        key.Binding
	Delete     key.Binding
	Edit       key.Binding
	Pick       key.Binding
	Toggle     key.Binding
	Cleanup    key.Binding
	Update     key.Binding
	CleanupAll key.Binding
	UpdateAll  key.Binding
	Save       key.Binding
	Reload     key.Binding
	ClearLog   key.Binding
	ViewLog    key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Cancel     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add path")),
		Delete:     key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete path")),
		Edit:       key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit path")),
		Pick:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "choose folder")),
		Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "include/exclude")),
		Cleanup:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cleanup this")),
		Update:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "update this")),
		CleanupAll: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "cleanup all")),
		UpdateAll:  key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "update all")),
		Save:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Reload:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload from disk")),
		ClearLog:   key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear results")),
		ViewLog:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "results in pager")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll results")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll results")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel batch")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Toggle, k.CleanupAll, k.UpdateAll, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Add, k.Delete, k.Edit, k.Pick, k.Toggle},
		{k.Cleanup, k.Update, k.CleanupAll, k.UpdateAll, k.Cancel},
		{k.Save, k.Reload, k.ClearLog, k.ViewLog, k.ScrollUp, k.ScrollDown, k.Help, k.Quit},
	}
}
