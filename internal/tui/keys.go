package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextTab      key.Binding
	PrevTab      key.Binding
	Dashboard    key.Binding
	Violations   key.Binding
	Reports      key.Binding
	Up           key.Binding
	Down         key.Binding
	Filter       key.Binding
	StatusFilter key.Binding
	CycleStatus  key.Binding
	Delete       key.Binding
	New          key.Binding
	Edit         key.Binding
	Resume       key.Binding
	ClearDraft   key.Binding
	Reload       key.Binding
	Dismiss      key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextTab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Dashboard:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "dashboard")),
		Violations:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "violations")),
		Reports:      key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "reports")),
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Filter:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		StatusFilter: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "status filter")),
		CycleStatus:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "next status")),
		Delete:       key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		New:          key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Edit:         key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Resume:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "continue draft")),
		ClearDraft:   key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear draft")),
		Reload:       key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
		Dismiss:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.New, k.Edit, k.Filter, k.CycleStatus, k.Delete, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Dashboard, k.Violations, k.Reports},
		{k.Up, k.Down, k.Filter, k.StatusFilter},
		{k.New, k.Edit, k.Resume, k.ClearDraft, k.CycleStatus, k.Delete},
		{k.Reload, k.Dismiss, k.Help, k.Quit},
	}
}
