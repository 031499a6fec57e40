package tui

import "github.com/charmbracelet/bubbles/key"

// ---------------------------------------------------------------------------
// Key bindings
// ---------------------------------------------------------------------------

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Reveal  key.Binding
	Hide    key.Binding
	Tap     key.Binding
	Approve key.Binding
	Reject  key.Binding
	Process key.Binding
	View    key.Binding
	Filter  key.Binding
	Search  key.Binding
	Theme   key.Binding
	Doctor  key.Binding
	Lab     key.Binding
	Patient key.Binding
	Edit    key.Binding
	Back    key.Binding
	Reset   key.Binding
	Help    key.Binding
	Quit    key.Binding

	// contextual flags; help only lists what the current screen can use
	role     string
	detail   bool
	document bool
}

func newKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Reveal:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "reveal")),
		Hide:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "close")),
		Tap:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Approve: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "approve")),
		Reject:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reject")),
		Process: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "process")),
		View:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view")),
		Filter:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Theme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Doctor:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "doctor")),
		Lab:     key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "lab")),
		Patient: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "profile")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit profile")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Reset:   key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reset demo data")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	if k.detail {
		return []key.Binding{k.Back, k.Approve, k.Reject, k.Quit}
	}
	if k.document {
		return []key.Binding{k.Back, k.Quit}
	}
	switch k.role {
	case roleLab:
		return []key.Binding{k.Reveal, k.Tap, k.Process, k.View, k.Filter, k.Search, k.Help, k.Quit}
	case rolePatient:
		return []key.Binding{k.Up, k.Down, k.Tap, k.Edit, k.Theme, k.Doctor, k.Lab, k.Help, k.Quit}
	default:
		return []key.Binding{k.Reveal, k.Tap, k.Approve, k.Reject, k.Search, k.Help, k.Quit}
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Reveal, k.Hide, k.Tap},
		{k.Approve, k.Reject, k.Process, k.View, k.Filter},
		{k.Search, k.Edit, k.Theme, k.Doctor, k.Lab, k.Patient},
		{k.Back, k.Reset, k.Help, k.Quit},
	}
}
