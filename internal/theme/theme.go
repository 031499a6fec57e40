// Package theme owns the light/dark preference and the palettes that go
// with it.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// StorageKey is the preference key the mode is persisted under.
const StorageKey = "@app_theme"

type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// ParseMode accepts exactly "light" or "dark" (any case).
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return "", false
}

func (m Mode) Palette() Palette {
	if m == Dark {
		return DarkPalette
	}
	return LightPalette
}

func (m Mode) Toggled() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// KV is the persisted preference store.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Manager holds the process-wide mode. It loads once from the store and
// writes back on every toggle; store failures are logged and never block the
// UI.
type Manager struct {
	store KV
	mode  Mode
	log   logrus.FieldLogger
}

func NewManager(store KV, fallback Mode, log logrus.FieldLogger) *Manager {
	if _, ok := ParseMode(string(fallback)); !ok {
		fallback = Light
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	m := &Manager{store: store, mode: fallback, log: log}
	m.load()
	return m
}

func (m *Manager) load() {
	if m.store == nil {
		return
	}
	saved, ok, err := m.store.Get(StorageKey)
	if err != nil {
		m.log.WithError(err).Warn("load theme")
		return
	}
	if !ok {
		return
	}
	if mode, valid := ParseMode(saved); valid {
		m.mode = mode
	}
}

func (m *Manager) Mode() Mode { return m.mode }

func (m *Manager) IsDark() bool { return m.mode == Dark }

func (m *Manager) Palette() Palette { return m.mode.Palette() }

func (m *Manager) Styles() Styles { return NewStyles(m.mode) }

// Toggle flips the mode and persists it. The in-memory mode changes even
// when the write fails; the error is returned for the caller to surface.
func (m *Manager) Toggle() (Mode, error) {
	m.mode = m.mode.Toggled()
	if m.store == nil {
		return m.mode, nil
	}
	if err := m.store.Set(StorageKey, string(m.mode)); err != nil {
		m.log.WithError(err).Warn("save theme")
		return m.mode, err
	}
	return m.mode, nil
}

// Styles are the lipgloss styles every screen renders with.
type Styles struct {
	Mode      Mode
	Palette   Palette
	App       lipgloss.Style
	Greeting  lipgloss.Style
	Title     lipgloss.Style
	Section   lipgloss.Style
	Text      lipgloss.Style
	Muted     lipgloss.Style
	Faint     lipgloss.Style
	Card      lipgloss.Style
	Selected  lipgloss.Style
	StatCard  lipgloss.Style
	StatValue lipgloss.Style
	Badge     lipgloss.Style
	Action    lipgloss.Style
	NavActive lipgloss.Style
	NavIdle   lipgloss.Style
	Status    lipgloss.Style
	StatusErr lipgloss.Style
}

func NewStyles(mode Mode) Styles {
	p := mode.Palette()
	return Styles{
		Mode:      mode,
		Palette:   p,
		App:       lipgloss.NewStyle().Background(p.Background).Foreground(p.Text),
		Greeting:  lipgloss.NewStyle().Foreground(p.TextSecondary),
		Title:     lipgloss.NewStyle().Foreground(p.Text).Bold(true),
		Section:   lipgloss.NewStyle().Foreground(p.Text).Bold(true).Underline(true),
		Text:      lipgloss.NewStyle().Foreground(p.Text),
		Muted:     lipgloss.NewStyle().Foreground(p.TextSecondary),
		Faint:     lipgloss.NewStyle().Foreground(p.TextTertiary),
		Card:      lipgloss.NewStyle().Background(p.Card).Foreground(p.Text),
		Selected:  lipgloss.NewStyle().Background(p.Card).Foreground(p.Text).Bold(true),
		StatCard:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.CardBorder).Padding(0, 1).Align(lipgloss.Center),
		StatValue: lipgloss.NewStyle().Foreground(p.Text).Bold(true),
		Badge:     lipgloss.NewStyle().Foreground(ColorOnAccent).Padding(0, 1),
		Action:    lipgloss.NewStyle().Foreground(ColorOnAccent).Bold(true).Align(lipgloss.Center),
		NavActive: lipgloss.NewStyle().Foreground(ColorOnAccent).Background(ColorPending).Padding(0, 1),
		NavIdle:   lipgloss.NewStyle().Foreground(p.TextSecondary).Background(p.NavInactive).Padding(0, 1),
		Status:    lipgloss.NewStyle().Foreground(p.TextSecondary).Background(p.Nav),
		StatusErr: lipgloss.NewStyle().Foreground(ColorOnAccent).Background(ColorReject),
	}
}
