package theme

import (
	"errors"
	"regexp"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type memKV struct {
	values  map[string]string
	getErr  error
	setErr  error
	setHits int
}

func (m *memKV) Get(key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memKV) Set(key, value string) error {
	m.setHits++
	if m.setErr != nil {
		return m.setErr
	}
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[key] = value
	return nil
}

func TestPalettesAreValidHex(t *testing.T) {
	for _, p := range []Palette{LightPalette, DarkPalette} {
		for _, c := range []lipgloss.Color{p.Background, p.Card, p.CardBorder, p.Text, p.TextSecondary, p.TextTertiary, p.IconButton, p.IconButtonBorder, p.Nav, p.NavInactive} {
			require.Regexp(t, hexColorRegex, string(c))
		}
	}
}

func TestManagerLoadsPersistedMode(t *testing.T) {
	kv := &memKV{values: map[string]string{StorageKey: "dark"}}
	m := NewManager(kv, Light, nil)
	require.Equal(t, Dark, m.Mode())
	require.True(t, m.IsDark())
	require.Equal(t, DarkPalette, m.Palette())
}

func TestManagerIgnoresInvalidOrFailingStore(t *testing.T) {
	m := NewManager(&memKV{values: map[string]string{StorageKey: "sepia"}}, Dark, nil)
	require.Equal(t, Dark, m.Mode())

	m = NewManager(&memKV{getErr: errors.New("disk gone")}, Light, nil)
	require.Equal(t, Light, m.Mode())

	m = NewManager(nil, "bogus", nil)
	require.Equal(t, Light, m.Mode())
}

func TestToggleFlipsAndPersists(t *testing.T) {
	kv := &memKV{}
	m := NewManager(kv, Light, nil)

	mode, err := m.Toggle()
	require.NoError(t, err)
	require.Equal(t, Dark, mode)
	require.Equal(t, "dark", kv.values[StorageKey])

	mode, err = m.Toggle()
	require.NoError(t, err)
	require.Equal(t, Light, mode)
	require.Equal(t, "light", kv.values[StorageKey])
}

func TestToggleSurvivesWriteFailure(t *testing.T) {
	kv := &memKV{setErr: errors.New("read-only")}
	m := NewManager(kv, Light, nil)

	mode, err := m.Toggle()
	require.Error(t, err)
	require.Equal(t, Dark, mode)
	require.Equal(t, Dark, m.Mode())
	require.Equal(t, 1, kv.setHits)
}

func TestDocumentColor(t *testing.T) {
	require.Equal(t, lipgloss.Color("#10B981"), DocumentColor("prescription", Light))
	require.Equal(t, lipgloss.Color("#34D399"), DocumentColor("prescription", Dark))
	require.Equal(t, DocumentColor("other", Light), DocumentColor("scan", Light))
}

func TestParseMode(t *testing.T) {
	mode, ok := ParseMode(" DARK ")
	require.True(t, ok)
	require.Equal(t, Dark, mode)
	_, ok = ParseMode("")
	require.False(t, ok)
}
