package theme

import "github.com/charmbracelet/lipgloss"

// ---------------------------------------------------------------------------
// Surface palettes. Translucent mobile colours are flattened onto their
// background since terminals have no alpha.
// ---------------------------------------------------------------------------

type Palette struct {
	Background       lipgloss.Color
	Card             lipgloss.Color
	CardBorder       lipgloss.Color
	Text             lipgloss.Color
	TextSecondary    lipgloss.Color
	TextTertiary     lipgloss.Color
	IconButton       lipgloss.Color
	IconButtonBorder lipgloss.Color
	Nav              lipgloss.Color
	NavInactive      lipgloss.Color
}

var LightPalette = Palette{
	Background:       "#E0F2FF",
	Card:             "#F6FBFF",
	CardBorder:       "#C9DEF9",
	Text:             "#1e293b",
	TextSecondary:    "#64748b",
	TextTertiary:     "#94a3b8",
	IconButton:       "#F6FBFF",
	IconButtonBorder: "#B3CFF7",
	Nav:              "#FDFEFF",
	NavInactive:      "#EAF2FA",
}

var DarkPalette = Palette{
	Background:       "#0f172a",
	Card:             "#1b2538",
	CardBorder:       "#2c3850",
	Text:             "#f1f5f9",
	TextSecondary:    "#cbd5e1",
	TextTertiary:     "#94a3b8",
	IconButton:       "#1b2538",
	IconButtonBorder: "#3a465c",
	Nav:              "#1d283a",
	NavInactive:      "#2e3a4e",
}

// ---------------------------------------------------------------------------
// Semantic colours shared by both modes
// ---------------------------------------------------------------------------

const (
	ColorPending   lipgloss.Color = "#f59e0b"
	ColorCompleted lipgloss.Color = "#10b981"
	ColorInfo      lipgloss.Color = "#3b82f6"
	ColorHigh      lipgloss.Color = "#ef4444"
	ColorApprove   lipgloss.Color = "#10b981"
	ColorReject    lipgloss.Color = "#ef4444"
	ColorAccent    lipgloss.Color = "#6366F1"
	ColorOnAccent  lipgloss.Color = "#ffffff"
)

// DocumentColor returns the timeline colour for a document type; unknown
// types use the "other" colour.
func DocumentColor(docType string, mode Mode) lipgloss.Color {
	dark := mode == Dark
	switch docType {
	case "prescription":
		return pick(dark, "#34D399", "#10B981")
	case "report":
		return pick(dark, "#818CF8", "#6366F1")
	case "invoice":
		return pick(dark, "#FBBF24", "#F59E0B")
	default:
		return pick(dark, "#F87171", "#EF4444")
	}
}

// DocumentGlyph is the one-cell marker drawn next to a document.
func DocumentGlyph(docType string) string {
	switch docType {
	case "prescription":
		return "℞"
	case "report":
		return "▤"
	case "invoice":
		return "$"
	default:
		return "•"
	}
}

func pick(dark bool, d, l lipgloss.Color) lipgloss.Color {
	if dark {
		return d
	}
	return l
}
