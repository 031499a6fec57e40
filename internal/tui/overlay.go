package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// slideOver draws card shifted shift cells to the left over actions, so the
// rightmost shift cells of actions show through. Both are line-based grids
// padded to width.
func slideOver(card, actions string, width, shift int) string {
	if shift <= 0 {
		return card
	}
	if shift > width {
		shift = width
	}
	cardLines := splitLines(card)
	actionLines := splitLines(actions)
	out := make([]string, len(cardLines))
	for i, line := range cardLines {
		under := ""
		if i < len(actionLines) {
			under = actionLines[i]
		}
		left := ansi.TruncateLeft(padRight(line, width), shift, "")
		right := ansi.TruncateLeft(padRight(under, width), width-shift, "")
		out[i] = left + right
	}
	return strings.Join(out, "\n")
}

// overlayAt draws overlay on top of base with its top-left corner at column
// x, row y. Rows outside base or past height are dropped.
func overlayAt(base, overlay string, x, y, width, height int) string {
	baseLines := splitLines(base)
	overlayLines := splitLines(overlay)
	overlayWidth := maxLineWidth(overlayLines)
	for i, line := range overlayLines {
		row := y + i
		if row < 0 || row >= len(baseLines) || row >= height {
			continue
		}
		target := padRight(baseLines[row], width)
		left := ansi.Truncate(target, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		line = padRight(line, overlayWidth)
		right := ansi.TruncateLeft(target, x+overlayWidth, "")
		baseLines[row] = left + line + right
	}
	return strings.Join(baseLines, "\n")
}

// overlayCenter places overlay in the middle of base.
func overlayCenter(base, overlay string, width, height int) string {
	lines := splitLines(overlay)
	x := max((width-maxLineWidth(lines))/2, 0)
	y := max((height-len(lines))/2, 0)
	return overlayAt(base, overlay, x, y, width, height)
}

// ---------------------------------------------------------------------------
// String utilities
// ---------------------------------------------------------------------------

// splitLines splits a string on newlines, returning at least one element.
func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

func maxLineWidth(lines []string) int {
	w := 0
	for _, l := range lines {
		w = max(w, ansi.StringWidth(l))
	}
	return w
}

// padRight pads s with spaces so its visual width equals width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// truncate shortens s to width cells, appending "…" if truncated.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}
