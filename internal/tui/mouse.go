package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/clinicdesk/internal/dispatch"
)

// hitZone is a card's on-screen rows, recorded while rendering.
type hitZone struct {
	id      string
	index   int
	top     int
	bottom  int
	buttons []buttonZone
}

// buttonZone is a quick-action button's columns when its card is revealed.
type buttonZone struct {
	left   int
	right  int
	action dispatch.Action
}

// pressState tracks a left-button gesture from press to release.
type pressState struct {
	id     string
	index  int
	startX int
	moved  bool
}

func (a *App) hitAt(y int) (hitZone, bool) {
	for _, h := range a.hits {
		if y >= h.top && y <= h.bottom {
			return h, true
		}
	}
	return hitZone{}, false
}

// handleMouse turns press, drag and release into swipe gestures. A release
// without horizontal movement is a tap, or a button press on a revealed card.
func (a *App) handleMouse(m tea.MouseMsg) tea.Cmd {
	list := a.activeList()
	if list == nil || a.screen != screenHome || a.searching {
		return nil
	}
	switch m.Action {
	case tea.MouseActionPress:
		if m.Button != tea.MouseButtonLeft {
			return nil
		}
		h, ok := a.hitAt(m.Y)
		if !ok {
			return nil
		}
		a.press = &pressState{id: h.id, index: h.index, startX: m.X}
		list.cursor = h.index
		return nil
	case tea.MouseActionMotion:
		if a.press == nil {
			return nil
		}
		dx := m.X - a.press.startX
		if dx != 0 {
			a.press.moved = true
		}
		if a.press.moved {
			list.sel.Drag(a.press.id, float64(dx)*a.unitsPerCell())
		}
		return a.animate()
	case tea.MouseActionRelease:
		p := a.press
		a.press = nil
		if p == nil {
			return nil
		}
		if p.moved {
			list.sel.Release(p.id)
			return a.animate()
		}
		if list.sel.IsOpen(p.id) {
			if h, ok := a.hitAt(m.Y); ok && h.id == p.id {
				for _, b := range h.buttons {
					if m.X >= b.left && m.X <= b.right {
						return a.act(p.id, b.action)
					}
				}
			}
		}
		return a.tap(p.id)
	}
	return nil
}

func (a *App) unitsPerCell() float64 {
	if u := a.cfg.Swipe.UnitsPerCell; u > 0 {
		return u
	}
	return 10
}
