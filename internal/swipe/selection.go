// Package swipe tracks which card of a list has its quick actions revealed.
//
// A Selection belongs to one list. It holds at most one open card and the
// transient drag offset of the card under the pointer. Offsets are negative
// (cards slide left) and bounded to [-MaxReveal, 0].
package swipe

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

const (
	DefaultMaxReveal     = 150
	DefaultOpenThreshold = 50
	DefaultFPS           = 60

	// spring tuning: critically damped, settles in roughly half a second
	angularFrequency = 14.0
	dampingRatio     = 1.0
	settleEpsilon    = 0.5
)

type Config struct {
	MaxReveal     float64
	OpenThreshold float64
	FPS           int
}

func DefaultConfig() Config {
	return Config{MaxReveal: DefaultMaxReveal, OpenThreshold: DefaultOpenThreshold, FPS: DefaultFPS}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.MaxReveal <= 0 {
		c.MaxReveal = d.MaxReveal
	}
	if c.OpenThreshold <= 0 || c.OpenThreshold > c.MaxReveal {
		c.OpenThreshold = math.Min(d.OpenThreshold, c.MaxReveal)
	}
	if c.FPS <= 0 {
		c.FPS = d.FPS
	}
	return c
}

type Kind int

const (
	Idle Kind = iota
	Open
)

func (k Kind) String() string {
	if k == Open {
		return "open"
	}
	return "idle"
}

// State is the list-level selection: Idle, or Open with the card id.
type State struct {
	Kind Kind
	ID   string
}

type card struct {
	pos  float64
	vel  float64
	rest float64
}

type gesture struct {
	id   string
	base float64
}

type Selection struct {
	cfg    Config
	spring harmonica.Spring
	open   string
	drag   *gesture
	cards  map[string]*card
}

func New(cfg Config) *Selection {
	cfg = cfg.normalized()
	return &Selection{
		cfg:    cfg,
		spring: harmonica.NewSpring(harmonica.FPS(cfg.FPS), angularFrequency, dampingRatio),
		cards:  map[string]*card{},
	}
}

func (s *Selection) Config() Config { return s.cfg }

func (s *Selection) State() State {
	if s.open == "" {
		return State{Kind: Idle}
	}
	return State{Kind: Open, ID: s.open}
}

// OpenID returns the id of the revealed card, or "" when idle.
func (s *Selection) OpenID() string { return s.open }

func (s *Selection) IsOpen(id string) bool { return id != "" && s.open == id }

// Dragging returns the id of the card under an active gesture.
func (s *Selection) Dragging() (string, bool) {
	if s.drag == nil {
		return "", false
	}
	return s.drag.id, true
}

// Drag moves card id by dx units relative to where it was drawn when the
// gesture began, so grabbing a card mid-animation never jumps. Starting a
// gesture on one card closes any other open card.
func (s *Selection) Drag(id string, dx float64) {
	if id == "" {
		return
	}
	if s.drag == nil || s.drag.id != id {
		if s.drag != nil {
			s.Release(s.drag.id)
		}
		s.closeOthers(id)
		s.drag = &gesture{id: id, base: s.Offset(id)}
	}
	c := s.card(id)
	c.pos = s.clamp(s.drag.base + dx)
	c.vel = 0
}

// Release ends the gesture on id and picks its rest state. Offsets strictly
// below -OpenThreshold open the card; everything else, including exactly
// -OpenThreshold, closes it.
func (s *Selection) Release(id string) {
	if s.drag == nil || s.drag.id != id {
		return
	}
	s.drag = nil
	c := s.card(id)
	if c.pos < -s.cfg.OpenThreshold {
		s.closeOthers(id)
		c.rest = -s.cfg.MaxReveal
		s.open = id
		return
	}
	c.rest = 0
	if s.open == id {
		s.open = ""
	}
}

// Open reveals id's actions without a gesture, closing any other card.
func (s *Selection) Open(id string) {
	if id == "" {
		return
	}
	if s.drag != nil && s.drag.id != id {
		s.Release(s.drag.id)
	}
	s.drag = nil
	s.closeOthers(id)
	s.card(id).rest = -s.cfg.MaxReveal
	s.open = id
}

// Close sends id back to rest at offset zero, abandoning any gesture on it.
func (s *Selection) Close(id string) {
	if s.drag != nil && s.drag.id == id {
		s.drag = nil
	}
	if c, ok := s.cards[id]; ok {
		c.rest = 0
	}
	if s.open == id {
		s.open = ""
	}
}

func (s *Selection) CloseAll() {
	s.drag = nil
	for _, c := range s.cards {
		c.rest = 0
	}
	s.open = ""
}

// Tap handles a tap on the body of card id. A tap on the open card closes it
// and is consumed (true). Any other tap closes whatever else was open and is
// left for the caller to act on (false).
func (s *Selection) Tap(id string) bool {
	if s.IsOpen(id) {
		s.Close(id)
		return true
	}
	s.closeOthers(id)
	return false
}

// Offset is the rendered offset of id: the live drag position, or wherever
// its spring currently is.
func (s *Selection) Offset(id string) float64 {
	if c, ok := s.cards[id]; ok {
		return c.pos
	}
	return 0
}

// RestOffset is where id settles once animation finishes.
func (s *Selection) RestOffset(id string) float64 {
	if c, ok := s.cards[id]; ok {
		return c.rest
	}
	return 0
}

// Step advances every animating card by one frame and reports whether any
// card is still moving. Retargeting a card mid-flight keeps its position and
// velocity, so interrupted animations continue smoothly.
func (s *Selection) Step() bool {
	moving := false
	for id, c := range s.cards {
		if s.drag != nil && s.drag.id == id {
			continue
		}
		if c.pos == c.rest && c.vel == 0 {
			if c.rest == 0 {
				delete(s.cards, id)
			}
			continue
		}
		c.pos, c.vel = s.spring.Update(c.pos, c.vel, c.rest)
		if math.Abs(c.pos-c.rest) < settleEpsilon && math.Abs(c.vel) < settleEpsilon {
			c.pos, c.vel = c.rest, 0
			if c.rest == 0 {
				delete(s.cards, id)
			}
			continue
		}
		moving = true
	}
	return moving
}

// Animating reports whether a Step would move anything.
func (s *Selection) Animating() bool {
	for id, c := range s.cards {
		if s.drag != nil && s.drag.id == id {
			continue
		}
		if c.pos != c.rest || c.vel != 0 {
			return true
		}
	}
	return false
}

// Settle runs Step until every card is at rest.
func (s *Selection) Settle() {
	for i := 0; i < s.cfg.FPS*10; i++ {
		if !s.Step() {
			break
		}
	}
	for id, c := range s.cards {
		if s.drag != nil && s.drag.id == id {
			continue
		}
		c.pos, c.vel = c.rest, 0
	}
}

func (s *Selection) closeOthers(id string) {
	for other, c := range s.cards {
		if other != id {
			c.rest = 0
		}
	}
	if s.open != "" && s.open != id {
		s.open = ""
	}
}

func (s *Selection) card(id string) *card {
	c, ok := s.cards[id]
	if !ok {
		c = &card{}
		s.cards[id] = c
	}
	return c
}

func (s *Selection) clamp(v float64) float64 {
	return math.Max(-s.cfg.MaxReveal, math.Min(0, v))
}
