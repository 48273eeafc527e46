// Package roster owns the office character roster. All character state
// mutation goes through its command methods; other components read copies.
package roster

import (
	"sync"

	"github.com/aristath/tradingfloor/internal/domain"
	"github.com/rs/zerolog"
)

// Rooms of the simulated office
const (
	RoomTradingFloor    = "trading_floor"
	RoomResearchLab     = "research_lab"
	RoomMeetingRoom     = "meeting_room"
	RoomExecutiveOffice = "executive_office"
	RoomBreakRoom       = "break_room"
)

// AllRooms lists every room in the office
var AllRooms = []string{
	RoomTradingFloor,
	RoomResearchLab,
	RoomMeetingRoom,
	RoomExecutiveOffice,
	RoomBreakRoom,
}

// Roster holds the characters and serializes every mutation
type Roster struct {
	mu    sync.RWMutex
	chars map[string]*domain.Character
	order []string
	log   zerolog.Logger
}

// New creates a roster with the given characters
func New(chars []domain.Character, log zerolog.Logger) *Roster {
	r := &Roster{
		chars: make(map[string]*domain.Character, len(chars)),
		log:   log.With().Str("component", "roster").Logger(),
	}
	for i := range chars {
		c := chars[i]
		if c.State == "" {
			c.State = domain.StateIdle
		}
		r.chars[c.ID] = &c
		r.order = append(r.order, c.ID)
	}
	return r
}

// DefaultCharacters returns the standard office roster
func DefaultCharacters() []domain.Character {
	return []domain.Character{
		{ID: "pm-1", Name: "Margaret Winters", Role: "portfolio_manager", Room: RoomExecutiveOffice},
		{ID: "trader-1", Name: "Dev Patel", Role: "trader", Room: RoomTradingFloor},
		{ID: "trader-2", Name: "Sofia Alvarez", Role: "trader", Room: RoomTradingFloor},
		{ID: "analyst-1", Name: "James Okafor", Role: "analyst", Room: RoomResearchLab},
		{ID: "analyst-2", Name: "Mei Tanaka", Role: "analyst", Room: RoomResearchLab},
		{ID: "quant-1", Name: "Lukas Berger", Role: "quant", Room: RoomResearchLab},
	}
}

// List returns copies of every character in roster order
func (r *Roster) List() []domain.Character {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Character, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.chars[id])
	}
	return out
}

// Get returns a copy of one character
func (r *Roster) Get(id string) (domain.Character, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.chars[id]
	if !ok {
		return domain.Character{}, false
	}
	return *c, true
}

// Available returns copies of all characters that can take a new event
func (r *Roster) Available() []domain.Character {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Character, 0, len(r.order))
	for _, id := range r.order {
		if r.chars[id].Available() {
			out = append(out, *r.chars[id])
		}
	}
	return out
}

// BeginMove sets a character walking toward a target room
func (r *Roster) BeginMove(id, targetRoom string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chars[id]
	if !ok {
		return
	}
	c.State = domain.StateWalking
	c.TargetRoom = targetRoom
	c.CurrentTask = ""
}

// BeginTask sets a character working on a task
func (r *Roster) BeginTask(id, task string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chars[id]
	if !ok {
		return
	}
	c.State = domain.StateWorking
	c.CurrentTask = task
}

// BeginConversation sets two characters talking
func (r *Roster) BeginConversation(firstID, secondID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range []string{firstID, secondID} {
		if c, ok := r.chars[id]; ok {
			c.State = domain.StateTalking
			c.CurrentTask = ""
		}
	}
}

// Reset returns characters to idle, completing any walk by arriving at
// the target room.
func (r *Roster) Reset(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		c, ok := r.chars[id]
		if !ok {
			continue
		}
		if c.State == domain.StateWalking && c.TargetRoom != "" {
			c.Room = c.TargetRoom
		}
		c.State = domain.StateIdle
		c.TargetRoom = ""
		c.CurrentTask = ""
	}
}
