// Package activity provides the bounded, append-only activity feed shown
// by the render layer.
package activity

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxEntries bounds the feed; the oldest entries are dropped first
const MaxEntries = 1000

// ActionType discriminates the Details payload of an entry
type ActionType string

const (
	ActionMovement     ActionType = "movement"
	ActionAnalysis     ActionType = "analysis"
	ActionConversation ActionType = "conversation"
	ActionDecision     ActionType = "decision"
	ActionTrade        ActionType = "trade"
	ActionMarketNote   ActionType = "market_note"
	ActionSystem       ActionType = "system"
)

// Details is implemented by every typed details payload
type Details interface {
	ActionType() ActionType
}

// MovementDetails describes a character moving between rooms
type MovementDetails struct {
	FromRoom string `json:"from_room"`
	ToRoom   string `json:"to_room"`
}

// ActionType returns the action type for MovementDetails
func (d MovementDetails) ActionType() ActionType { return ActionMovement }

// AnalysisDetails describes a research task
type AnalysisDetails struct {
	Stock    string        `json:"stock,omitempty"`
	Duration time.Duration `json:"duration"`
}

// ActionType returns the action type for AnalysisDetails
func (d AnalysisDetails) ActionType() ActionType { return ActionAnalysis }

// ConversationDetails describes a discussion between two characters
type ConversationDetails struct {
	WithCharacterID string `json:"with_character_id"`
	Topic           string `json:"topic,omitempty"`
}

// ActionType returns the action type for ConversationDetails
func (d ConversationDetails) ActionType() ActionType { return ActionConversation }

// DecisionDetails describes a trading decision
type DecisionDetails struct {
	Stock  string `json:"stock,omitempty"`
	Action string `json:"action,omitempty"`
}

// ActionType returns the action type for DecisionDetails
func (d DecisionDetails) ActionType() ActionType { return ActionDecision }

// TradeDetails describes an order passing through the ledger
type TradeDetails struct {
	OrderID  string  `json:"order_id"`
	Stock    string  `json:"stock"`
	Action   string  `json:"action"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// ActionType returns the action type for TradeDetails
func (d TradeDetails) ActionType() ActionType { return ActionTrade }

// MarketNoteDetails describes a market event worth surfacing in the feed
type MarketNoteDetails struct {
	EventType string  `json:"event_type,omitempty"`
	Stock     string  `json:"stock,omitempty"`
	Impact    string  `json:"impact,omitempty"`
	Magnitude float64 `json:"magnitude,omitempty"`
}

// ActionType returns the action type for MarketNoteDetails
func (d MarketNoteDetails) ActionType() ActionType { return ActionMarketNote }

// SystemDetails is used for entries not tied to a character
type SystemDetails struct {
	Source string `json:"source,omitempty"`
}

// ActionType returns the action type for SystemDetails
func (d SystemDetails) ActionType() ActionType { return ActionSystem }

// Entry is one line of the activity feed
type Entry struct {
	ID            string     `json:"id"`
	Timestamp     time.Time  `json:"timestamp"` // simulated time
	CharacterID   string     `json:"character_id,omitempty"`
	CharacterType string     `json:"character_type,omitempty"`
	RoomID        string     `json:"room_id,omitempty"`
	ActionType    ActionType `json:"action_type"`
	Description   string     `json:"description"`
	Details       Details    `json:"details,omitempty"`
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	CharacterType string
	RoomID        string
	ActionType    ActionType
	Search        string // case-insensitive substring of the description
}

// Log is the bounded in-memory activity feed
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	log     zerolog.Logger
}

// NewLog creates an empty activity log
func NewLog(log zerolog.Logger) *Log {
	return &Log{
		log: log.With().Str("component", "activity").Logger(),
	}
}

// Append adds an entry, evicting the oldest beyond the cap. A missing ID
// is filled in.
func (l *Log) Append(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.ActionType == "" && e.Details != nil {
		e.ActionType = e.Details.ActionType()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[len(l.entries)-MaxEntries:]
	}
	return e
}

// Len returns the number of retained entries
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// List returns entries matching the filter, newest last
func (l *Log) List(f Filter) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, 0, len(l.entries))
	search := strings.ToLower(f.Search)
	for _, e := range l.entries {
		if f.CharacterType != "" && e.CharacterType != f.CharacterType {
			continue
		}
		if f.RoomID != "" && e.RoomID != f.RoomID {
			continue
		}
		if f.ActionType != "" && e.ActionType != f.ActionType {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Description), search) {
			continue
		}
		out = append(out, e)
	}
	return out
}
