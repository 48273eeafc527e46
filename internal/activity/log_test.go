package activity

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAssignsIDAndActionType(t *testing.T) {
	l := NewLog(zerolog.Nop())

	e := l.Append(Entry{
		CharacterID: "trader-1",
		Description: "Moved to the break room",
		Details:     MovementDetails{FromRoom: "trading_floor", ToRoom: "break_room"},
	})

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, ActionMovement, e.ActionType)
}

func TestCapEvictsOldestFirst(t *testing.T) {
	l := NewLog(zerolog.Nop())

	for i := 0; i < MaxEntries+500; i++ {
		l.Append(Entry{
			ID:          fmt.Sprintf("entry-%d", i),
			Timestamp:   time.Now(),
			Description: "tick",
			ActionType:  ActionSystem,
		})
	}

	require.Equal(t, MaxEntries, l.Len())
	entries := l.List(Filter{})
	assert.Equal(t, "entry-500", entries[0].ID)
	assert.Equal(t, fmt.Sprintf("entry-%d", MaxEntries+499), entries[len(entries)-1].ID)
}

func TestListFilters(t *testing.T) {
	l := NewLog(zerolog.Nop())

	l.Append(Entry{CharacterID: "a", CharacterType: "trader", RoomID: "trading_floor",
		ActionType: ActionTrade, Description: "Executed BUY 10 NVDA"})
	l.Append(Entry{CharacterID: "b", CharacterType: "analyst", RoomID: "research_lab",
		ActionType: ActionAnalysis, Description: "Reviewing NVDA earnings"})
	l.Append(Entry{CharacterID: "c", CharacterType: "analyst", RoomID: "meeting_room",
		ActionType: ActionConversation, Description: "Debating sector rotation"})

	assert.Len(t, l.List(Filter{CharacterType: "analyst"}), 2)
	assert.Len(t, l.List(Filter{RoomID: "trading_floor"}), 1)
	assert.Len(t, l.List(Filter{ActionType: ActionConversation}), 1)
	assert.Len(t, l.List(Filter{Search: "nvda"}), 2)
	assert.Len(t, l.List(Filter{CharacterType: "analyst", Search: "nvda"}), 1)
	assert.Len(t, l.List(Filter{}), 3)
}
