package roster

import (
	"testing"

	"github.com/aristath/tradingfloor/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListReturnsCopies(t *testing.T) {
	r := New(DefaultCharacters(), zerolog.Nop())

	chars := r.List()
	require.NotEmpty(t, chars)
	chars[0].State = domain.StateTalking

	fresh, ok := r.Get(chars[0].ID)
	require.True(t, ok)
	assert.Equal(t, domain.StateIdle, fresh.State)
}

func TestAvailableExcludesWalkingAndTalking(t *testing.T) {
	r := New(DefaultCharacters(), zerolog.Nop())
	total := len(r.List())

	r.BeginMove("trader-1", RoomBreakRoom)
	r.BeginConversation("analyst-1", "analyst-2")
	r.BeginTask("quant-1", "Backtesting momentum signals")

	avail := r.Available()
	// Working characters remain available; walking and talking do not
	assert.Len(t, avail, total-3)
	for _, c := range avail {
		assert.NotEqual(t, domain.StateWalking, c.State)
		assert.NotEqual(t, domain.StateTalking, c.State)
	}
}

func TestResetCompletesMove(t *testing.T) {
	r := New(DefaultCharacters(), zerolog.Nop())

	r.BeginMove("trader-1", RoomBreakRoom)
	r.Reset("trader-1")

	c, ok := r.Get("trader-1")
	require.True(t, ok)
	assert.Equal(t, domain.StateIdle, c.State)
	assert.Equal(t, RoomBreakRoom, c.Room)
	assert.Empty(t, c.TargetRoom)
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	r := New(DefaultCharacters(), zerolog.Nop())

	r.BeginMove("nope", RoomBreakRoom)
	r.BeginTask("nope", "task")
	r.Reset("nope")

	_, ok := r.Get("nope")
	assert.False(t, ok)
}
