package simqueue

import (
	"fmt"
	"testing"
	"time"

	"github.com/aristath/tradingfloor/internal/activity"
	"github.com/aristath/tradingfloor/internal/domain"
	"github.com/aristath/tradingfloor/internal/events"
	"github.com/aristath/tradingfloor/internal/roster"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScheduler records scheduled completions without arming timers,
// letting tests fire them explicitly.
type manualScheduler struct {
	fns       map[string]func()
	cancelled []string
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{fns: make(map[string]func())}
}

func (s *manualScheduler) Schedule(id string, d time.Duration, fn func()) {
	s.fns[id] = fn
}

func (s *manualScheduler) Cancel(id string) {
	s.cancelled = append(s.cancelled, id)
	delete(s.fns, id)
}

type fixedRooms struct{ target string }

func (f fixedRooms) TargetRoom(current string) string { return f.target }

func newTestQueue(t *testing.T) (*Queue, *roster.Roster, *manualScheduler) {
	t.Helper()
	r := roster.New(roster.DefaultCharacters(), zerolog.Nop())
	s := newManualScheduler()
	m := events.NewManager(events.NewBus(), zerolog.Nop())
	q := New(r, s, fixedRooms{target: "break_room"}, m, activity.NewLog(zerolog.Nop()), zerolog.Nop())
	return q, r, s
}

func makeEvent(id string, ts time.Time, priority int, kind domain.EventKind, chars ...string) *domain.CharacterEvent {
	return &domain.CharacterEvent{
		ID:           id,
		Timestamp:    ts,
		CharacterIDs: chars,
		OriginRoom:   "trading_floor",
		Kind:         kind,
		Message:      "working on something",
		Duration:     10 * time.Second,
		Priority:     priority,
	}
}

func TestEnqueueOrdering(t *testing.T) {
	q, _, _ := newTestQueue(t)
	base := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)
	t1 := base
	t2 := base.Add(1 * time.Minute)
	t3 := base.Add(2 * time.Minute)

	q.Enqueue(makeEvent("e-t2", t2, 1, domain.EventAnalyze, "analyst-1"))
	q.Enqueue(makeEvent("e-t1", t1, 5, domain.EventAnalyze, "analyst-2"))
	q.Enqueue(makeEvent("e-t3", t3, 1, domain.EventAnalyze, "quant-1"))

	pending := q.Pending()
	require.Len(t, pending, 3)
	assert.Equal(t, "e-t1", pending[0].ID)
	assert.Equal(t, "e-t2", pending[1].ID)
	assert.Equal(t, "e-t3", pending[2].ID)
}

func TestEnqueuePriorityBreaksTimestampTies(t *testing.T) {
	q, _, _ := newTestQueue(t)
	ts := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)

	q.Enqueue(makeEvent("low", ts, 1, domain.EventMove, "trader-1"))
	q.Enqueue(makeEvent("high", ts, 3, domain.EventDecide, "trader-2"))

	pending := q.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "high", pending[0].ID)
	assert.Equal(t, "low", pending[1].ID)
}

func TestActivateDuePromotesAndMutatesCharacters(t *testing.T) {
	q, r, s := newTestQueue(t)
	now := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)

	q.Enqueue(makeEvent("due", now.Add(-time.Second), 2, domain.EventAnalyze, "analyst-1"))
	q.Enqueue(makeEvent("future", now.Add(time.Minute), 2, domain.EventAnalyze, "analyst-2"))

	due := q.ActivateDue(now)
	require.Len(t, due, 1)
	assert.Equal(t, "due", due[0].ID)
	assert.Len(t, q.Pending(), 1)
	assert.Equal(t, 1, q.ActiveCount())

	c, ok := r.Get("analyst-1")
	require.True(t, ok)
	assert.Equal(t, domain.StateWorking, c.State)

	// completion was deferred under the event's id
	_, scheduled := s.fns["event-due"]
	assert.True(t, scheduled)
}

func TestActivateDiscussPairsCharacters(t *testing.T) {
	q, r, _ := newTestQueue(t)
	now := time.Date(2024, 1, 8, 14, 0, 0, 0, time.UTC)

	q.Enqueue(makeEvent("chat", now, 2, domain.EventDiscuss, "trader-1", "trader-2"))
	q.ActivateDue(now)

	a, _ := r.Get("trader-1")
	b, _ := r.Get("trader-2")
	assert.Equal(t, domain.StateTalking, a.State)
	assert.Equal(t, domain.StateTalking, b.State)
}

func TestActivateMoveUsesRoomPicker(t *testing.T) {
	q, r, _ := newTestQueue(t)
	now := time.Date(2024, 1, 8, 12, 30, 0, 0, time.UTC)

	q.Enqueue(makeEvent("walk", now, 1, domain.EventMove, "pm-1"))
	q.ActivateDue(now)

	c, _ := r.Get("pm-1")
	assert.Equal(t, domain.StateWalking, c.State)
	assert.Equal(t, "break_room", c.TargetRoom)
}

func TestCompleteResetsCharactersAndGuardsDoubles(t *testing.T) {
	q, r, s := newTestQueue(t)
	now := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)

	q.Enqueue(makeEvent("once", now, 2, domain.EventAnalyze, "quant-1"))
	q.ActivateDue(now)
	require.Equal(t, 1, q.ActiveCount())

	s.fns["event-once"]()
	assert.Equal(t, 0, q.ActiveCount())
	assert.Len(t, q.Completed(), 1)
	assert.True(t, q.Completed()[0].Completed)

	c, _ := r.Get("quant-1")
	assert.Equal(t, domain.StateIdle, c.State)

	// second completion of the same id must be a no-op
	q.Complete("once")
	assert.Len(t, q.Completed(), 1)

	// unknown ids too
	q.Complete("never-existed")
	assert.Len(t, q.Completed(), 1)
}

func TestCompletedHistoryBounded(t *testing.T) {
	q, _, _ := newTestQueue(t)
	now := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 1500; i++ {
		id := fmt.Sprintf("entry-%d", i)
		q.Enqueue(makeEvent(id, now.Add(time.Duration(i)*time.Millisecond), 1, domain.EventAnalyze, "analyst-1"))
		q.ActivateDue(now.Add(time.Duration(i) * time.Millisecond))
		q.Complete(id)
	}

	completed := q.Completed()
	require.Len(t, completed, MaxCompleted)
	assert.Equal(t, "entry-500", completed[0].ID)
	assert.Equal(t, "entry-1499", completed[len(completed)-1].ID)
}
