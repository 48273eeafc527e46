// Package simqueue holds pending character events, promotes them to
// active when their simulated timestamp is reached, and retires them to a
// bounded history once their display duration has elapsed.
package simqueue

import (
	"sort"
	"sync"
	"time"

	"github.com/aristath/tradingfloor/internal/activity"
	"github.com/aristath/tradingfloor/internal/domain"
	"github.com/aristath/tradingfloor/internal/events"
	"github.com/rs/zerolog"
)

// MaxCompleted bounds the completed-event history; oldest entries are
// evicted first.
const MaxCompleted = 1000

// CharacterCommands is the slice of the roster the queue drives
type CharacterCommands interface {
	Get(id string) (domain.Character, bool)
	BeginMove(id, targetRoom string)
	BeginTask(id, task string)
	BeginConversation(firstID, secondID string)
	Reset(ids ...string)
}

// CompletionScheduler defers event completion by the display duration.
// The engine passes the pause-aware timer registry; tests may pass a
// manual implementation.
type CompletionScheduler interface {
	Schedule(id string, d time.Duration, fn func())
	Cancel(id string)
}

// RoomPicker chooses the destination of MOVE events
type RoomPicker interface {
	TargetRoom(current string) string
}

// Queue owns the pending, active and completed character-event lists
type Queue struct {
	mu        sync.RWMutex
	pending   []*domain.CharacterEvent // sorted by (timestamp asc, priority desc)
	active    map[string]*domain.CharacterEvent
	completed []*domain.CharacterEvent

	roster    CharacterCommands
	scheduler CompletionScheduler
	rooms     RoomPicker
	manager   *events.Manager
	activity  *activity.Log
	log       zerolog.Logger
}

// New creates an empty queue
func New(r CharacterCommands, s CompletionScheduler, rooms RoomPicker, manager *events.Manager, activityLog *activity.Log, log zerolog.Logger) *Queue {
	return &Queue{
		active:    make(map[string]*domain.CharacterEvent),
		roster:    r,
		scheduler: s,
		rooms:     rooms,
		manager:   manager,
		activity:  activityLog,
		log:       log.With().Str("component", "simqueue").Logger(),
	}
}

// Enqueue inserts an event into the pending list, keeping it sorted by
// timestamp ascending with higher priority first among equal timestamps.
func (q *Queue) Enqueue(ev *domain.CharacterEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := sort.Search(len(q.pending), func(i int) bool {
		p := q.pending[i]
		if !p.Timestamp.Equal(ev.Timestamp) {
			return p.Timestamp.After(ev.Timestamp)
		}
		return p.Priority < ev.Priority
	})
	q.pending = append(q.pending, nil)
	copy(q.pending[idx+1:], q.pending[idx:])
	q.pending[idx] = ev

	if q.manager != nil {
		q.manager.EmitTyped(events.CharacterEventQueued, "simqueue", &events.CharacterEventData{
			EventID:      ev.ID,
			Kind:         string(ev.Kind),
			CharacterIDs: ev.CharacterIDs,
			Room:         ev.OriginRoom,
			Stock:        ev.RelatedStock,
			Message:      ev.Message,
			Status:       "queued",
		})
	}
}

// ActivateDue promotes every pending event whose timestamp has been
// reached, mutating the involved characters and scheduling completion.
func (q *Queue) ActivateDue(simNow time.Time) []*domain.CharacterEvent {
	q.mu.Lock()

	var due []*domain.CharacterEvent
	for len(q.pending) > 0 && !q.pending[0].Timestamp.After(simNow) {
		ev := q.pending[0]
		q.pending = q.pending[1:]
		q.active[ev.ID] = ev
		due = append(due, ev)
	}
	q.mu.Unlock()

	for _, ev := range due {
		q.activate(ev)
	}
	return due
}

// activate applies an event's side effects: character states, activity
// log, lifecycle event, deferred completion.
func (q *Queue) activate(ev *domain.CharacterEvent) {
	switch ev.Kind {
	case domain.EventDiscuss:
		if len(ev.CharacterIDs) == 2 {
			q.roster.BeginConversation(ev.CharacterIDs[0], ev.CharacterIDs[1])
			q.appendActivity(ev, activity.ConversationDetails{
				WithCharacterID: ev.CharacterIDs[1],
				Topic:           ev.RelatedStock,
			})
		} else {
			q.roster.BeginTask(ev.CharacterIDs[0], ev.Message)
			q.appendActivity(ev, activity.AnalysisDetails{Stock: ev.RelatedStock, Duration: ev.Duration})
		}
	case domain.EventMove:
		target := ev.OriginRoom
		if q.rooms != nil {
			target = q.rooms.TargetRoom(ev.OriginRoom)
		}
		q.roster.BeginMove(ev.CharacterIDs[0], target)
		q.appendActivity(ev, activity.MovementDetails{FromRoom: ev.OriginRoom, ToRoom: target})
	case domain.EventDecide:
		q.roster.BeginTask(ev.CharacterIDs[0], ev.Message)
		q.appendActivity(ev, activity.DecisionDetails{Stock: ev.RelatedStock})
	default:
		q.roster.BeginTask(ev.CharacterIDs[0], ev.Message)
		q.appendActivity(ev, activity.AnalysisDetails{Stock: ev.RelatedStock, Duration: ev.Duration})
	}

	if q.manager != nil {
		q.manager.EmitTyped(events.CharacterEventStarted, "simqueue", &events.CharacterEventData{
			EventID:      ev.ID,
			Kind:         string(ev.Kind),
			CharacterIDs: ev.CharacterIDs,
			Room:         ev.OriginRoom,
			Stock:        ev.RelatedStock,
			Message:      ev.Message,
			Status:       "started",
		})
	}

	// Duration is a wall-clock display window, not simulated time
	if q.scheduler != nil {
		id := ev.ID
		q.scheduler.Schedule("event-"+id, ev.Duration, func() {
			q.Complete(id)
		})
	}
}

func (q *Queue) appendActivity(ev *domain.CharacterEvent, details activity.Details) {
	if q.activity == nil {
		return
	}
	characterType := ""
	if c, ok := q.roster.Get(ev.CharacterIDs[0]); ok {
		characterType = c.Role
	}
	q.activity.Append(activity.Entry{
		Timestamp:     ev.Timestamp,
		CharacterID:   ev.CharacterIDs[0],
		CharacterType: characterType,
		RoomID:        ev.OriginRoom,
		Description:   ev.Message,
		Details:       details,
	})
}

// Complete retires an active event, resetting its characters and moving
// it into the bounded history. Unknown or already-completed ids are
// no-ops, so a late timer can never double-complete.
func (q *Queue) Complete(id string) {
	q.mu.Lock()
	ev, ok := q.active[id]
	if !ok {
		q.mu.Unlock()
		return
	}
	delete(q.active, id)
	ev.Completed = true
	q.completed = append(q.completed, ev)
	if len(q.completed) > MaxCompleted {
		q.completed = q.completed[len(q.completed)-MaxCompleted:]
	}
	q.mu.Unlock()

	q.roster.Reset(ev.CharacterIDs...)
	if q.scheduler != nil {
		q.scheduler.Cancel("event-" + id)
	}
	if q.manager != nil {
		q.manager.EmitTyped(events.CharacterEventCompleted, "simqueue", &events.CharacterEventData{
			EventID:      ev.ID,
			Kind:         string(ev.Kind),
			CharacterIDs: ev.CharacterIDs,
			Room:         ev.OriginRoom,
			Status:       "completed",
		})
	}
}

// Pending returns a copy of the pending list in activation order
func (q *Queue) Pending() []domain.CharacterEvent {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]domain.CharacterEvent, len(q.pending))
	for i, ev := range q.pending {
		out[i] = *ev
	}
	return out
}

// Active returns copies of the active events
func (q *Queue) Active() []domain.CharacterEvent {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]domain.CharacterEvent, 0, len(q.active))
	for _, ev := range q.active {
		out = append(out, *ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// Completed returns a copy of the completed history, oldest first
func (q *Queue) Completed() []domain.CharacterEvent {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]domain.CharacterEvent, len(q.completed))
	for i, ev := range q.completed {
		out[i] = *ev
	}
	return out
}

// ActiveCount returns the number of currently active events
func (q *Queue) ActiveCount() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.active)
}
