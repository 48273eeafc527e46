// Package engine owns the simulation loop. Each tick advances the
// simulated clock, activates due events, lets the generator propose new
// office activity, and handles day rollovers. All state transitions are
// serialized through the engine's mutex, so HTTP handlers read
// consistent snapshots.
package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/aristath/tradingfloor/internal/activity"
	"github.com/aristath/tradingfloor/internal/clock"
	"github.com/aristath/tradingfloor/internal/config"
	"github.com/aristath/tradingfloor/internal/dailydata"
	"github.com/aristath/tradingfloor/internal/domain"
	"github.com/aristath/tradingfloor/internal/events"
	"github.com/aristath/tradingfloor/internal/generator"
	"github.com/aristath/tradingfloor/internal/ledger"
	"github.com/aristath/tradingfloor/internal/roster"
	"github.com/aristath/tradingfloor/internal/simqueue"
	"github.com/aristath/tradingfloor/internal/timers"
	"github.com/rs/zerolog"
)

// marketEventTTL is the wall-clock display window of a transient market
// event before it expires out of the feed.
const marketEventTTL = 30 * time.Second

// Engine wires the simulation components together and drives them
type Engine struct {
	mu  sync.Mutex
	cfg *config.Config

	clock    *clock.Clock
	queue    *simqueue.Queue
	gen      *generator.Generator
	roster   *roster.Roster
	ledger   *ledger.Ledger
	daily    *dailydata.Processor
	timers   *timers.Registry
	manager  *events.Manager
	activity *activity.Log
	log      zerolog.Logger

	paused  bool
	started bool
	done    bool

	lastTick      time.Time // wall clock of the previous tick
	lastGenerated time.Time // wall clock of the last accepted generation

	// marketEvents has its own lock: the daily processor publishes while
	// the engine mutex is held during a rollover.
	marketMu     sync.Mutex
	marketEvents map[string]domain.MarketEvent

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Options carries the collaborators the engine drives
type Options struct {
	Config   *config.Config
	Clock    *clock.Clock
	Queue    *simqueue.Queue
	Gen      *generator.Generator
	Roster   *roster.Roster
	Ledger   *ledger.Ledger
	Timers   *timers.Registry
	Manager  *events.Manager
	Activity *activity.Log
}

// New creates an engine in the paused state. Start begins the run.
func New(opts Options, log zerolog.Logger) *Engine {
	e := &Engine{
		cfg:          opts.Config,
		clock:        opts.Clock,
		queue:        opts.Queue,
		gen:          opts.Gen,
		roster:       opts.Roster,
		ledger:       opts.Ledger,
		timers:       opts.Timers,
		manager:      opts.Manager,
		activity:     opts.Activity,
		log:          log.With().Str("component", "engine").Logger(),
		paused:       true,
		marketEvents: make(map[string]domain.MarketEvent),
		stopCh:       make(chan struct{}),
	}
	e.daily = dailydata.New(opts.Ledger, opts.Activity, opts.Timers, e, log)
	return e
}

// Run drives the tick loop until Stop is called. Blocks; callers run it
// in a goroutine.
func (e *Engine) Run() {
	e.wg.Add(1)
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			e.Tick(time.Now())
		}
	}
}

// Tick runs one simulation step at the given wall-clock instant. Exposed
// so tests can drive the loop deterministically.
func (e *Engine) Tick(wallNow time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused || e.done {
		e.lastTick = wallNow
		return
	}

	elapsed := wallNow.Sub(e.lastTick)
	e.lastTick = wallNow
	if elapsed <= 0 {
		return
	}

	res := e.clock.Advance(elapsed)
	simNow := res.Now

	// Fixed intra-tick order: activation, then generation, then rollover.
	e.queue.ActivateDue(simNow)
	e.generateLocked(wallNow, simNow)

	if res.DayChanged {
		e.rolloverLocked(res)
	}
	if res.Completed {
		e.completeLocked()
	}

	e.skipOffHoursLocked()
}

// skipOffHoursLocked jumps the clock to the next weekday 09:00 when the
// current instant is outside business hours, so nights and weekends do
// not play out in real time. A skip that crosses midnight completes the
// day the same way a ticked rollover would.
func (e *Engine) skipOffHoursLocked() {
	if e.paused || e.done {
		return
	}

	before := e.clock.Now()
	if !e.clock.SkipToBusinessHours() {
		return
	}
	after := e.clock.Now()

	prevDate := before.Format("2006-01-02")
	newDate := after.Format("2006-01-02")
	if prevDate != newDate {
		weekday := clock.DayTypeAt(before) == domain.DayTypeWeekday
		e.log.Info().
			Str("completed", prevDate).
			Str("next", newDate).
			Bool("weekday", weekday).
			Msg("Skipped off-hours")

		if weekday {
			e.daily.ProcessDay(prevDate)
		}
		e.manager.EmitTyped(events.DayCompleted, "engine", &events.DayCompletedData{
			Date:       prevDate,
			NextDate:   newDate,
			WasWeekday: weekday,
		})

		if e.cfg.PauseOnDayEnd && weekday && e.clock.Running() {
			e.pauseLocked()
		}
	}

	// The jump halts the clock when it runs into the end date.
	if !e.clock.Running() {
		e.completeLocked()
	}
}

// generateLocked asks the generator for one candidate event, subject to
// the active-count rate limit and the acceptance roll.
func (e *Engine) generateLocked(wallNow, simNow time.Time) {
	if wallNow.Sub(e.lastGenerated) < generator.MinInterval(e.queue.ActiveCount()) {
		return
	}
	if !e.gen.Accept() {
		return
	}

	period := clock.PeriodAt(simNow)
	candidate := e.gen.Candidate(simNow, e.roster.List(), period)
	if candidate == nil {
		return
	}

	e.lastGenerated = wallNow
	e.queue.Enqueue(candidate)
}

func (e *Engine) rolloverLocked(res clock.AdvanceResult) {
	e.log.Info().
		Str("completed", res.PrevDate).
		Str("next", res.NewDate).
		Bool("weekday", res.PrevWasWeekday).
		Msg("Day rollover")

	if res.PrevWasWeekday {
		e.daily.ProcessDay(res.PrevDate)
	}
	e.manager.EmitTyped(events.DayCompleted, "engine", &events.DayCompletedData{
		Date:       res.PrevDate,
		NextDate:   res.NewDate,
		WasWeekday: res.PrevWasWeekday,
	})

	if e.cfg.PauseOnDayEnd && res.PrevWasWeekday && !res.Completed {
		e.pauseLocked()
	}
}

func (e *Engine) completeLocked() {
	if e.done {
		return
	}
	e.done = true
	e.paused = true
	e.timers.Pause()
	e.log.Info().Msg("Simulation completed")
	e.manager.EmitTyped(events.SimulationCompleted, "engine", &events.GenericEventData{
		Type: events.SimulationCompleted,
		Data: map[string]interface{}{"reason": "end date reached"},
	})
}

// Start begins the run, or resumes it after a pause
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done {
		return
	}
	if !e.started {
		e.started = true
		e.paused = false
		e.lastTick = time.Now()
		e.log.Info().Msg("Simulation started")
		e.manager.EmitTyped(events.SimulationStarted, "engine", &events.GenericEventData{
			Type: events.SimulationStarted,
		})
		return
	}
	if !e.paused {
		return
	}
	e.paused = false
	e.lastTick = time.Now()
	e.timers.Resume()
	e.log.Info().Msg("Simulation resumed")
	e.manager.EmitTyped(events.SimulationResumed, "engine", &events.GenericEventData{
		Type: events.SimulationResumed,
	})
}

// Pause freezes the simulation. Pending completions stop with it, so
// nothing mutates state until Start is called again.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused || e.done {
		return
	}
	e.pauseLocked()
}

func (e *Engine) pauseLocked() {
	e.paused = true
	e.timers.Pause()
	e.log.Info().Msg("Simulation paused")
	e.manager.EmitTyped(events.SimulationPaused, "engine", &events.GenericEventData{
		Type: events.SimulationPaused,
	})
}

// Paused reports whether the engine is currently paused
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Completed reports whether the end date has been reached
func (e *Engine) Completed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

// SetSpeed changes the simulated-time multiplier
func (e *Engine) SetSpeed(speed float64) error {
	if err := e.clock.SetSpeed(speed); err != nil {
		return err
	}
	e.manager.EmitTyped(events.SpeedChanged, "engine", &events.SpeedChangedData{Speed: speed})
	return nil
}

// FastForwardDay completes the current day and jumps to 09:00 tomorrow
func (e *Engine) FastForwardDay() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done {
		return
	}
	e.fastForwardLocked(false)
}

// FastForwardWeekday completes the current day and jumps to 09:00 on the
// next weekday, skipping the weekend.
func (e *Engine) FastForwardWeekday() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done {
		return
	}
	e.fastForwardLocked(true)
}

func (e *Engine) fastForwardLocked(skipWeekend bool) {
	cur := e.clock.Now()
	curDate := cur.Format("2006-01-02")

	if clock.DayTypeAt(cur) == domain.DayTypeWeekday {
		e.daily.ProcessDay(curDate)
	}

	target := cur.AddDate(0, 0, 1)
	if skipWeekend {
		for clock.DayTypeAt(target) == domain.DayTypeWeekend {
			target = target.AddDate(0, 0, 1)
		}
	}
	e.clock.FastForwardToDate(target)

	e.manager.EmitTyped(events.DayCompleted, "engine", &events.DayCompletedData{
		Date:       curDate,
		NextDate:   target.Format("2006-01-02"),
		WasWeekday: clock.DayTypeAt(cur) == domain.DayTypeWeekday,
	})
}

// PublishMarketEvent adds a transient market event to the feed. It
// expires out after the display window on the pause-aware timers.
func (e *Engine) PublishMarketEvent(ev domain.MarketEvent) {
	e.marketMu.Lock()
	e.marketEvents[ev.ID] = ev
	e.marketMu.Unlock()

	e.manager.EmitTyped(events.MarketEventCreated, "engine", &events.MarketEventData{
		EventID:     ev.ID,
		Type:        ev.Type,
		Description: ev.Description,
		Impact:      string(ev.Impact),
		Magnitude:   ev.Magnitude,
	})

	id := ev.ID
	e.timers.Schedule("market-"+id, marketEventTTL, func() {
		e.expireMarketEvent(id)
	})
}

func (e *Engine) expireMarketEvent(id string) {
	e.marketMu.Lock()
	_, ok := e.marketEvents[id]
	delete(e.marketEvents, id)
	e.marketMu.Unlock()
	if !ok {
		return
	}
	e.manager.EmitTyped(events.MarketEventExpired, "engine", &events.MarketEventData{
		EventID: id,
		Expired: true,
	})
}

// MarketEvents returns the live transient events, oldest first
func (e *Engine) MarketEvents() []domain.MarketEvent {
	e.marketMu.Lock()
	defer e.marketMu.Unlock()
	out := make([]domain.MarketEvent, 0, len(e.marketEvents))
	for _, ev := range e.marketEvents {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// ClockState returns the derived clock snapshot
func (e *Engine) ClockState() clock.State {
	return e.clock.Snapshot()
}

// Stop shuts the tick loop down and cancels every pending timer
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopCh)
	})
	e.wg.Wait()
	e.timers.Stop()
	e.log.Info().Msg("Engine stopped")
}
