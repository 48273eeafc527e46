// Package clock converts wall-clock elapsed time into simulated time and
// derives the business-day period and weekday classification from it.
package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/aristath/tradingfloor/internal/domain"
	"github.com/rs/zerolog"
)

// Scale is the fixed time acceleration: one real second at 1x speed
// advances the simulation by two minutes.
const Scale = 120

// Business hours bound the portion of a weekday the simulation plays
// through; everything else is skipped.
const (
	businessOpenHour  = 9
	businessCloseHour = 17
)

// State is a read-only snapshot of the clock
type State struct {
	Now     time.Time      `json:"now"`
	Period  domain.Period  `json:"period"`
	DayType domain.DayType `json:"day_type"`
	Speed   float64        `json:"speed"`
	Running bool           `json:"running"`
}

// AdvanceResult reports what happened during one Advance call
type AdvanceResult struct {
	Now        time.Time
	DayChanged bool
	// PrevDate/NewDate are set when DayChanged is true
	PrevDate       string
	NewDate        string
	PrevWasWeekday bool // the completed day was a weekday: pause for the daily summary
	Completed      bool // the end date has been reached; the clock has halted
}

// Clock owns simulated time. Period and day type are always derived from
// the current simulated date, never stored independently.
type Clock struct {
	mu      sync.RWMutex
	current time.Time
	end     time.Time
	speed   float64
	running bool
	log     zerolog.Logger
}

// New creates a clock positioned at start, halting at end
func New(start, end time.Time, speed float64, log zerolog.Logger) (*Clock, error) {
	if speed <= 0 {
		return nil, fmt.Errorf("speed multiplier must be positive, got %v", speed)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("end date %s is not after start date %s", end, start)
	}
	return &Clock{
		current: start,
		end:     end,
		speed:   speed,
		running: true,
		log:     log.With().Str("component", "clock").Logger(),
	}, nil
}

// Now returns the current simulated time
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Speed returns the current speed multiplier
func (c *Clock) Speed() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.speed
}

// SetSpeed changes the speed multiplier. Non-positive values are rejected
// here so Advance never has to deal with them.
func (c *Clock) SetSpeed(speed float64) error {
	if speed <= 0 {
		return fmt.Errorf("speed multiplier must be positive, got %v", speed)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = speed
	return nil
}

// Running reports whether the clock is still advancing
func (c *Clock) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// Snapshot returns the full derived clock state
func (c *Clock) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{
		Now:     c.current,
		Period:  PeriodAt(c.current),
		DayType: DayTypeAt(c.current),
		Speed:   c.speed,
		Running: c.running,
	}
}

// Advance moves simulated time forward by realElapsed of wall-clock time.
// Simulated time is monotonically non-decreasing: negative elapsed values
// are ignored.
func (c *Clock) Advance(realElapsed time.Duration) AdvanceResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := AdvanceResult{Now: c.current}
	if !c.running || realElapsed <= 0 {
		return res
	}

	simElapsed := time.Duration(float64(realElapsed) * c.speed * Scale)
	prev := c.current
	c.current = c.current.Add(simElapsed)
	res.Now = c.current

	if dateOf(prev) != dateOf(c.current) {
		res.DayChanged = true
		res.PrevDate = dateOf(prev)
		res.NewDate = dateOf(c.current)
		res.PrevWasWeekday = DayTypeAt(prev) == domain.DayTypeWeekday
	}

	if !c.current.Before(c.end) {
		c.running = false
		res.Completed = true
		c.log.Info().Str("date", dateOf(c.current)).Msg("Simulation end date reached")
	}

	return res
}

// SkipToBusinessHours fast-forwards the clock to the next weekday 09:00
// when the current simulated instant is outside business hours. Returns
// true when a jump happened.
func (c *Clock) SkipToBusinessHours() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || withinBusinessHours(c.current) {
		return false
	}

	next := c.current
	if next.Hour() < businessOpenHour {
		next = time.Date(next.Year(), next.Month(), next.Day(), businessOpenHour, 0, 0, 0, next.Location())
	} else {
		next = time.Date(next.Year(), next.Month(), next.Day(), businessOpenHour, 0, 0, 0, next.Location()).AddDate(0, 0, 1)
	}
	for DayTypeAt(next) == domain.DayTypeWeekend {
		next = next.AddDate(0, 0, 1)
	}
	if next.After(c.end) {
		next = c.end
	}

	c.log.Debug().
		Str("from", c.current.Format(time.RFC3339)).
		Str("to", next.Format(time.RFC3339)).
		Msg("Skipping off-hours")
	c.current = next
	if !c.current.Before(c.end) {
		c.running = false
		c.log.Info().Str("date", dateOf(c.current)).Msg("Simulation end date reached")
	}
	return true
}

// FastForwardToDate jumps the clock to 09:00 on the given date. Used by
// the next-day / next-weekday commands; never moves backwards.
func (c *Clock) FastForwardToDate(date time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := time.Date(date.Year(), date.Month(), date.Day(), businessOpenHour, 0, 0, 0, date.Location())
	if target.After(c.current) {
		c.current = target
	}
}

func withinBusinessHours(t time.Time) bool {
	if DayTypeAt(t) == domain.DayTypeWeekend {
		return false
	}
	h := t.Hour()
	return h >= businessOpenHour && h < businessCloseHour
}

func dateOf(t time.Time) string {
	return t.Format("2006-01-02")
}
