// Package generator produces candidate character events from the current
// simulated instant, the office roster and the business-day period. It is
// deliberately pure apart from its own seeded RNG, so tests can pin the
// seed and assert exact outputs.
package generator

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/tradingfloor/internal/domain"
	"github.com/aristath/tradingfloor/internal/roster"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Generator proposes character events. Not safe for concurrent use; the
// engine calls it from the tick loop only.
type Generator struct {
	rng *rand.Rand
	log zerolog.Logger
}

// New creates a generator with a fixed seed
func New(seed int64, log zerolog.Logger) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		log: log.With().Str("component", "generator").Logger(),
	}
}

// weightedKind is one row of a period's event-type distribution
type weightedKind struct {
	Kind   domain.EventKind
	Weight int
}

// kindWeights is the period-conditioned event-type distribution. The
// strategy meeting is dominated by discussion, lunch always produces
// movement, and nothing at all happens after hours.
var kindWeights = map[domain.Period][]weightedKind{
	domain.PeriodMorningBriefing: {
		{domain.EventDiscuss, 40},
		{domain.EventAnalyze, 40},
		{domain.EventMove, 20},
	},
	domain.PeriodAnalysisPhase: {
		{domain.EventAnalyze, 60},
		{domain.EventMove, 20},
		{domain.EventDecide, 20},
	},
	domain.PeriodLunchBreak: {
		{domain.EventMove, 100},
	},
	domain.PeriodStrategyMeeting: {
		{domain.EventDiscuss, 80},
		{domain.EventAnalyze, 20},
	},
	domain.PeriodTradeExecution: {
		{domain.EventDecide, 50},
		{domain.EventAnalyze, 30},
		{domain.EventMove, 20},
	},
	domain.PeriodEndOfDayReview: {
		{domain.EventAnalyze, 50},
		{domain.EventDiscuss, 30},
		{domain.EventMove, 20},
	},
}

// messageTemplates are the per-period message texts. {stock} and {num}
// placeholders are substituted at generation time.
var messageTemplates = map[domain.Period]map[domain.EventKind][]string{
	domain.PeriodMorningBriefing: {
		domain.EventDiscuss: {
			"Walking through the overnight moves in {stock}",
			"Briefing the desk on {stock} ahead of the open",
		},
		domain.EventAnalyze: {
			"Scanning pre-market flow in {stock}",
			"Reading {num} overnight headlines on {stock}",
		},
		domain.EventMove: {
			"Heading to the morning briefing",
		},
	},
	domain.PeriodAnalysisPhase: {
		domain.EventAnalyze: {
			"Digging into {stock} fundamentals",
			"Modeling {num}% downside scenarios for {stock}",
			"Comparing {stock} against sector peers",
		},
		domain.EventMove: {
			"Grabbing a terminal on the trading floor",
		},
		domain.EventDecide: {
			"Sizing a position in {stock}",
		},
	},
	domain.PeriodLunchBreak: {
		domain.EventMove: {
			"Heading to the break room",
			"Stepping out for lunch",
		},
	},
	domain.PeriodStrategyMeeting: {
		domain.EventDiscuss: {
			"Debating the {stock} thesis",
			"Arguing over {num} basis points of {stock} exposure",
		},
		domain.EventAnalyze: {
			"Pulling up {stock} charts for the meeting",
		},
	},
	domain.PeriodTradeExecution: {
		domain.EventDecide: {
			"Working a {stock} order",
			"Deciding whether to add {num} shares of {stock}",
		},
		domain.EventAnalyze: {
			"Watching the tape on {stock}",
		},
		domain.EventMove: {
			"Crossing to the execution desk",
		},
	},
	domain.PeriodEndOfDayReview: {
		domain.EventAnalyze: {
			"Reviewing today's {stock} fills",
			"Writing up {num} notes on {stock}",
		},
		domain.EventDiscuss: {
			"Recapping the session's {stock} trades",
		},
		domain.EventMove: {
			"Wrapping up at the desk",
		},
	},
}

// durationRange is the wall-clock display duration per event kind, in
// seconds. These are UI-facing and independent of simulated time.
var durationRange = map[domain.EventKind][2]int{
	domain.EventMove:    {5, 10},
	domain.EventAnalyze: {10, 30},
	domain.EventDiscuss: {8, 20},
	domain.EventDecide:  {5, 15},
}

// eventPriority ranks kinds for tie-breaks among equal timestamps
var eventPriority = map[domain.EventKind]int{
	domain.EventMove:    1,
	domain.EventAnalyze: 2,
	domain.EventDiscuss: 2,
	domain.EventDecide:  3,
	domain.EventReact:   3,
}

// Candidate proposes the next character event, or nil when nothing should
// happen: after hours, or with no available character.
func (g *Generator) Candidate(now time.Time, characters []domain.Character, period domain.Period) *domain.CharacterEvent {
	weights, ok := kindWeights[period]
	if !ok {
		return nil
	}

	available := make([]domain.Character, 0, len(characters))
	for _, c := range characters {
		if c.Available() {
			available = append(available, c)
		}
	}
	if len(available) == 0 {
		return nil
	}

	actor := available[g.rng.Intn(len(available))]
	kind := g.pickKind(weights)

	ids := []string{actor.ID}
	if kind == domain.EventDiscuss {
		partner, ok := g.pickPartner(available, actor.ID)
		if ok {
			ids = append(ids, partner.ID)
		} else {
			// No second available character: degrade to a solo event
			kind = domain.EventAnalyze
		}
	}

	stock := domain.TrackedTickers[g.rng.Intn(len(domain.TrackedTickers))]
	message := g.fillTemplate(period, kind, stock)

	return &domain.CharacterEvent{
		ID:           uuid.NewString(),
		Timestamp:    now,
		CharacterIDs: ids,
		OriginRoom:   actor.Room,
		Kind:         kind,
		Message:      message,
		Duration:     g.pickDuration(kind),
		RelatedStock: stock,
		Priority:     eventPriority[kind],
	}
}

// TargetRoom picks where a MOVE event sends its character
func (g *Generator) TargetRoom(current string) string {
	for i := 0; i < 4; i++ {
		room := roster.AllRooms[g.rng.Intn(len(roster.AllRooms))]
		if room != current {
			return room
		}
	}
	return roster.RoomTradingFloor
}

// MinInterval returns the minimum wall-clock gap between generated events
// given the number of currently active events. The gap grows under load:
// max(5000, 2000 + active*2000) ms.
func MinInterval(activeCount int) time.Duration {
	ms := 2000 + activeCount*2000
	if ms < 5000 {
		ms = 5000
	}
	return time.Duration(ms) * time.Millisecond
}

// Accept applies the 30% acceptance gate that bounds generation
// throughput even when the interval has elapsed.
func (g *Generator) Accept() bool {
	return g.rng.Float64() < 0.3
}

func (g *Generator) pickKind(weights []weightedKind) domain.EventKind {
	total := 0
	for _, w := range weights {
		total += w.Weight
	}
	n := g.rng.Intn(total)
	for _, w := range weights {
		n -= w.Weight
		if n < 0 {
			return w.Kind
		}
	}
	return weights[len(weights)-1].Kind
}

func (g *Generator) pickPartner(available []domain.Character, excludeID string) (domain.Character, bool) {
	candidates := make([]domain.Character, 0, len(available))
	for _, c := range available {
		if c.ID != excludeID {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return domain.Character{}, false
	}
	return candidates[g.rng.Intn(len(candidates))], true
}

func (g *Generator) fillTemplate(period domain.Period, kind domain.EventKind, stock string) string {
	templates := messageTemplates[period][kind]
	if len(templates) == 0 {
		return string(kind)
	}
	msg := templates[g.rng.Intn(len(templates))]
	msg = strings.ReplaceAll(msg, "{stock}", stock)
	msg = strings.ReplaceAll(msg, "{num}", strconv.Itoa(1+g.rng.Intn(99)))
	return msg
}

func (g *Generator) pickDuration(kind domain.EventKind) time.Duration {
	r, ok := durationRange[kind]
	if !ok {
		r = [2]int{5, 10}
	}
	secs := r[0] + g.rng.Intn(r[1]-r[0]+1)
	return time.Duration(secs) * time.Second
}
