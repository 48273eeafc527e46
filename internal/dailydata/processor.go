// Package dailydata replays a canned batch of market events and trades
// for each simulated business day, driving the ledger and the activity
// feed. The dataset ships embedded in the binary; entries with an empty
// date act as a daily template matching every date.
package dailydata

import (
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aristath/tradingfloor/internal/activity"
	"github.com/aristath/tradingfloor/internal/domain"
	"github.com/aristath/tradingfloor/internal/ledger"
	"github.com/aristath/tradingfloor/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

//go:embed dataset.json
var datasetFS embed.FS

// settlementDelay is the wall-clock lag between booking a replayed trade
// and executing it.
const settlementDelay = 2 * time.Second

// SimulatedEvent is one dataset entry, discriminated by Type
type SimulatedEvent struct {
	Date      string  `json:"date"` // empty matches every date
	Time      string  `json:"time"` // HH:MM
	Type      string  `json:"type"`
	Ticker    string  `json:"ticker,omitempty"`
	Message   string  `json:"message"`
	Direction string  `json:"direction,omitempty"` // "up" or "down"
	Percent   float64 `json:"percent,omitempty"`
}

// SimulatedTrade is one trade entry in the dataset
type SimulatedTrade struct {
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	Action     string  `json:"action"`
	Ticker     string  `json:"ticker"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	ExecutedBy string  `json:"executed_by,omitempty"`
}

type dataset struct {
	Prices map[string]float64 `json:"prices"`
	Events []SimulatedEvent   `json:"events"`
	Trades []SimulatedTrade   `json:"trades"`
}

// SettlementScheduler defers trade execution by the settlement delay
type SettlementScheduler interface {
	Schedule(id string, d time.Duration, fn func())
	Cancel(id string)
}

// MarketPublisher receives the transient market events the replay creates
type MarketPublisher interface {
	PublishMarketEvent(ev domain.MarketEvent)
}

// Processor replays the embedded dataset for one day at a time
type Processor struct {
	data      dataset
	ledger    *ledger.Ledger
	activity  *activity.Log
	scheduler SettlementScheduler
	market    MarketPublisher
	log       zerolog.Logger
}

// New loads the embedded dataset. A load or parse failure is logged and
// the processor degrades to an empty dataset rather than failing the run.
func New(l *ledger.Ledger, activityLog *activity.Log, scheduler SettlementScheduler, market MarketPublisher, log zerolog.Logger) *Processor {
	p := &Processor{
		ledger:    l,
		activity:  activityLog,
		scheduler: scheduler,
		market:    market,
		log:       log.With().Str("component", "dailydata").Logger(),
	}

	raw, err := datasetFS.ReadFile("dataset.json")
	if err == nil {
		err = json.Unmarshal(raw, &p.data)
	}
	if err != nil {
		p.log.Error().Err(err).Msg("Failed to load daily dataset, continuing with empty data")
		p.data = dataset{}
	}
	if len(p.data.Prices) > 0 {
		l.UpdatePrices(p.data.Prices)
	}
	return p
}

// ProcessDay replays the dataset entries matching the given simulated
// date (YYYY-MM-DD), then appends the day's performance snapshot.
func (p *Processor) ProcessDay(date string) domain.DailyPerformance {
	timer := utils.NewTimer("process_daily_data", p.log)
	defer timer.Stop()

	events := 0
	for _, ev := range p.data.Events {
		if ev.Date != "" && ev.Date != date {
			continue
		}
		p.dispatchEvent(date, ev)
		events++
	}

	trades := 0
	for _, tr := range p.data.Trades {
		if tr.Date != "" && tr.Date != date {
			continue
		}
		p.replayTrade(date, tr)
		trades++
	}

	snapshot := p.ledger.SnapshotDaily(date)
	p.log.Info().
		Str("date", date).
		Int("events", events).
		Int("trades", trades).
		Float64("total_value", snapshot.TotalValue).
		Msg("Processed daily data")
	return snapshot
}

func (p *Processor) dispatchEvent(date string, ev SimulatedEvent) {
	switch ev.Type {
	case "price-movement":
		p.applyPriceMove(ev)
		p.publishMarket(date, ev)
	case "sector-rotation", "market-movement":
		p.publishMarket(date, ev)
	default:
		// market-open, market-close, news, analyst-rating, economic-data
		p.logMarketNote(date, ev)
	}
}

// applyPriceMove marks the named ticker to market by the event's percent.
// Tickers without a known price have nothing to move against, so the
// event degrades to a log entry.
func (p *Processor) applyPriceMove(ev SimulatedEvent) {
	prices := p.ledger.Prices()
	current, ok := prices[ev.Ticker]
	if !ok || current == 0 {
		p.log.Debug().Str("ticker", ev.Ticker).Msg("Price movement for unpriced ticker, skipping")
		return
	}
	factor := 1 + ev.Percent/100
	if ev.Direction == "down" {
		factor = 1 - ev.Percent/100
	}
	p.ledger.UpdatePrices(map[string]float64{
		ev.Ticker: domain.Round(current*factor, 2),
	})
}

func (p *Processor) publishMarket(date string, ev SimulatedEvent) {
	p.logMarketNote(date, ev)
	if p.market == nil {
		return
	}
	impact := domain.ImpactNeutral
	switch ev.Direction {
	case "up":
		impact = domain.ImpactPositive
	case "down":
		impact = domain.ImpactNegative
	}
	p.market.PublishMarketEvent(domain.MarketEvent{
		ID:          uuid.NewString(),
		Timestamp:   time.Now(),
		Type:        ev.Type,
		Description: ev.Message,
		Impact:      impact,
		Magnitude:   ev.Percent / 100,
	})
}

func (p *Processor) logMarketNote(date string, ev SimulatedEvent) {
	if p.activity == nil {
		return
	}
	p.activity.Append(activity.Entry{
		Timestamp:   parseEntryTime(date, ev.Time),
		Description: ev.Message,
		Details: activity.MarketNoteDetails{
			EventType: ev.Type,
			Stock:     ev.Ticker,
		},
	})
}

// replayTrade books the order immediately and settles it after the
// settlement delay. Rejections surface through the ledger's own events.
func (p *Processor) replayTrade(date string, tr SimulatedTrade) {
	order := p.ledger.AddOrder(domain.Order{
		Date:       date,
		Time:       tr.Time,
		Stock:      tr.Ticker,
		Action:     domain.OrderAction(tr.Action),
		Quantity:   tr.Quantity,
		Price:      tr.Price,
		ExecutedBy: tr.ExecutedBy,
	})

	if p.activity != nil {
		p.activity.Append(activity.Entry{
			Timestamp:   parseEntryTime(date, tr.Time),
			CharacterID: tr.ExecutedBy,
			Description: fmt.Sprintf("%s %d %s @ $%.2f", tr.Action, tr.Quantity, tr.Ticker, tr.Price),
			Details: activity.TradeDetails{
				OrderID:  order.ID,
				Stock:    tr.Ticker,
				Action:   tr.Action,
				Quantity: tr.Quantity,
				Price:    tr.Price,
			},
		})
	}

	if p.scheduler == nil {
		p.executeSettled(order.ID)
		return
	}
	id := order.ID
	p.scheduler.Schedule("settle-"+id, settlementDelay, func() {
		p.executeSettled(id)
	})
}

func (p *Processor) executeSettled(orderID string) {
	if err := p.ledger.ExecuteOrder(orderID); err != nil {
		p.log.Warn().Str("order_id", orderID).Err(err).Msg("Replayed trade rejected")
	}
}

// EventCount reports how many dataset events would replay for a date
func (p *Processor) EventCount(date string) int {
	n := 0
	for _, ev := range p.data.Events {
		if ev.Date == "" || ev.Date == date {
			n++
		}
	}
	return n
}

func parseEntryTime(date, hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", date+" "+hhmm)
	if err != nil {
		return time.Now()
	}
	return t
}
