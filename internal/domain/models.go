// Package domain provides core domain models and types.
package domain

import (
	"math"
	"time"
)

// Period represents a named segment of the simulated business day
type Period string

const (
	PeriodMorningBriefing Period = "MORNING_BRIEFING"
	PeriodAnalysisPhase   Period = "ANALYSIS_PHASE"
	PeriodLunchBreak      Period = "LUNCH_BREAK"
	PeriodStrategyMeeting Period = "STRATEGY_MEETING"
	PeriodTradeExecution  Period = "TRADE_EXECUTION"
	PeriodEndOfDayReview  Period = "END_OF_DAY_REVIEW"
	PeriodAfterHours      Period = "AFTER_HOURS"
)

// DayType classifies a simulated date
type DayType string

const (
	DayTypeWeekday DayType = "WEEKDAY"
	DayTypeWeekend DayType = "WEEKEND"
)

// EventKind represents the type of a character event
type EventKind string

const (
	EventMove    EventKind = "MOVE"
	EventAnalyze EventKind = "ANALYZE"
	EventDiscuss EventKind = "DISCUSS"
	EventDecide  EventKind = "DECIDE"
	EventReact   EventKind = "REACT"
)

// CharacterState represents what a character is currently doing.
// A character is available for new events unless walking or talking.
type CharacterState string

const (
	StateIdle    CharacterState = "idle"
	StateWorking CharacterState = "working"
	StateWalking CharacterState = "walking"
	StateTalking CharacterState = "talking"
)

// Character is one member of the office roster. The roster owns all
// mutation of these fields; everything else reads copies.
type Character struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Role        string         `json:"role"` // analyst, trader, portfolio_manager, quant
	Room        string         `json:"room"`
	TargetRoom  string         `json:"target_room,omitempty"`
	State       CharacterState `json:"state"`
	CurrentTask string         `json:"current_task,omitempty"`
}

// Available reports whether the character can be assigned a new event
func (c *Character) Available() bool {
	return c.State != StateWalking && c.State != StateTalking
}

// CharacterEvent is a scheduled character action. It is pending until its
// simulated timestamp is reached, active while its duration runs, and
// completed afterwards.
type CharacterEvent struct {
	ID           string        `json:"id"`
	Timestamp    time.Time     `json:"timestamp"` // simulated time
	CharacterIDs []string      `json:"character_ids"`
	OriginRoom   string        `json:"origin_room"`
	Kind         EventKind     `json:"kind"`
	Message      string        `json:"message"`
	Duration     time.Duration `json:"duration"` // wall-clock display duration
	RelatedStock string        `json:"related_stock,omitempty"`
	Priority     int           `json:"priority"`
	Completed    bool          `json:"completed"`
}

// MarketImpact classifies a market event's direction
type MarketImpact string

const (
	ImpactPositive MarketImpact = "positive"
	ImpactNegative MarketImpact = "negative"
	ImpactNeutral  MarketImpact = "neutral"
)

// MarketEvent is a transient news-like shock shown to the UI. It expires
// after a fixed wall-clock display window independent of simulated time.
type MarketEvent struct {
	ID          string       `json:"id"`
	Timestamp   time.Time    `json:"timestamp"`
	Type        string       `json:"type"`
	Description string       `json:"description"`
	Impact      MarketImpact `json:"impact"`
	Magnitude   float64      `json:"magnitude"` // 0..1
}

// OrderAction is the side of an order
type OrderAction string

const (
	ActionBuy  OrderAction = "BUY"
	ActionSell OrderAction = "SELL"
	ActionHold OrderAction = "HOLD"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderExecuted  OrderStatus = "EXECUTED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// FeeRate is the flat commission charged on both sides of every trade
const FeeRate = 0.001

// Order represents a trade order
type Order struct {
	ID         string      `json:"id"`
	Date       string      `json:"date"` // simulated calendar date, YYYY-MM-DD
	Time       string      `json:"time"` // simulated time of day, HH:MM
	Stock      string      `json:"stock"`
	Action     OrderAction `json:"action"`
	Quantity   int         `json:"quantity"`
	Price      float64     `json:"price"`
	Status     OrderStatus `json:"status"`
	ExecutedBy string      `json:"executed_by"`
	TotalValue float64     `json:"total_value"`
	Fees       float64     `json:"fees"`
	EventID    string      `json:"event_id,omitempty"` // provenance link to the originating event
	Note       string      `json:"note,omitempty"`     // set when an order is rejected
}

// NewOrderValues fills the derived money fields from quantity and price
func (o *Order) NewOrderValues() {
	o.TotalValue = float64(o.Quantity) * o.Price
	o.Fees = o.TotalValue * FeeRate
}

// Holding is a position in one stock ticker within the portfolio
type Holding struct {
	Stock                string  `json:"stock"`
	Quantity             int     `json:"quantity"`
	AveragePurchasePrice float64 `json:"average_purchase_price"`
	CurrentPrice         float64 `json:"current_price"`
	CurrentValue         float64 `json:"current_value"`
	UnrealizedPnL        float64 `json:"unrealized_pnl"`
	UnrealizedPnLPercent float64 `json:"unrealized_pnl_percent"`
	Allocation           float64 `json:"allocation"` // percent of total portfolio value
}

// Portfolio is a point-in-time snapshot of cash and holdings
type Portfolio struct {
	Cash       float64   `json:"cash"`
	TotalValue float64   `json:"total_value"`
	Holdings   []Holding `json:"holdings"`
}

// DailyPerformance is one end-of-day snapshot in the performance history
type DailyPerformance struct {
	Date               string    `json:"date"`
	TotalValue         float64   `json:"total_value"`
	DailyChange        float64   `json:"daily_change"`
	DailyChangePercent float64   `json:"daily_change_percent"`
	Cash               float64   `json:"cash"`
	Holdings           []Holding `json:"holdings"`
}

// TrackedTickers is the fixed set of symbols the office follows
var TrackedTickers = []string{"NVDA", "AMZN", "MU", "WMT", "DIS"}

// Round rounds a value to the given number of decimal places
func Round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
