// Package ledger tracks the office's paper portfolio: cash, holdings,
// the order book and the end-of-day performance history. Nothing here
// touches a real broker; execution is immediate bookkeeping at the
// order's stated price plus a flat commission.
package ledger

import (
	"errors"
	"sort"
	"sync"

	"github.com/aristath/tradingfloor/internal/domain"
	"github.com/aristath/tradingfloor/internal/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxPerformanceEntries bounds the daily performance history to roughly
// one simulated year.
const MaxPerformanceEntries = 365

var (
	// ErrInsufficientFunds is returned when a BUY exceeds available cash
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientShares is returned when a SELL exceeds the held quantity
	ErrInsufficientShares = errors.New("insufficient shares")
)

// Ledger owns the portfolio state
type Ledger struct {
	mu          sync.RWMutex
	cash        float64
	holdings    map[string]*domain.Holding
	prices      map[string]float64
	orders      []*domain.Order
	performance []domain.DailyPerformance

	manager *events.Manager
	log     zerolog.Logger
}

// New creates a ledger with the given starting cash
func New(startingCash float64, manager *events.Manager, log zerolog.Logger) *Ledger {
	return &Ledger{
		cash:     startingCash,
		holdings: make(map[string]*domain.Holding),
		prices:   make(map[string]float64),
		manager:  manager,
		log:      log.With().Str("component", "ledger").Logger(),
	}
}

// AddOrder records a new pending order in the book. The id is assigned
// when empty, and the derived money fields are filled from quantity and
// price.
func (l *Ledger) AddOrder(o domain.Order) domain.Order {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.Status = domain.OrderPending
	o.NewOrderValues()

	l.mu.Lock()
	l.orders = append(l.orders, &o)
	l.mu.Unlock()

	l.emitOrder(&o, "created", "")
	return o
}

// ExecuteOrder settles a pending order. BUY moves cash into a holding at
// a weighted-average cost; SELL converts shares back to cash, removing
// the holding when the quantity reaches zero. Orders the portfolio
// cannot cover are marked CANCELLED with a note and a typed error is
// returned. Unknown or already-settled ids are silent no-ops.
func (l *Ledger) ExecuteOrder(id string) error {
	l.mu.Lock()
	o := l.findLocked(id)
	if o == nil || o.Status != domain.OrderPending {
		l.mu.Unlock()
		return nil
	}

	var err error
	switch o.Action {
	case domain.ActionBuy:
		err = l.settleBuyLocked(o)
	case domain.ActionSell:
		err = l.settleSellLocked(o)
	default:
		// HOLD settles as a pure bookkeeping entry
		o.Status = domain.OrderExecuted
	}
	l.mu.Unlock()

	if err != nil {
		l.log.Warn().Str("order_id", o.ID).Str("stock", o.Stock).Err(err).Msg("Order rejected")
		l.emitOrder(o, "rejected", err.Error())
		return err
	}

	l.log.Info().
		Str("order_id", o.ID).
		Str("stock", o.Stock).
		Str("action", string(o.Action)).
		Int("quantity", o.Quantity).
		Float64("price", o.Price).
		Msg("Order executed")
	l.emitOrder(o, "executed", "")
	return nil
}

func (l *Ledger) settleBuyLocked(o *domain.Order) error {
	cost := o.TotalValue + o.Fees
	if cost > l.cash {
		o.Status = domain.OrderCancelled
		o.Note = "insufficient funds"
		return ErrInsufficientFunds
	}
	l.cash -= cost

	h, ok := l.holdings[o.Stock]
	if !ok {
		h = &domain.Holding{Stock: o.Stock}
		l.holdings[o.Stock] = h
	}
	prevCost := h.AveragePurchasePrice * float64(h.Quantity)
	h.Quantity += o.Quantity
	h.AveragePurchasePrice = domain.Round((prevCost+o.TotalValue)/float64(h.Quantity), 4)
	// An execution is the freshest quote we have for the ticker.
	l.prices[o.Stock] = o.Price

	o.Status = domain.OrderExecuted
	return nil
}

func (l *Ledger) settleSellLocked(o *domain.Order) error {
	h, ok := l.holdings[o.Stock]
	if !ok || h.Quantity < o.Quantity {
		o.Status = domain.OrderCancelled
		o.Note = "insufficient shares"
		return ErrInsufficientShares
	}
	l.cash += o.TotalValue - o.Fees
	h.Quantity -= o.Quantity
	if h.Quantity == 0 {
		delete(l.holdings, o.Stock)
	}
	l.prices[o.Stock] = o.Price

	o.Status = domain.OrderExecuted
	return nil
}

// CancelOrder marks a pending order cancelled. Unknown or non-pending
// ids are silent no-ops.
func (l *Ledger) CancelOrder(id string) {
	l.mu.Lock()
	o := l.findLocked(id)
	if o == nil || o.Status != domain.OrderPending {
		l.mu.Unlock()
		return
	}
	o.Status = domain.OrderCancelled
	l.mu.Unlock()

	l.emitOrder(o, "cancelled", "")
}

func (l *Ledger) findLocked(id string) *domain.Order {
	for _, o := range l.orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// UpdatePrices records the latest price per ticker. Unknown tickers are
// stored too so a later BUY can mark to market immediately.
func (l *Ledger) UpdatePrices(prices map[string]float64) {
	l.mu.Lock()
	for stock, price := range prices {
		l.prices[stock] = price
	}
	l.mu.Unlock()

	if l.manager != nil {
		symbols := make([]string, 0, len(prices))
		for stock := range prices {
			symbols = append(symbols, stock)
		}
		sort.Strings(symbols)
		l.manager.EmitTyped(events.PricesUpdated, "ledger", &events.PricesUpdatedData{Symbols: symbols})
	}
}

// Prices returns a copy of the last known price per ticker
func (l *Ledger) Prices() map[string]float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]float64, len(l.prices))
	for stock, price := range l.prices {
		out[stock] = price
	}
	return out
}

// Portfolio returns a marked-to-market snapshot. Holdings without a
// known price are valued at their average purchase price.
func (l *Ledger) Portfolio() domain.Portfolio {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.portfolioLocked()
}

func (l *Ledger) portfolioLocked() domain.Portfolio {
	p := domain.Portfolio{Cash: domain.Round(l.cash, 2)}
	total := l.cash

	holdings := make([]domain.Holding, 0, len(l.holdings))
	for _, stock := range domain.TrackedTickers {
		h, ok := l.holdings[stock]
		if !ok {
			continue
		}
		price, priced := l.prices[stock]
		if !priced {
			price = h.AveragePurchasePrice
		}
		snap := *h
		snap.CurrentPrice = price
		snap.CurrentValue = domain.Round(price*float64(snap.Quantity), 2)
		costBasis := snap.AveragePurchasePrice * float64(snap.Quantity)
		snap.UnrealizedPnL = domain.Round(snap.CurrentValue-costBasis, 2)
		if costBasis != 0 {
			snap.UnrealizedPnLPercent = domain.Round(snap.UnrealizedPnL/costBasis*100, 2)
		}
		total += snap.CurrentValue
		holdings = append(holdings, snap)
	}
	for i := range holdings {
		if total != 0 {
			holdings[i].Allocation = domain.Round(holdings[i].CurrentValue/total*100, 2)
		}
	}

	p.Holdings = holdings
	p.TotalValue = domain.Round(total, 2)
	return p
}

// OrderBook returns a copy of every order, oldest first
func (l *Ledger) OrderBook() []domain.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Order, len(l.orders))
	for i, o := range l.orders {
		out[i] = *o
	}
	return out
}

// SnapshotDaily appends an end-of-day performance entry for the given
// simulated date and returns it. The change fields compare against the
// previous entry; the first snapshot reports zero change, and a zero
// previous value reports zero percent.
func (l *Ledger) SnapshotDaily(date string) domain.DailyPerformance {
	l.mu.Lock()
	p := l.portfolioLocked()

	entry := domain.DailyPerformance{
		Date:       date,
		TotalValue: p.TotalValue,
		Cash:       p.Cash,
		Holdings:   p.Holdings,
	}
	if n := len(l.performance); n > 0 {
		prev := l.performance[n-1].TotalValue
		entry.DailyChange = domain.Round(p.TotalValue-prev, 2)
		if prev != 0 {
			entry.DailyChangePercent = domain.Round(entry.DailyChange/prev*100, 2)
		}
	}
	l.performance = append(l.performance, entry)
	if len(l.performance) > MaxPerformanceEntries {
		l.performance = l.performance[len(l.performance)-MaxPerformanceEntries:]
	}
	l.mu.Unlock()

	if l.manager != nil {
		l.manager.EmitTyped(events.PerformanceRecorded, "ledger", &events.PerformanceData{
			Date:               entry.Date,
			TotalValue:         entry.TotalValue,
			DailyChange:        entry.DailyChange,
			DailyChangePercent: entry.DailyChangePercent,
		})
	}
	return entry
}

// Performance returns a copy of the daily history, oldest first
func (l *Ledger) Performance() []domain.DailyPerformance {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.DailyPerformance, len(l.performance))
	copy(out, l.performance)
	return out
}

// Cash returns the current free cash balance
func (l *Ledger) Cash() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return domain.Round(l.cash, 2)
}

func (l *Ledger) emitOrder(o *domain.Order, status, reason string) {
	if l.manager == nil {
		return
	}
	data := &events.OrderEventData{
		OrderID:  o.ID,
		Stock:    o.Stock,
		Action:   string(o.Action),
		Quantity: o.Quantity,
		Price:    o.Price,
		Total:    o.TotalValue,
		Fees:     o.Fees,
		Status:   status,
		Reason:   reason,
	}
	l.manager.EmitTyped(data.EventType(), "ledger", data)
}
