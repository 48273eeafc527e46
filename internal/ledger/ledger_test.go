package ledger

import (
	"fmt"
	"testing"

	"github.com/aristath/tradingfloor/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(cash float64) *Ledger {
	return New(cash, nil, zerolog.Nop())
}

func addAndExecute(t *testing.T, l *Ledger, action domain.OrderAction, stock string, qty int, price float64) domain.Order {
	t.Helper()
	o := l.AddOrder(domain.Order{
		Stock:      stock,
		Action:     action,
		Quantity:   qty,
		Price:      price,
		ExecutedBy: "trader-1",
	})
	require.NoError(t, l.ExecuteOrder(o.ID))
	return o
}

func TestBuyRoundTrip(t *testing.T) {
	l := newTestLedger(100_000)

	o := l.AddOrder(domain.Order{Stock: "NVDA", Action: domain.ActionBuy, Quantity: 10, Price: 100})
	assert.Equal(t, domain.OrderPending, o.Status)
	assert.Equal(t, 1000.0, o.TotalValue)
	assert.Equal(t, 1.0, o.Fees)

	require.NoError(t, l.ExecuteOrder(o.ID))

	// 100000 - 1000 - 1 fee
	assert.Equal(t, 98999.0, l.Cash())

	p := l.Portfolio()
	require.Len(t, p.Holdings, 1)
	h := p.Holdings[0]
	assert.Equal(t, "NVDA", h.Stock)
	assert.Equal(t, 10, h.Quantity)
	assert.Equal(t, 100.0, h.AveragePurchasePrice)
}

func TestBuyAveragesCost(t *testing.T) {
	l := newTestLedger(100_000)
	addAndExecute(t, l, domain.ActionBuy, "NVDA", 10, 100)
	addAndExecute(t, l, domain.ActionBuy, "NVDA", 10, 120)

	p := l.Portfolio()
	require.Len(t, p.Holdings, 1)
	assert.Equal(t, 20, p.Holdings[0].Quantity)
	assert.Equal(t, 110.0, p.Holdings[0].AveragePurchasePrice)
}

func TestSellToZeroRemovesHolding(t *testing.T) {
	l := newTestLedger(100_000)
	addAndExecute(t, l, domain.ActionBuy, "MU", 10, 100)
	cashAfterBuy := l.Cash()

	addAndExecute(t, l, domain.ActionSell, "MU", 10, 150)

	// proceeds 1500 minus 1.5 fee
	assert.Equal(t, cashAfterBuy+1498.5, l.Cash())
	assert.Empty(t, l.Portfolio().Holdings)
}

func TestExecutionMovesMarkPrice(t *testing.T) {
	l := newTestLedger(100_000)

	addAndExecute(t, l, domain.ActionBuy, "NVDA", 10, 100)
	l.UpdatePrices(map[string]float64{"NVDA": 90})
	addAndExecute(t, l, domain.ActionBuy, "NVDA", 10, 120)

	// the latest execution outranks the earlier quote as the mark
	p := l.Portfolio()
	require.Len(t, p.Holdings, 1)
	assert.Equal(t, 120.0, p.Holdings[0].CurrentPrice)
	assert.Equal(t, 2400.0, p.Holdings[0].CurrentValue)

	addAndExecute(t, l, domain.ActionBuy, "MU", 10, 100)
	addAndExecute(t, l, domain.ActionSell, "MU", 5, 150)

	// a sell re-marks the remaining shares at the sale price
	p = l.Portfolio()
	for _, h := range p.Holdings {
		if h.Stock != "MU" {
			continue
		}
		assert.Equal(t, 150.0, h.CurrentPrice)
		assert.Equal(t, 750.0, h.CurrentValue)
	}
}

func TestBuyInsufficientFunds(t *testing.T) {
	l := newTestLedger(500)
	o := l.AddOrder(domain.Order{Stock: "AMZN", Action: domain.ActionBuy, Quantity: 10, Price: 100})

	err := l.ExecuteOrder(o.ID)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 500.0, l.Cash())

	book := l.OrderBook()
	require.Len(t, book, 1)
	assert.Equal(t, domain.OrderCancelled, book[0].Status)
	assert.Equal(t, "insufficient funds", book[0].Note)
}

func TestSellInsufficientShares(t *testing.T) {
	l := newTestLedger(100_000)
	addAndExecute(t, l, domain.ActionBuy, "DIS", 5, 90)

	o := l.AddOrder(domain.Order{Stock: "DIS", Action: domain.ActionSell, Quantity: 10, Price: 95})
	err := l.ExecuteOrder(o.ID)
	assert.ErrorIs(t, err, ErrInsufficientShares)

	// position untouched
	p := l.Portfolio()
	require.Len(t, p.Holdings, 1)
	assert.Equal(t, 5, p.Holdings[0].Quantity)
}

func TestExecuteIsIdempotent(t *testing.T) {
	l := newTestLedger(100_000)
	o := addAndExecute(t, l, domain.ActionBuy, "WMT", 10, 50)
	cash := l.Cash()

	// settled orders and unknown ids are no-ops
	require.NoError(t, l.ExecuteOrder(o.ID))
	require.NoError(t, l.ExecuteOrder("no-such-order"))
	assert.Equal(t, cash, l.Cash())

	p := l.Portfolio()
	require.Len(t, p.Holdings, 1)
	assert.Equal(t, 10, p.Holdings[0].Quantity)
}

func TestCancelOrder(t *testing.T) {
	l := newTestLedger(100_000)
	o := l.AddOrder(domain.Order{Stock: "NVDA", Action: domain.ActionBuy, Quantity: 1, Price: 100})

	l.CancelOrder(o.ID)
	book := l.OrderBook()
	require.Len(t, book, 1)
	assert.Equal(t, domain.OrderCancelled, book[0].Status)

	// cancelled orders cannot settle
	require.NoError(t, l.ExecuteOrder(o.ID))
	assert.Equal(t, 100_000.0, l.Cash())

	// cancelling again is a no-op
	l.CancelOrder(o.ID)
	l.CancelOrder("missing")
}

func TestPortfolioMarkToMarketAndAllocation(t *testing.T) {
	l := newTestLedger(100_000)
	addAndExecute(t, l, domain.ActionBuy, "NVDA", 10, 100)
	addAndExecute(t, l, domain.ActionBuy, "AMZN", 5, 200)

	l.UpdatePrices(map[string]float64{"NVDA": 120, "AMZN": 180})

	p := l.Portfolio()
	require.Len(t, p.Holdings, 2)

	byStock := map[string]domain.Holding{}
	for _, h := range p.Holdings {
		byStock[h.Stock] = h
	}
	nvda := byStock["NVDA"]
	assert.Equal(t, 1200.0, nvda.CurrentValue)
	assert.Equal(t, 200.0, nvda.UnrealizedPnL)
	assert.Equal(t, 20.0, nvda.UnrealizedPnLPercent)

	amzn := byStock["AMZN"]
	assert.Equal(t, 900.0, amzn.CurrentValue)
	assert.Equal(t, -100.0, amzn.UnrealizedPnL)

	// allocations plus the cash share cover the whole portfolio
	allocSum := nvda.Allocation + amzn.Allocation
	cashShare := p.Cash / p.TotalValue * 100
	assert.InDelta(t, 100.0, allocSum+cashShare, 0.05)
}

func TestSnapshotDailyDeltas(t *testing.T) {
	l := newTestLedger(100_000)

	first := l.SnapshotDaily("2024-01-08")
	assert.Equal(t, 0.0, first.DailyChange)
	assert.Equal(t, 0.0, first.DailyChangePercent)
	assert.Equal(t, 100_000.0, first.TotalValue)

	addAndExecute(t, l, domain.ActionBuy, "NVDA", 10, 100)
	l.UpdatePrices(map[string]float64{"NVDA": 300})

	// gained 200/share on 10 shares, minus the 1.00 buy fee
	second := l.SnapshotDaily("2024-01-09")
	assert.Equal(t, 1999.0, second.DailyChange)
	assert.InDelta(t, 2.0, second.DailyChangePercent, 0.01)
}

func TestPerformanceHistoryBounded(t *testing.T) {
	l := newTestLedger(100_000)
	for i := 0; i < 400; i++ {
		l.SnapshotDaily(fmt.Sprintf("day-%d", i))
	}
	history := l.Performance()
	require.Len(t, history, MaxPerformanceEntries)
	assert.Equal(t, "day-35", history[0].Date)
	assert.Equal(t, "day-399", history[len(history)-1].Date)
}
