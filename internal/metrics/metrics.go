// Package metrics derives summary statistics and chart overlays from the
// ledger's daily performance history.
package metrics

import (
	"github.com/aristath/tradingfloor/internal/domain"
	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"
)

// smaPeriod and emaPeriod are the overlay windows for performance charts
const (
	smaPeriod = 5
	emaPeriod = 10
)

// Summary aggregates the daily return series
type Summary struct {
	Days             int     `json:"days"`
	MeanDailyReturn  float64 `json:"mean_daily_return"`  // percent
	ReturnStdDev     float64 `json:"return_std_dev"`     // percent
	CumulativeReturn float64 `json:"cumulative_return"`  // percent, vs first snapshot
	BestDay          float64 `json:"best_day"`           // percent
	WorstDay         float64 `json:"worst_day"`          // percent
}

// Summarize computes return statistics over the daily history. Fewer
// than two snapshots yield a zero summary since no return exists yet.
func Summarize(history []domain.DailyPerformance) Summary {
	s := Summary{Days: len(history)}
	if len(history) < 2 {
		return s
	}

	returns := make([]float64, 0, len(history)-1)
	for _, day := range history[1:] {
		returns = append(returns, day.DailyChangePercent)
	}

	s.MeanDailyReturn = domain.Round(stat.Mean(returns, nil), 4)
	if len(returns) > 1 {
		s.ReturnStdDev = domain.Round(stat.StdDev(returns, nil), 4)
	}

	s.BestDay = returns[0]
	s.WorstDay = returns[0]
	for _, r := range returns[1:] {
		if r > s.BestDay {
			s.BestDay = r
		}
		if r < s.WorstDay {
			s.WorstDay = r
		}
	}

	first := history[0].TotalValue
	last := history[len(history)-1].TotalValue
	if first != 0 {
		s.CumulativeReturn = domain.Round((last-first)/first*100, 4)
	}
	return s
}

// ChartSeries is the portfolio value series with moving-average overlays
// for the performance chart. Overlay slices align index-for-index with
// Dates; positions before the window has filled hold zeros.
type ChartSeries struct {
	Dates  []string  `json:"dates"`
	Values []float64 `json:"values"`
	SMA    []float64 `json:"sma,omitempty"`
	EMA    []float64 `json:"ema,omitempty"`
}

// Chart builds the value series and overlays from the daily history
func Chart(history []domain.DailyPerformance) ChartSeries {
	series := ChartSeries{
		Dates:  make([]string, len(history)),
		Values: make([]float64, len(history)),
	}
	for i, day := range history {
		series.Dates[i] = day.Date
		series.Values[i] = day.TotalValue
	}

	if len(series.Values) >= smaPeriod {
		series.SMA = talib.Sma(series.Values, smaPeriod)
	}
	if len(series.Values) >= emaPeriod {
		series.EMA = talib.Ema(series.Values, emaPeriod)
	}
	return series
}
