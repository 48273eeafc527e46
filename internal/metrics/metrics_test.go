package metrics

import (
	"fmt"
	"testing"

	"github.com/aristath/tradingfloor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(date string, total, changePct float64) domain.DailyPerformance {
	return domain.DailyPerformance{Date: date, TotalValue: total, DailyChangePercent: changePct}
}

func TestSummarizeEmptyAndSingle(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	s := Summarize([]domain.DailyPerformance{day("2024-01-08", 100_000, 0)})
	assert.Equal(t, 1, s.Days)
	assert.Zero(t, s.MeanDailyReturn)
	assert.Zero(t, s.CumulativeReturn)
}

func TestSummarizeReturns(t *testing.T) {
	history := []domain.DailyPerformance{
		day("2024-01-08", 100_000, 0),
		day("2024-01-09", 102_000, 2.0),
		day("2024-01-10", 101_000, -0.98),
		day("2024-01-11", 104_000, 2.97),
	}
	s := Summarize(history)

	assert.Equal(t, 4, s.Days)
	assert.InDelta(t, (2.0-0.98+2.97)/3, s.MeanDailyReturn, 0.001)
	assert.Positive(t, s.ReturnStdDev)
	assert.InDelta(t, 4.0, s.CumulativeReturn, 0.001)
	assert.Equal(t, 2.97, s.BestDay)
	assert.Equal(t, -0.98, s.WorstDay)
}

func TestChartOverlays(t *testing.T) {
	var history []domain.DailyPerformance
	for i := 0; i < 12; i++ {
		history = append(history, day(fmt.Sprintf("day-%d", i), 100_000+float64(i)*1000, 0))
	}
	c := Chart(history)

	require.Len(t, c.Dates, 12)
	require.Len(t, c.Values, 12)
	require.Len(t, c.SMA, 12)
	require.Len(t, c.EMA, 12)

	// before the window fills the overlay holds zeros
	assert.Zero(t, c.SMA[3])
	// a 5-day SMA of a linear series equals the midpoint value
	assert.InDelta(t, c.Values[2], c.SMA[4], 0.001)
	assert.InDelta(t, c.Values[9], c.SMA[11], 0.001)
}

func TestChartShortSeriesSkipsOverlays(t *testing.T) {
	c := Chart([]domain.DailyPerformance{
		day("2024-01-08", 100_000, 0),
		day("2024-01-09", 101_000, 1.0),
	})
	assert.Len(t, c.Values, 2)
	assert.Nil(t, c.SMA)
	assert.Nil(t, c.EMA)
}
