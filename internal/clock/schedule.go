package clock

import (
	"time"

	"github.com/aristath/tradingfloor/internal/domain"
)

// scheduleEntry is one row of the fixed daily schedule. Start and End are
// minutes since midnight; entries match start <= t < end except the
// after-hours row, which wraps midnight and matches t >= start || t < end.
type scheduleEntry struct {
	Period domain.Period
	Start  int
	End    int
	Wraps  bool
}

// dailySchedule is the fixed, non-overlapping schedule of the simulated
// business day. Together the seven rows cover all 1440 minutes exactly once.
var dailySchedule = []scheduleEntry{
	{Period: domain.PeriodMorningBriefing, Start: 8 * 60, End: 9*60 + 30},
	{Period: domain.PeriodAnalysisPhase, Start: 9*60 + 30, End: 12 * 60},
	{Period: domain.PeriodLunchBreak, Start: 12 * 60, End: 13 * 60},
	{Period: domain.PeriodStrategyMeeting, Start: 13 * 60, End: 14*60 + 30},
	{Period: domain.PeriodTradeExecution, Start: 14*60 + 30, End: 16 * 60},
	{Period: domain.PeriodEndOfDayReview, Start: 16 * 60, End: 17*60 + 30},
	{Period: domain.PeriodAfterHours, Start: 17*60 + 30, End: 8 * 60, Wraps: true},
}

// PeriodAt derives the business-day period for a simulated instant
func PeriodAt(t time.Time) domain.Period {
	minute := t.Hour()*60 + t.Minute()
	for _, e := range dailySchedule {
		if e.Wraps {
			if minute >= e.Start || minute < e.End {
				return e.Period
			}
			continue
		}
		if minute >= e.Start && minute < e.End {
			return e.Period
		}
	}
	// Unreachable: the schedule covers the whole day
	return domain.PeriodAfterHours
}

// DayTypeAt classifies a simulated instant as weekday or weekend
func DayTypeAt(t time.Time) domain.DayType {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return domain.DayTypeWeekend
	default:
		return domain.DayTypeWeekday
	}
}
