package stats

import "chapterlink/internal/domain"

// ComputeGrowth fills the month-over-month deltas for the four tracked
// quantities. When the previous value is zero the delta is 100 if the
// current value is positive (new activity from nothing) and 0 otherwise;
// the rule applies uniformly so a quiet chapter never reports growth.
func ComputeGrowth(current, previous domain.ChapterStats) domain.MonthlyGrowth {
	curRevenue, _ := current.TotalRevenue.Float64()
	prevRevenue, _ := previous.TotalRevenue.Float64()

	return domain.MonthlyGrowth{
		Members:       pctChange(float64(current.TotalMembers), float64(previous.TotalMembers)),
		Participation: pctChange(current.AvgParticipation, previous.AvgParticipation),
		LearningHours: pctChange(current.TotalLearningHours, previous.TotalLearningHours),
		Revenue:       pctChange(curRevenue, prevRevenue),
	}
}

func pctChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}
