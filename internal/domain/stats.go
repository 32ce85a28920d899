package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Window is a half-open time range [Start, End) used to scope aggregations.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// MonthWindow returns the calendar-month window containing t, in UTC.
func MonthWindow(t time.Time) Window {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// Previous returns the window immediately preceding w with the same
// calendar-month span.
func (w Window) Previous() Window {
	return Window{Start: w.Start.AddDate(0, -1, 0), End: w.Start}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// IsZero reports whether the window is unset.
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// MonthlyGrowth holds signed percentage deltas against the previous
// calendar month. Positive means growth, negative means decline.
type MonthlyGrowth struct {
	Members       float64 `json:"members"`
	Participation float64 `json:"participation"`
	LearningHours float64 `json:"learning_hours"`
	Revenue       float64 `json:"revenue"`
}

// ChapterStats is a chapter-wide snapshot derived fresh on every query.
// It is never persisted.
type ChapterStats struct {
	ChapterID          string          `json:"chapter_id"`
	Window             Window          `json:"window"`
	TotalMembers       int             `json:"total_members"`
	AvgParticipation   float64         `json:"avg_participation"`
	TotalLearningHours float64         `json:"total_learning_hours"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	MonthlyGrowth      MonthlyGrowth   `json:"monthly_growth"`
}
