package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthWindow(t *testing.T) {
	w := MonthWindow(time.Date(2025, 6, 15, 13, 45, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), w.End)

	// Half-open: the first instant belongs, the end instant does not.
	assert.True(t, w.Contains(w.Start))
	assert.False(t, w.Contains(w.End))
	assert.True(t, w.Contains(time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)))
}

func TestMonthWindow_Previous(t *testing.T) {
	w := MonthWindow(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	p := w.Previous()

	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, w.Start, p.End)
}

func TestMonthWindow_YearBoundary(t *testing.T) {
	w := MonthWindow(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
	p := w.Previous()

	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), p.End)
}

func TestTradeStatusIsTerminal(t *testing.T) {
	assert.False(t, TradeStatusPending.IsTerminal())
	assert.False(t, TradeStatusInvoiced.IsTerminal())
	assert.True(t, TradeStatusPaid.IsTerminal())
	assert.True(t, TradeStatusCancelled.IsTerminal())
	assert.True(t, TradeStatusFailed.IsTerminal())
}
