package stats

import (
	"testing"

	"chapterlink/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPctChange(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		want     float64
	}{
		{"growth", 1500, 1000, 50},
		{"decline", 750, 1000, -25},
		{"flat", 1000, 1000, 0},
		{"from zero to positive", 10, 0, 100},
		{"from zero to zero", 0, 0, 0},
		{"to zero", 0, 400, -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, pctChange(tt.current, tt.previous), 1e-9)
		})
	}
}

func TestComputeGrowth_AllQuantities(t *testing.T) {
	current := domain.ChapterStats{
		TotalMembers:       12,
		AvgParticipation:   66,
		TotalLearningHours: 30,
		TotalRevenue:       decimal.NewFromInt(2400),
	}
	previous := domain.ChapterStats{
		TotalMembers:       10,
		AvgParticipation:   60,
		TotalLearningHours: 40,
		TotalRevenue:       decimal.NewFromInt(1200),
	}

	g := ComputeGrowth(current, previous)

	assert.InDelta(t, 20.0, g.Members, 1e-9)
	assert.InDelta(t, 10.0, g.Participation, 1e-9)
	assert.InDelta(t, -25.0, g.LearningHours, 1e-9)
	assert.InDelta(t, 100.0, g.Revenue, 1e-9)
}
