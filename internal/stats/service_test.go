package stats

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"chapterlink/internal/domain"
	"chapterlink/internal/repository/postgres"
	apperrors "chapterlink/pkg/errors"
	"chapterlink/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ChapterExists(ctx context.Context, chapterID uuid.UUID) (bool, error) {
	args := m.Called(ctx, chapterID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) CountMembersAsOf(ctx context.Context, chapterID uuid.UUID, asOf time.Time) (int, error) {
	args := m.Called(ctx, chapterID, asOf)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) SumMetricValues(ctx context.Context, chapterID uuid.UUID, t domain.MetricType, w domain.Window) (float64, error) {
	args := m.Called(ctx, chapterID, t, w)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockRepository) MemberMetricAverages(ctx context.Context, chapterID uuid.UUID, t domain.MetricType, w domain.Window) ([]postgres.MemberMetricValue, error) {
	args := m.Called(ctx, chapterID, t, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]postgres.MemberMetricValue), args.Error(1)
}

func (m *MockRepository) SumTradeRevenue(ctx context.Context, chapterID uuid.UUID, w domain.Window) (decimal.Decimal, error) {
	args := m.Called(ctx, chapterID, w)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRepository) MemberTradeTotals(ctx context.Context, chapterID uuid.UUID, w domain.Window) ([]postgres.MemberTradeTotal, error) {
	args := m.Called(ctx, chapterID, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]postgres.MemberTradeTotal), args.Error(1)
}

// --- Helpers ---

func participationRows(values ...float64) []postgres.MemberMetricValue {
	rows := make([]postgres.MemberMetricValue, 0, len(values))
	for _, v := range values {
		rows = append(rows, postgres.MemberMetricValue{MemberID: uuid.New(), Value: v})
	}
	return rows
}

// expectWindow wires the full set of aggregate reads for one window.
func expectWindow(repo *MockRepository, chapterID uuid.UUID, w domain.Window, members int, participation []postgres.MemberMetricValue, learning float64, revenue decimal.Decimal) {
	repo.On("CountMembersAsOf", mock.Anything, chapterID, w.End).Return(members, nil)
	repo.On("MemberMetricAverages", mock.Anything, chapterID, domain.MetricParticipation, w).Return(participation, nil)
	repo.On("SumMetricValues", mock.Anything, chapterID, domain.MetricLearning, w).Return(learning, nil)
	repo.On("SumTradeRevenue", mock.Anything, chapterID, w).Return(revenue, nil)
}

func newTestService(repo *MockRepository, now time.Time) *Service {
	svc := NewService(repo, logger.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

// --- Tests ---

func TestComputeChapterStats_GrowthAgainstPreviousMonth(t *testing.T) {
	chapterID := uuid.New()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cur := domain.MonthWindow(now)
	prev := cur.Previous()

	repo := new(MockRepository)
	repo.On("ChapterExists", mock.Anything, chapterID).Return(true, nil)
	expectWindow(repo, chapterID, cur, 15, participationRows(90, 60), 40, decimal.NewFromInt(1500))
	expectWindow(repo, chapterID, prev, 10, participationRows(50, 50), 20, decimal.NewFromInt(1000))

	svc := newTestService(repo, now)
	stats, err := svc.ComputeChapterStats(context.Background(), chapterID, domain.Window{})

	assert.NoError(t, err)
	assert.Equal(t, 15, stats.TotalMembers)
	assert.InDelta(t, 10.0, stats.AvgParticipation, 1e-9) // (90+60)/15
	assert.InDelta(t, 50.0, stats.MonthlyGrowth.Members, 1e-9)
	assert.InDelta(t, 50.0, stats.MonthlyGrowth.Revenue, 1e-9)   // 1000 -> 1500
	assert.InDelta(t, 100.0, stats.MonthlyGrowth.LearningHours, 1e-9)
	assert.Equal(t, cur, stats.Window)
	repo.AssertExpectations(t)
}

func TestComputeChapterStats_ZeroPreviousMonth(t *testing.T) {
	chapterID := uuid.New()
	now := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	cur := domain.MonthWindow(now)
	prev := cur.Previous()

	repo := new(MockRepository)
	repo.On("ChapterExists", mock.Anything, chapterID).Return(true, nil)
	// First month of activity: the previous window has nothing at all.
	expectWindow(repo, chapterID, cur, 5, participationRows(80), 12, decimal.NewFromInt(500))
	expectWindow(repo, chapterID, prev, 0, nil, 0.0, decimal.Zero)

	svc := newTestService(repo, now)
	stats, err := svc.ComputeChapterStats(context.Background(), chapterID, domain.Window{})

	assert.NoError(t, err)
	assert.InDelta(t, 100.0, stats.MonthlyGrowth.Members, 1e-9)
	assert.InDelta(t, 100.0, stats.MonthlyGrowth.Participation, 1e-9)
	assert.InDelta(t, 100.0, stats.MonthlyGrowth.Revenue, 1e-9)
}

func TestComputeChapterStats_BothMonthsQuiet(t *testing.T) {
	chapterID := uuid.New()
	now := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	cur := domain.MonthWindow(now)
	prev := cur.Previous()

	repo := new(MockRepository)
	repo.On("ChapterExists", mock.Anything, chapterID).Return(true, nil)
	expectWindow(repo, chapterID, cur, 0, nil, 0.0, decimal.Zero)
	expectWindow(repo, chapterID, prev, 0, nil, 0.0, decimal.Zero)

	svc := newTestService(repo, now)
	stats, err := svc.ComputeChapterStats(context.Background(), chapterID, domain.Window{})

	assert.NoError(t, err)
	assert.Zero(t, stats.MonthlyGrowth.Members)
	assert.Zero(t, stats.MonthlyGrowth.Participation)
	assert.Zero(t, stats.MonthlyGrowth.LearningHours)
	assert.Zero(t, stats.MonthlyGrowth.Revenue)
}

func TestComputeChapterStats_NonSubmittersDragAverageDown(t *testing.T) {
	chapterID := uuid.New()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cur := domain.MonthWindow(now)
	prev := cur.Previous()

	repo := new(MockRepository)
	repo.On("ChapterExists", mock.Anything, chapterID).Return(true, nil)
	// 10 members but only 4 submitted participation, averaging 80 each.
	expectWindow(repo, chapterID, cur, 10, participationRows(80, 80, 80, 80), 0.0, decimal.Zero)
	expectWindow(repo, chapterID, prev, 10, participationRows(80, 80, 80, 80), 0.0, decimal.Zero)

	svc := newTestService(repo, now)
	stats, err := svc.ComputeChapterStats(context.Background(), chapterID, domain.Window{})

	assert.NoError(t, err)
	assert.InDelta(t, 32.0, stats.AvgParticipation, 1e-9)
}

func TestComputeChapterStats_UnknownChapter(t *testing.T) {
	chapterID := uuid.New()

	repo := new(MockRepository)
	repo.On("ChapterExists", mock.Anything, chapterID).Return(false, nil)

	svc := newTestService(repo, time.Now())
	_, err := svc.ComputeChapterStats(context.Background(), chapterID, domain.Window{})

	assert.ErrorIs(t, err, apperrors.ErrChapterNotFound)
}

func TestComputeChapterStats_ReadFailureWrapsAggregationError(t *testing.T) {
	chapterID := uuid.New()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cur := domain.MonthWindow(now)

	repo := new(MockRepository)
	repo.On("ChapterExists", mock.Anything, chapterID).Return(true, nil)
	repo.On("CountMembersAsOf", mock.Anything, chapterID, cur.End).Return(0, fmt.Errorf("connection reset"))

	svc := newTestService(repo, now)
	_, err := svc.ComputeChapterStats(context.Background(), chapterID, domain.Window{})

	assert.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrAggregationFailed))
}

func TestComputeChapterStats_ExplicitWindow(t *testing.T) {
	chapterID := uuid.New()
	window := domain.MonthWindow(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	prev := window.Previous()

	repo := new(MockRepository)
	repo.On("ChapterExists", mock.Anything, chapterID).Return(true, nil)
	expectWindow(repo, chapterID, window, 8, participationRows(70), 10, decimal.NewFromInt(200))
	expectWindow(repo, chapterID, prev, 8, participationRows(70), 10, decimal.NewFromInt(200))

	svc := newTestService(repo, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	stats, err := svc.ComputeChapterStats(context.Background(), chapterID, window)

	assert.NoError(t, err)
	assert.Equal(t, window, stats.Window)
	assert.Zero(t, stats.MonthlyGrowth.Members)
	repo.AssertExpectations(t)
}
