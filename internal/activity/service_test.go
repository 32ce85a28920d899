package activity

import (
	"context"
	"testing"
	"time"

	"chapterlink/internal/domain"
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

func (m *MockRepository) RecentMetricEvents(ctx context.Context, chapterID uuid.UUID, limit int) ([]MetricEvent, error) {
	args := m.Called(ctx, chapterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]MetricEvent), args.Error(1)
}

func (m *MockRepository) RecentTradeEvents(ctx context.Context, chapterID uuid.UUID, limit int) ([]TradeEvent, error) {
	args := m.Called(ctx, chapterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]TradeEvent), args.Error(1)
}

func (m *MockRepository) RecentJoinEvents(ctx context.Context, chapterID uuid.UUID, limit int) ([]JoinEvent, error) {
	args := m.Called(ctx, chapterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]JoinEvent), args.Error(1)
}

type MockChapterChecker struct {
	mock.Mock
}

func (m *MockChapterChecker) Exists(ctx context.Context, chapterID uuid.UUID) (bool, error) {
	args := m.Called(ctx, chapterID)
	return args.Bool(0), args.Error(1)
}

// --- Tests ---

func TestBuildActivityFeed_MergesNewestFirst(t *testing.T) {
	chapterID := uuid.New()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	metrics := []MetricEvent{
		{ID: uuid.New(), MemberID: uuid.New(), MemberName: "Brian", Type: domain.MetricParticipation, Value: 80, CreatedAt: base.Add(3 * time.Hour)},
	}
	trades := []TradeEvent{
		{ID: uuid.New(), UserID: uuid.New(), UserName: "Amina", Amount: decimal.NewFromInt(500), CreatedAt: base.Add(5 * time.Hour)},
	}
	joins := []JoinEvent{
		{ID: uuid.New(), UserID: uuid.New(), UserName: "Cynthia", JoinedAt: base.Add(1 * time.Hour)},
	}

	repo := new(MockRepository)
	checker := new(MockChapterChecker)
	checker.On("Exists", mock.Anything, chapterID).Return(true, nil)
	repo.On("RecentMetricEvents", mock.Anything, chapterID, DefaultFeedLimit).Return(metrics, nil)
	repo.On("RecentTradeEvents", mock.Anything, chapterID, DefaultFeedLimit).Return(trades, nil)
	repo.On("RecentJoinEvents", mock.Anything, chapterID, DefaultFeedLimit).Return(joins, nil)

	svc := NewService(repo, checker, 0, logger.NewNop())
	feed, err := svc.BuildActivityFeed(context.Background(), chapterID, 0)

	assert.NoError(t, err)
	assert.Len(t, feed, 3)
	assert.Equal(t, domain.ActivityTrade, feed[0].Type)
	assert.Equal(t, domain.ActivityMetric, feed[1].Type)
	assert.Equal(t, domain.ActivityMemberJoin, feed[2].Type)
	assert.True(t, feed[0].CreatedAt.After(feed[1].CreatedAt))
	assert.True(t, feed[1].CreatedAt.After(feed[2].CreatedAt))
}

func TestBuildActivityFeed_DeterministicOnTies(t *testing.T) {
	chapterID := uuid.New()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	metrics := []MetricEvent{
		{ID: uuid.New(), MemberID: uuid.New(), MemberName: "Brian", Type: domain.MetricLearning, Value: 4, CreatedAt: at},
	}
	trades := []TradeEvent{
		{ID: uuid.New(), UserID: uuid.New(), UserName: "Amina", Amount: decimal.NewFromInt(100), CreatedAt: at},
	}

	repo := new(MockRepository)
	checker := new(MockChapterChecker)
	checker.On("Exists", mock.Anything, chapterID).Return(true, nil)
	repo.On("RecentMetricEvents", mock.Anything, chapterID, DefaultFeedLimit).Return(metrics, nil)
	repo.On("RecentTradeEvents", mock.Anything, chapterID, DefaultFeedLimit).Return(trades, nil)
	repo.On("RecentJoinEvents", mock.Anything, chapterID, DefaultFeedLimit).Return([]JoinEvent{}, nil)

	svc := NewService(repo, checker, 0, logger.NewNop())

	first, err := svc.BuildActivityFeed(context.Background(), chapterID, 0)
	assert.NoError(t, err)
	second, err := svc.BuildActivityFeed(context.Background(), chapterID, 0)
	assert.NoError(t, err)

	// Equal timestamps keep source order, so repeated builds agree exactly.
	assert.Equal(t, first, second)
	assert.Equal(t, domain.ActivityMetric, first[0].Type)
	assert.Equal(t, domain.ActivityTrade, first[1].Type)
}

func TestBuildActivityFeed_LimitTruncates(t *testing.T) {
	chapterID := uuid.New()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	metrics := make([]MetricEvent, 0, 2)
	for i := 0; i < 2; i++ {
		metrics = append(metrics, MetricEvent{
			ID: uuid.New(), MemberID: uuid.New(), MemberName: "Brian",
			Type: domain.MetricActivity, Value: float64(i),
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}
	trades := []TradeEvent{
		{ID: uuid.New(), UserID: uuid.New(), UserName: "Amina", Amount: decimal.NewFromInt(100), CreatedAt: base.Add(time.Hour)},
	}

	repo := new(MockRepository)
	checker := new(MockChapterChecker)
	checker.On("Exists", mock.Anything, chapterID).Return(true, nil)
	repo.On("RecentMetricEvents", mock.Anything, chapterID, 2).Return(metrics, nil)
	repo.On("RecentTradeEvents", mock.Anything, chapterID, 2).Return(trades, nil)
	repo.On("RecentJoinEvents", mock.Anything, chapterID, 2).Return([]JoinEvent{}, nil)

	svc := NewService(repo, checker, 0, logger.NewNop())
	feed, err := svc.BuildActivityFeed(context.Background(), chapterID, 2)

	assert.NoError(t, err)
	assert.Len(t, feed, 2)
	assert.Equal(t, domain.ActivityTrade, feed[0].Type)
	assert.Equal(t, domain.ActivityMetric, feed[1].Type)
}

func TestBuildActivityFeed_ConfiguredDefaultLimit(t *testing.T) {
	chapterID := uuid.New()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	metrics := make([]MetricEvent, 0, 3)
	for i := 0; i < 3; i++ {
		metrics = append(metrics, MetricEvent{
			ID: uuid.New(), MemberID: uuid.New(), MemberName: "Cynthia",
			Type: domain.MetricParticipation, Value: 80,
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}

	repo := new(MockRepository)
	checker := new(MockChapterChecker)
	checker.On("Exists", mock.Anything, chapterID).Return(true, nil)
	repo.On("RecentMetricEvents", mock.Anything, chapterID, 2).Return(metrics, nil)
	repo.On("RecentTradeEvents", mock.Anything, chapterID, 2).Return([]TradeEvent{}, nil)
	repo.On("RecentJoinEvents", mock.Anything, chapterID, 2).Return([]JoinEvent{}, nil)

	svc := NewService(repo, checker, 2, logger.NewNop())
	feed, err := svc.BuildActivityFeed(context.Background(), chapterID, 0)

	assert.NoError(t, err)
	assert.Len(t, feed, 2)
}

func TestBuildActivityFeed_UnknownChapter(t *testing.T) {
	chapterID := uuid.New()

	repo := new(MockRepository)
	checker := new(MockChapterChecker)
	checker.On("Exists", mock.Anything, chapterID).Return(false, nil)

	svc := NewService(repo, checker, 0, logger.NewNop())
	_, err := svc.BuildActivityFeed(context.Background(), chapterID, 10)

	assert.ErrorIs(t, err, apperrors.ErrChapterNotFound)
	repo.AssertNotCalled(t, "RecentMetricEvents", mock.Anything, mock.Anything, mock.Anything)
}

func TestMergeFeeds_EmptySources(t *testing.T) {
	feed := mergeFeeds(10, nil, nil, nil)
	assert.Empty(t, feed)
}
