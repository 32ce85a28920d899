package member

import (
	"context"
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

func (m *MockRepository) Create(ctx context.Context, cm *domain.ChapterMember) error {
	args := m.Called(ctx, cm)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ChapterMember, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChapterMember), args.Error(1)
}

func (m *MockRepository) FindByChapter(ctx context.Context, chapterID uuid.UUID) ([]*domain.ChapterMember, error) {
	args := m.Called(ctx, chapterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChapterMember), args.Error(1)
}

type MockMetricRepository struct {
	mock.Mock
}

func (m *MockMetricRepository) Create(ctx context.Context, s *domain.MetricSubmission) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type MockScoreReader struct {
	mock.Mock
}

func (m *MockScoreReader) MemberMetricAverages(ctx context.Context, chapterID uuid.UUID, t domain.MetricType, w domain.Window) ([]postgres.MemberMetricValue, error) {
	args := m.Called(ctx, chapterID, t, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]postgres.MemberMetricValue), args.Error(1)
}

func (m *MockScoreReader) MemberTradeTotals(ctx context.Context, chapterID uuid.UUID, w domain.Window) ([]postgres.MemberTradeTotal, error) {
	args := m.Called(ctx, chapterID, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]postgres.MemberTradeTotal), args.Error(1)
}

type MockChapterChecker struct {
	mock.Mock
}

func (m *MockChapterChecker) Exists(ctx context.Context, chapterID uuid.UUID) (bool, error) {
	args := m.Called(ctx, chapterID)
	return args.Bool(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID uuid.UUID, eventType string, data map[string]interface{}) error {
	args := m.Called(ctx, userID, eventType, data)
	return args.Error(0)
}

func newTestService(repo *MockRepository, metrics *MockMetricRepository, scores *MockScoreReader, checker *MockChapterChecker, notifier *MockNotifier) *Service {
	var n Notifier
	if notifier != nil {
		n = notifier
	}
	return NewService(repo, metrics, scores, checker, n, Config{}, logger.NewNop())
}

// --- Tests ---

func TestIsInactive(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	threshold := 30 * 24 * time.Hour

	daysAgo := func(d int) *time.Time {
		ts := now.AddDate(0, 0, -d)
		return &ts
	}

	assert.True(t, IsInactive(nil, now, threshold), "never active")
	assert.True(t, IsInactive(daysAgo(45), now, threshold), "45 days ago")
	assert.False(t, IsInactive(daysAgo(5), now, threshold), "5 days ago")
	assert.False(t, IsInactive(daysAgo(30), now, threshold), "exactly at threshold")
}

func TestJoin_NotifiesMember(t *testing.T) {
	repo := new(MockRepository)
	checker := new(MockChapterChecker)
	notifier := new(MockNotifier)
	chapterID := uuid.New()
	userID := uuid.New()

	checker.On("Exists", mock.Anything, chapterID).Return(true, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.ChapterMember) bool {
		return m.ChapterID == chapterID && m.UserID == userID && m.Role == domain.RoleMember
	})).Return(nil)
	notifier.On("Notify", mock.Anything, userID, "MEMBER_JOINED", mock.Anything).Return(nil)

	svc := newTestService(repo, new(MockMetricRepository), new(MockScoreReader), checker, notifier)
	m, err := svc.Join(context.Background(), &JoinRequest{
		ChapterID: chapterID,
		UserID:    userID,
		Role:      domain.RoleMember,
	})

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, m.ID)
	notifier.AssertExpectations(t)
}

func TestJoin_UnknownChapter(t *testing.T) {
	repo := new(MockRepository)
	checker := new(MockChapterChecker)
	chapterID := uuid.New()

	checker.On("Exists", mock.Anything, chapterID).Return(false, nil)

	svc := newTestService(repo, new(MockMetricRepository), new(MockScoreReader), checker, nil)
	_, err := svc.Join(context.Background(), &JoinRequest{
		ChapterID: chapterID,
		UserID:    uuid.New(),
		Role:      domain.RoleMember,
	})

	assert.ErrorIs(t, err, apperrors.ErrChapterNotFound)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitMetric_ParticipationAbove100Rejected(t *testing.T) {
	metrics := new(MockMetricRepository)

	svc := newTestService(new(MockRepository), metrics, new(MockScoreReader), new(MockChapterChecker), nil)
	_, err := svc.SubmitMetric(context.Background(), &SubmitMetricRequest{
		ChapterID: uuid.New(),
		MemberID:  uuid.New(),
		Type:      domain.MetricParticipation,
		Value:     120,
	})

	assert.Error(t, err)
	metrics.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitMetric_LearningHoursUnbounded(t *testing.T) {
	metrics := new(MockMetricRepository)
	metrics.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(new(MockRepository), metrics, new(MockScoreReader), new(MockChapterChecker), nil)
	sub, err := svc.SubmitMetric(context.Background(), &SubmitMetricRequest{
		ChapterID: uuid.New(),
		MemberID:  uuid.New(),
		Type:      domain.MetricLearning,
		Value:     160,
	})

	assert.NoError(t, err)
	assert.Equal(t, 160.0, sub.Value)
}

func TestListWithScores_CompositeExcludesTradeVolume(t *testing.T) {
	repo := new(MockRepository)
	scores := new(MockScoreReader)
	checker := new(MockChapterChecker)
	chapterID := uuid.New()
	memberID := uuid.New()
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	window := domain.MonthWindow(now)

	lastActive := now.AddDate(0, 0, -3)
	members := []*domain.ChapterMember{
		{ID: memberID, ChapterID: chapterID, UserID: uuid.New(), FullName: "Brian Otieno", Role: domain.RoleMember, LastActivity: &lastActive},
	}

	checker.On("Exists", mock.Anything, chapterID).Return(true, nil)
	repo.On("FindByChapter", mock.Anything, chapterID).Return(members, nil)
	scores.On("MemberMetricAverages", mock.Anything, chapterID, domain.MetricParticipation, window).
		Return([]postgres.MemberMetricValue{{MemberID: memberID, Value: 80}}, nil)
	scores.On("MemberMetricAverages", mock.Anything, chapterID, domain.MetricLearning, window).
		Return([]postgres.MemberMetricValue{{MemberID: memberID, Value: 5}}, nil)
	scores.On("MemberMetricAverages", mock.Anything, chapterID, domain.MetricActivity, window).
		Return([]postgres.MemberMetricValue{{MemberID: memberID, Value: 3}}, nil)
	scores.On("MemberMetricAverages", mock.Anything, chapterID, domain.MetricNetworking, window).
		Return([]postgres.MemberMetricValue{{MemberID: memberID, Value: 2}}, nil)
	scores.On("MemberTradeTotals", mock.Anything, chapterID, window).
		Return([]postgres.MemberTradeTotal{{MemberID: memberID, Total: decimal.NewFromInt(100000)}}, nil)

	svc := newTestService(repo, new(MockMetricRepository), scores, checker, nil)
	svc.now = func() time.Time { return now }

	got, err := svc.ListWithScores(context.Background(), chapterID, domain.Window{})

	assert.NoError(t, err)
	assert.Len(t, got, 1)
	m := got[0]
	if assert.NotNil(t, m.Metrics) {
		// 0.40*80 + 0.20*5 + 0.20*3 + 0.20*2 = 34; trade volume reported only.
		assert.InDelta(t, 34.0, m.Metrics.Total, 1e-9)
		assert.InDelta(t, 100000.0, m.Metrics.Trade, 1e-9)
	}
	assert.False(t, m.IsInactive)
}

func TestListWithScores_FlagsInactiveMembers(t *testing.T) {
	repo := new(MockRepository)
	scores := new(MockScoreReader)
	checker := new(MockChapterChecker)
	chapterID := uuid.New()
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	window := domain.MonthWindow(now)

	stale := now.AddDate(0, 0, -45)
	members := []*domain.ChapterMember{
		{ID: uuid.New(), ChapterID: chapterID, UserID: uuid.New(), FullName: "Dormant", LastActivity: &stale},
		{ID: uuid.New(), ChapterID: chapterID, UserID: uuid.New(), FullName: "Ghost", LastActivity: nil},
	}

	checker.On("Exists", mock.Anything, chapterID).Return(true, nil)
	repo.On("FindByChapter", mock.Anything, chapterID).Return(members, nil)
	scores.On("MemberMetricAverages", mock.Anything, chapterID, mock.Anything, window).
		Return([]postgres.MemberMetricValue{}, nil)
	scores.On("MemberTradeTotals", mock.Anything, chapterID, window).
		Return([]postgres.MemberTradeTotal{}, nil)

	svc := newTestService(repo, new(MockMetricRepository), scores, checker, nil)
	svc.now = func() time.Time { return now }

	got, err := svc.ListWithScores(context.Background(), chapterID, domain.Window{})

	assert.NoError(t, err)
	assert.True(t, got[0].IsInactive)
	assert.True(t, got[1].IsInactive)
	assert.Zero(t, got[0].Metrics.Total)
}
