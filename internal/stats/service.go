// Package stats derives chapter-wide performance snapshots from raw metric
// and trade records. Every number is recomputed from source on each call;
// nothing here is persisted or cached.
package stats

import (
	"context"
	"time"

	"chapterlink/internal/domain"
	"chapterlink/internal/repository/postgres"
	"chapterlink/pkg/errors"
	"chapterlink/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository is the read-only aggregate access the service needs.
type Repository interface {
	ChapterExists(ctx context.Context, chapterID uuid.UUID) (bool, error)
	CountMembersAsOf(ctx context.Context, chapterID uuid.UUID, asOf time.Time) (int, error)
	SumMetricValues(ctx context.Context, chapterID uuid.UUID, t domain.MetricType, w domain.Window) (float64, error)
	MemberMetricAverages(ctx context.Context, chapterID uuid.UUID, t domain.MetricType, w domain.Window) ([]postgres.MemberMetricValue, error)
	SumTradeRevenue(ctx context.Context, chapterID uuid.UUID, w domain.Window) (decimal.Decimal, error)
	MemberTradeTotals(ctx context.Context, chapterID uuid.UUID, w domain.Window) ([]postgres.MemberTradeTotal, error)
}

// Service computes chapter statistics and month-over-month growth.
type Service struct {
	repo   Repository
	logger logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, log logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

// ComputeChapterStats derives the chapter snapshot for the given window.
// A zero window defaults to the current calendar month. The previous
// window's aggregates are derived the same way to fill MonthlyGrowth.
func (s *Service) ComputeChapterStats(ctx context.Context, chapterID uuid.UUID, window domain.Window) (*domain.ChapterStats, error) {
	exists, err := s.repo.ChapterExists(ctx, chapterID)
	if err != nil {
		return nil, errors.Aggregation(err)
	}
	if !exists {
		return nil, errors.ErrChapterNotFound
	}

	if window.IsZero() {
		window = domain.MonthWindow(s.now())
	}

	current, err := s.aggregate(ctx, chapterID, window)
	if err != nil {
		return nil, err
	}

	previous, err := s.aggregate(ctx, chapterID, window.Previous())
	if err != nil {
		return nil, err
	}

	current.MonthlyGrowth = ComputeGrowth(*current, *previous)

	s.logger.Debug("chapter stats computed", map[string]interface{}{
		"chapter_id":    chapterID,
		"total_members": current.TotalMembers,
		"window_start":  window.Start,
	})

	return current, nil
}

// aggregate builds the raw (growth-less) snapshot for one window.
// totalMembers is the live membership count, independent of the window;
// members with no submissions still count in the participation denominator.
func (s *Service) aggregate(ctx context.Context, chapterID uuid.UUID, w domain.Window) (*domain.ChapterStats, error) {
	totalMembers, err := s.repo.CountMembersAsOf(ctx, chapterID, w.End)
	if err != nil {
		return nil, errors.Aggregation(err)
	}

	participation, err := s.repo.MemberMetricAverages(ctx, chapterID, domain.MetricParticipation, w)
	if err != nil {
		return nil, errors.Aggregation(err)
	}

	learningHours, err := s.repo.SumMetricValues(ctx, chapterID, domain.MetricLearning, w)
	if err != nil {
		return nil, errors.Aggregation(err)
	}

	revenue, err := s.repo.SumTradeRevenue(ctx, chapterID, w)
	if err != nil {
		return nil, errors.Aggregation(err)
	}

	avgParticipation := 0.0
	if totalMembers > 0 {
		var sum float64
		for _, p := range participation {
			sum += p.Value
		}
		avgParticipation = sum / float64(totalMembers)
	}

	return &domain.ChapterStats{
		ChapterID:          chapterID.String(),
		Window:             w,
		TotalMembers:       totalMembers,
		AvgParticipation:   avgParticipation,
		TotalLearningHours: learningHours,
		TotalRevenue:       revenue,
	}, nil
}
