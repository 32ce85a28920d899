// Package member manages chapter membership: joining, metric submissions,
// and the derived per-member score composite and inactivity flag.
package member

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

// Repository is the membership persistence access.
type Repository interface {
	Create(ctx context.Context, m *domain.ChapterMember) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ChapterMember, error)
	FindByChapter(ctx context.Context, chapterID uuid.UUID) ([]*domain.ChapterMember, error)
}

// MetricRepository stores raw metric submissions.
type MetricRepository interface {
	Create(ctx context.Context, s *domain.MetricSubmission) error
}

// ScoreReader provides the windowed aggregates the member composite is
// derived from.
type ScoreReader interface {
	MemberMetricAverages(ctx context.Context, chapterID uuid.UUID, t domain.MetricType, w domain.Window) ([]postgres.MemberMetricValue, error)
	MemberTradeTotals(ctx context.Context, chapterID uuid.UUID, w domain.Window) ([]postgres.MemberTradeTotal, error)
}

// ChapterChecker guards joins against unknown chapters.
type ChapterChecker interface {
	Exists(ctx context.Context, chapterID uuid.UUID) (bool, error)
}

// Notifier receives membership events.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, eventType string, data map[string]interface{}) error
}

// Config carries the derivation tunables.
type Config struct {
	InactivityThreshold time.Duration
	Weights             domain.ScoreWeights
}

// Service implements membership operations.
type Service struct {
	repo     Repository
	metrics  MetricRepository
	scores   ScoreReader
	chapters ChapterChecker
	notifier Notifier
	cfg      Config
	logger   logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, metrics MetricRepository, scores ScoreReader, chapters ChapterChecker, notifier Notifier, cfg Config, log logger.Logger) *Service {
	if cfg.InactivityThreshold <= 0 {
		cfg.InactivityThreshold = 30 * 24 * time.Hour
	}
	if cfg.Weights == (domain.ScoreWeights{}) {
		cfg.Weights = domain.DefaultScoreWeights
	}
	return &Service{
		repo:     repo,
		metrics:  metrics,
		scores:   scores,
		chapters: chapters,
		notifier: notifier,
		cfg:      cfg,
		logger:   log,
		now:      time.Now,
	}
}

// JoinRequest captures a user joining a chapter.
type JoinRequest struct {
	ChapterID uuid.UUID         `json:"chapter_id" validate:"required"`
	UserID    uuid.UUID         `json:"user_id" validate:"required"`
	Role      domain.MemberRole `json:"role" validate:"required,oneof=leader treasurer member"`
}

// Join adds a user to a chapter. The created_at of the membership row is
// the join event that later feeds the activity feed.
func (s *Service) Join(ctx context.Context, req *JoinRequest) (*domain.ChapterMember, error) {
	exists, err := s.chapters.Exists(ctx, req.ChapterID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.ErrChapterNotFound
	}

	m := &domain.ChapterMember{
		ID:        uuid.New(),
		ChapterID: req.ChapterID,
		UserID:    req.UserID,
		Role:      req.Role,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("member joined chapter", map[string]interface{}{
		"member_id":  m.ID,
		"chapter_id": m.ChapterID,
		"user_id":    m.UserID,
	})

	if s.notifier != nil {
		_ = s.notifier.Notify(ctx, m.UserID, "MEMBER_JOINED", map[string]interface{}{
			"chapter_id": m.ChapterID.String(),
		})
	}

	return m, nil
}

// SubmitMetricRequest captures one raw metric submission.
type SubmitMetricRequest struct {
	ChapterID uuid.UUID         `json:"chapter_id" validate:"required"`
	MemberID  uuid.UUID         `json:"member_id" validate:"required"`
	Type      domain.MetricType `json:"type" validate:"required,oneof=participation learning activity networking"`
	Value     float64           `json:"value" validate:"min=0"`
}

// SubmitMetric records a metric submission. Participation is a percentage
// and must stay within [0, 100]; the other types are open-ended counts.
func (s *Service) SubmitMetric(ctx context.Context, req *SubmitMetricRequest) (*domain.MetricSubmission, error) {
	if req.Type == domain.MetricParticipation && req.Value > 100 {
		return nil, errors.Wrap(errors.ErrAggregationFailed, "participation score above 100")
	}

	sub := &domain.MetricSubmission{
		ID:        uuid.New(),
		ChapterID: req.ChapterID,
		MemberID:  req.MemberID,
		Type:      req.Type,
		Value:     req.Value,
		CreatedAt: s.now(),
	}

	if err := s.metrics.Create(ctx, sub); err != nil {
		return nil, err
	}

	return sub, nil
}

// ListWithScores returns the chapter roster enriched with the score
// composite for the window and the inactivity flag. A zero window
// defaults to the current calendar month.
func (s *Service) ListWithScores(ctx context.Context, chapterID uuid.UUID, window domain.Window) ([]*domain.ChapterMember, error) {
	exists, err := s.chapters.Exists(ctx, chapterID)
	if err != nil {
		return nil, errors.Aggregation(err)
	}
	if !exists {
		return nil, errors.ErrChapterNotFound
	}

	if window.IsZero() {
		window = domain.MonthWindow(s.now())
	}

	members, err := s.repo.FindByChapter(ctx, chapterID)
	if err != nil {
		return nil, errors.Aggregation(err)
	}

	byType := make(map[domain.MetricType]map[uuid.UUID]float64)
	for _, t := range []domain.MetricType{
		domain.MetricParticipation, domain.MetricLearning,
		domain.MetricActivity, domain.MetricNetworking,
	} {
		rows, err := s.scores.MemberMetricAverages(ctx, chapterID, t, window)
		if err != nil {
			return nil, errors.Aggregation(err)
		}
		values := make(map[uuid.UUID]float64, len(rows))
		for _, r := range rows {
			values[r.MemberID] = r.Value
		}
		byType[t] = values
	}

	tradeTotals, err := s.scores.MemberTradeTotals(ctx, chapterID, window)
	if err != nil {
		return nil, errors.Aggregation(err)
	}
	trades := make(map[uuid.UUID]decimal.Decimal, len(tradeTotals))
	for _, r := range tradeTotals {
		trades[r.MemberID] = r.Total
	}

	now := s.now()
	for _, m := range members {
		tradeVolume, _ := trades[m.ID].Float64()
		score := domain.NewMemberScore(
			byType[domain.MetricParticipation][m.ID],
			byType[domain.MetricLearning][m.ID],
			byType[domain.MetricActivity][m.ID],
			byType[domain.MetricNetworking][m.ID],
			tradeVolume,
			s.cfg.Weights,
		)
		m.Metrics = &score
		m.IsInactive = IsInactive(m.LastActivity, now, s.cfg.InactivityThreshold)
	}

	return members, nil
}

// IsInactive reports whether a member counts as inactive: never active at
// all, or last active longer ago than the threshold.
func IsInactive(lastActivity *time.Time, now time.Time, threshold time.Duration) bool {
	if lastActivity == nil {
		return true
	}
	return now.Sub(*lastActivity) > threshold
}
