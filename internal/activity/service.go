// Package activity builds the unified chapter activity feed by merging
// metric submissions, trades, and member joins into one time-ordered view.
package activity

import (
	"context"
	"time"

	"chapterlink/internal/domain"
	"chapterlink/pkg/errors"
	"chapterlink/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultFeedLimit caps the feed when the caller does not ask for a
// specific length.
const DefaultFeedLimit = 50

// MetricEvent is a metric submission as it enters the feed pipeline.
type MetricEvent struct {
	ID         uuid.UUID         `db:"id"`
	MemberID   uuid.UUID         `db:"member_id"`
	MemberName string            `db:"member_name"`
	Type       domain.MetricType `db:"type"`
	Value      float64           `db:"value"`
	CreatedAt  time.Time         `db:"created_at"`
}

// TradeEvent is a trade as it enters the feed pipeline.
type TradeEvent struct {
	ID          uuid.UUID       `db:"id"`
	UserID      uuid.UUID       `db:"user_id"`
	UserName    string          `db:"user_name"`
	Description string          `db:"description"`
	Amount      decimal.Decimal `db:"amount"`
	CreatedAt   time.Time       `db:"created_at"`
}

// JoinEvent is a membership creation as it enters the feed pipeline.
type JoinEvent struct {
	ID       uuid.UUID `db:"id"`
	UserID   uuid.UUID `db:"user_id"`
	UserName string    `db:"user_name"`
	JoinedAt time.Time `db:"joined_at"`
}

// Repository fetches the three sources, each ordered newest-first.
type Repository interface {
	RecentMetricEvents(ctx context.Context, chapterID uuid.UUID, limit int) ([]MetricEvent, error)
	RecentTradeEvents(ctx context.Context, chapterID uuid.UUID, limit int) ([]TradeEvent, error)
	RecentJoinEvents(ctx context.Context, chapterID uuid.UUID, limit int) ([]JoinEvent, error)
}

// ChapterChecker guards feed requests against unknown chapters.
type ChapterChecker interface {
	Exists(ctx context.Context, chapterID uuid.UUID) (bool, error)
}

// Service assembles the feed. Each call recomputes from source; there is
// no cursor or cached state, so repeated calls on unchanged data are
// identical.
type Service struct {
	repo         Repository
	chapters     ChapterChecker
	defaultLimit int
	logger       logger.Logger
}

// NewService builds the feed service. defaultLimit caps requests that do
// not ask for a specific length; values <= 0 fall back to DefaultFeedLimit.
func NewService(repo Repository, chapters ChapterChecker, defaultLimit int, log logger.Logger) *Service {
	if defaultLimit <= 0 {
		defaultLimit = DefaultFeedLimit
	}
	return &Service{
		repo:         repo,
		chapters:     chapters,
		defaultLimit: defaultLimit,
		logger:       log,
	}
}

// BuildActivityFeed returns up to limit entries for the chapter, newest
// first. limit <= 0 selects the service's configured default.
func (s *Service) BuildActivityFeed(ctx context.Context, chapterID uuid.UUID, limit int) ([]domain.Activity, error) {
	exists, err := s.chapters.Exists(ctx, chapterID)
	if err != nil {
		return nil, errors.Aggregation(err)
	}
	if !exists {
		return nil, errors.ErrChapterNotFound
	}

	if limit <= 0 {
		limit = s.defaultLimit
	}

	// Each source is already capped at limit: even if one source fills the
	// whole feed the merge has enough candidates.
	metricEvents, err := s.repo.RecentMetricEvents(ctx, chapterID, limit)
	if err != nil {
		return nil, errors.Aggregation(err)
	}
	tradeEvents, err := s.repo.RecentTradeEvents(ctx, chapterID, limit)
	if err != nil {
		return nil, errors.Aggregation(err)
	}
	joinEvents, err := s.repo.RecentJoinEvents(ctx, chapterID, limit)
	if err != nil {
		return nil, errors.Aggregation(err)
	}

	metrics := make([]domain.Activity, 0, len(metricEvents))
	for _, e := range metricEvents {
		metrics = append(metrics, domain.NewMetricActivity(e.ID, e.MemberID, e.MemberName, e.Type, e.Value, e.CreatedAt))
	}
	trades := make([]domain.Activity, 0, len(tradeEvents))
	for _, e := range tradeEvents {
		trades = append(trades, domain.NewTradeActivity(e.ID, e.UserID, e.UserName, e.Description, e.Amount, e.CreatedAt))
	}
	joins := make([]domain.Activity, 0, len(joinEvents))
	for _, e := range joinEvents {
		joins = append(joins, domain.NewJoinActivity(e.ID, e.UserID, e.UserName, e.JoinedAt))
	}

	return mergeFeeds(limit, metrics, trades, joins), nil
}

// mergeFeeds k-way merges sources that are each sorted by CreatedAt
// descending. Ties keep source order (earlier source slice wins, then
// slice order within a source), which makes repeated merges of the same
// data deterministic.
func mergeFeeds(limit int, sources ...[]domain.Activity) []domain.Activity {
	total := 0
	for _, src := range sources {
		total += len(src)
	}
	if total > limit {
		total = limit
	}

	merged := make([]domain.Activity, 0, total)
	idx := make([]int, len(sources))

	for len(merged) < total {
		best := -1
		for i, src := range sources {
			if idx[i] >= len(src) {
				continue
			}
			if best == -1 || src[idx[i]].CreatedAt.After(sources[best][idx[best]].CreatedAt) {
				best = i
			}
		}
		merged = append(merged, sources[best][idx[best]])
		idx[best]++
	}

	return merged
}
