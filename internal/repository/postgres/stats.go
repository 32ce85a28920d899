package postgres

import (
	"context"
	"time"

	"chapterlink/internal/domain"
	"chapterlink/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// StatsRepository holds the aggregate queries the chapter performance
// service derives its numbers from. Everything is computed at read time;
// nothing here writes.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) ChapterExists(ctx context.Context, chapterID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM chapters WHERE id = $1)`

	if err := r.db.GetContext(ctx, &exists, query, chapterID); err != nil {
		return false, errors.Wrap(err, "failed to check chapter existence")
	}
	return exists, nil
}

// CountMembersAsOf counts memberships created before the cutoff. With a
// cutoff at the end of the current month this equals the live count; with a
// historical cutoff it reconstructs the prior month's membership for the
// growth comparison.
func (r *StatsRepository) CountMembersAsOf(ctx context.Context, chapterID uuid.UUID, asOf time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM chapter_members WHERE chapter_id = $1 AND created_at < $2`

	if err := r.db.GetContext(ctx, &count, query, chapterID, asOf); err != nil {
		return 0, errors.Wrap(err, "failed to count members")
	}
	return count, nil
}

// SumMetricValues totals a metric type across the chapter for the window.
func (r *StatsRepository) SumMetricValues(ctx context.Context, chapterID uuid.UUID, t domain.MetricType, w domain.Window) (float64, error) {
	var sum float64
	query := `
        SELECT COALESCE(SUM(value), 0)
        FROM metric_submissions
        WHERE chapter_id = $1 AND type = $2 AND created_at >= $3 AND created_at < $4
    `

	if err := r.db.GetContext(ctx, &sum, query, chapterID, t, w.Start, w.End); err != nil {
		return 0, errors.Wrap(err, "failed to sum metric values")
	}
	return sum, nil
}

// MemberMetricValue is one member's windowed score for a single metric type.
type MemberMetricValue struct {
	MemberID uuid.UUID `db:"member_id"`
	Value    float64   `db:"value"`
}

// MemberMetricAverages returns, per member with submissions in the window,
// the average submitted value of the given type. Members with no
// submissions are absent from the result.
func (r *StatsRepository) MemberMetricAverages(ctx context.Context, chapterID uuid.UUID, t domain.MetricType, w domain.Window) ([]MemberMetricValue, error) {
	var rows []MemberMetricValue
	query := `
        SELECT member_id, AVG(value) AS value
        FROM metric_submissions
        WHERE chapter_id = $1 AND type = $2 AND created_at >= $3 AND created_at < $4
        GROUP BY member_id
    `

	if err := r.db.SelectContext(ctx, &rows, query, chapterID, t, w.Start, w.End); err != nil {
		return nil, errors.Wrap(err, "failed to average member metrics")
	}
	return rows, nil
}

// SumTradeRevenue totals trade amounts recorded in the window. Cancelled
// and failed trades never became revenue, so they are excluded.
func (r *StatsRepository) SumTradeRevenue(ctx context.Context, chapterID uuid.UUID, w domain.Window) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `
        SELECT COALESCE(SUM(amount), 0)
        FROM trades
        WHERE chapter_id = $1 AND status NOT IN ('cancelled', 'failed')
          AND created_at >= $2 AND created_at < $3
    `

	if err := r.db.GetContext(ctx, &sum, query, chapterID, w.Start, w.End); err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to sum trade revenue")
	}
	return sum, nil
}

// MemberTradeTotal is one member's windowed trade volume.
type MemberTradeTotal struct {
	MemberID uuid.UUID       `db:"member_id"`
	Total    decimal.Decimal `db:"total"`
}

// MemberTradeTotals returns trade volume per member for the window,
// attributing each trade to the initiating user's membership.
func (r *StatsRepository) MemberTradeTotals(ctx context.Context, chapterID uuid.UUID, w domain.Window) ([]MemberTradeTotal, error) {
	var rows []MemberTradeTotal
	query := `
        SELECT m.id AS member_id, COALESCE(SUM(t.amount), 0) AS total
        FROM trades t
        JOIN chapter_members m ON m.user_id = t.user_id AND m.chapter_id = t.chapter_id
        WHERE t.chapter_id = $1 AND t.status NOT IN ('cancelled', 'failed')
          AND t.created_at >= $2 AND t.created_at < $3
        GROUP BY m.id
    `

	if err := r.db.SelectContext(ctx, &rows, query, chapterID, w.Start, w.End); err != nil {
		return nil, errors.Wrap(err, "failed to total member trades")
	}
	return rows, nil
}
