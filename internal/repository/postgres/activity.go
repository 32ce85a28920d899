package postgres

import (
	"context"

	"chapterlink/internal/activity"
	"chapterlink/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ActivityRepository fetches the three event sources the feed is merged
// from. Each query is already ordered newest-first so the merger can do a
// straight k-way merge.
type ActivityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) RecentMetricEvents(ctx context.Context, chapterID uuid.UUID, limit int) ([]activity.MetricEvent, error) {
	var events []activity.MetricEvent
	query := `
        SELECT ms.id, ms.member_id, u.full_name AS member_name, ms.type, ms.value, ms.created_at
        FROM metric_submissions ms
        JOIN chapter_members m ON m.id = ms.member_id
        JOIN users u ON u.id = m.user_id
        WHERE ms.chapter_id = $1
        ORDER BY ms.created_at DESC
        LIMIT $2
    `

	if err := r.db.SelectContext(ctx, &events, query, chapterID, limit); err != nil {
		return nil, errors.Wrap(err, "failed to fetch metric events")
	}
	return events, nil
}

func (r *ActivityRepository) RecentTradeEvents(ctx context.Context, chapterID uuid.UUID, limit int) ([]activity.TradeEvent, error) {
	var events []activity.TradeEvent
	query := `
        SELECT t.id, t.user_id, u.full_name AS user_name,
               COALESCE(t.description, '') AS description, t.amount, t.created_at
        FROM trades t
        JOIN users u ON u.id = t.user_id
        WHERE t.chapter_id = $1
        ORDER BY t.created_at DESC
        LIMIT $2
    `

	if err := r.db.SelectContext(ctx, &events, query, chapterID, limit); err != nil {
		return nil, errors.Wrap(err, "failed to fetch trade events")
	}
	return events, nil
}

func (r *ActivityRepository) RecentJoinEvents(ctx context.Context, chapterID uuid.UUID, limit int) ([]activity.JoinEvent, error) {
	var events []activity.JoinEvent
	query := `
        SELECT m.id, m.user_id, u.full_name AS user_name, m.created_at AS joined_at
        FROM chapter_members m
        JOIN users u ON u.id = m.user_id
        WHERE m.chapter_id = $1
        ORDER BY m.created_at DESC
        LIMIT $2
    `

	if err := r.db.SelectContext(ctx, &events, query, chapterID, limit); err != nil {
		return nil, errors.Wrap(err, "failed to fetch join events")
	}
	return events, nil
}
