package postgres

import (
	"context"
	"strings"

	"chapterlink/internal/domain"
	"chapterlink/pkg/errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type MetricRepository struct {
	db *sqlx.DB
}

func NewMetricRepository(db *sqlx.DB) *MetricRepository {
	return &MetricRepository{db: db}
}

func (r *MetricRepository) Create(ctx context.Context, s *domain.MetricSubmission) error {
	query := `
        INSERT INTO metric_submissions (id, chapter_id, member_id, type, value, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.ChapterID, s.MemberID, s.Type, s.Value, s.CreatedAt,
	)
	if err != nil {
		return mapSubmissionInsertError(err)
	}
	return nil
}

// mapSubmissionInsertError turns foreign key violations on the member and
// chapter references into the matching not-found sentinels.
func mapSubmissionInsertError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
		if strings.Contains(pqErr.Constraint, "member_id") {
			return errors.ErrMemberNotFound
		}
		if strings.Contains(pqErr.Constraint, "chapter_id") {
			return errors.ErrChapterNotFound
		}
	}
	return errors.Wrap(err, "failed to create metric submission")
}
