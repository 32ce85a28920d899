package postgres

import (
	"context"
	"database/sql"
	"strings"

	"chapterlink/internal/domain"
	"chapterlink/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type MemberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Create(ctx context.Context, m *domain.ChapterMember) error {
	query := `
        INSERT INTO chapter_members (id, chapter_id, user_id, role, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.ChapterID, m.UserID, m.Role, m.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			if strings.Contains(pqErr.Constraint, "chapter_user") || strings.Contains(pqErr.Message, "chapter_user") {
				return errors.ErrMemberAlreadyJoined
			}
		}
		return errors.Wrap(err, "failed to create chapter member")
	}

	return nil
}

// memberSelect joins account details and derives last_activity as the most
// recent of the member's metric submissions, trades, and logins.
const memberSelect = `
	SELECT
		m.id, m.chapter_id, m.user_id,
		u.full_name, COALESCE(u.business_name, '') AS business_name,
		u.email, COALESCE(u.phone, '') AS phone,
		m.role, m.created_at,
		GREATEST(
			(SELECT MAX(ms.created_at) FROM metric_submissions ms WHERE ms.member_id = m.id),
			(SELECT MAX(t.created_at) FROM trades t WHERE t.user_id = m.user_id AND t.chapter_id = m.chapter_id),
			u.last_login
		) AS last_activity
	FROM chapter_members m
	JOIN users u ON u.id = m.user_id
`

func (r *MemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ChapterMember, error) {
	var m domain.ChapterMember
	query := memberSelect + ` WHERE m.id = $1`

	err := r.db.GetContext(ctx, &m, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrMemberNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find member")
	}

	return &m, nil
}

func (r *MemberRepository) FindByChapter(ctx context.Context, chapterID uuid.UUID) ([]*domain.ChapterMember, error) {
	var members []*domain.ChapterMember
	query := memberSelect + ` WHERE m.chapter_id = $1 ORDER BY m.created_at ASC`

	if err := r.db.SelectContext(ctx, &members, query, chapterID); err != nil {
		return nil, errors.Wrap(err, "failed to list chapter members")
	}
	return members, nil
}
