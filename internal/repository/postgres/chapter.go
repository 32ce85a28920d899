// Package postgres implements the persistence layer with hand-written SQL
// over sqlx.
package postgres

import (
	"context"
	"database/sql"

	"chapterlink/internal/domain"
	"chapterlink/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ChapterRepository struct {
	db *sqlx.DB
}

func NewChapterRepository(db *sqlx.DB) *ChapterRepository {
	return &ChapterRepository{db: db}
}

func (r *ChapterRepository) Create(ctx context.Context, c *domain.Chapter) error {
	query := `
        INSERT INTO chapters (id, name, region, leader_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Region, c.LeaderID, c.CreatedAt, c.UpdatedAt,
	)
	return errors.Wrap(err, "failed to create chapter")
}

func (r *ChapterRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Chapter, error) {
	var c domain.Chapter
	query := `
		SELECT id, name, COALESCE(region, '') AS region, leader_id, created_at, updated_at
		FROM chapters WHERE id = $1
	`

	err := r.db.GetContext(ctx, &c, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrChapterNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find chapter")
	}

	return &c, nil
}

func (r *ChapterRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM chapters WHERE id = $1)`

	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, errors.Wrap(err, "failed to check chapter existence")
	}
	return exists, nil
}

func (r *ChapterRepository) List(ctx context.Context, limit, offset int) ([]*domain.Chapter, error) {
	var chapters []*domain.Chapter
	query := `
		SELECT id, name, COALESCE(region, '') AS region, leader_id, created_at, updated_at
		FROM chapters
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	if err := r.db.SelectContext(ctx, &chapters, query, limit, offset); err != nil {
		return nil, errors.Wrap(err, "failed to list chapters")
	}
	return chapters, nil
}
