package postgres

import (
	"context"
	"database/sql"

	"chapterlink/internal/domain"
	"chapterlink/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TradeRepository struct {
	db *sqlx.DB
}

func NewTradeRepository(db *sqlx.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

func (r *TradeRepository) Create(ctx context.Context, t *domain.Trade) error {
	query := `
        INSERT INTO trades (
            id, chapter_id, user_id, source_member_id, beneficiary_member_id,
            amount, description, status, mpesa_reference, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.ChapterID, t.UserID, t.SourceMemberID, t.BeneficiaryMemberID,
		t.Amount, t.Description, t.Status, t.MpesaReference, t.CreatedAt, t.UpdatedAt,
	)
	return errors.Wrap(err, "failed to create trade")
}

// UpdateStatus persists a status change. Only status, mpesa_reference, and
// updated_at ever change after creation.
func (r *TradeRepository) UpdateStatus(ctx context.Context, t *domain.Trade) error {
	query := `
		UPDATE trades SET status = $1, mpesa_reference = $2, updated_at = $3
		WHERE id = $4
	`

	_, err := r.db.ExecContext(ctx, query, t.Status, t.MpesaReference, t.UpdatedAt, t.ID)
	return errors.Wrap(err, "failed to update trade status")
}

const tradeSelect = `
	SELECT
		id, chapter_id, user_id, source_member_id, beneficiary_member_id,
		amount, COALESCE(description, '') AS description, status,
		mpesa_reference, created_at, updated_at
	FROM trades
`

func (r *TradeRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Trade, error) {
	var t domain.Trade
	query := tradeSelect + ` WHERE id = $1`

	err := r.db.GetContext(ctx, &t, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrTradeNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find trade")
	}

	return &t, nil
}

func (r *TradeRepository) FindByChapter(ctx context.Context, chapterID uuid.UUID, limit, offset int) ([]*domain.Trade, error) {
	var trades []*domain.Trade
	query := tradeSelect + `
		WHERE chapter_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	if err := r.db.SelectContext(ctx, &trades, query, chapterID, limit, offset); err != nil {
		return nil, errors.Wrap(err, "failed to list chapter trades")
	}
	return trades, nil
}

func (r *TradeRepository) FindByChapterInWindow(ctx context.Context, chapterID uuid.UUID, w domain.Window) ([]*domain.Trade, error) {
	var trades []*domain.Trade
	query := tradeSelect + `
		WHERE chapter_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC
	`

	if err := r.db.SelectContext(ctx, &trades, query, chapterID, w.Start, w.End); err != nil {
		return nil, errors.Wrap(err, "failed to list trades in window")
	}
	return trades, nil
}
