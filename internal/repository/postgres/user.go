package postgres

import (
	"context"
	"database/sql"

	"chapterlink/internal/domain"
	"chapterlink/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
        INSERT INTO users (
            id, email, phone, password_hash, full_name, business_name,
            totp_secret, is_totp_enabled, is_active, last_login, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Phone, u.PasswordHash, u.FullName, u.BusinessName,
		u.TOTPSecret, u.IsTOTPEnabled, u.IsActive, u.LastLogin, u.CreatedAt, u.UpdatedAt,
	)
	return errors.Wrap(err, "failed to create user")
}

const userSelect = `
	SELECT id, email, COALESCE(phone, '') AS phone, password_hash, full_name,
	       business_name, totp_secret, is_totp_enabled, is_active, last_login,
	       created_at, updated_at
	FROM users
`

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	query := userSelect + ` WHERE id = $1`

	err := r.db.GetContext(ctx, &u, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}

	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	query := userSelect + ` WHERE LOWER(email) = LOWER($1)`

	err := r.db.GetContext(ctx, &u, query, email)
	if err == sql.ErrNoRows {
		return nil, errors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return &u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`

	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, errors.Wrap(err, "failed to check user existence")
	}
	return exists, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users SET
			email = $1, phone = $2, password_hash = $3, full_name = $4,
			business_name = $5, totp_secret = $6, is_totp_enabled = $7,
			is_active = $8, last_login = $9, updated_at = $10
		WHERE id = $11
	`

	_, err := r.db.ExecContext(ctx, query,
		u.Email, u.Phone, u.PasswordHash, u.FullName,
		u.BusinessName, u.TOTPSecret, u.IsTOTPEnabled,
		u.IsActive, u.LastLogin, u.UpdatedAt, u.ID,
	)
	return errors.Wrap(err, "failed to update user")
}
