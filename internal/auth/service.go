// Package auth implements account registration, login, and token issuance,
// with optional TOTP for chapter leaders.
package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"chapterlink/internal/domain"
	apperrors "chapterlink/pkg/errors"
	"chapterlink/pkg/validator"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

// Repository is the user persistence access.
type Repository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *domain.User) error
}

// Service provides user registration, login, and token issuance.
type Service struct {
	repo      Repository
	jwtSecret string
	jwtExpiry time.Duration
}

// NewService constructs a Service with the given repository and JWT settings.
func NewService(repo Repository, jwtSecret string, jwtExpiry time.Duration) *Service {
	return &Service{
		repo:      repo,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

// RegisterRequest captures the fields required to create a new account.
type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,kenyan_phone"`
	Password     string `json:"password" validate:"required,min=8"`
	FullName     string `json:"full_name" validate:"required"`
	BusinessName string `json:"business_name" validate:"max=120"`
}

// LoginRequest captures credentials for login. TOTPCode is required only
// when the account has TOTP enabled.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	TOTPCode string `json:"totp_code,omitempty"`
}

// TokenResponse is returned on successful register/login.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *domain.User `json:"user"`
}

// Register creates a new account and returns a token.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*TokenResponse, error) {
	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrUserAlreadyExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(passwordHash),
		FullName:     validator.Sanitize(req.FullName),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.BusinessName != "" {
		name := validator.Sanitize(req.BusinessName)
		user.BusinessName = &name
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// Handle unique constraint violations (email/phone)
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, err
	}

	return s.generateToken(user)
}

// Login authenticates an account and returns a token.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.IsTOTPEnabled {
		if req.TOTPCode == "" {
			return nil, apperrors.ErrTOTPRequired
		}
		if user.TOTPSecret == nil || !totp.Validate(req.TOTPCode, *user.TOTPSecret) {
			return nil, apperrors.ErrInvalidTOTPCode
		}
	}

	// The login timestamp participates in the member last-activity derivation.
	now := time.Now()
	user.LastLogin = &now
	user.UpdatedAt = now
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return s.generateToken(user)
}

// EnrollTOTP generates a TOTP secret for the user and stores it pending
// verification. The provisioning URL is returned for authenticator apps.
func (s *Service) EnrollTOTP(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "chapterlink",
		AccountName: user.Email,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate totp secret: %w", err)
	}

	secret := key.Secret()
	user.TOTPSecret = &secret
	user.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, user); err != nil {
		return "", err
	}

	return key.URL(), nil
}

// ActivateTOTP verifies the first code against the pending secret and
// turns TOTP enforcement on.
func (s *Service) ActivateTOTP(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TOTPSecret == nil || !totp.Validate(code, *user.TOTPSecret) {
		return apperrors.ErrInvalidTOTPCode
	}

	user.IsTOTPEnabled = true
	user.UpdatedAt = time.Now()
	return s.repo.Update(ctx, user)
}

func (s *Service) generateToken(user *domain.User) (*TokenResponse, error) {
	expiresAt := time.Now().Add(s.jwtExpiry)

	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &TokenResponse{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}
