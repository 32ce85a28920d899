// Package trade manages the trade lifecycle: creation, the status state
// machine, and M-Pesa payment confirmation.
package trade

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chapterlink/internal/domain"
	"chapterlink/pkg/errors"
	"chapterlink/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository is the persistence access the service needs.
type Repository interface {
	Create(ctx context.Context, t *domain.Trade) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Trade, error)
	UpdateStatus(ctx context.Context, t *domain.Trade) error
	FindByChapter(ctx context.Context, chapterID uuid.UUID, limit, offset int) ([]*domain.Trade, error)
	FindByChapterInWindow(ctx context.Context, chapterID uuid.UUID, w domain.Window) ([]*domain.Trade, error)
}

// ChapterChecker guards trade creation against unknown chapters.
type ChapterChecker interface {
	Exists(ctx context.Context, chapterID uuid.UUID) (bool, error)
}

// Notifier receives lifecycle events worth telling members about.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, eventType string, data map[string]interface{}) error
}

// allowedTransitions is the closed transition table. Anything absent is a
// policy violation; terminal states have no outgoing edges at all.
var allowedTransitions = []struct {
	From domain.TradeStatus
	To   domain.TradeStatus
}{
	{domain.TradeStatusPending, domain.TradeStatusPaid},
	{domain.TradeStatusPending, domain.TradeStatusInvoiced},
	{domain.TradeStatusPending, domain.TradeStatusCancelled},
	{domain.TradeStatusPending, domain.TradeStatusFailed},
	{domain.TradeStatusInvoiced, domain.TradeStatusPaid},
	{domain.TradeStatusInvoiced, domain.TradeStatusCancelled},
}

// CanTransition reports whether the state machine permits from -> to.
func CanTransition(from, to domain.TradeStatus) bool {
	for _, t := range allowedTransitions {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}

// Service implements the trade operations.
type Service struct {
	repo     Repository
	chapters ChapterChecker
	notifier Notifier
	logger   logger.Logger
}

func NewService(repo Repository, chapters ChapterChecker, notifier Notifier, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		chapters: chapters,
		notifier: notifier,
		logger:   log,
	}
}

// CreateTradeRequest captures the fields for recording a new trade.
type CreateTradeRequest struct {
	ChapterID           uuid.UUID       `json:"chapter_id" validate:"required"`
	UserID              uuid.UUID       `json:"user_id" validate:"required"`
	SourceMemberID      *uuid.UUID      `json:"source_member_id,omitempty"`
	BeneficiaryMemberID *uuid.UUID      `json:"beneficiary_member_id,omitempty"`
	Amount              decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Description         string          `json:"description" validate:"max=500"`
}

// Create records a new trade. Every trade starts pending.
func (s *Service) Create(ctx context.Context, req *CreateTradeRequest) (*domain.Trade, error) {
	exists, err := s.chapters.Exists(ctx, req.ChapterID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.ErrChapterNotFound
	}

	now := time.Now()
	t := &domain.Trade{
		ID:                  uuid.New(),
		ChapterID:           req.ChapterID,
		UserID:              req.UserID,
		SourceMemberID:      req.SourceMemberID,
		BeneficiaryMemberID: req.BeneficiaryMemberID,
		Amount:              req.Amount,
		Description:         req.Description,
		Status:              domain.TradeStatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("trade created", map[string]interface{}{
		"trade_id":   t.ID,
		"chapter_id": t.ChapterID,
		"amount":     t.Amount.String(),
	})

	return t, nil
}

// Transition moves a trade to a new status. mpesaReference may only be
// supplied on the transition into paid; once set it never changes.
func (s *Service) Transition(ctx context.Context, tradeID uuid.UUID, to domain.TradeStatus, mpesaReference string) (*domain.Trade, error) {
	t, err := s.repo.FindByID(ctx, tradeID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(t.Status, to) {
		s.logger.Warn("trade transition rejected", map[string]interface{}{
			"trade_id":    t.ID,
			"from_status": t.Status,
			"to_status":   to,
		})
		return nil, fmt.Errorf("%w: %s -> %s", errors.ErrInvalidTransition, t.Status, to)
	}

	mpesaReference = strings.TrimSpace(mpesaReference)
	if mpesaReference != "" {
		if to != domain.TradeStatusPaid {
			return nil, errors.ErrMpesaReferenceTooSoon
		}
		if t.MpesaReference != nil {
			return nil, errors.ErrMpesaReferenceSet
		}
		t.MpesaReference = &mpesaReference
	}

	from := t.Status
	t.Status = to
	t.UpdatedAt = time.Now()

	if err := s.repo.UpdateStatus(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("trade transitioned", map[string]interface{}{
		"trade_id":    t.ID,
		"from_status": from,
		"to_status":   to,
	})

	if to == domain.TradeStatusPaid && s.notifier != nil {
		data := map[string]interface{}{
			"trade_id": t.ID.String(),
			"amount":   t.Amount.String(),
		}
		if t.MpesaReference != nil {
			data["mpesa_reference"] = *t.MpesaReference
		}
		_ = s.notifier.Notify(ctx, t.UserID, "TRADE_PAID", data)
	}

	return t, nil
}

// ListByChapter returns the chapter's trades, newest first. A non-zero
// window selects a whole calendar month and limit/offset are ignored.
func (s *Service) ListByChapter(ctx context.Context, chapterID uuid.UUID, window domain.Window, limit, offset int) ([]*domain.Trade, error) {
	if !window.IsZero() {
		return s.repo.FindByChapterInWindow(ctx, chapterID, window)
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.FindByChapter(ctx, chapterID, limit, offset)
}
