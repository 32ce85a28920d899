package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeStatus is the closed set of states a trade can be in.
type TradeStatus string

const (
	TradeStatusPending   TradeStatus = "pending"
	TradeStatusInvoiced  TradeStatus = "invoiced"
	TradeStatusPaid      TradeStatus = "paid"
	TradeStatusCancelled TradeStatus = "cancelled"
	TradeStatusFailed    TradeStatus = "failed"
)

// IsTerminal reports whether no further transition is permitted from s.
func (s TradeStatus) IsTerminal() bool {
	switch s {
	case TradeStatusPaid, TradeStatusCancelled, TradeStatusFailed:
		return true
	}
	return false
}

// Trade is a recorded financial transaction between chapter members.
// MpesaReference is present only once a payment attempt has been made and
// is immutable after being set.
type Trade struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	ChapterID           uuid.UUID       `json:"chapter_id" db:"chapter_id"`
	UserID              uuid.UUID       `json:"user_id" db:"user_id"`
	SourceMemberID      *uuid.UUID      `json:"source_member_id,omitempty" db:"source_member_id"`
	BeneficiaryMemberID *uuid.UUID      `json:"beneficiary_member_id,omitempty" db:"beneficiary_member_id"`
	Amount              decimal.Decimal `json:"amount" db:"amount"`
	Description         string          `json:"description" db:"description"`
	Status              TradeStatus     `json:"status" db:"status"`
	MpesaReference      *string         `json:"mpesa_reference,omitempty" db:"mpesa_reference"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}
