package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// User represents an account that can log in and belong to chapters.
type User struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Email         string     `json:"email" db:"email"`
	Phone         string     `json:"phone" db:"phone"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	FullName      string     `json:"full_name" db:"full_name"`
	BusinessName  *string    `json:"business_name,omitempty" db:"business_name"`
	TOTPSecret    *string    `json:"-" db:"totp_secret"`
	IsTOTPEnabled bool       `json:"is_totp_enabled" db:"is_totp_enabled"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	LastLogin     *time.Time `json:"last_login,omitempty" db:"last_login"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// Chapter is an organizational sub-unit with its own members and a leader.
type Chapter struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Region    string    `json:"region" db:"region"`
	LeaderID  uuid.UUID `json:"leader_id" db:"leader_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// MemberRole describes a member's position within a chapter.
type MemberRole string

const (
	RoleLeader    MemberRole = "leader"
	RoleTreasurer MemberRole = "treasurer"
	RoleMember    MemberRole = "member"
)

// ChapterMember is a user's membership in one chapter, enriched on read with
// the derived score composite and inactivity flag.
type ChapterMember struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	ChapterID    uuid.UUID  `json:"chapter_id" db:"chapter_id"`
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	FullName     string     `json:"full_name" db:"full_name"`
	BusinessName string     `json:"business_name" db:"business_name"`
	Email        string     `json:"email" db:"email"`
	Phone        string     `json:"phone" db:"phone"`
	Role         MemberRole `json:"role" db:"role"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`

	// LastActivity is the most recent metric, trade, or login event.
	// Nil means the member has never been active.
	LastActivity *time.Time `json:"last_activity,omitempty" db:"last_activity"`

	// Derived, never stored.
	IsInactive bool         `json:"is_inactive" db:"-"`
	Metrics    *MemberScore `json:"metrics,omitempty" db:"-"`
}

// Metadata is a JSON-compatible map
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *Metadata) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, &m)
}
