package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActivityType discriminates the three kinds of feed entries.
type ActivityType string

const (
	ActivityMetric     ActivityType = "metric"
	ActivityTrade      ActivityType = "trade"
	ActivityMemberJoin ActivityType = "member_join"
)

// Activity is one normalized feed entry. Value and MetricType are payload
// fields of the variant selected by Type; the constructors below are the
// only way entries are built, which keeps the tag and payload consistent.
type Activity struct {
	ID          uuid.UUID        `json:"id"`
	Type        ActivityType     `json:"type"`
	Description string           `json:"description"`
	UserID      uuid.UUID        `json:"user_id"`
	UserName    string           `json:"user_name"`
	Value       *decimal.Decimal `json:"value,omitempty"`
	MetricType  *MetricType      `json:"metric_type,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewMetricActivity maps a metric submission into the feed shape.
func NewMetricActivity(id, userID uuid.UUID, userName string, metricType MetricType, value float64, createdAt time.Time) Activity {
	v := decimal.NewFromFloat(value)
	mt := metricType
	return Activity{
		ID:          id,
		Type:        ActivityMetric,
		Description: userName + " submitted a " + string(metricType) + " metric",
		UserID:      userID,
		UserName:    userName,
		Value:       &v,
		MetricType:  &mt,
		CreatedAt:   createdAt,
	}
}

// NewTradeActivity maps a trade into the feed shape.
func NewTradeActivity(id, userID uuid.UUID, userName, description string, amount decimal.Decimal, createdAt time.Time) Activity {
	v := amount
	if description == "" {
		description = userName + " recorded a trade"
	}
	return Activity{
		ID:          id,
		Type:        ActivityTrade,
		Description: description,
		UserID:      userID,
		UserName:    userName,
		Value:       &v,
		CreatedAt:   createdAt,
	}
}

// NewJoinActivity maps a member join into the feed shape.
func NewJoinActivity(id, userID uuid.UUID, userName string, createdAt time.Time) Activity {
	return Activity{
		ID:          id,
		Type:        ActivityMemberJoin,
		Description: userName + " joined the chapter",
		UserID:      userID,
		UserName:    userName,
		CreatedAt:   createdAt,
	}
}
