package domain

import (
	"time"

	"github.com/google/uuid"
)

// MetricType identifies what a metric submission measures.
type MetricType string

const (
	MetricParticipation MetricType = "participation"
	MetricLearning      MetricType = "learning"
	MetricActivity      MetricType = "activity"
	MetricNetworking    MetricType = "networking"
)

// MetricSubmission is one raw per-member metric record.
type MetricSubmission struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	ChapterID uuid.UUID  `json:"chapter_id" db:"chapter_id"`
	MemberID  uuid.UUID  `json:"member_id" db:"member_id"`
	Type      MetricType `json:"type" db:"type"`
	Value     float64    `json:"value" db:"value"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// ScoreWeights is the weighting applied when combining a member's sub-scores
// into the composite total. Weights must sum to 1.
type ScoreWeights struct {
	Participation float64
	Learning      float64
	Activity      float64
	Networking    float64
}

// DefaultScoreWeights matches the documented configuration defaults.
var DefaultScoreWeights = ScoreWeights{
	Participation: 0.40,
	Learning:      0.20,
	Activity:      0.20,
	Networking:    0.20,
}

// MemberScore is a member's per-window score composite. Total is always
// derived from the four sub-scores via NewMemberScore, never set directly.
type MemberScore struct {
	Participation float64 `json:"participation"`
	Learning      float64 `json:"learning"`
	Activity      float64 `json:"activity"`
	Networking    float64 `json:"networking"`
	Trade         float64 `json:"trade"`
	Total         float64 `json:"total"`
}

// NewMemberScore builds the composite, computing Total from the weighted
// sub-scores. Trade volume is reported alongside but does not enter Total.
func NewMemberScore(participation, learning, activity, networking, trade float64, w ScoreWeights) MemberScore {
	return MemberScore{
		Participation: participation,
		Learning:      learning,
		Activity:      activity,
		Networking:    networking,
		Trade:         trade,
		Total: participation*w.Participation +
			learning*w.Learning +
			activity*w.Activity +
			networking*w.Networking,
	}
}
