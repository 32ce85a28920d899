package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestActivityConstructorsKeepTagAndPayloadConsistent(t *testing.T) {
	at := time.Now()

	m := NewMetricActivity(uuid.New(), uuid.New(), "Brian", MetricLearning, 4, at)
	assert.Equal(t, ActivityMetric, m.Type)
	if assert.NotNil(t, m.MetricType) {
		assert.Equal(t, MetricLearning, *m.MetricType)
	}
	assert.NotNil(t, m.Value)

	tr := NewTradeActivity(uuid.New(), uuid.New(), "Amina", "", decimal.NewFromInt(500), at)
	assert.Equal(t, ActivityTrade, tr.Type)
	assert.Nil(t, tr.MetricType)
	if assert.NotNil(t, tr.Value) {
		assert.True(t, tr.Value.Equal(decimal.NewFromInt(500)))
	}
	assert.Contains(t, tr.Description, "Amina")

	j := NewJoinActivity(uuid.New(), uuid.New(), "Cynthia", at)
	assert.Equal(t, ActivityMemberJoin, j.Type)
	assert.Nil(t, j.Value)
	assert.Nil(t, j.MetricType)
	assert.Contains(t, j.Description, "joined")
}
