package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{URL: "postgres://localhost/chapterlink"},
		Redis:    RedisConfig{URL: "localhost:6379"},
		JWT:      JWTConfig{Secret: "test-secret", Expiration: 15 * time.Minute},
		Stats: StatsConfig{
			InactivityThreshold: 30 * 24 * time.Hour,
			FeedLimit:           50,
			ParticipationWeight: 0.40,
			LearningWeight:      0.20,
			ActivityWeight:      0.20,
			NetworkingWeight:    0.20,
		},
	}
}

func TestValidateCore(t *testing.T) {
	assert.NoError(t, validConfig().ValidateCore())
}

func TestValidateCore_MissingDatabase(t *testing.T) {
	cfg := validConfig()
	cfg.Database.URL = ""
	err := cfg.ValidateCore()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestValidateCore_DefaultJWTSecretRejected(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.Secret = "change-this-secret"
	assert.Error(t, cfg.ValidateCore())
}

func TestValidateCore_WeightsMustSumToOne(t *testing.T) {
	cfg := validConfig()
	cfg.Stats.ParticipationWeight = 0.50
	err := cfg.ValidateCore()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "weights")
}

func TestNormalizeRedisURL(t *testing.T) {
	assert.Equal(t, "localhost:6379", normalizeRedisURL("redis://localhost:6379"))
	assert.Equal(t, "cache:6380", normalizeRedisURL("redis+tls://cache:6380"))
	assert.Equal(t, "localhost:6379", normalizeRedisURL("localhost:6379"))
}
