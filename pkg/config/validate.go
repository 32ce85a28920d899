package config

import (
	"fmt"
	"math"
	"strings"
)

// ValidateCore ensures critical configuration is present.
func (c *Config) ValidateCore() error {
	var missing []string

	if strings.TrimSpace(c.Database.URL) == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if strings.TrimSpace(c.Redis.URL) == "" {
		missing = append(missing, "REDIS_URL")
	}
	if strings.TrimSpace(c.Server.Port) == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if strings.TrimSpace(c.JWT.Secret) == "" || c.JWT.Secret == "change-this-secret" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	sum := c.Stats.ParticipationWeight + c.Stats.LearningWeight +
		c.Stats.ActivityWeight + c.Stats.NetworkingWeight
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("stats score weights must sum to 1, got %.4f", sum)
	}
	if c.Stats.FeedLimit <= 0 {
		return fmt.Errorf("STATS_FEED_LIMIT must be positive")
	}
	if c.Stats.InactivityThreshold <= 0 {
		return fmt.Errorf("STATS_INACTIVITY_THRESHOLD must be positive")
	}

	return nil
}
