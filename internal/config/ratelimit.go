package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// RateRule caps requests per caller within a fixed window.
type RateRule struct {
	Limit  int
	Window time.Duration
}

// RateLimitConfig carries the per-route rules for the sensitive endpoints.
// Each rule is read from an environment variable in "<count>/<window>" form,
// where window is "min" or "hour" (e.g. "5/min", "10/hour").
type RateLimitConfig struct {
	Enabled       bool
	Login         RateRule
	UserCreate    RateRule
	VerifyRequest RateRule
}

// LoadRateLimitConfig reads the rate limit rules from the environment,
// falling back to the documented defaults when a variable is unset or
// malformed.
func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:       envBool("RATE_LIMIT_ENABLED", true),
		Login:         parseRate(os.Getenv("RATE_LIMIT_LOGIN"), RateRule{Limit: 5, Window: time.Minute}),
		UserCreate:    parseRate(os.Getenv("RATE_LIMIT_USER_CREATE"), RateRule{Limit: 10, Window: time.Hour}),
		VerifyRequest: parseRate(os.Getenv("RATE_LIMIT_VERIFY_REQUEST"), RateRule{Limit: 10, Window: time.Hour}),
	}
}

func parseRate(s string, def RateRule) RateRule {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || n < 1 {
		return def
	}
	switch unit := strings.ToLower(strings.TrimSpace(parts[1])); {
	case strings.HasPrefix(unit, "min"):
		return RateRule{Limit: n, Window: time.Minute}
	case strings.HasPrefix(unit, "hour"):
		return RateRule{Limit: n, Window: time.Hour}
	}
	return def
}
