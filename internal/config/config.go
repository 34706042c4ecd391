package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// AbusePolicy holds every tunable threshold of the abuse-control subsystem.
// Product policy lives here, not in literals scattered through the services:
// the rate-limit ceiling and the suspicion tiers are all configuration.
type AbusePolicy struct {
	RateLimitMax       int           // accepted messages per (sender, recipient) per window before hard reject
	RateLimitWindow    time.Duration // trailing window for the hard limit
	SuspicionHighCount int           // >N messages in SuspicionWindow → high severity
	SuspicionWindow    time.Duration // trailing window for hourly suspicion counts
	BurstCount         int           // >N messages in BurstWindow → flooding
	BurstWindow        time.Duration // trailing window for burst detection
	MediumMinCount     int           // lower bound of the medium-severity band
	MaxContentLength   int           // message content ceiling in characters
}

type Config struct {
	PostgresURI    string
	RedisURI       string
	MongoURI       string
	IdentitySalt   string // salt for sender identity hashing; must stay stable or identities rotate
	AdminToken     string // shared token guarding admin endpoints
	Port           string
	FrontendURL    string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL
	Environment    string   // ENV: production, development, etc.
	Abuse          AbusePolicy
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return &Config{
		PostgresURI:    getEnv("POSTGRES_URI", "postgres://localhost:5432/whisperwall?sslmode=disable"),
		RedisURI:       getEnv("REDIS_URI", "redis://localhost:6379/0"),
		MongoURI:       getEnv("MONGODB_URI", getEnv("MONGO_URI", "")),
		IdentitySalt:   getEnv("IDENTITY_SALT", ""),
		AdminToken:     getEnv("ADMIN_TOKEN", ""),
		Environment:    env,
		Port:           getEnv("PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins: allowedOrigins,
		Abuse: AbusePolicy{
			RateLimitMax:       getEnvInt("RATE_LIMIT_MAX", 3),
			RateLimitWindow:    getEnvDuration("RATE_LIMIT_WINDOW", time.Hour),
			SuspicionHighCount: getEnvInt("SUSPICION_HIGH_COUNT", 5),
			SuspicionWindow:    getEnvDuration("SUSPICION_WINDOW", time.Hour),
			BurstCount:         getEnvInt("SUSPICION_BURST_COUNT", 3),
			BurstWindow:        getEnvDuration("SUSPICION_BURST_WINDOW", 10*time.Minute),
			MediumMinCount:     getEnvInt("SUSPICION_MEDIUM_MIN", 3),
			MaxContentLength:   getEnvInt("MAX_CONTENT_LENGTH", 500),
		},
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
