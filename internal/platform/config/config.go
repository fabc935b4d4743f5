package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string
	Environment string

	// AdminTokenHash is the bcrypt hash of the operator token guarding admin
	// endpoints. Empty disables the admin surface entirely.
	AdminTokenHash string

	// DemoMode scores applicants locally when no upstream API key is
	// configured. Local development only.
	DemoMode bool

	Upstream Upstream
	Secrets  Secrets
}

// Upstream captures the RiskShield client configuration. All durations have
// documented defaults; override via environment only when tuning.
type Upstream struct {
	BaseURL string

	// APIKeySecret names the secret holding the RiskShield API key.
	APIKeySecret string

	ConnectTimeout time.Duration // connection establishment, default 5s
	ReadTimeout    time.Duration // response headers, default 10s
	WriteTimeout   time.Duration // request body write, default 5s
	PoolTimeout    time.Duration // idle connection lifetime, default 5s

	// AttemptTimeout bounds one full attempt end to end.
	AttemptTimeout time.Duration

	MaxAttempts    int           // total attempts including the first, default 3
	BackoffInitial time.Duration // wait after the first failure, default 1s
	BackoffMax     time.Duration // backoff cap, default 4s

	BreakerThreshold int           // consecutive failures before opening, default 5
	BreakerCooldown  time.Duration // open window before a probe, default 30s
}

// Secrets configures the secret source cache.
type Secrets struct {
	CacheTTL time.Duration // default 5m, keeps vault reads within free-tier limits
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:           envString("RISKGATE_ADDR", ":8080"),
		Environment:    envString("ENVIRONMENT", "development"),
		AdminTokenHash: os.Getenv("RISKGATE_ADMIN_TOKEN_HASH"),
		DemoMode:       envBool("RISKGATE_DEMO_MODE", false),
		Upstream: Upstream{
			BaseURL:          envString("RISKSHIELD_BASE_URL", "http://localhost:8081"),
			APIKeySecret:     envString("RISKSHIELD_API_KEY_SECRET", "RISKSHIELD-API-KEY"),
			ConnectTimeout:   envDuration("RISKSHIELD_CONNECT_TIMEOUT", 5*time.Second),
			ReadTimeout:      envDuration("RISKSHIELD_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:     envDuration("RISKSHIELD_WRITE_TIMEOUT", 5*time.Second),
			PoolTimeout:      envDuration("RISKSHIELD_POOL_TIMEOUT", 5*time.Second),
			AttemptTimeout:   envDuration("RISKSHIELD_ATTEMPT_TIMEOUT", 20*time.Second),
			MaxAttempts:      envInt("RISKSHIELD_MAX_ATTEMPTS", 3),
			BackoffInitial:   envDuration("RISKSHIELD_BACKOFF_INITIAL", time.Second),
			BackoffMax:       envDuration("RISKSHIELD_BACKOFF_MAX", 4*time.Second),
			BreakerThreshold: envInt("RISKSHIELD_BREAKER_THRESHOLD", 5),
			BreakerCooldown:  envDuration("RISKSHIELD_BREAKER_COOLDOWN", 30*time.Second),
		},
		Secrets: Secrets{
			CacheTTL: envDuration("RISKGATE_SECRET_CACHE_TTL", 5*time.Minute),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true"
	}
	return fallback
}
