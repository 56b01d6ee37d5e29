package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	DevMode       bool
	JWTSigningKey string
	JWTIssuer     string
	SessionTTL    time.Duration
	PollTimeout   time.Duration

	// SingleSessionMode forces at most one signed-in session per browser
	// profile; a signed-in visitor is sent onward instead of the form.
	SingleSessionMode bool

	SignUpPath      string
	SignInPath      string
	AfterSignUpPath string
	SSOCallbackPath string

	// Providers lists the OAuth providers offered on the start screen.
	Providers []string

	// IdentityBaseURL points at the remote identity service. Empty means
	// run against the in-memory fake (dev mode only).
	IdentityBaseURL string
	PollInterval    time.Duration

	Redis       RedisConfig
	PostgresDSN string
	Kafka       KafkaConfig

	AuditBuffer int

	// RateLimit caps requests per client IP on the public API; 0 disables.
	RateLimit       int
	RateLimitWindow time.Duration
}

// RedisConfig holds Redis connection tuning.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the audit fan-out settings. Empty brokers disable it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:              envOr("GATEHOUSE_ADDR", ":8080"),
		DevMode:           os.Getenv("GATEHOUSE_DEV_MODE") == "true",
		JWTSigningKey:     envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:         envOr("JWT_ISSUER", "gatehouse"),
		SessionTTL:        envDuration("SESSION_TTL", 24*time.Hour),
		PollTimeout:       envDuration("VERIFICATION_POLL_TIMEOUT", 5*time.Minute),
		SingleSessionMode: os.Getenv("SINGLE_SESSION_MODE") == "true",
		SignUpPath:        envOr("SIGN_UP_PATH", "/sign-up"),
		SignInPath:        envOr("SIGN_IN_PATH", "/sign-in"),
		AfterSignUpPath:   envOr("AFTER_SIGN_UP_PATH", "/"),
		SSOCallbackPath:   envOr("SSO_CALLBACK_PATH", "/sign-up/sso-callback"),
		IdentityBaseURL:   os.Getenv("IDENTITY_BASE_URL"),
		PollInterval:      envDuration("VERIFICATION_POLL_INTERVAL", 3*time.Second),
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
		AuditBuffer:       envInt("AUDIT_BUFFER", 256),
		RateLimit:         envInt("RATE_LIMIT", 120),
		RateLimitWindow:   envDuration("RATE_LIMIT_WINDOW", time.Minute),
	}

	if providers := os.Getenv("OAUTH_PROVIDERS"); providers != "" {
		cfg.Providers = splitList(providers)
	}

	cfg.Redis = RedisConfig{
		URL:          os.Getenv("REDIS_URL"),
		PoolSize:     envInt("REDIS_POOL_SIZE", 10),
		MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka = KafkaConfig{
			Brokers: splitList(brokers),
			Topic:   envOr("KAFKA_AUDIT_TOPIC", "gatehouse.audit"),
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
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

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
