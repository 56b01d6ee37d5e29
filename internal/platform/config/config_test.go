package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.PollTimeout)
	assert.Equal(t, 3*time.Second, cfg.PollInterval)
	assert.Equal(t, "/sign-up", cfg.SignUpPath)
	assert.Equal(t, "/sign-in", cfg.SignInPath)
	assert.Equal(t, "/", cfg.AfterSignUpPath)
	assert.Equal(t, "/sign-up/sso-callback", cfg.SSOCallbackPath)
	assert.Empty(t, cfg.Providers)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 256, cfg.AuditBuffer)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("GATEHOUSE_ADDR", ":9999")
	t.Setenv("GATEHOUSE_DEV_MODE", "true")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("VERIFICATION_POLL_TIMEOUT", "90s")
	t.Setenv("SINGLE_SESSION_MODE", "true")
	t.Setenv("AFTER_SIGN_UP_PATH", "/dashboard")
	t.Setenv("IDENTITY_BASE_URL", "https://identity.internal")
	t.Setenv("AUDIT_BUFFER", "512")

	cfg := FromEnv()

	assert.Equal(t, ":9999", cfg.Addr)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 90*time.Second, cfg.PollTimeout)
	assert.True(t, cfg.SingleSessionMode)
	assert.Equal(t, "/dashboard", cfg.AfterSignUpPath)
	assert.Equal(t, "https://identity.internal", cfg.IdentityBaseURL)
	assert.Equal(t, 512, cfg.AuditBuffer)
}

func TestFromEnvParsesLists(t *testing.T) {
	t.Setenv("OAUTH_PROVIDERS", "google, github ,,apple")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg := FromEnv()

	assert.Equal(t, []string{"google", "github", "apple"}, cfg.Providers)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "gatehouse.audit", cfg.Kafka.Topic)
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	t.Setenv("AUDIT_BUFFER", "many")

	cfg := FromEnv()

	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 256, cfg.AuditBuffer)
}
