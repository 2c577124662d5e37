package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("AUTH_POLICY", "")
	t.Setenv("IDENTITY_PROVIDER", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("METRICS_ADDR", "")

	cfg := Load()
	assert.Equal(t, ":3000", cfg.HTTPAddr)
	assert.Equal(t, ":9091", cfg.MetricsAddr)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "coffee-web", cfg.MongoDB)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, PolicyStrict, cfg.AuthPolicy)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "8080")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("WORKER_CONCURRENCY", "-3")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("METRICS_ADDR", ":9300")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":9300", cfg.MetricsAddr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Config{StoreDriver: "cassandra", AuthPolicy: "open", IdentityProvider: IdentityFirebase}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"JWT_SECRET_KEY", "cassandra", "open", "FB_SERVICE_KEY"} {
		assert.Contains(t, err.Error(), want)
	}
}
