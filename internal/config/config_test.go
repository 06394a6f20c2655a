package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8012, cfg.HTTPPort)
	assert.Equal(t, "stocksync_db", cfg.PostgresDB)
	assert.Equal(t, 60, cfg.SettingsCacheTTL)
	assert.False(t, cfg.RedisEnabled)
	assert.Empty(t, cfg.WebhookURL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("STOCKSYNC_HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidOTELSampleRate(t *testing.T) {
	t.Setenv("OTEL_SAMPLE_RATE", "2.0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
}

func TestLoad_ZeroSettingsCacheTTL(t *testing.T) {
	t.Setenv("SETTINGS_CACHE_TTL_SECONDS", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SETTINGS_CACHE_TTL_SECONDS must be > 0")
}

func TestLoad_CustomKafkaBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_WebhookURL(t *testing.T) {
	t.Setenv("FULFILLMENT_WEBHOOK_URL", "http://hooks.local/stock")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://hooks.local/stock", cfg.WebhookURL)
}
