package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000/api", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2, cfg.API.ReadRetryCount)
	assert.Equal(t, "memory", cfg.Prefs.Backend)
	assert.Equal(t, "none", cfg.CatalogSource)
	assert.Equal(t, "none", cfg.ChangeFeed.Mode)
	assert.Equal(t, "mamacare:changes", cfg.ChangeFeed.EventStream)
	assert.Equal(t, "mamacare-sync-default-mamacare-sync-1", cfg.ChangeFeed.ConsumerGroup)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "mamacare", cfg.Database.Database)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.False(t, cfg.Dashboard.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.TTL)
	assert.False(t, cfg.NeedsRedis())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.org")
	t.Setenv("API_TIMEOUT_SECONDS", "3")
	t.Setenv("PREFS_BACKEND", "redis")
	t.Setenv("PREFS_PROFILE", "maria")
	t.Setenv("REDIS_DB", "4")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("CHANGE_FEED_MODE", "mqtt")
	t.Setenv("CHANGE_CONSUMER_GROUP", "g1")
	t.Setenv("MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("DASHBOARD_PUBLISH_ENABLED", "true")
	t.Setenv("DASHBOARD_PUBLISH_INTERVAL", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.org", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "maria", cfg.Prefs.Profile)
	assert.Equal(t, 4, cfg.Redis.DB)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "g1", cfg.ChangeFeed.ConsumerGroup)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.True(t, cfg.Dashboard.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Dashboard.Interval)
	assert.True(t, cfg.NeedsRedis())
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"PREFS_BACKEND":    "sqlite",
		"CATALOG_SOURCE":   "s3",
		"CHANGE_FEED_MODE": "kafka",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestLoad_BadIntegerFallsBack(t *testing.T) {
	t.Setenv("CHANGE_BATCH_SIZE", "lots")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.ChangeFeed.BatchSize)
}
