package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"mamacare-sync/common/config"
)

// Config of the sync service and the export tool.
type Config struct {
	Database config.DatabaseConfig
	Redis    config.RedisConfig
	MQTT     config.MQTTConfig

	API struct {
		BaseURL        string
		Timeout        time.Duration
		ReadRetryCount int
		// AuthToken, when set, is stored into the preferences at startup.
		AuthToken string
	}

	Prefs struct {
		Backend string // "redis" or "memory"
		Profile string
	}

	// CatalogSource is "postgres" or "none". Without a catalog vaccination
	// progress is 0.
	CatalogSource string

	ChangeFeed struct {
		Mode          string // "none", "stream" or "mqtt"
		EventStream   string
		ConsumerGroup string
		ConsumerName  string
		BatchSize     int
		Topic         string // MQTT topic prefix
	}

	Dashboard struct {
		Enabled  bool
		Interval time.Duration
		TTL      time.Duration
	}

	MetricsAddr string

	Log struct {
		Level  string
		Format string
	}
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.API.BaseURL = getEnv("API_BASE_URL", "http://localhost:3000/api")
	cfg.API.Timeout = time.Duration(getEnvInt("API_TIMEOUT_SECONDS", 15)) * time.Second
	cfg.API.ReadRetryCount = getEnvInt("API_READ_RETRY_COUNT", 2)
	cfg.API.AuthToken = getEnv("AUTH_TOKEN", "")

	cfg.Prefs.Backend = getEnv("PREFS_BACKEND", "memory")
	cfg.Prefs.Profile = getEnv("PREFS_PROFILE", "default")

	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "mamacare"
	cfg.Database.SSLMode = "disable"
	cfg.Database.LoadFromEnv("DB")

	cfg.CatalogSource = getEnv("CATALOG_SOURCE", "none")

	cfg.ChangeFeed.Mode = getEnv("CHANGE_FEED_MODE", "none")
	cfg.ChangeFeed.EventStream = getEnv("CHANGE_EVENT_STREAM", "mamacare:changes")
	cfg.ChangeFeed.ConsumerGroup = getEnv("CHANGE_CONSUMER_GROUP", "")
	cfg.ChangeFeed.ConsumerName = getEnv("CHANGE_CONSUMER_NAME", "mamacare-sync-1")
	cfg.ChangeFeed.BatchSize = getEnvInt("CHANGE_BATCH_SIZE", 10)
	cfg.ChangeFeed.Topic = getEnv("MQTT_CHANGE_TOPIC", "mamacare/changes")

	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "mamacare-sync"
	cfg.MQTT.QoS = 1
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.Dashboard.Enabled = getEnv("DASHBOARD_PUBLISH_ENABLED", "false") == "true"
	cfg.Dashboard.Interval = time.Duration(getEnvInt("DASHBOARD_PUBLISH_INTERVAL", 60)) * time.Second
	cfg.Dashboard.TTL = time.Duration(getEnvInt("DASHBOARD_TTL_SECONDS", 300)) * time.Second

	cfg.MetricsAddr = getEnv("METRICS_ADDR", "")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	// consumer group defaults per profile so two devices of the same
	// profile both see every event
	if cfg.ChangeFeed.ConsumerGroup == "" {
		cfg.ChangeFeed.ConsumerGroup = "mamacare-sync-" + cfg.Prefs.Profile + "-" + cfg.ChangeFeed.ConsumerName
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Prefs.Backend {
	case "redis", "memory":
	default:
		return fmt.Errorf("invalid PREFS_BACKEND %q", c.Prefs.Backend)
	}
	switch c.CatalogSource {
	case "postgres", "none":
	default:
		return fmt.Errorf("invalid CATALOG_SOURCE %q", c.CatalogSource)
	}
	switch c.ChangeFeed.Mode {
	case "none", "stream", "mqtt":
	default:
		return fmt.Errorf("invalid CHANGE_FEED_MODE %q", c.ChangeFeed.Mode)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	return nil
}

// NeedsRedis reports whether any component talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.Prefs.Backend == "redis" || c.ChangeFeed.Mode == "stream" || c.Dashboard.Enabled
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil && v >= 0 {
		return v
	}
	return defaultValue
}
