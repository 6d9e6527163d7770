package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig Postgres connection settings.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConns        int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

// RedisConfig Redis connection settings.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
}

// MQTTConfig MQTT broker settings.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// GetDSN returns the lib/pq connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// LoadFromEnv overrides fields from PREFIX_HOST, PREFIX_PORT, PREFIX_USER,
// PREFIX_PASSWORD, PREFIX_NAME, PREFIX_SSLMODE, PREFIX_MAX_CONNS,
// PREFIX_MAX_IDLE and PREFIX_CONN_MAX_LIFETIME.
func (c *DatabaseConfig) LoadFromEnv(prefix string) {
	str(prefix+"_HOST", &c.Host)
	integer(prefix+"_PORT", &c.Port)
	str(prefix+"_USER", &c.User)
	str(prefix+"_PASSWORD", &c.Password)
	str(prefix+"_NAME", &c.Database)
	str(prefix+"_SSLMODE", &c.SSLMode)
	integer(prefix+"_MAX_CONNS", &c.MaxConns)
	integer(prefix+"_MAX_IDLE", &c.MaxIdle)
	duration(prefix+"_CONN_MAX_LIFETIME", &c.ConnMaxLifetime)
}

// LoadFromEnv overrides fields from PREFIX_ADDR, PREFIX_PASSWORD, PREFIX_DB,
// PREFIX_POOL_SIZE and PREFIX_DIAL_TIMEOUT.
func (c *RedisConfig) LoadFromEnv(prefix string) {
	str(prefix+"_ADDR", &c.Addr)
	str(prefix+"_PASSWORD", &c.Password)
	integer(prefix+"_DB", &c.DB)
	integer(prefix+"_POOL_SIZE", &c.PoolSize)
	duration(prefix+"_DIAL_TIMEOUT", &c.DialTimeout)
}

// LoadFromEnv overrides fields from PREFIX_BROKER, PREFIX_CLIENT_ID,
// PREFIX_USERNAME, PREFIX_PASSWORD and PREFIX_QOS.
func (c *MQTTConfig) LoadFromEnv(prefix string) {
	str(prefix+"_BROKER", &c.Broker)
	str(prefix+"_CLIENT_ID", &c.ClientID)
	str(prefix+"_USERNAME", &c.Username)
	str(prefix+"_PASSWORD", &c.Password)
	if v := os.Getenv(prefix + "_QOS"); v != "" {
		// QoS above 2 is not a valid MQTT level
		if q, err := strconv.Atoi(v); err == nil && q >= 0 && q <= 2 {
			c.QoS = byte(q)
		}
	}
}

// Unset and unparsable variables leave the field untouched.

func str(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func integer(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func duration(key string, dst *time.Duration) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return
	}
	// bare numbers are seconds
	if n, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(n) * time.Second
	}
}
