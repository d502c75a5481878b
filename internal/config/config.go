package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Token    TokenConfig    `mapstructure:"token"`
	Issuance IssuanceConfig `mapstructure:"issuance"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	AdminAPI AdminAPIConfig `mapstructure:"admin_api"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// BaseURL is the externally reachable base URL embedded in QR codes
	// (e.g. "http://192.168.1.10:8080" when serving a classroom LAN).
	BaseURL string `mapstructure:"base_url"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TokenConfig holds attendance token configuration
type TokenConfig struct {
	// TTL is how long a token stays redeemable after issuance
	TTL time.Duration `mapstructure:"ttl"`
	// ValueLength is the number of random alphanumeric characters per token
	ValueLength int `mapstructure:"value_length"`
}

// IssuanceConfig holds rate limiting for the QR issuance endpoint
type IssuanceConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

// PolicyConfig holds the fail-open defaults for admission policy
type PolicyConfig struct {
	MaxUsesPerDevice    int  `mapstructure:"max_uses_per_device"`
	TimeWindowMinutes   int  `mapstructure:"time_window_minutes"`
	FingerprintBlocking bool `mapstructure:"fingerprint_blocking"`
}

// AdminAPIConfig holds rate limiting for the administrative API
type AdminAPIConfig struct {
	RateLimitEnabled bool          `mapstructure:"rate_limit_enabled"`
	RateLimit        int           `mapstructure:"rate_limit"`
	RateWindow       time.Duration `mapstructure:"rate_window"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/attendance")

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Bind environment variables
	v.SetEnvPrefix("ATTENDANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "attendance")
	v.SetDefault("database.user", "attendance")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 25)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Token defaults
	v.SetDefault("token.ttl", "1h")
	v.SetDefault("token.value_length", 20)

	// Issuance rate limit defaults
	v.SetDefault("issuance.max_requests", 5)
	v.SetDefault("issuance.window", "60s")

	// Admission policy defaults (used until an explicit policy is saved)
	v.SetDefault("policy.max_uses_per_device", 1)
	v.SetDefault("policy.time_window_minutes", 1440)
	v.SetDefault("policy.fingerprint_blocking", true)

	// Admin API defaults
	v.SetDefault("admin_api.rate_limit_enabled", true)
	v.SetDefault("admin_api.rate_limit", 60)
	v.SetDefault("admin_api.rate_window", "1m")
}
