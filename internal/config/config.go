// Package config handles loading and validating configuration from
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the sentry daemon.
type Config struct {
	// Telegram
	TelegramBotToken string

	// Providers
	EtherscanAPIKey string
	AlchemyAPIKey   string
	ChainbaseAPIKey string
	EtherscanURL    string
	AlchemyURL      string
	ChainbaseURL    string
	HoneypotURL     string

	// Monitoring cadence
	WatchInterval     time.Duration
	DiscoveryInterval time.Duration

	// Discovery
	FactoryAddress string
	FetchCount     int

	// Alert journal (optional; empty disables the durable journal)
	PostgresDSN string

	// HTTP surface: /metrics, /health and the websocket feed
	HTTPPort int
}

// Load reads configuration from environment variables with fallback to a
// .env file. Priority: environment variables > .env file > defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),

		EtherscanAPIKey: getEnv("ETHERSCAN_API_KEY", ""),
		AlchemyAPIKey:   getEnv("ALCHEMY_API_KEY", ""),
		ChainbaseAPIKey: getEnv("CHAINBASE_API_KEY", ""),
		EtherscanURL:    getEnv("ETHERSCAN_URL", ""),
		AlchemyURL:      getEnv("ALCHEMY_URL", ""),
		ChainbaseURL:    getEnv("CHAINBASE_URL", ""),
		HoneypotURL:     getEnv("HONEYPOT_URL", ""),

		WatchInterval:     time.Duration(getEnvInt("WATCH_INTERVAL_SECONDS", 60)) * time.Second,
		DiscoveryInterval: time.Duration(getEnvInt("DISCOVERY_INTERVAL_SECONDS", 60)) * time.Second,

		FactoryAddress: getEnv("FACTORY_ADDRESS", ""),
		FetchCount:     getEnvInt("DISCOVERY_FETCH_COUNT", 10),

		PostgresDSN: getEnv("POSTGRES_DSN", ""),

		HTTPPort: getEnvInt("HTTP_PORT", 8080),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that required configuration values are set and valid.
func (c *Config) Validate() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.EtherscanAPIKey == "" {
		return fmt.Errorf("ETHERSCAN_API_KEY is required")
	}
	if c.AlchemyAPIKey == "" {
		return fmt.Errorf("ALCHEMY_API_KEY is required")
	}
	if c.ChainbaseAPIKey == "" {
		return fmt.Errorf("CHAINBASE_API_KEY is required")
	}
	if c.WatchInterval < time.Second {
		return fmt.Errorf("WATCH_INTERVAL_SECONDS must be at least 1")
	}
	if c.DiscoveryInterval < time.Second {
		return fmt.Errorf("DISCOVERY_INTERVAL_SECONDS must be at least 1")
	}
	if c.FetchCount < 1 {
		return fmt.Errorf("DISCOVERY_FETCH_COUNT must be at least 1")
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

// RedactedSummary returns a loggable one-line summary with secrets masked.
func (c *Config) RedactedSummary() string {
	return fmt.Sprintf(
		"config: etherscan=%s alchemy=%s chainbase=%s telegram=%s watch=%s discovery=%s http=%d journal=%t",
		maskSecret(c.EtherscanAPIKey), maskSecret(c.AlchemyAPIKey), maskSecret(c.ChainbaseAPIKey),
		maskSecret(c.TelegramBotToken), c.WatchInterval, c.DiscoveryInterval, c.HTTPPort,
		c.PostgresDSN != "",
	)
}

// maskSecret hides all but the first and last 4 characters of a secret.
func maskSecret(s string) string {
	if len(s) <= 8 {
		if len(s) == 0 {
			return "(not set)"
		}
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as an integer or returns a
// default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
