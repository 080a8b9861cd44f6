package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:telegram-secret-token")
	t.Setenv("ETHERSCAN_API_KEY", "etherscan-key-value")
	t.Setenv("ALCHEMY_API_KEY", "alchemy-key-value")
	t.Setenv("CHAINBASE_API_KEY", "chainbase-key-value")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.WatchInterval)
	assert.Equal(t, 10, cfg.FetchCount)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Empty(t, cfg.PostgresDSN)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("WATCH_INTERVAL_SECONDS", "15")
	t.Setenv("DISCOVERY_FETCH_COUNT", "25")
	t.Setenv("HTTP_PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.WatchInterval)
	assert.Equal(t, 25, cfg.FetchCount)
	assert.Equal(t, 9100, cfg.HTTPPort)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}

func TestRedactedSummary_MasksSecrets(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	summary := cfg.RedactedSummary()
	assert.NotContains(t, summary, "telegram-secret-token")
	assert.NotContains(t, summary, "etherscan-key-value")
	assert.Contains(t, summary, "ethe****alue")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "(not set)", maskSecret(""))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "abcd****wxyz", maskSecret("abcdefgh-stuvwxyz"))
}
