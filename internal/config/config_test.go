package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks the plain env names so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{envAPIKey, envAPISecret, envTelegramToken, envTelegramChatID, envWalletTarget} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaultsOnly(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "text", cfg.App.LogFormat)
	assert.Equal(t, "https://fapi.binance.com", cfg.Exchange.RESTBaseURL)
	assert.Equal(t, 15, cfg.Exchange.HTTPTimeoutSeconds)
	assert.Equal(t, 10.0, cfg.Exchange.RateLimitPerSecond)
	assert.Equal(t, 5000, cfg.Exchange.RecvWindowMS)
	assert.Equal(t, "config/coins.json", cfg.Monitor.CoinsPath)
	assert.Equal(t, 5, cfg.Monitor.RefreshSeconds)
	assert.Equal(t, "USDT", cfg.Monitor.QuoteAsset)
	assert.Equal(t, "Asia/Shanghai", cfg.Monitor.AsiaTimezone)
	assert.Equal(t, 8, cfg.Monitor.AsiaOpenHour)
	assert.Equal(t, ":9991", cfg.HTTP.Addr)
	assert.Zero(t, cfg.Monitor.WalletTarget)
}

func TestLoadIncludesAndExplicitKeys(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "common.yaml", "monitor:\n  refresh_seconds: 10\n  quote_asset: usdc\n")
	path := writeFile(t, dir, "config.yaml", `include:
  - common.yaml
exchange:
  rate_burst: 7
  rest_base_url: https://example.test/
monitor:
  refresh_seconds: 3
  asia_open_hour: 0
  wallet_target: 1500
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Exchange.RateBurst)
	assert.Equal(t, "https://example.test", cfg.Exchange.RESTBaseURL)
	assert.Equal(t, 3, cfg.Monitor.RefreshSeconds, "including file overrides the include")
	assert.Equal(t, "USDC", cfg.Monitor.QuoteAsset)
	assert.Equal(t, 0, cfg.Monitor.AsiaOpenHour, "explicit zero is kept")
	assert.Equal(t, 1500.0, cfg.Monitor.WalletTarget)
}

func TestLoadIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "include: [b.yaml]\n")
	path := writeFile(t, dir, "b.yaml", "include: [a.yaml]\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MOONWATCH_HTTP_ADDR", ":8080")
	t.Setenv("MOONWATCH_MONITOR_WORKERS", "4")
	t.Setenv(envAPIKey, "key")
	t.Setenv(envAPISecret, "secret")
	t.Setenv(envWalletTarget, "2000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 4, cfg.Monitor.Workers)
	assert.Equal(t, "key", cfg.Exchange.APIKey)
	assert.Equal(t, "secret", cfg.Exchange.APISecret)
	assert.Equal(t, 2000.0, cfg.Monitor.WalletTarget)
}

func TestConfigValuesBeatPlainEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(envAPIKey, "from-env")
	t.Setenv(envWalletTarget, "2000")
	path := writeFile(t, t.TempDir(), "config.yaml", "exchange:\n  api_key: from-file\nmonitor:\n  wallet_target: 900\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Exchange.APIKey)
	assert.Equal(t, 900.0, cfg.Monitor.WalletTarget)
}

func TestLoadBadWalletTargetEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(envWalletTarget, "lots")
	_, err := Load("")
	require.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"log level":      "app:\n  log_level: loud\n",
		"log format":     "app:\n  log_format: xml\n",
		"asia hour":      "monitor:\n  asia_open_hour: 24\n",
		"timezone":       "monitor:\n  asia_timezone: Mars/Olympus\n",
		"workers":        "monitor:\n  workers: -1\n",
		"wallet target":  "monitor:\n  wallet_target: -5\n",
		"recv window":    "exchange:\n  recv_window_ms: 90000\n",
		"telegram empty": "notify:\n  telegram:\n    enabled: true\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			path := writeFile(t, t.TempDir(), "config.yaml", body)
			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestTelegramFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(envTelegramToken, "123:abc")
	t.Setenv(envTelegramChatID, "42")
	path := writeFile(t, t.TempDir(), "config.yaml", "notify:\n  telegram:\n    enabled: true\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Notify.Telegram.Ready())
	assert.Equal(t, "42", cfg.Notify.Telegram.ChatID)
}

func TestRedacted(t *testing.T) {
	cfg := Config{}
	cfg.Exchange.APIKey = "key"
	cfg.Notify.Telegram.BotToken = "token"
	out := cfg.Redacted()
	assert.Equal(t, "***", out.Exchange.APIKey)
	assert.Equal(t, "", out.Exchange.APISecret)
	assert.Equal(t, "***", out.Notify.Telegram.BotToken)
	assert.Equal(t, "key", cfg.Exchange.APIKey)
}

func TestLoadDotEnvMissingFileTolerated(t *testing.T) {
	require.NoError(t, LoadDotEnv(writeFile(t, t.TempDir(), "x.env", "MOONWATCH_DOTENV_PROBE=1\n"), "/nonexistent/.env"))
}
