package config

import "strings"

// Config is the moonwatch application config. The yaml tags only drive the
// "config" subcommand dump.
type Config struct {
	App      AppConfig      `toml:"app" yaml:"app"`
	Exchange ExchangeConfig `toml:"exchange" yaml:"exchange"`
	Monitor  MonitorConfig  `toml:"monitor" yaml:"monitor"`
	Notify   NotifyConfig   `toml:"notify" yaml:"notify"`
	HTTP     HTTPConfig     `toml:"http" yaml:"http"`
}

type AppConfig struct {
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
	LogPath   string `toml:"log_path" yaml:"log_path,omitempty"`
}

// ExchangeConfig configures the futures REST gateway.
type ExchangeConfig struct {
	RESTBaseURL        string  `toml:"rest_base_url" yaml:"rest_base_url"`
	HTTPTimeoutSeconds int     `toml:"http_timeout_seconds" yaml:"http_timeout_seconds"`
	RateLimitPerSecond float64 `toml:"rate_limit_per_second" yaml:"rate_limit_per_second"`
	RateBurst          int     `toml:"rate_burst" yaml:"rate_burst"`
	ProxyURL           string  `toml:"proxy_url" yaml:"proxy_url,omitempty"`
	RecvWindowMS       int     `toml:"recv_window_ms" yaml:"recv_window_ms"`
	APIKey             string  `toml:"api_key" yaml:"api_key,omitempty"`
	APISecret          string  `toml:"api_secret" yaml:"api_secret,omitempty"`
}

type MonitorConfig struct {
	CoinsPath      string  `toml:"coins_path" yaml:"coins_path"`
	WalletTarget   float64 `toml:"wallet_target" yaml:"wallet_target"`
	RefreshSeconds int     `toml:"refresh_seconds" yaml:"refresh_seconds"`
	// Workers bounds per-symbol fan-out; 0 picks from the CPU count.
	Workers      int    `toml:"workers" yaml:"workers"`
	QuoteAsset   string `toml:"quote_asset" yaml:"quote_asset"`
	AsiaTimezone string `toml:"asia_timezone" yaml:"asia_timezone"`
	AsiaOpenHour int    `toml:"asia_open_hour" yaml:"asia_open_hour"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram" yaml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled" yaml:"enabled"`
	BotToken string `toml:"bot_token" yaml:"bot_token,omitempty"`
	ChatID   string `toml:"chat_id" yaml:"chat_id,omitempty"`
}

// Ready reports whether a send can be attempted.
func (t TelegramConfig) Ready() bool {
	return strings.TrimSpace(t.BotToken) != "" && strings.TrimSpace(t.ChatID) != ""
}

type HTTPConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

const redacted = "***"

// Redacted returns a copy with secrets masked.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return ""
		}
		return redacted
	}
	c.Exchange.APIKey = mask(c.Exchange.APIKey)
	c.Exchange.APISecret = mask(c.Exchange.APISecret)
	c.Notify.Telegram.BotToken = mask(c.Notify.Telegram.BotToken)
	return c
}

// keySet tracks the config paths explicitly set by a file or the environment.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
