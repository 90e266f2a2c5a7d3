package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"
)

// validate rejects configs the monitor cannot run with.
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Exchange.validate(); err != nil {
		return err
	}
	if err := c.Monitor.validate(); err != nil {
		return err
	}
	return c.Notify.validate()
}

func (a AppConfig) validate() error {
	switch strings.ToLower(a.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("app.log_level %q is not one of debug|info|warn|error", a.LogLevel)
	}
	switch strings.ToLower(a.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("app.log_format %q is not one of text|json", a.LogFormat)
	}
	return nil
}

func (e ExchangeConfig) validate() error {
	if _, err := url.ParseRequestURI(e.RESTBaseURL); err != nil {
		return fmt.Errorf("exchange.rest_base_url: %w", err)
	}
	if e.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("exchange.http_timeout_seconds must be > 0")
	}
	if e.RateLimitPerSecond <= 0 {
		return fmt.Errorf("exchange.rate_limit_per_second must be > 0")
	}
	if e.RateBurst <= 0 {
		return fmt.Errorf("exchange.rate_burst must be > 0")
	}
	if e.RecvWindowMS <= 0 || e.RecvWindowMS > 60000 {
		return fmt.Errorf("exchange.recv_window_ms must be in (0,60000]")
	}
	if p := strings.TrimSpace(e.ProxyURL); p != "" {
		if _, err := url.Parse(p); err != nil {
			return fmt.Errorf("exchange.proxy_url: %w", err)
		}
	}
	return nil
}

func (m MonitorConfig) validate() error {
	if strings.TrimSpace(m.CoinsPath) == "" {
		return fmt.Errorf("monitor.coins_path is required")
	}
	if m.WalletTarget < 0 {
		return fmt.Errorf("monitor.wallet_target must be >= 0")
	}
	if m.RefreshSeconds <= 0 {
		return fmt.Errorf("monitor.refresh_seconds must be > 0")
	}
	if m.Workers < 0 {
		return fmt.Errorf("monitor.workers must be >= 0")
	}
	if m.AsiaOpenHour < 0 || m.AsiaOpenHour > 23 {
		return fmt.Errorf("monitor.asia_open_hour must be in [0,23]")
	}
	if _, err := time.LoadLocation(m.AsiaTimezone); err != nil {
		return fmt.Errorf("monitor.asia_timezone: %w", err)
	}
	return nil
}

func (n NotifyConfig) validate() error {
	if n.Telegram.Enabled && !n.Telegram.Ready() {
		return fmt.Errorf("notify.telegram enabled but bot_token or chat_id is empty")
	}
	return nil
}

// RefreshInterval is the live refresh period.
func (m MonitorConfig) RefreshInterval() time.Duration {
	return time.Duration(m.RefreshSeconds) * time.Second
}
