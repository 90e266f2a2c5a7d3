package config

import "strings"

const (
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
	defaultRESTBaseURL    = "https://fapi.binance.com"
	defaultHTTPTimeout    = 15
	defaultRateLimit      = 10
	defaultRateBurst      = 5
	defaultRecvWindowMS   = 5000
	defaultCoinsPath      = "config/coins.json"
	defaultRefreshSeconds = 5
	defaultQuoteAsset     = "USDT"
	defaultAsiaTimezone   = "Asia/Shanghai"
	defaultAsiaOpenHour   = 8
	defaultHTTPAddr       = ":9991"
)

// applyDefaults fills every field the sources left unset.
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Exchange.applyDefaults(keys)
	c.Monitor.applyDefaults(keys)
	c.HTTP.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("app.log_level", &a.LogLevel, defaultLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultLogFormat),
	)
}

func (e *ExchangeConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("exchange.rest_base_url", &e.RESTBaseURL, defaultRESTBaseURL),
		intFieldDefault("exchange.http_timeout_seconds", &e.HTTPTimeoutSeconds, defaultHTTPTimeout),
		intFieldDefault("exchange.rate_burst", &e.RateBurst, defaultRateBurst),
		intFieldDefault("exchange.recv_window_ms", &e.RecvWindowMS, defaultRecvWindowMS),
		fieldDefault{
			key:   "exchange.rate_limit_per_second",
			need:  func() bool { return e.RateLimitPerSecond <= 0 },
			apply: func() { e.RateLimitPerSecond = defaultRateLimit },
		},
	)
	e.RESTBaseURL = strings.TrimRight(strings.TrimSpace(e.RESTBaseURL), "/")
}

func (m *MonitorConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("monitor.coins_path", &m.CoinsPath, defaultCoinsPath),
		intFieldDefault("monitor.refresh_seconds", &m.RefreshSeconds, defaultRefreshSeconds),
		stringFieldDefault("monitor.quote_asset", &m.QuoteAsset, defaultQuoteAsset),
		stringFieldDefault("monitor.asia_timezone", &m.AsiaTimezone, defaultAsiaTimezone),
	)
	// 0 is a valid hour, so only an absent key takes the default.
	if !keys.isSet("monitor.asia_open_hour") {
		m.AsiaOpenHour = defaultAsiaOpenHour
	}
	m.QuoteAsset = strings.ToUpper(strings.TrimSpace(m.QuoteAsset))
}

func (h *HTTPConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys, stringFieldDefault("http.addr", &h.Addr, defaultHTTPAddr))
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key:   key,
		need:  func() bool { return strings.TrimSpace(*target) == "" },
		apply: func() { *target = def },
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:   key,
		need:  func() bool { return *target <= 0 },
		apply: func() { *target = def },
	}
}
