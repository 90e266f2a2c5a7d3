package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"moonwatch/internal/config"
	"moonwatch/internal/gateway/binance"
	"moonwatch/internal/gateway/notifier"
	"moonwatch/internal/logger"
	"moonwatch/internal/market"
	"moonwatch/internal/metrics"
	"moonwatch/internal/pricewatch"
	"moonwatch/internal/risk"
)

func provideCoins(cfg *config.Config) (*config.CoinsWatcher, error) {
	coins, err := config.LoadCoins(cfg.Monitor.CoinsPath)
	if err != nil {
		return nil, err
	}
	return config.NewCoinsWatcher(cfg.Monitor.CoinsPath, coins), nil
}

// provideGateway builds the exchange client and syncs its clock. A failed
// time sync means the exchange is unreachable and startup stops.
func provideGateway(ctx context.Context, cfg *config.Config) (*binance.Client, error) {
	ex := cfg.Exchange
	client, err := binance.New(binance.Config{
		RESTBaseURL: ex.RESTBaseURL,
		HTTPTimeout: time.Duration(ex.HTTPTimeoutSeconds) * time.Second,
		ProxyURL:    ex.ProxyURL,
		RecvWindow:  time.Duration(ex.RecvWindowMS) * time.Millisecond,
		QuoteAsset:  cfg.Monitor.QuoteAsset,
		RateLimit:   ex.RateLimitPerSecond,
		RateBurst:   ex.RateBurst,
	}, binance.Credentials{APIKey: ex.APIKey, APISecret: ex.APISecret})
	if err != nil {
		return nil, fmt.Errorf("exchange client: %w", err)
	}
	if err := client.SyncTime(ctx); err != nil {
		return nil, fmt.Errorf("exchange time sync: %w", err)
	}
	return client, nil
}

func provideEngine(gw market.Gateway, cfg *config.Config) *risk.Engine {
	return risk.NewEngine(gw, cfg.Monitor.Workers)
}

func providePriceWatcher(gw market.Gateway, cfg *config.Config) (*pricewatch.Watcher, error) {
	return pricewatch.NewWatcher(gw, pricewatch.Options{
		Workers:  cfg.Monitor.Workers,
		Timezone: cfg.Monitor.AsiaTimezone,
		AsiaHour: cfg.Monitor.AsiaOpenHour,
	})
}

func provideNotifier(cfg *config.Config) notifier.TextNotifier {
	tg := cfg.Notify.Telegram
	if !tg.Ready() {
		if tg.Enabled {
			logger.Warnf("telegram enabled without bot token or chat id; notifications disabled")
		}
		return notifier.Noop{}
	}
	return notifier.NewTelegram(tg.BotToken, tg.ChatID)
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

func provideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}
