// Package app wires the gateway, engines, notifier and metrics together and
// runs the position, price and serve modes.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"moonwatch/internal/config"
	"moonwatch/internal/gateway/notifier"
	"moonwatch/internal/metrics"
	"moonwatch/internal/pricewatch"
	"moonwatch/internal/report"
	"moonwatch/internal/risk"
	"moonwatch/internal/scheduler"
	httpapi "moonwatch/internal/transport/http"
)

// Frame titles.
const (
	TitlePriceSnapshot    = "📈 Crypto Price Snapshot"
	TitlePriceLive        = "📈 Live Crypto Price Monitor"
	TitlePositionSnapshot = "📈 Trades Position Snapshot"
	TitlePositionLive     = "📈 Live Trades Position Monitor"
)

// ErrAllFailed is returned by single-shot runs when no symbol could be
// fetched at all.
var ErrAllFailed = errors.New("every symbol failed")

// App holds the wired dependencies for one process.
type App struct {
	Config   *config.Config
	Coins    *config.CoinsWatcher
	Engine   *risk.Engine
	Prices   *pricewatch.Watcher
	Notifier notifier.TextNotifier
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	Out io.Writer
	now func() time.Time
}

func NewApp(
	cfg *config.Config,
	coins *config.CoinsWatcher,
	engine *risk.Engine,
	prices *pricewatch.Watcher,
	n notifier.TextNotifier,
	reg *prometheus.Registry,
	m *metrics.Metrics,
) *App {
	if coins != nil && m != nil {
		coins.OnChange(func(*config.Coins) { m.ResetSymbolSeries() })
	}
	return &App{
		Config:   cfg,
		Coins:    coins,
		Engine:   engine,
		Prices:   prices,
		Notifier: n,
		Metrics:  m,
		Registry: reg,
		Out:      os.Stdout,
		now:      time.Now,
	}
}

// RunOptions selects how a mode runs.
type RunOptions struct {
	Sort     report.SortSpec
	Live     bool
	Interval time.Duration
	Notify   bool

	// position mode only
	HideEmpty bool
	Compact   bool
}

func (o RunOptions) reportOptions(target float64) report.Options {
	return report.Options{
		Sort:         o.Sort,
		HideEmpty:    o.HideEmpty,
		Compact:      o.Compact,
		WalletTarget: target,
	}
}

// PositionReport takes a fresh snapshot and assembles it. A zero
// WalletTarget falls back to the configured one.
func (a *App) PositionReport(ctx context.Context, opts report.Options) (*report.Report, error) {
	if opts.WalletTarget <= 0 {
		opts.WalletTarget = a.Config.Monitor.WalletTarget
	}
	coins := a.Coins.Coins()
	start := a.now()
	snap, err := a.Engine.Snapshot(ctx, coins)
	if err != nil {
		return nil, err
	}
	rep := report.Assemble(snap, coins, opts)
	a.Metrics.ObservePositions(rep, a.now().Sub(start))
	return rep, nil
}

// PriceSnapshot prices every configured symbol. Per-symbol failures are
// carried in the snapshot.
func (a *App) PriceSnapshot(ctx context.Context) (*pricewatch.Snapshot, error) {
	start := a.now()
	snap := a.Prices.Snapshot(ctx, a.Coins.Coins().Order())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.Metrics.ObservePrices(snap, a.now().Sub(start))
	return snap, nil
}

// RunPositions prints one position report, or refreshes it until ctx ends.
func (a *App) RunPositions(ctx context.Context, opts RunOptions) error {
	ropts := opts.reportOptions(0)
	if !opts.Live {
		rep, err := a.PositionReport(ctx, ropts)
		if err != nil {
			return fmt.Errorf("position snapshot: %w", err)
		}
		a.printf("%s\n\n%s\n", TitlePositionSnapshot, rep.Render())
		if opts.Notify {
			notifier.Deliver(ctx, a.Notifier, report.Digest(rep))
		}
		return nil
	}
	a.Coins.Watch()
	a.live(ctx, opts.Interval, func(ctx context.Context) error {
		rep, err := a.PositionReport(ctx, ropts)
		if err != nil {
			a.printf("%s\n\n❌ %v\n", TitlePositionLive, err)
			return err
		}
		a.printf("%s\n\n%s\n", TitlePositionLive, rep.Render())
		return nil
	})
	return nil
}

// RunPrices prints one price snapshot, or refreshes it until ctx ends.
func (a *App) RunPrices(ctx context.Context, opts RunOptions) error {
	spec := pricewatch.NormalizeSort(opts.Sort)
	if !opts.Live {
		snap, err := a.PriceSnapshot(ctx)
		if err != nil {
			return fmt.Errorf("price snapshot: %w", err)
		}
		a.printf("%s", pricewatch.Render(TitlePriceSnapshot, snap, spec))
		if opts.Notify {
			notifier.Deliver(ctx, a.Notifier, pricewatch.Digest(snap, spec))
		}
		if allFailed(snap) {
			return ErrAllFailed
		}
		return nil
	}
	a.Coins.Watch()
	a.live(ctx, opts.Interval, func(ctx context.Context) error {
		snap, err := a.PriceSnapshot(ctx)
		if err != nil {
			return err
		}
		a.printf("%s", pricewatch.Render(TitlePriceLive, snap, spec))
		return nil
	})
	return nil
}

// Serve runs the HTTP API until ctx ends, following coins file edits.
func (a *App) Serve(ctx context.Context) error {
	srv, err := httpapi.NewServer(httpapi.ServerConfig{
		Addr:      a.Config.HTTP.Addr,
		Positions: a,
		Prices:    a,
		Gatherer:  a.Registry,
	})
	if err != nil {
		return err
	}
	a.Coins.Watch()
	return srv.Start(ctx)
}

func (a *App) live(ctx context.Context, interval time.Duration, frame func(context.Context) error) {
	if interval <= 0 {
		interval = a.Config.Monitor.RefreshInterval()
	}
	loop := scheduler.NewLoop(ctx, interval)
	loop.Clear = true
	loop.Out = a.Out
	loop.Start(frame)
	a.printf("\nExiting gracefully. Goodbye!\n")
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.Out, format, args...)
}

func allFailed(snap *pricewatch.Snapshot) bool {
	if snap == nil || len(snap.Rows) == 0 {
		return false
	}
	for _, r := range snap.Rows {
		if !r.Failed() {
			return false
		}
	}
	return true
}
