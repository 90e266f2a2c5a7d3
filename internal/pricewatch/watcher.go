// Package pricewatch builds the price-change snapshot: last price plus the
// move over 15 minutes, one hour, since the Asia session open and 24 hours.
package pricewatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"

	"moonwatch/internal/logger"
	"moonwatch/internal/market"
	"moonwatch/internal/pkg/fanout"
	"moonwatch/internal/scheduler"
)

const (
	DefaultTimezone = "Asia/Shanghai"
	DefaultAsiaHour = 8
)

// Intervals are the candle sizes used for the short-term changes; each is
// looked up with a lookback of its own length.
var Intervals = []string{"15m", "1h"}

// Row is one symbol of the snapshot. Err is set when the symbol could not be
// priced; the change fields are then meaningless.
type Row struct {
	Symbol     string  `json:"symbol"`
	LastPrice  float64 `json:"last_price"`
	Change15m  float64 `json:"change_15m"`
	Change1h   float64 `json:"change_1h"`
	ChangeAsia float64 `json:"change_asia"`
	Change24h  float64 `json:"change_24h"`
	Err        error   `json:"-"`
}

func (r Row) Failed() bool { return r.Err != nil }

type SymbolError struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

type Snapshot struct {
	ID       string        `json:"id"`
	TakenAt  time.Time     `json:"taken_at"`
	AsiaOpen time.Time     `json:"asia_open"`
	Rows     []Row         `json:"rows"`
	Errors   []SymbolError `json:"errors,omitempty"`
}

type Options struct {
	Workers  int
	Timezone string
	AsiaHour int
}

// Watcher computes price snapshots for a fixed gateway.
type Watcher struct {
	gw       market.Gateway
	workers  int
	loc      *time.Location
	asiaHour int
	now      func() time.Time
}

func NewWatcher(gw market.Gateway, opts Options) (*Watcher, error) {
	if opts.Workers <= 0 {
		opts.Workers = fanout.DefaultWorkers()
	}
	if strings.TrimSpace(opts.Timezone) == "" {
		opts.Timezone = DefaultTimezone
	}
	if opts.AsiaHour < 0 || opts.AsiaHour > 23 {
		return nil, fmt.Errorf("asia open hour %d out of range [0,23]", opts.AsiaHour)
	}
	loc, err := time.LoadLocation(opts.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", opts.Timezone, err)
	}
	return &Watcher{gw: gw, workers: opts.Workers, loc: loc, asiaHour: opts.AsiaHour, now: time.Now}, nil
}

// AsiaOpen returns the most recent hour:00 in loc at or before now.
func AsiaOpen(now time.Time, loc *time.Location, hour int) time.Time {
	local := now.In(loc)
	open := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if local.Before(open) {
		open = open.AddDate(0, 0, -1)
	}
	return open
}

type klineKey struct {
	Symbol   string
	Interval string
}

// Snapshot prices every symbol. It does not fail as a whole: a ticker outage
// marks every row as failed and per-symbol kline failures fall back to the
// last price.
func (w *Watcher) Snapshot(ctx context.Context, symbols []string) *Snapshot {
	now := w.now()
	snap := &Snapshot{
		ID:       uuid.NewString(),
		TakenAt:  now,
		AsiaOpen: AsiaOpen(now, w.loc, w.asiaHour),
	}

	tickers, err := w.gw.Tickers(ctx)
	if err != nil {
		logger.Errorf("fetch tickers failed: %v", err)
		for _, sym := range symbols {
			snap.Rows = append(snap.Rows, Row{Symbol: sym, Err: err})
			snap.Errors = append(snap.Errors, SymbolError{Symbol: sym, Reason: err.Error()})
		}
		sortErrors(snap.Errors)
		return snap
	}
	byName := make(map[string]market.Ticker, len(tickers))
	for _, t := range tickers {
		byName[t.Symbol] = t
	}

	keys := make([]klineKey, 0, len(symbols)*len(Intervals))
	for _, sym := range symbols {
		for _, iv := range Intervals {
			keys = append(keys, klineKey{Symbol: sym, Interval: iv})
		}
	}
	klines := fanout.Collect(ctx, keys, w.workers, func(ctx context.Context, k klineKey) (market.Kline, error) {
		lookback, ok := scheduler.ParseIntervalDuration(k.Interval)
		if !ok {
			return market.Kline{}, fmt.Errorf("invalid interval %q", k.Interval)
		}
		return w.gw.RecentKline(ctx, k.Symbol, k.Interval, now.Add(-lookback))
	})
	asia := fanout.Collect(ctx, symbols, w.workers, func(ctx context.Context, sym string) (market.Kline, error) {
		return w.gw.KlineAt(ctx, sym, "1m", snap.AsiaOpen)
	})

	for _, sym := range symbols {
		t, ok := byName[sym]
		if !ok {
			err := fmt.Errorf("%s: %w", sym, market.ErrSymbolNotFound)
			snap.Rows = append(snap.Rows, Row{Symbol: sym, Err: err})
			snap.Errors = append(snap.Errors, SymbolError{Symbol: sym, Reason: "Ticker not found"})
			continue
		}
		row := Row{Symbol: sym, LastPrice: t.LastPrice, Change24h: t.ChangePct24h}
		row.Change15m = change(t.LastPrice, openOr(klines[klineKey{sym, "15m"}], t.LastPrice))
		row.Change1h = change(t.LastPrice, openOr(klines[klineKey{sym, "1h"}], t.LastPrice))
		row.ChangeAsia = change(t.LastPrice, openOr(asia[sym], 0))
		warnLookup(sym, "15m", klines[klineKey{sym, "15m"}])
		warnLookup(sym, "1h", klines[klineKey{sym, "1h"}])
		warnLookup(sym, "asia open", asia[sym])
		snap.Rows = append(snap.Rows, row)
	}
	sortErrors(snap.Errors)
	return snap
}

func sortErrors(errs []SymbolError) {
	sort.Slice(errs, func(i, j int) bool { return errs[i].Symbol < errs[j].Symbol })
}

func warnLookup(sym, label string, res fanout.Result[market.Kline]) {
	if res.Err != nil && !errors.Is(res.Err, market.ErrNoData) {
		logger.Warnf("%s %s kline lookup failed: %v", sym, label, res.Err)
	}
}

func openOr(res fanout.Result[market.Kline], def float64) float64 {
	if res.Err != nil || res.Value.Open <= 0 {
		return def
	}
	return res.Value.Open
}

// change is the percent move from open to last; 0 without a usable open.
func change(last, open float64) float64 {
	if open == 0 {
		return 0
	}
	return (last - open) / open * 100
}
