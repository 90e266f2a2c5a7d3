package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"moonwatch/internal/market"
	"moonwatch/internal/pricewatch"
	"moonwatch/internal/report"
	"moonwatch/internal/risk"
)

func TestObservePositions(t *testing.T) {
	m := New(prometheus.NewRegistry())
	rep := &report.Report{
		Rows: []risk.Row{
			{Symbol: "BTCUSDT", Side: market.SideShort, PnLPct: 29.3, Margin: 595.99,
				Stop: risk.StopResult{Status: risk.StopActive, Price: 109970}, StopRiskUSD: 8.4},
			{Symbol: "ETHUSDT", Side: market.SideShort, PnLPct: 51.8, Margin: 591.11,
				Stop: risk.StopResult{Status: risk.StopLookupFailed}},
			{Symbol: "SOLUSDT", Placeholder: true},
		},
		Summary: report.Summary{WalletBalance: 1123.15, TotalEquity: 1413.44, AvailableBalance: 226.34, OpenPositions: 2, TotalStopRiskUSD: 8.4},
	}

	m.ObservePositions(rep, 300*time.Millisecond)
	m.ObservePositions(rep, 300*time.Millisecond)

	assert.Equal(t, 226.34, testutil.ToFloat64(m.AvailableBalance))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OpenPositions))
	assert.Equal(t, 8.4, testutil.ToFloat64(m.PositionStopRisk.WithLabelValues("BTCUSDT")))
	assert.Equal(t, 51.8, testutil.ToFloat64(m.PositionPnLPct.WithLabelValues("ETHUSDT", "SHORT")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StopLookupFailures.WithLabelValues("ETHUSDT")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.PositionPnLPct))
}

func TestObservePrices(t *testing.T) {
	m := New(prometheus.NewRegistry())
	snap := &pricewatch.Snapshot{
		Rows: []pricewatch.Row{
			{Symbol: "BTCUSDT", Change15m: 1, Change1h: -0.5, ChangeAsia: 2, Change24h: 3.2},
			{Symbol: "FOOUSDT", Err: errors.New("Ticker not found")},
		},
		Errors: []pricewatch.SymbolError{{Symbol: "FOOUSDT", Reason: "Ticker not found"}},
	}

	m.ObservePrices(snap, time.Second)

	assert.Equal(t, 3.2, testutil.ToFloat64(m.PriceChange.WithLabelValues("BTCUSDT", "24h")))
	assert.Equal(t, 4, testutil.CollectAndCount(m.PriceChange))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PriceErrors))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObservePositions(&report.Report{}, time.Second)
	m.ObservePrices(&pricewatch.Snapshot{}, time.Second)
}
