// Package metrics exports snapshot results as Prometheus series.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"moonwatch/internal/pricewatch"
	"moonwatch/internal/report"
	"moonwatch/internal/risk"
)

const namespace = "moonwatch"

type Metrics struct {
	WalletBalance      prometheus.Gauge
	TotalEquity        prometheus.Gauge
	AvailableBalance   prometheus.Gauge
	UnrealizedPnL      prometheus.Gauge
	StopRiskUSD        prometheus.Gauge
	OpenPositions      prometheus.Gauge
	PositionPnLPct     *prometheus.GaugeVec
	PositionStopRisk   *prometheus.GaugeVec
	StopLookupFailures *prometheus.CounterVec
	PriceChange        *prometheus.GaugeVec
	PriceErrors        prometheus.Counter
	SnapshotDuration   *prometheus.HistogramVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	gauge := func(name, help string) prometheus.Gauge {
		return f.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Subsystem: "account", Name: name, Help: help})
	}
	return &Metrics{
		WalletBalance:    gauge("wallet_balance_usd", "Futures wallet balance in quote currency"),
		TotalEquity:      gauge("total_equity_usd", "Wallet balance plus unrealized PnL"),
		AvailableBalance: gauge("available_balance_usd", "Total equity minus margin used by open positions"),
		UnrealizedPnL:    gauge("unrealized_pnl_usd", "Unrealized PnL across the wallet"),
		StopRiskUSD:      gauge("stop_risk_usd", "Signed PnL if every active stop-loss fills"),
		OpenPositions:    gauge("open_positions", "Open positions on configured symbols"),
		PositionPnLPct: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "position", Name: "pnl_pct", Help: "Unrealized PnL as a percent of margin",
		}, []string{"symbol", "side"}),
		PositionStopRisk: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "position", Name: "stop_risk_usd", Help: "Signed PnL if the stop-loss fills",
		}, []string{"symbol"}),
		StopLookupFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "position", Name: "stop_lookup_failures_total", Help: "Stop-loss lookups that failed",
		}, []string{"symbol"}),
		PriceChange: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "price", Name: "change_pct", Help: "Price change in percent by window",
		}, []string{"symbol", "window"}),
		PriceErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "price", Name: "symbol_errors_total", Help: "Symbols that could not be priced",
		}),
		SnapshotDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "snapshot_duration_seconds", Help: "Time to build a snapshot",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"kind"}),
	}
}

// ResetSymbolSeries drops every per-symbol gauge so symbols removed from the
// coins file stop being exported. The next snapshot repopulates the rest.
func (m *Metrics) ResetSymbolSeries() {
	if m == nil {
		return
	}
	m.PositionPnLPct.Reset()
	m.PositionStopRisk.Reset()
	m.PriceChange.Reset()
}

// ObservePositions records an assembled position report.
func (m *Metrics) ObservePositions(rep *report.Report, elapsed time.Duration) {
	if m == nil || rep == nil {
		return
	}
	s := rep.Summary
	m.WalletBalance.Set(s.WalletBalance)
	m.TotalEquity.Set(s.TotalEquity)
	m.AvailableBalance.Set(s.AvailableBalance)
	m.UnrealizedPnL.Set(s.UnrealizedPnL)
	m.StopRiskUSD.Set(s.TotalStopRiskUSD)
	m.OpenPositions.Set(float64(s.OpenPositions))
	m.PositionPnLPct.Reset()
	m.PositionStopRisk.Reset()
	for _, row := range rep.Rows {
		if !row.Open() {
			continue
		}
		m.PositionPnLPct.WithLabelValues(row.Symbol, string(row.Side)).Set(row.PnLPct)
		if row.HasStop() {
			m.PositionStopRisk.WithLabelValues(row.Symbol).Set(row.StopRiskUSD)
		}
		if row.Stop.Status == risk.StopLookupFailed {
			m.StopLookupFailures.WithLabelValues(row.Symbol).Inc()
		}
	}
	m.SnapshotDuration.WithLabelValues("positions").Observe(elapsed.Seconds())
}

// ObservePrices records a price snapshot.
func (m *Metrics) ObservePrices(snap *pricewatch.Snapshot, elapsed time.Duration) {
	if m == nil || snap == nil {
		return
	}
	m.PriceChange.Reset()
	for _, row := range snap.Rows {
		if row.Failed() {
			continue
		}
		m.PriceChange.WithLabelValues(row.Symbol, "15m").Set(row.Change15m)
		m.PriceChange.WithLabelValues(row.Symbol, "1h").Set(row.Change1h)
		m.PriceChange.WithLabelValues(row.Symbol, "asia").Set(row.ChangeAsia)
		m.PriceChange.WithLabelValues(row.Symbol, "24h").Set(row.Change24h)
	}
	m.PriceErrors.Add(float64(len(snap.Errors)))
	m.SnapshotDuration.WithLabelValues("prices").Observe(elapsed.Seconds())
}
