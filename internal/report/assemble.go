// Package report turns a risk snapshot into the position report: it pads,
// sorts and totals the rows and renders them for the terminal or a chat
// message.
package report

import (
	"moonwatch/internal/config"
	"moonwatch/internal/risk"
)

// Options selects how a position report is assembled and drawn.
type Options struct {
	Sort         SortSpec
	HideEmpty    bool
	Compact      bool
	WalletTarget float64
}

// Summary is the portfolio rollup shown above the table.
type Summary struct {
	WalletBalance    float64 `json:"wallet_balance"`
	UnrealizedPnL    float64 `json:"unrealized_pnl"`
	UnrealizedPct    float64 `json:"unrealized_pct"`
	TotalEquity      float64 `json:"total_equity"`
	UsedMargin       float64 `json:"used_margin"`
	AvailableBalance float64 `json:"available_balance"`
	TotalStopRiskUSD float64 `json:"total_stop_risk_usd"`
	StopRiskPct      float64 `json:"stop_risk_pct"`
	OpenPositions    int     `json:"open_positions"`
}

// Report is an assembled, sorted position report.
type Report struct {
	Snapshot *risk.Snapshot
	Rows     []risk.Row
	Summary  Summary
	Options  Options
}

// Assemble pads, sorts and totals a snapshot. The snapshot is not modified.
// Configured symbols whose position could not be read show up as error rows
// even when empty rows are hidden.
func Assemble(snap *risk.Snapshot, coins *config.Coins, opts Options) *Report {
	opts.Sort = PositionSort(opts.Sort)
	var rows []risk.Row
	if snap != nil {
		rows = append(rows, snap.Rows...)
		rows = AddErrors(rows, snap.Skipped, coins)
	}
	if !opts.HideEmpty {
		rows = Pad(rows, coins)
	}
	SortRows(rows, opts.Sort, coins.Order())
	return &Report{
		Snapshot: snap,
		Rows:     rows,
		Summary:  Summarize(snap, rows),
		Options:  opts,
	}
}

// AddErrors appends one error row per configured symbol that was skipped and
// has no open row. Duplicate rows of an open symbol add nothing.
func AddErrors(rows []risk.Row, skipped []risk.Skip, coins *config.Coins) []risk.Row {
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		seen[r.Symbol] = struct{}{}
	}
	for _, skip := range skipped {
		if _, ok := seen[skip.Symbol]; ok || !coins.Has(skip.Symbol) {
			continue
		}
		seen[skip.Symbol] = struct{}{}
		rows = append(rows, risk.ErrorRow(skip))
	}
	return rows
}

// Pad appends one placeholder row per configured symbol with no open row.
func Pad(rows []risk.Row, coins *config.Coins) []risk.Row {
	open := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		open[r.Symbol] = struct{}{}
	}
	for _, coin := range coins.List() {
		if _, ok := open[coin.Symbol]; ok {
			continue
		}
		rows = append(rows, risk.PlaceholderRow(coin))
	}
	return rows
}

// Summarize totals the open rows. Placeholder and error rows add nothing;
// rows without an active stop add nothing to stop risk.
func Summarize(snap *risk.Snapshot, rows []risk.Row) Summary {
	var s Summary
	if snap != nil {
		s.WalletBalance = snap.Wallet.Balance
		s.UnrealizedPnL = snap.Wallet.UnrealizedPnL
		s.TotalEquity = snap.Wallet.TotalEquity()
	}
	s.UnrealizedPct = RiskShare(s.UnrealizedPnL, s.WalletBalance)
	for _, r := range rows {
		if !r.Open() {
			continue
		}
		s.OpenPositions++
		s.UsedMargin += r.Margin
		if r.HasStop() {
			s.TotalStopRiskUSD += r.StopRiskUSD
		}
	}
	s.AvailableBalance = s.TotalEquity - s.UsedMargin
	s.StopRiskPct = RiskShare(s.TotalStopRiskUSD, s.WalletBalance)
	return s
}
