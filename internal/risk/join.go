// Package risk joins open positions, wallet balance and stop-loss orders into
// per-symbol risk rows.
package risk

import (
	"fmt"
	"math"
	"strings"

	"moonwatch/internal/config"
	"moonwatch/internal/logger"
	"moonwatch/internal/market"
	"moonwatch/internal/pkg/convert"
)

const (
	// marginFloor keeps leverage and PnL% finite for positions reporting zero margin.
	marginFloor = 1e-6

	// Placeholder sort keys. They are below any real value so flat symbols
	// always land at the bottom of a numeric sort.
	PlaceholderPnLPct   = -999
	PlaceholderStopRisk = -9999
)

// OpenPosition is a non-flat position with every numeric field parsed.
// Notional is the absolute position size in quote currency.
type OpenPosition struct {
	Symbol   string
	Side     market.Side
	Amount   float64
	Entry    float64
	Mark     float64
	Notional float64
	Margin   float64
	PnL      float64
}

// Skip records a position row that was left out of the report.
type Skip struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// Row is one display-ready line of the position report.
type Row struct {
	Symbol      string
	Side        market.Side
	Leverage    float64
	Entry       float64
	Mark        float64
	Margin      float64
	Notional    float64
	PnL         float64
	PnLPct      float64
	Placeholder bool

	// Error is set when a configured symbol's position row could not be read.
	Error string

	// MarginFraction is margin / wallet × 100; unset when the wallet is zero.
	MarginFraction    float64
	HasMarginFraction bool

	Stop            StopResult
	StopDistancePct float64
	StopRiskUSD     float64
}

// Errored reports whether the row stands for a position that could not be read.
func (r Row) Errored() bool {
	return r.Error != ""
}

// Open reports whether the row carries position numbers.
func (r Row) Open() bool {
	return !r.Placeholder && !r.Errored()
}

// HasStop reports whether the stop columns carry numbers.
func (r Row) HasStop() bool {
	return r.Open() && r.Stop.Active()
}

func (r Row) SortPnLPct() float64 {
	if !r.Open() {
		return PlaceholderPnLPct
	}
	return r.PnLPct
}

func (r Row) SortStopRisk() float64 {
	if !r.Open() {
		return PlaceholderStopRisk
	}
	if !r.HasStop() {
		return 0
	}
	return r.StopRiskUSD
}

// PlaceholderRow is the row shown for a configured symbol with no position.
func PlaceholderRow(coin config.Coin) Row {
	return Row{Symbol: coin.Symbol, Leverage: coin.Leverage, Placeholder: true}
}

// ErrorRow is the row shown for a configured symbol whose position could not
// be parsed.
func ErrorRow(skip Skip) Row {
	return Row{Symbol: skip.Symbol, Error: skip.Reason}
}

// Select keeps the non-flat positions of configured symbols. A row with a
// malformed field is skipped on its own; when the exchange reports a symbol
// twice the first non-flat row wins.
func Select(positions []market.Position, coins *config.Coins) ([]OpenPosition, []Skip) {
	var (
		open    []OpenPosition
		skipped []Skip
		seen    = make(map[string]struct{}, len(positions))
	)
	for _, raw := range positions {
		sym := strings.ToUpper(strings.TrimSpace(raw.Symbol))
		if !coins.Has(sym) {
			continue
		}
		pos, flat, err := parsePosition(sym, raw)
		if err != nil {
			logger.Warnf("skipping position %s: %v", sym, err)
			skipped = append(skipped, Skip{Symbol: sym, Reason: err.Error()})
			continue
		}
		if flat {
			continue
		}
		if _, dup := seen[sym]; dup {
			logger.Warnf("duplicate position row for %s (%s) ignored", sym, raw.PositionSide)
			skipped = append(skipped, Skip{Symbol: sym, Reason: "duplicate position row"})
			continue
		}
		seen[sym] = struct{}{}
		open = append(open, pos)
	}
	return open, skipped
}

func parsePosition(sym string, raw market.Position) (OpenPosition, bool, error) {
	amount, err := convert.Float("positionAmt", raw.Amount)
	if err != nil {
		return OpenPosition{}, false, err
	}
	if amount == 0 {
		return OpenPosition{}, true, nil
	}
	pos := OpenPosition{Symbol: sym, Amount: amount, Side: market.SideShort}
	if amount > 0 {
		pos.Side = market.SideLong
	}
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"entryPrice", raw.EntryPrice, &pos.Entry},
		{"markPrice", raw.MarkPrice, &pos.Mark},
		{"notional", raw.Notional, &pos.Notional},
		{"positionInitialMargin", raw.InitialMargin, &pos.Margin},
		{"unRealizedProfit", raw.UnrealizedPnL, &pos.PnL},
	}
	for _, f := range fields {
		v, err := convert.Float(f.name, f.raw)
		if err != nil {
			return OpenPosition{}, false, err
		}
		*f.dst = v
	}
	if pos.Entry <= 0 {
		return OpenPosition{}, false, fmt.Errorf("entryPrice: must be positive, got %v", pos.Entry)
	}
	if pos.Margin < 0 {
		return OpenPosition{}, false, fmt.Errorf("positionInitialMargin: negative value %v", pos.Margin)
	}
	pos.Notional = math.Abs(pos.Notional)
	return pos, false, nil
}

// Join builds one row per open position. Rows come back in input order; a
// position without a stop result is treated as a failed lookup.
func Join(open []OpenPosition, stops map[string]StopResult, wallet market.Wallet) []Row {
	rows := make([]Row, 0, len(open))
	for _, pos := range open {
		stop, ok := stops[pos.Symbol]
		if !ok {
			stop = StopResult{Symbol: pos.Symbol, Status: StopLookupFailed, Err: fmt.Errorf("no stop lookup result")}
		}
		rows = append(rows, buildRow(pos, stop, wallet))
	}
	return rows
}

func buildRow(pos OpenPosition, stop StopResult, wallet market.Wallet) Row {
	margin := math.Max(pos.Margin, marginFloor)
	row := Row{
		Symbol:   pos.Symbol,
		Side:     pos.Side,
		Leverage: math.RoundToEven(pos.Notional / margin),
		Entry:    pos.Entry,
		Mark:     pos.Mark,
		Margin:   pos.Margin,
		Notional: pos.Notional,
		PnL:      pos.PnL,
		PnLPct:   pos.PnL / margin * 100,
		Stop:     stop,
	}
	if wallet.Balance != 0 {
		row.MarginFraction = pos.Margin / wallet.Balance * 100
		row.HasMarginFraction = true
	}
	if stop.Active() {
		row.StopDistancePct = StopDistance(pos.Side, pos.Entry, stop.Price)
		row.StopRiskUSD = pos.Notional * row.StopDistancePct / 100
	}
	return row
}

// StopDistance is the signed move from entry to stop in percent of entry.
// It is negative when the stop sits on the losing side of the entry.
func StopDistance(side market.Side, entry, stop float64) float64 {
	if entry == 0 {
		return 0
	}
	if side == market.SideShort {
		return (entry - stop) / entry * 100
	}
	return (stop - entry) / entry * 100
}
