// Package market defines the exchange-facing data shapes and the Gateway
// capability the monitors consume.
package market

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoData is returned when a query succeeded but produced nothing usable.
	ErrNoData = errors.New("market: no data")
	// ErrSymbolNotFound marks a symbol the exchange does not know.
	ErrSymbolNotFound = errors.New("market: symbol not found")
)

type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Position is one raw position row as reported by the exchange. Numeric
// fields stay in their wire form so a malformed row can be rejected on its
// own without failing the batch.
type Position struct {
	Symbol        string
	PositionSide  string // BOTH in one-way mode, LONG/SHORT in hedge mode
	Amount        string // signed, 0 means flat
	EntryPrice    string
	MarkPrice     string
	Notional      string // signed
	InitialMargin string
	UnrealizedPnL string
}

// Order is the subset of an open order needed to detect protective stops.
type Order struct {
	Symbol        string
	Type          string
	ReduceOnly    bool
	ClosePosition bool
	StopPrice     string
}

// Wallet is the futures wallet in the quote asset.
type Wallet struct {
	Asset         string
	Balance       float64
	UnrealizedPnL float64
}

func (w Wallet) TotalEquity() float64 {
	return w.Balance + w.UnrealizedPnL
}

type Ticker struct {
	Symbol       string
	LastPrice    float64
	ChangePct24h float64
}

type Kline struct {
	OpenTime  time.Time
	CloseTime time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// OrderSource is the part of the gateway used for stop-loss lookups.
type OrderSource interface {
	OpenOrders(ctx context.Context, symbol string) ([]Order, error)
}

// KlineSource is the part of the gateway used by the price snapshot.
// RecentKline returns the latest candle opened at or after since; KlineAt
// returns the first one. Both return ErrNoData when there is none.
type KlineSource interface {
	RecentKline(ctx context.Context, symbol, interval string, since time.Time) (Kline, error)
	KlineAt(ctx context.Context, symbol, interval string, at time.Time) (Kline, error)
}

// Gateway is the read-only account and market surface of one exchange account.
type Gateway interface {
	OrderSource
	KlineSource
	WalletBalance(ctx context.Context) (Wallet, error)
	OpenPositions(ctx context.Context) ([]Position, error)
	Tickers(ctx context.Context) ([]Ticker, error)
}
