package risk

import (
	"context"
	"errors"
	"sync"
	"time"

	"moonwatch/internal/config"
	"moonwatch/internal/market"
)

type fakeGateway struct {
	mu        sync.Mutex
	wallet    market.Wallet
	walletErr error
	positions []market.Position
	posErr    error
	orders    map[string][]market.Order
	orderErrs map[string]error
	calls     map[string]int
}

func (f *fakeGateway) WalletBalance(context.Context) (market.Wallet, error) {
	return f.wallet, f.walletErr
}

func (f *fakeGateway) OpenPositions(context.Context) ([]market.Position, error) {
	return f.positions, f.posErr
}

func (f *fakeGateway) OpenOrders(_ context.Context, symbol string) ([]market.Order, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[symbol]++
	f.mu.Unlock()
	if err := f.orderErrs[symbol]; err != nil {
		return nil, err
	}
	return f.orders[symbol], nil
}

func (f *fakeGateway) Tickers(context.Context) ([]market.Ticker, error) {
	return nil, errors.New("not used")
}

func (f *fakeGateway) RecentKline(context.Context, string, string, time.Time) (market.Kline, error) {
	return market.Kline{}, market.ErrNoData
}

func (f *fakeGateway) KlineAt(context.Context, string, string, time.Time) (market.Kline, error) {
	return market.Kline{}, market.ErrNoData
}

func sampleCoins() *config.Coins {
	coins, err := config.NewCoins(
		config.Coin{Symbol: "BTCUSDT", Leverage: 25, SLPercent: 2},
		config.Coin{Symbol: "ETHUSDT", Leverage: 20, SLPercent: 2.5},
		config.Coin{Symbol: "SOLUSDT", Leverage: 10, SLPercent: 3},
	)
	if err != nil {
		panic(err)
	}
	return coins
}

func samplePositions() []market.Position {
	return []market.Position{
		{
			Symbol: "BTCUSDT", PositionSide: "BOTH", Amount: "-0.135",
			EntryPrice: "110032", MarkPrice: "108757", Notional: "-14899.70",
			InitialMargin: "595.99", UnrealizedPnL: "174.73",
		},
		{
			Symbol: "ETHUSDT", PositionSide: "BOTH", Amount: "-4.5",
			EntryPrice: "2616.17", MarkPrice: "2550.10", Notional: "-11822.30",
			InitialMargin: "591.11", UnrealizedPnL: "306.29",
		},
		{
			Symbol: "SOLUSDT", PositionSide: "BOTH", Amount: "0",
			EntryPrice: "0", MarkPrice: "150.20", Notional: "0",
			InitialMargin: "0", UnrealizedPnL: "0",
		},
		{
			Symbol: "DOGEUSDT", PositionSide: "BOTH", Amount: "1000",
			EntryPrice: "0.2", MarkPrice: "0.21", Notional: "210",
			InitialMargin: "21", UnrealizedPnL: "10",
		},
	}
}

func sampleGateway() *fakeGateway {
	return &fakeGateway{
		wallet:    market.Wallet{Asset: "USDT", Balance: 1123.15, UnrealizedPnL: 290.29},
		positions: samplePositions(),
		orders: map[string][]market.Order{
			"BTCUSDT": {
				{Symbol: "BTCUSDT", Type: "LIMIT", StopPrice: "0"},
				{Symbol: "BTCUSDT", Type: "STOP_MARKET", ReduceOnly: true, StopPrice: "109970"},
			},
		},
	}
}
