package binance

import (
	"testing"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletFromBalances(t *testing.T) {
	balances := []*futures.Balance{
		{Asset: "BNB", Balance: "1.5"},
		nil,
		{Asset: "USDT", Balance: "1123.15", CrossUnPnl: "290.29"},
	}
	w, err := walletFromBalances(balances, "USDT")
	require.NoError(t, err)
	assert.Equal(t, 1123.15, w.Balance)
	assert.Equal(t, 290.29, w.UnrealizedPnL)
	assert.InDelta(t, 1413.44, w.TotalEquity(), 1e-9)

	empty, err := walletFromBalances(balances, "USDC")
	require.NoError(t, err)
	assert.Zero(t, empty.Balance)
	assert.Equal(t, "USDC", empty.Asset)

	_, err = walletFromBalances([]*futures.Balance{{Asset: "USDT", Balance: "oops"}}, "USDT")
	assert.Error(t, err)
}

func TestMergePositions(t *testing.T) {
	risks := []*futures.PositionRisk{
		{Symbol: "BTCUSDT", PositionSide: "BOTH", PositionAmt: "-0.135", EntryPrice: "110032", MarkPrice: "108757", Notional: "-14899.70", UnRealizedProfit: "174.73", Leverage: "25"},
		{Symbol: "ETHUSDT", PositionSide: "BOTH", PositionAmt: "-4.5", EntryPrice: "2616.17", MarkPrice: "2550.10", Notional: "-11822.30", UnRealizedProfit: "306.29", Leverage: "20"},
		{Symbol: "XRPUSDT", PositionSide: "LONG", PositionAmt: "10", Notional: "25", Leverage: "x"},
	}
	margins := []*futures.AccountPosition{
		{Symbol: "BTCUSDT", PositionSide: "BOTH", PositionInitialMargin: "595.99"},
	}

	got := mergePositions(risks, margins)

	require.Len(t, got, 3)
	assert.Equal(t, "595.99", got[0].InitialMargin)
	assert.Equal(t, "-0.135", got[0].Amount)
	assert.Equal(t, "BOTH", got[0].PositionSide)
	assert.Equal(t, "591.115", got[1].InitialMargin, "derived from notional / leverage")
	assert.Empty(t, got[2].InitialMargin)
}

func TestConvertOrders(t *testing.T) {
	orders := convertOrders([]*futures.Order{
		{Symbol: "BTCUSDT", Type: "STOP_MARKET", ReduceOnly: true, StopPrice: "109970"},
		nil,
		{Symbol: "BTCUSDT", Type: "LIMIT", Price: "100000"},
	})
	require.Len(t, orders, 2)
	assert.Equal(t, "STOP_MARKET", orders[0].Type)
	assert.True(t, orders[0].ReduceOnly)
	assert.Equal(t, "109970", orders[0].StopPrice)
}

func TestConvertTickersSkipsMalformed(t *testing.T) {
	tickers := convertTickers([]*futures.PriceChangeStats{
		{Symbol: "BTCUSDT", LastPrice: "101.5", PriceChangePercent: "3.2"},
		{Symbol: "BADUSDT", LastPrice: ""},
	})
	require.Len(t, tickers, 1)
	assert.Equal(t, 101.5, tickers[0].LastPrice)
	assert.Equal(t, 3.2, tickers[0].ChangePct24h)
}

func TestConvertKlines(t *testing.T) {
	open := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	got := convertKlines([]*futures.Kline{{
		OpenTime: open.UnixMilli(), CloseTime: open.Add(time.Minute).UnixMilli() - 1,
		Open: "95", High: "96", Low: "94", Close: "95.5", Volume: "12",
	}})
	require.Len(t, got, 1)
	assert.Equal(t, open, got[0].OpenTime)
	assert.Equal(t, 95.0, got[0].Open)
	assert.Equal(t, 95.5, got[0].Close)
}

func TestConfigDefaults(t *testing.T) {
	cfg := (&Config{RESTBaseURL: " https://testnet.binancefuture.com/ ", QuoteAsset: "usdc"}).withDefaults()
	assert.Equal(t, "https://testnet.binancefuture.com", cfg.RESTBaseURL)
	assert.Equal(t, "USDC", cfg.QuoteAsset)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 5*time.Second, cfg.RecvWindow)
	assert.Equal(t, 10.0, cfg.RateLimit)

	assert.False(t, Credentials{APIKey: "k"}.Valid())
	assert.True(t, Credentials{APIKey: "k", APISecret: "s"}.Valid())
}
