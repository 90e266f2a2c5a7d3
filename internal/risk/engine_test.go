package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"moonwatch/internal/market"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) WalletBalance(ctx context.Context) (market.Wallet, error) {
	args := m.Called(ctx)
	return args.Get(0).(market.Wallet), args.Error(1)
}

func (m *mockGateway) OpenPositions(ctx context.Context) ([]market.Position, error) {
	args := m.Called(ctx)
	positions, _ := args.Get(0).([]market.Position)
	return positions, args.Error(1)
}

func (m *mockGateway) OpenOrders(ctx context.Context, symbol string) ([]market.Order, error) {
	args := m.Called(ctx, symbol)
	orders, _ := args.Get(0).([]market.Order)
	return orders, args.Error(1)
}

func (m *mockGateway) Tickers(ctx context.Context) ([]market.Ticker, error) {
	args := m.Called(ctx)
	tickers, _ := args.Get(0).([]market.Ticker)
	return tickers, args.Error(1)
}

func (m *mockGateway) RecentKline(ctx context.Context, symbol, interval string, since time.Time) (market.Kline, error) {
	args := m.Called(ctx, symbol, interval, since)
	return args.Get(0).(market.Kline), args.Error(1)
}

func (m *mockGateway) KlineAt(ctx context.Context, symbol, interval string, at time.Time) (market.Kline, error) {
	args := m.Called(ctx, symbol, interval, at)
	return args.Get(0).(market.Kline), args.Error(1)
}

func TestEngineSnapshot(t *testing.T) {
	gw := new(mockGateway)
	gw.On("WalletBalance", mock.Anything).Return(market.Wallet{Asset: "USDT", Balance: 1123.15, UnrealizedPnL: 290.29}, nil)
	gw.On("OpenPositions", mock.Anything).Return(samplePositions(), nil)
	gw.On("OpenOrders", mock.Anything, "BTCUSDT").Return([]market.Order{
		{Symbol: "BTCUSDT", Type: "STOP_MARKET", ReduceOnly: true, StopPrice: "109970"},
	}, nil)
	gw.On("OpenOrders", mock.Anything, "ETHUSDT").Return(nil, errors.New("502 bad gateway"))

	snap, err := NewEngine(gw, 2).Snapshot(context.Background(), sampleCoins())
	require.NoError(t, err)

	assert.NotEmpty(t, snap.ID)
	assert.InDelta(t, 1413.44, snap.Wallet.TotalEquity(), 1e-9)
	require.Len(t, snap.Rows, 2)
	assert.Equal(t, StopActive, snap.Rows[0].Stop.Status)
	assert.Equal(t, StopLookupFailed, snap.Rows[1].Stop.Status)
	assert.Equal(t, 1, snap.LookupFailures())
	gw.AssertExpectations(t)
	gw.AssertNotCalled(t, "OpenOrders", mock.Anything, "SOLUSDT")
	gw.AssertNotCalled(t, "OpenOrders", mock.Anything, "DOGEUSDT")
}

func TestEngineSnapshotWalletFailureIsFatal(t *testing.T) {
	gw := new(mockGateway)
	gw.On("WalletBalance", mock.Anything).Return(market.Wallet{}, errors.New("invalid api key"))
	gw.On("OpenPositions", mock.Anything).Return(samplePositions(), nil).Maybe()

	snap, err := NewEngine(gw, 1).Snapshot(context.Background(), sampleCoins())
	assert.Nil(t, snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wallet balance")
}

func TestEngineSnapshotNoOpenPositions(t *testing.T) {
	gw := sampleGateway()
	gw.positions = nil

	snap, err := NewEngine(gw, 0).Snapshot(context.Background(), sampleCoins())
	require.NoError(t, err)
	assert.Empty(t, snap.Rows)
	assert.Empty(t, gw.calls)
}
