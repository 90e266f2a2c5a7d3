package risk

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moonwatch/internal/market"
)

func TestFindStop(t *testing.T) {
	tests := []struct {
		name   string
		orders []market.Order
		price  float64
		found  bool
	}{
		{"no orders", nil, 0, false},
		{"stop market reduce only", []market.Order{{Type: "STOP_MARKET", ReduceOnly: true, StopPrice: "109970"}}, 109970, true},
		{"stop limit reduce only", []market.Order{{Type: "STOP", ReduceOnly: true, StopPrice: "2.5"}}, 2.5, true},
		{"close position counts", []market.Order{{Type: "STOP_MARKET", ClosePosition: true, StopPrice: "95"}}, 95, true},
		{"not reduce only", []market.Order{{Type: "STOP_MARKET", StopPrice: "100"}}, 0, false},
		{"take profit ignored", []market.Order{{Type: "TAKE_PROFIT_MARKET", ReduceOnly: true, StopPrice: "100"}}, 0, false},
		{"malformed price skipped", []market.Order{
			{Type: "STOP_MARKET", ReduceOnly: true, StopPrice: "abc"},
			{Type: "STOP_MARKET", ReduceOnly: true, StopPrice: "90"},
		}, 90, true},
		{"first qualifying wins", []market.Order{
			{Type: "STOP_MARKET", ReduceOnly: true, StopPrice: "80"},
			{Type: "STOP_MARKET", ReduceOnly: true, StopPrice: "90"},
		}, 80, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, ok := FindStop(tt.orders)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.price, price)
		})
	}
}

func TestLookupStopThreeStates(t *testing.T) {
	gw := sampleGateway()
	gw.orderErrs = map[string]error{"ETHUSDT": errors.New("timeout")}
	ctx := context.Background()

	active := LookupStop(ctx, gw, "BTCUSDT")
	assert.Equal(t, StopActive, active.Status)
	assert.Equal(t, 109970.0, active.Price)
	assert.True(t, active.Active())

	failed := LookupStop(ctx, gw, "ETHUSDT")
	assert.Equal(t, StopLookupFailed, failed.Status)
	require.Error(t, failed.Err)
	assert.Contains(t, failed.Err.Error(), "timeout")

	none := LookupStop(ctx, gw, "SOLUSDT")
	assert.Equal(t, StopNone, none.Status)
	assert.False(t, none.Active())
}

func TestFetchStopsCoversEverySymbol(t *testing.T) {
	gw := sampleGateway()
	gw.orderErrs = map[string]error{"XRPUSDT": errors.New("rate limited")}
	symbols := []string{"BTCUSDT", "ETHUSDT", "XRPUSDT", "BTCUSDT"}

	stops := FetchStops(context.Background(), gw, symbols, 2)

	require.Len(t, stops, 3)
	assert.Equal(t, StopActive, stops["BTCUSDT"].Status)
	assert.Equal(t, StopNone, stops["ETHUSDT"].Status)
	assert.Equal(t, StopLookupFailed, stops["XRPUSDT"].Status)
	assert.Equal(t, 1, gw.calls["BTCUSDT"])
}

func TestStopStatusString(t *testing.T) {
	assert.Equal(t, "active", StopActive.String())
	assert.Equal(t, "none", StopNone.String())
	assert.Equal(t, "lookup_failed", StopLookupFailed.String())
}
