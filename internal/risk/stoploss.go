package risk

import (
	"context"
	"fmt"
	"strings"

	"moonwatch/internal/logger"
	"moonwatch/internal/market"
	"moonwatch/internal/pkg/convert"
	"moonwatch/internal/pkg/fanout"
)

// StopStatus separates "no protective stop" from "could not tell". Both render
// as "-" but only the latter is logged and counted.
type StopStatus int

const (
	StopNone StopStatus = iota
	StopActive
	StopLookupFailed
)

func (s StopStatus) String() string {
	switch s {
	case StopActive:
		return "active"
	case StopLookupFailed:
		return "lookup_failed"
	default:
		return "none"
	}
}

type StopResult struct {
	Symbol string
	Status StopStatus
	Price  float64
	Err    error
}

// Active reports whether a usable stop price was resolved.
func (r StopResult) Active() bool {
	return r.Status == StopActive && r.Price > 0
}

// FindStop returns the trigger price of the first protective stop in orders.
// A stop qualifies when it is a STOP or STOP_MARKET order that can only
// reduce the position.
func FindStop(orders []market.Order) (float64, bool) {
	for _, o := range orders {
		switch strings.ToUpper(strings.TrimSpace(o.Type)) {
		case "STOP_MARKET", "STOP":
		default:
			continue
		}
		if !o.ReduceOnly && !o.ClosePosition {
			continue
		}
		price, err := convert.Float("stopPrice", o.StopPrice)
		if err != nil || price <= 0 {
			continue
		}
		return price, true
	}
	return 0, false
}

// LookupStop queries the open orders of one symbol. It never returns an
// error: failures are carried in the result.
func LookupStop(ctx context.Context, src market.OrderSource, symbol string) StopResult {
	orders, err := src.OpenOrders(ctx, symbol)
	if err != nil {
		return StopResult{Symbol: symbol, Status: StopLookupFailed, Err: fmt.Errorf("open orders %s: %w", symbol, err)}
	}
	price, ok := FindStop(orders)
	if !ok {
		return StopResult{Symbol: symbol, Status: StopNone}
	}
	return StopResult{Symbol: symbol, Status: StopActive, Price: price}
}

// FetchStops resolves a stop for every symbol on a pool of at most workers
// goroutines. The returned map has one entry per distinct input symbol.
func FetchStops(ctx context.Context, src market.OrderSource, symbols []string, workers int) map[string]StopResult {
	results := fanout.Collect(ctx, symbols, workers, func(ctx context.Context, symbol string) (StopResult, error) {
		return LookupStop(ctx, src, symbol), nil
	})
	out := make(map[string]StopResult, len(results))
	for symbol, res := range results {
		if res.Err != nil {
			out[symbol] = StopResult{Symbol: symbol, Status: StopLookupFailed, Err: res.Err}
			continue
		}
		out[symbol] = res.Value
	}
	for symbol, res := range out {
		if res.Status == StopLookupFailed {
			logger.Warnf("stop-loss lookup failed for %s: %v", symbol, res.Err)
		}
	}
	return out
}
