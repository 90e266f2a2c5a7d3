package binance

import (
	"strings"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"

	"moonwatch/internal/market"
	"moonwatch/internal/pkg/convert"
)

func walletFromBalances(balances []*futures.Balance, asset string) (market.Wallet, error) {
	for _, b := range balances {
		if b == nil || !strings.EqualFold(b.Asset, asset) {
			continue
		}
		balance, err := convert.Float("balance", b.Balance)
		if err != nil {
			return market.Wallet{}, err
		}
		return market.Wallet{
			Asset:         asset,
			Balance:       balance,
			UnrealizedPnL: convert.FloatOr(b.CrossUnPnl, 0),
		}, nil
	}
	return market.Wallet{Asset: asset}, nil
}

func positionKey(symbol, side string) string {
	side = strings.ToUpper(strings.TrimSpace(side))
	if side == "" {
		side = "BOTH"
	}
	return strings.ToUpper(symbol) + "|" + side
}

// mergePositions attaches the account's initial margin to each position-risk
// row. Without an account entry the margin is derived from notional and
// leverage; if that is impossible it is left empty and the row is rejected
// downstream.
func mergePositions(risks []*futures.PositionRisk, margins []*futures.AccountPosition) []market.Position {
	bySide := make(map[string]string, len(margins))
	for _, m := range margins {
		if m == nil {
			continue
		}
		bySide[positionKey(m.Symbol, string(m.PositionSide))] = m.PositionInitialMargin
	}
	out := make([]market.Position, 0, len(risks))
	for _, r := range risks {
		if r == nil {
			continue
		}
		side := string(r.PositionSide)
		margin, ok := bySide[positionKey(r.Symbol, side)]
		if !ok {
			margin = marginFromLeverage(r.Notional, r.Leverage)
		}
		out = append(out, market.Position{
			Symbol:        r.Symbol,
			PositionSide:  side,
			Amount:        r.PositionAmt,
			EntryPrice:    r.EntryPrice,
			MarkPrice:     r.MarkPrice,
			Notional:      r.Notional,
			InitialMargin: margin,
			UnrealizedPnL: r.UnRealizedProfit,
		})
	}
	return out
}

func marginFromLeverage(notional, leverage string) string {
	n, err := convert.Decimal("notional", notional)
	if err != nil {
		return ""
	}
	lev, err := convert.Decimal("leverage", leverage)
	if err != nil || lev.LessThanOrEqual(decimal.Zero) {
		return ""
	}
	return n.Abs().Div(lev).String()
}

func convertOrders(orders []*futures.Order) []market.Order {
	out := make([]market.Order, 0, len(orders))
	for _, o := range orders {
		if o == nil {
			continue
		}
		out = append(out, market.Order{
			Symbol:        o.Symbol,
			Type:          string(o.Type),
			ReduceOnly:    o.ReduceOnly,
			ClosePosition: o.ClosePosition,
			StopPrice:     o.StopPrice,
		})
	}
	return out
}

func convertTickers(stats []*futures.PriceChangeStats) []market.Ticker {
	out := make([]market.Ticker, 0, len(stats))
	for _, s := range stats {
		if s == nil {
			continue
		}
		last, err := convert.Float("lastPrice", s.LastPrice)
		if err != nil {
			continue
		}
		out = append(out, market.Ticker{
			Symbol:       s.Symbol,
			LastPrice:    last,
			ChangePct24h: convert.FloatOr(s.PriceChangePercent, 0),
		})
	}
	return out
}

func convertKlines(raw []*futures.Kline) []market.Kline {
	out := make([]market.Kline, 0, len(raw))
	for _, kl := range raw {
		if kl == nil {
			continue
		}
		out = append(out, market.Kline{
			OpenTime:  time.UnixMilli(kl.OpenTime).UTC(),
			CloseTime: time.UnixMilli(kl.CloseTime).UTC(),
			Open:      convert.FloatOr(kl.Open, 0),
			High:      convert.FloatOr(kl.High, 0),
			Low:       convert.FloatOr(kl.Low, 0),
			Close:     convert.FloatOr(kl.Close, 0),
			Volume:    convert.FloatOr(kl.Volume, 0),
		})
	}
	return out
}
