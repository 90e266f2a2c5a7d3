package httpapi

import (
	"time"

	"moonwatch/internal/pricewatch"
	"moonwatch/internal/report"
	"moonwatch/internal/risk"
)

type positionRow struct {
	Symbol          string   `json:"symbol"`
	Side            string   `json:"side,omitempty"`
	Leverage        float64  `json:"leverage"`
	Placeholder     bool     `json:"placeholder,omitempty"`
	Error           string   `json:"error,omitempty"`
	Entry           float64  `json:"entry,omitempty"`
	Mark            float64  `json:"mark,omitempty"`
	Margin          float64  `json:"margin,omitempty"`
	Notional        float64  `json:"notional,omitempty"`
	PnL             float64  `json:"pnl,omitempty"`
	PnLPct          float64  `json:"pnl_pct,omitempty"`
	MarginFraction  *float64 `json:"margin_fraction_pct,omitempty"`
	StopStatus      string   `json:"stop_status,omitempty"`
	StopPrice       *float64 `json:"stop_price,omitempty"`
	StopDistancePct *float64 `json:"stop_distance_pct,omitempty"`
	StopRiskUSD     *float64 `json:"stop_risk_usd,omitempty"`
}

type positionsResponse struct {
	RunID      string         `json:"run_id"`
	TakenAt    time.Time      `json:"taken_at"`
	Sort       string         `json:"sort"`
	Descending bool           `json:"descending"`
	Summary    report.Summary `json:"summary"`
	Rows       []positionRow  `json:"rows"`
	Skipped    []risk.Skip    `json:"skipped,omitempty"`
}

func newPositionsResponse(rep *report.Report) positionsResponse {
	resp := positionsResponse{
		Sort:       rep.Options.Sort.Key,
		Descending: rep.Options.Sort.Descending,
		Summary:    rep.Summary,
		Rows:       make([]positionRow, 0, len(rep.Rows)),
	}
	if rep.Snapshot != nil {
		resp.RunID = rep.Snapshot.ID
		resp.TakenAt = rep.Snapshot.TakenAt
		resp.Skipped = rep.Snapshot.Skipped
	}
	for _, r := range rep.Rows {
		row := positionRow{Symbol: r.Symbol, Leverage: r.Leverage, Placeholder: r.Placeholder, Error: r.Error}
		if r.Open() {
			row.Side = string(r.Side)
			row.Entry, row.Mark = r.Entry, r.Mark
			row.Margin, row.Notional = r.Margin, r.Notional
			row.PnL, row.PnLPct = r.PnL, r.PnLPct
			row.StopStatus = r.Stop.Status.String()
			if r.HasMarginFraction {
				row.MarginFraction = ptr(r.MarginFraction)
			}
			if r.HasStop() {
				row.StopPrice = ptr(r.Stop.Price)
				row.StopDistancePct = ptr(r.StopDistancePct)
				row.StopRiskUSD = ptr(r.StopRiskUSD)
			}
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp
}

type priceRow struct {
	pricewatch.Row
	Error string `json:"error,omitempty"`
}

type pricesResponse struct {
	RunID      string                   `json:"run_id"`
	TakenAt    time.Time                `json:"taken_at"`
	AsiaOpen   time.Time                `json:"asia_open"`
	Sort       string                   `json:"sort"`
	Descending bool                     `json:"descending"`
	Rows       []priceRow               `json:"rows"`
	Errors     []pricewatch.SymbolError `json:"errors,omitempty"`
}

func newPricesResponse(snap *pricewatch.Snapshot, spec report.SortSpec) pricesResponse {
	rows := append([]pricewatch.Row(nil), snap.Rows...)
	pricewatch.SortRows(rows, spec)
	resp := pricesResponse{
		RunID:      snap.ID,
		TakenAt:    snap.TakenAt,
		AsiaOpen:   snap.AsiaOpen,
		Sort:       spec.Key,
		Descending: spec.Descending,
		Rows:       make([]priceRow, 0, len(rows)),
		Errors:     snap.Errors,
	}
	for _, r := range rows {
		pr := priceRow{Row: r}
		if r.Err != nil {
			pr.Error = r.Err.Error()
		}
		resp.Rows = append(resp.Rows, pr)
	}
	return resp
}

func ptr(v float64) *float64 { return &v }
