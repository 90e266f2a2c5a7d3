package report

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"

	"moonwatch/internal/pkg/convert"
	"moonwatch/internal/risk"
)

// Headers is the fixed column order of the full view.
var Headers = []string{
	"Symbol", "Side", "Lev", "Entry", "Mark", "Margin (USD)", "Notional (USD)",
	"PnL", "PnL%", "Risk%", "SL Price", "% to SL", "SL USD",
}

const dash = "-"

// Render draws the report in the mode selected by its options.
func (r *Report) Render() string {
	if r.Options.Compact {
		return RenderCompact(r)
	}
	return RenderFull(r)
}

// RenderCompact draws only the header block.
func RenderCompact(r *Report) string {
	return strings.Join(headerLines(r), "\n")
}

// RenderFull draws the header block, the position table and, for a
// non-default sort, the sort indicator.
func RenderFull(r *Report) string {
	var b strings.Builder
	b.WriteString(RenderCompact(r))
	b.WriteString("\n")
	b.WriteString(Table(r.Rows))
	if line := r.Options.Sort.Indicator(); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func headerLines(r *Report) []string {
	s := r.Summary
	lines := []string{
		"",
		fmt.Sprintf("💰 Wallet Balance: %s", Money(s.WalletBalance)),
		fmt.Sprintf("💼 Available Balance: %s", Money(s.AvailableBalance)),
		fmt.Sprintf("📊 Total Unrealized PnL: %s (%s of wallet)", ColorizeDollar(s.UnrealizedPnL), Colorize(s.UnrealizedPct, 0)),
		fmt.Sprintf("🧾 Wallet w/ Unrealized: %s", Money(s.TotalEquity)),
		fmt.Sprintf("⚠️ Total SL Risk: %s", ColorRiskUSD(s.TotalStopRiskUSD, s.WalletBalance)),
		"",
	}
	if bar := ProgressBar(s.TotalEquity, r.Options.WalletTarget, DefaultBarWidth); bar != "" {
		lines = append(lines, bar)
	}
	return lines
}

// Table renders rows as a bordered grid. Color codes do not count towards
// column widths.
func Table(rows []risk.Row) string {
	var buf strings.Builder
	table := tablewriter.NewWriter(&buf)
	table.SetHeader(Headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetRowLine(true)
	table.SetCenterSeparator("┼")
	table.SetColumnSeparator("│")
	table.SetRowSeparator("─")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetColumnAlignment(columnAlignment())
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, Cells(row))
	}
	table.AppendBulk(cells)
	table.Render()
	return buf.String()
}

func columnAlignment() []int {
	align := make([]int, len(Headers))
	for i := range align {
		align[i] = tablewriter.ALIGN_RIGHT
	}
	align[0] = tablewriter.ALIGN_LEFT
	align[1] = tablewriter.ALIGN_LEFT
	return align
}

// Cells formats one row in Headers order.
func Cells(row risk.Row) []string {
	lev := convert.Round(row.Leverage, 2)
	if row.Errored() {
		cells := []string{row.Symbol, "Error"}
		for len(cells) < len(Headers) {
			cells = append(cells, dash)
		}
		return cells
	}
	if row.Placeholder {
		cells := []string{row.Symbol, dash, lev}
		for len(cells) < len(Headers) {
			cells = append(cells, dash)
		}
		return cells
	}
	marginShare := dash
	if row.HasMarginFraction {
		marginShare = fmt.Sprintf("%.2f%%", row.MarginFraction)
	}
	stopPrice, stopDist, stopUSD := dash, dash, dash
	if row.HasStop() {
		stopPrice = fmt.Sprintf("%.5f", row.Stop.Price)
		stopDist = Colorize(row.StopDistancePct, 0)
		stopUSD = ColorizeDollar(row.StopRiskUSD)
	}
	return []string{
		row.Symbol,
		sideLabel(string(row.Side)),
		lev,
		convert.Round(row.Entry, 5),
		convert.Round(row.Mark, 5),
		convert.Fixed(row.Margin, 2),
		convert.Fixed(row.Notional, 2),
		ColorizeDollar(row.PnL),
		Colorize(row.PnLPct, 0),
		marginShare,
		stopPrice,
		stopDist,
		stopUSD,
	}
}
