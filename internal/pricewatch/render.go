package pricewatch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"

	"moonwatch/internal/gateway/notifier"
	"moonwatch/internal/pkg/convert"
	"moonwatch/internal/report"
)

var Headers = []string{"Symbol", "Last Price", "15m %", "1h %", "Since Asia 8AM", "24h %"}

var sortColumns = map[string]func(Row) float64{
	"change_15m":  func(r Row) float64 { return r.Change15m },
	"change_1h":   func(r Row) float64 { return r.Change1h },
	"change_asia": func(r Row) float64 { return r.ChangeAsia },
	"change_24h":  func(r Row) float64 { return r.Change24h },
}

// SortKeys lists the accepted sort columns.
func SortKeys() []string {
	keys := make([]string, 0, len(sortColumns))
	for k := range sortColumns {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NormalizeSort keeps spec when it names a price column and returns the
// default order otherwise.
func NormalizeSort(spec report.SortSpec) report.SortSpec {
	if _, ok := sortColumns[spec.Key]; !ok {
		spec.Key = report.SortDefault
	}
	return spec
}

// SortRows orders rows in place by a price column. Failed rows always go
// last and ties keep their order.
func SortRows(rows []Row, spec report.SortSpec) {
	key, ok := sortColumns[spec.Key]
	if !ok {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Failed() != b.Failed() {
			return b.Failed()
		}
		if a.Failed() {
			return false
		}
		if spec.Descending {
			return key(a) > key(b)
		}
		return key(a) < key(b)
	})
}

func cells(r Row, color bool) []string {
	if r.Failed() {
		return []string{r.Symbol, "Error", "", "", "", ""}
	}
	pct := report.Percent
	if color {
		pct = func(v float64) string { return report.Colorize(v, 0) }
	}
	return []string{
		r.Symbol,
		convert.Round(r.LastPrice, 4),
		pct(r.Change15m),
		pct(r.Change1h),
		pct(r.ChangeAsia),
		pct(r.Change24h),
	}
}

// Render draws the snapshot for the terminal: title, table, sort indicator
// and the list of symbols that failed.
func Render(title string, snap *Snapshot, spec report.SortSpec) string {
	spec = NormalizeSort(spec)
	rows := append([]Row(nil), snap.Rows...)
	SortRows(rows, spec)

	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n\n")
	}
	table := tablewriter.NewWriter(&b)
	table.SetHeader(Headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetRowLine(true)
	table.SetCenterSeparator("┼")
	table.SetColumnSeparator("│")
	table.SetRowSeparator("─")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, r := range rows {
		table.Append(cells(r, true))
	}
	table.Render()

	if line := spec.Indicator(); line != "" {
		b.WriteString("\n" + line + "\n")
	}
	if len(snap.Errors) > 0 {
		b.WriteString("\n⚠️  The following symbols had errors:\n")
		for _, e := range snap.Errors {
			b.WriteString(fmt.Sprintf("  - %s: %s\n", e.Symbol, e.Reason))
		}
	}
	return b.String()
}

// PlainTable is the uncolored, borderless table used in chat messages.
func PlainTable(snap *Snapshot, spec report.SortSpec) []string {
	rows := append([]Row(nil), snap.Rows...)
	SortRows(rows, NormalizeSort(spec))

	var b strings.Builder
	table := tablewriter.NewWriter(&b)
	table.SetHeader(Headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	for _, r := range rows {
		table.Append(cells(r, false))
	}
	table.Render()
	return strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
}

// Digest is the chat message for a price snapshot.
func Digest(snap *Snapshot, spec report.SortSpec) notifier.StructuredMessage {
	return notifier.StructuredMessage{
		Icon:      "📈",
		Title:     "Snapshot Price Monitor",
		Sections:  []notifier.MessageSection{{Code: true, Lines: PlainTable(snap, spec)}},
		Timestamp: snap.TakenAt,
	}
}
