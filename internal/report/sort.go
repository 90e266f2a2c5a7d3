package report

import (
	"fmt"
	"sort"
	"strings"

	"moonwatch/internal/risk"
)

const (
	SortDefault  = "default"
	SortPnLPct   = "pnl_pct"
	SortStopRisk = "stop_risk_usd"
)

// SortSpec is a parsed "column[:asc|desc]" argument.
type SortSpec struct {
	Key        string
	Descending bool
}

// ParseSort splits raw into a lower-cased key and a direction. The direction
// defaults to descending; an empty key becomes "default".
func ParseSort(raw string) SortSpec {
	key, dir, _ := strings.Cut(strings.TrimSpace(raw), ":")
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		key = SortDefault
	}
	return SortSpec{
		Key:        key,
		Descending: strings.ToLower(strings.TrimSpace(dir)) != "asc",
	}
}

// IsDefault reports whether s keeps configuration order.
func (s SortSpec) IsDefault() bool {
	return s.Key == "" || s.Key == SortDefault
}

// Indicator is the trailing line shown under a non-default sort.
func (s SortSpec) Indicator() string {
	if s.IsDefault() {
		return ""
	}
	if s.Descending {
		return fmt.Sprintf("🔽 Sorted by: %s (descending)", s.Key)
	}
	return fmt.Sprintf("🔼 Sorted by: %s (ascending)", s.Key)
}

// PositionSort resolves aliases for the position report. Unknown keys fall
// back to default order.
func PositionSort(s SortSpec) SortSpec {
	switch s.Key {
	case SortPnLPct:
	case SortStopRisk, "sl_usd", "sl_risk":
		s.Key = SortStopRisk
	default:
		s.Key = SortDefault
	}
	return s
}

// SortRows orders rows in place. Numeric keys honour the direction and keep
// placeholder and error rows last; default order follows coinOrder with unknown symbols
// at the end. Ties keep their input order.
func SortRows(rows []risk.Row, spec SortSpec, coinOrder []string) {
	spec = PositionSort(spec)
	var key func(risk.Row) float64
	switch spec.Key {
	case SortPnLPct:
		key = risk.Row.SortPnLPct
	case SortStopRisk:
		key = risk.Row.SortStopRisk
	default:
		rank := make(map[string]int, len(coinOrder))
		for i, sym := range coinOrder {
			rank[sym] = i
		}
		pos := func(sym string) int {
			if i, ok := rank[sym]; ok {
				return i
			}
			return len(coinOrder)
		}
		sort.SliceStable(rows, func(i, j int) bool {
			return pos(rows[i].Symbol) < pos(rows[j].Symbol)
		})
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Open() != b.Open() {
			return a.Open()
		}
		if spec.Descending {
			return key(a) > key(b)
		}
		return key(a) < key(b)
	})
}
