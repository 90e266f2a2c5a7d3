package app

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"moonwatch/internal/config"
	"moonwatch/internal/report"
)

// PrintConfig writes the effective config with secrets masked, followed by
// the coins in display order. sl_percent is colored by size.
func PrintConfig(w io.Writer, cfg *config.Config, coins *config.Coins) error {
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(cfg.Redacted()); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "CONFIG")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprint(w, b.String())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "coins: # %s, %d symbols\n", cfg.Monitor.CoinsPath, coins.Len())
	if coins.Len() == 0 {
		fmt.Fprintln(w, "  {}")
		return nil
	}
	width := 0
	for _, sym := range coins.Order() {
		width = max(width, len(sym))
	}
	for _, c := range coins.List() {
		fmt.Fprintf(w, "  %-*s {leverage: %g, sl_percent: %s}\n",
			width+1, c.Symbol+":", c.Leverage, report.ColorSLSize(c.SLPercent))
	}
	return nil
}
