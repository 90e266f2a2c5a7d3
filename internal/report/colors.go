package report

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ANSI escapes used by the terminal views.
const (
	Green  = "\033[92m"
	Red    = "\033[91m"
	Yellow = "\033[93m"
	Reset  = "\033[0m"
)

const DefaultBarWidth = 30

var printer = message.NewPrinter(language.English)

func paint(color, text string) string {
	return color + text + Reset
}

// Money formats v as a dollar amount with thousands separators, e.g.
// "$14,899.70" or "-$50.00".
func Money(v float64) string {
	if v < 0 && math.Abs(v) >= 0.005 {
		return "-$" + printer.Sprintf("%.2f", -v)
	}
	return "$" + printer.Sprintf("%.2f", math.Abs(v))
}

// Percent formats a signed percentage without color, e.g. "+1.25%".
func Percent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

// Colorize paints a percentage green above threshold, red below -threshold
// and yellow in between.
func Colorize(v, threshold float64) string {
	switch {
	case v > threshold:
		return paint(Green, Percent(v))
	case v < -threshold:
		return paint(Red, Percent(v))
	default:
		return paint(Yellow, Percent(v))
	}
}

// ColorizeDollar paints gains green, losses red and exactly zero yellow.
func ColorizeDollar(v float64) string {
	switch {
	case v > 0:
		return paint(Green, Money(v))
	case v < 0:
		return paint(Red, Money(v))
	default:
		return paint(Yellow, "$0.00")
	}
}

// ColorSLSize grades a configured stop-loss width: under 2% red, under 3.5%
// yellow, otherwise green.
func ColorSLSize(pct float64) string {
	text := fmt.Sprintf("%.2f%%", pct)
	switch {
	case pct < 2:
		return paint(Red, text)
	case pct < 3.5:
		return paint(Yellow, text)
	default:
		return paint(Green, text)
	}
}

// RiskShare is value as a percentage of balance, 0 for an empty wallet.
func RiskShare(value, balance float64) float64 {
	if balance == 0 {
		return 0
	}
	return value / balance * 100
}

// ColorRiskUSD renders the signed stop-loss outcome with its share of the
// wallet. Losses are negative: below -50% is red, below -30% yellow.
func ColorRiskUSD(value, balance float64) string {
	pct := RiskShare(value, balance)
	text := fmt.Sprintf("%s (%.2f%%)", Money(value), pct)
	switch {
	case pct < -50:
		return paint(Red, text)
	case pct < -30:
		return paint(Yellow, text)
	default:
		return paint(Green, text)
	}
}

// Progress is current/target clamped to [0, 1].
func Progress(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Min(math.Max(current/target, 0), 1)
}

// ProgressBar draws the wallet-target bar. It returns "" when target <= 0.
func ProgressBar(current, target float64, width int) string {
	if target <= 0 {
		return ""
	}
	if width <= 0 {
		width = DefaultBarWidth
	}
	pct := Progress(current, target)
	filled := int(float64(width) * pct)
	color := Red
	switch {
	case pct >= 1:
		color = Green
	case pct >= 0.5:
		color = Yellow
	}
	bar := paint(color, strings.Repeat("█", filled)+strings.Repeat("-", width-filled))
	return fmt.Sprintf("Wallet Target: %s / %s |%s| %.1f%%", Money(current), Money(target), bar, pct*100)
}

func sideLabel(side string) string {
	switch side {
	case "LONG":
		return paint(Green, side)
	case "SHORT":
		return paint(Red, side)
	default:
		return "-"
	}
}
