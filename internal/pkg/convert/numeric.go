// Package convert parses the numeric strings exchanges put on the wire.
package convert

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal parses raw strictly: empty or malformed input is an error naming
// the field so callers can reject one record and keep the rest.
func Decimal(field, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%s: empty value", field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid number %q", field, raw)
	}
	return d, nil
}

// Float is Decimal converted to float64.
func Float(field, raw string) (float64, error) {
	d, err := Decimal(field, raw)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

// FloatOr parses raw leniently, returning def for empty or malformed input.
func FloatOr(raw string, def float64) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

// Round rounds v to places decimal digits and trims trailing zeros.
func Round(v float64, places int32) string {
	return decimal.NewFromFloat(v).Round(places).String()
}

// Fixed formats v with exactly places decimal digits.
func Fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}
