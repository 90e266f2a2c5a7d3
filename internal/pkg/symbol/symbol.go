package symbol

import (
	"strings"
)

type Symbol struct {
	Base  string
	Quote string
}

// Exchange renders the symbol the way Binance futures expects it (BTCUSDT).
func (s Symbol) Exchange() string {
	if s.Base == "" || s.Quote == "" {
		return ""
	}
	return s.Base + s.Quote
}

var quoteCurrencies = []string{"USDT", "USDC", "BUSD", "FDUSD", "TUSD", "BTC", "ETH", "BNB"}

// Parse accepts "BTC/USDT", "btc-usdt", "BTCUSDT" or "BTC/USDT:USDT".
func Parse(s string) Symbol {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Symbol{}
	}

	if idx := strings.Index(s, ":"); idx >= 0 {
		s = s[:idx]
	}

	for _, sep := range []string{"/", "-", "_"} {
		if parts := strings.SplitN(s, sep, 2); len(parts) == 2 {
			return Symbol{
				Base:  strings.TrimSpace(parts[0]),
				Quote: strings.TrimSpace(parts[1]),
			}
		}
	}

	for _, quote := range quoteCurrencies {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return Symbol{
				Base:  s[:len(s)-len(quote)],
				Quote: quote,
			}
		}
	}

	return Symbol{}
}

// Normalize returns the exchange form of s, or the upper-cased input when
// the quote currency is not recognised.
func Normalize(s string) string {
	if ex := Parse(s).Exchange(); ex != "" {
		return ex
	}
	return strings.ToUpper(strings.TrimSpace(s))
}
