package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"BTCUSDT":        "BTCUSDT",
		"btcusdt":        "BTCUSDT",
		"ETH/USDT":       "ETHUSDT",
		"sol-usdt":       "SOLUSDT",
		"ETH/USDT:USDT":  "ETHUSDT",
		" 1000pepeusdt ": "1000PEPEUSDT",
		"WEIRD":          "WEIRD",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestParsePair(t *testing.T) {
	s := Parse("btcusdc")
	assert.Equal(t, "BTC", s.Base)
	assert.Equal(t, "USDC", s.Quote)
	assert.Equal(t, "BTCUSDC", s.Exchange())
	assert.Empty(t, Parse("USDT").Exchange())
}
