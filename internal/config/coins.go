package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"moonwatch/internal/pkg/symbol"
)

const (
	MinLeverage  = 1
	MaxLeverage  = 150
	MinSLPercent = 0.1
	MaxSLPercent = 100
)

// coinsSchema checks the shape of the coins file; ranges are checked in Go so
// the error names the offending symbol.
const coinsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "required": ["leverage", "sl_percent"],
    "properties": {
      "leverage": {"type": "number"},
      "sl_percent": {"type": "number"}
    }
  }
}`

// Coin is the per-symbol display configuration.
type Coin struct {
	Symbol    string  `json:"-" yaml:"-"`
	Leverage  float64 `json:"leverage" yaml:"leverage"`
	SLPercent float64 `json:"sl_percent" yaml:"sl_percent"`
}

func (c Coin) validate() error {
	if c.Leverage < MinLeverage || c.Leverage > MaxLeverage {
		return fmt.Errorf("%s: leverage %v out of range [%d,%d]", c.Symbol, c.Leverage, MinLeverage, MaxLeverage)
	}
	if c.SLPercent < MinSLPercent || c.SLPercent > MaxSLPercent {
		return fmt.Errorf("%s: sl_percent %v out of range [%v,%v]", c.Symbol, c.SLPercent, MinSLPercent, MaxSLPercent)
	}
	return nil
}

// Coins is an immutable, ordered symbol set. The order of entries is the
// default display order.
type Coins struct {
	order []string
	items map[string]Coin
}

// NewCoins validates items and keeps their order. Symbols are normalised to
// the exchange form; a symbol listed twice is an error.
func NewCoins(items ...Coin) (*Coins, error) {
	c := &Coins{
		order: make([]string, 0, len(items)),
		items: make(map[string]Coin, len(items)),
	}
	for _, item := range items {
		item.Symbol = symbol.Normalize(item.Symbol)
		if item.Symbol == "" {
			return nil, fmt.Errorf("coins config contains an empty symbol")
		}
		if _, dup := c.items[item.Symbol]; dup {
			return nil, fmt.Errorf("%s: listed more than once", item.Symbol)
		}
		if err := item.validate(); err != nil {
			return nil, err
		}
		c.order = append(c.order, item.Symbol)
		c.items[item.Symbol] = item
	}
	return c, nil
}

// Order returns the configured symbols in file order.
func (c *Coins) Order() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.order...)
}

func (c *Coins) Get(sym string) (Coin, bool) {
	if c == nil {
		return Coin{}, false
	}
	coin, ok := c.items[sym]
	return coin, ok
}

func (c *Coins) Has(sym string) bool {
	_, ok := c.Get(sym)
	return ok
}

func (c *Coins) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// List returns the coins in display order.
func (c *Coins) List() []Coin {
	out := make([]Coin, 0, c.Len())
	for _, sym := range c.Order() {
		out = append(out, c.items[sym])
	}
	return out
}

// LoadCoins reads a JSON or YAML coins file.
func LoadCoins(path string) (*Coins, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("coins config path cannot be empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read coins config failed: %w", err)
	}
	coins, err := ParseCoins(raw)
	if err != nil {
		return nil, fmt.Errorf("coins config %s: %w", path, err)
	}
	return coins, nil
}

// ParseCoins decodes a symbol -> {leverage, sl_percent} mapping. JSON is
// accepted as YAML, which keeps the key order of the file.
func ParseCoins(raw []byte) (*Coins, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(raw)).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return NewCoins()
		}
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	if len(root.Content) == 0 {
		return NewCoins()
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("config must be a mapping of symbol to settings")
	}
	if err := validateCoinsSchema(doc); err != nil {
		return nil, err
	}
	items := make([]Coin, 0, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		var coin Coin
		if err := doc.Content[i+1].Decode(&coin); err != nil {
			return nil, fmt.Errorf("%s: %w", doc.Content[i].Value, err)
		}
		coin.Symbol = doc.Content[i].Value
		items = append(items, coin)
	}
	return NewCoins(items...)
}

var compiledCoinsSchema = mustCompileSchema(coinsSchema)

func mustCompileSchema(src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("coins.schema.json", strings.NewReader(src)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("coins.schema.json")
}

func validateCoinsSchema(doc *yaml.Node) error {
	var generic map[string]any
	if err := doc.Decode(&generic); err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}
	// round-trip through JSON so numbers reach the validator as float64
	data, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("encode for validation failed: %w", err)
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("decode for validation failed: %w", err)
	}
	if err := compiledCoinsSchema.Validate(instance); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
