// Package chains holds the curated, read-only registry of chains a transfer
// can be routed to.
package chains

import (
	"fmt"
	"strings"

	"github.com/ggonzalez94/stablepay/internal/fees"
	"github.com/shopspring/decimal"
)

type Token struct {
	Symbol   string
	Address  string
	Decimals int32
}

// Chain describes one supported network. ID is the canonical lowercase key;
// Name is what users see.
type Chain struct {
	ID          string
	Name        string
	NativeToken string
	Tokens      []Token
	Address     AddressPattern
	Fee         fees.Estimator
	EVMChainID  int64
}

func (c Chain) Token(symbol string) (Token, bool) {
	for _, t := range c.Tokens {
		if strings.EqualFold(t.Symbol, symbol) {
			return t, true
		}
	}
	return Token{}, false
}

func (c Chain) TokenSymbols() []string {
	out := make([]string, 0, len(c.Tokens))
	for _, t := range c.Tokens {
		out = append(out, t.Symbol)
	}
	return out
}

// ValidAddress never panics, even on a chain built without a pattern.
func (c Chain) ValidAddress(address string) bool {
	if c.Address == nil {
		return false
	}
	return c.Address.Match(address)
}

func (c Chain) validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("chain id is required")
	}
	if c.ID != strings.ToLower(strings.TrimSpace(c.ID)) {
		return fmt.Errorf("chain id %q must be lowercase", c.ID)
	}
	if len(c.Tokens) == 0 {
		return fmt.Errorf("chain %s has no supported tokens", c.ID)
	}
	seen := map[string]struct{}{}
	for _, t := range c.Tokens {
		if t.Symbol == "" || t.Symbol != strings.ToUpper(t.Symbol) {
			return fmt.Errorf("chain %s: token symbol %q must be non-empty uppercase", c.ID, t.Symbol)
		}
		if _, dup := seen[t.Symbol]; dup {
			return fmt.Errorf("chain %s: duplicate token %s", c.ID, t.Symbol)
		}
		seen[t.Symbol] = struct{}{}
	}
	if c.Address == nil {
		return fmt.Errorf("chain %s has no address pattern", c.ID)
	}
	if c.Fee == nil {
		return fmt.Errorf("chain %s has no fee estimator", c.ID)
	}
	return nil
}

// Defaults returns the curated chain set in registry order. Fees are static
// placeholders in native-token units until config swaps in a live estimator.
func Defaults() []Chain {
	return []Chain{
		{
			ID:          "tron",
			Name:        "TRON",
			NativeToken: "TRX",
			Tokens: []Token{
				{Symbol: "USDT", Address: "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", Decimals: 6},
				{Symbol: "USDC", Address: "TEkxiTehnzSmSe2XqrBj4w32RUN966rdz8", Decimals: 6},
				{Symbol: "TRX", Decimals: 6},
			},
			Address: PrefixPattern("T"),
			Fee:     fees.Static(decimal.RequireFromString("0.2")),
		},
		{
			ID:          "ethereum",
			Name:        "Ethereum",
			NativeToken: "ETH",
			Tokens: []Token{
				{Symbol: "USDT", Address: "0xdac17f958d2ee523a2206206994597c13d831ec7", Decimals: 6},
				{Symbol: "USDC", Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", Decimals: 6},
				{Symbol: "ETH", Decimals: 18},
				{Symbol: "DAI", Address: "0x6b175474e89094c44da98b954eedeac495271d0f", Decimals: 18},
			},
			Address:    PrefixPattern("0x"),
			Fee:        fees.Static(decimal.RequireFromString("5.0")),
			EVMChainID: 1,
		},
		{
			ID:          "base",
			Name:        "Base",
			NativeToken: "ETH",
			Tokens: []Token{
				{Symbol: "USDC", Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Decimals: 6},
				{Symbol: "DAI", Address: "0x50c5725949A6F0c72E6C4a641F24049A917DB0Cb", Decimals: 18},
				{Symbol: "ETH", Decimals: 18},
			},
			Address:    PrefixPattern("0x"),
			Fee:        fees.Static(decimal.RequireFromString("0.00003")),
			EVMChainID: 8453,
		},
	}
}
