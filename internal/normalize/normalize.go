// Package normalize maps loosely typed chat input onto canonical registry
// values.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ggonzalez94/stablepay/internal/chains"
	"github.com/shopspring/decimal"
)

const DefaultToken = "USDC"

var amountPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

type Defaults struct {
	Token string
	Chain string
}

type Normalizer struct {
	registry *chains.Registry
	defaults Defaults
}

func New(registry *chains.Registry, defaults Defaults) *Normalizer {
	defaults.Token = strings.ToUpper(strings.TrimSpace(defaults.Token))
	if defaults.Token == "" {
		defaults.Token = DefaultToken
	}
	defaults.Chain = strings.ToLower(strings.TrimSpace(defaults.Chain))
	return &Normalizer{registry: registry, defaults: defaults}
}

// Chain resolves an explicit chain field first, then the first registry id
// (in registry order) that appears anywhere in text, then the configured
// default chain.
func (n *Normalizer) Chain(raw, text string) (chains.Chain, bool) {
	if c, ok := n.Explicit(raw); ok {
		return c, true
	}
	if hint := strings.ToLower(text); hint != "" {
		for _, c := range n.registry.Chains() {
			if strings.Contains(hint, c.ID) {
				return c, true
			}
		}
	}
	if n.defaults.Chain != "" {
		return n.registry.Lookup(n.defaults.Chain)
	}
	return chains.Chain{}, false
}

// Explicit matches a chain field against registry ids, then display names,
// ignoring case and surrounding space.
func (n *Normalizer) Explicit(raw string) (chains.Chain, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return chains.Chain{}, false
	}
	if c, ok := n.registry.Lookup(strings.ToLower(raw)); ok {
		return c, true
	}
	for _, c := range n.registry.Chains() {
		if strings.EqualFold(c.Name, raw) {
			return c, true
		}
	}
	return chains.Chain{}, false
}

// NamesChain reports whether a value given as a token really names a chain,
// as in "/balance base": it matches a chain and no chain carries a token
// with that symbol.
func (n *Normalizer) NamesChain(token string) bool {
	if _, ok := n.Explicit(token); !ok {
		return false
	}
	for _, c := range n.registry.Chains() {
		if _, ok := c.Token(strings.TrimSpace(token)); ok {
			return false
		}
	}
	return true
}

func (n *Normalizer) DefaultToken() string { return n.defaults.Token }

// Token returns the requested token (or the default symbol when raw is
// empty) if chain supports it. The returned symbol is always uppercase.
func (n *Normalizer) Token(raw string, chain chains.Chain) (chains.Token, bool) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if symbol == "" {
		symbol = n.defaults.Token
	}
	return chain.Token(symbol)
}

// Amount parses a positive decimal that fits within the token's precision.
func Amount(raw string, decimals int32) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("amount is required")
	}
	if !amountPattern.MatchString(raw) {
		return decimal.Zero, fmt.Errorf("amount %q must be a decimal number like 10.5", raw)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be greater than 0")
	}
	if places := fractionDigits(raw); places > int(decimals) {
		return decimal.Zero, fmt.Errorf("amount %s exceeds token precision (%d decimals)", raw, decimals)
	}
	return amount, nil
}

func fractionDigits(raw string) int {
	_, frac, ok := strings.Cut(raw, ".")
	if !ok {
		return 0
	}
	return len(strings.TrimRight(frac, "0"))
}
