package chains

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var tronAddressPattern = regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)

// AddressPattern classifies a string as a syntactically valid address on a
// chain. Match must be total: any input yields true or false.
type AddressPattern interface {
	Match(address string) bool
	String() string
}

// PrefixPattern accepts any address that starts with the prefix.
type PrefixPattern string

func (p PrefixPattern) Match(address string) bool {
	address = strings.TrimSpace(address)
	return p != "" && len(address) > len(p) && strings.HasPrefix(address, string(p))
}

func (p PrefixPattern) String() string { return "prefix:" + string(p) }

// EVMPattern accepts 20-byte hex addresses with a 0x prefix.
type EVMPattern struct{}

func (EVMPattern) Match(address string) bool {
	address = strings.TrimSpace(address)
	return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
}

func (EVMPattern) String() string { return "evm" }

// TronPattern accepts base58 TRON addresses.
type TronPattern struct{}

func (TronPattern) Match(address string) bool {
	return tronAddressPattern.MatchString(strings.TrimSpace(address))
}

func (TronPattern) String() string { return "tron" }

// ParsePattern reads the config form of a pattern: "evm", "tron" or "prefix:<p>".
func ParsePattern(input string) (AddressPattern, error) {
	raw := strings.TrimSpace(input)
	switch strings.ToLower(raw) {
	case "evm":
		return EVMPattern{}, nil
	case "tron":
		return TronPattern{}, nil
	}
	if len(raw) > len("prefix:") && strings.EqualFold(raw[:len("prefix:")], "prefix:") {
		return PrefixPattern(raw[len("prefix:"):]), nil
	}
	return nil, fmt.Errorf("unsupported address pattern %q (use evm, tron or prefix:<p>)", input)
}

// StrictPattern returns the full-format pattern for a chain, falling back to
// the chain's own pattern when no strict form is known.
func StrictPattern(chain Chain) AddressPattern {
	if chain.EVMChainID != 0 {
		return EVMPattern{}
	}
	if p, ok := chain.Address.(PrefixPattern); ok && p == "T" {
		return TronPattern{}
	}
	return chain.Address
}
