package chains

import (
	"fmt"
	"strings"
)

// Public RPC endpoints used for live fee estimation when config names none.
var defaultRPCByChainID = map[int64]string{
	1:     "https://eth.llamarpc.com",
	10:    "https://mainnet.optimism.io",
	56:    "https://bsc-dataseed.binance.org",
	137:   "https://polygon-rpc.com",
	8453:  "https://mainnet.base.org",
	42161: "https://arb1.arbitrum.io/rpc",
	43114: "https://api.avax.network/ext/bc/C/rpc",
}

func DefaultRPCURL(chainID int64) (string, bool) {
	value, ok := defaultRPCByChainID[chainID]
	return value, ok
}

// ResolveRPCURL picks the node used for gas pricing. Only EVM chains can be
// priced this way since fees are read as 18-decimal wei.
func ResolveRPCURL(override string, chain Chain) (string, error) {
	if chain.EVMChainID == 0 {
		return "", fmt.Errorf("chain %s is not an EVM chain; use a static or http fee source", chain.ID)
	}
	if strings.TrimSpace(override) != "" {
		return strings.TrimSpace(override), nil
	}
	if value, ok := DefaultRPCURL(chain.EVMChainID); ok {
		return value, nil
	}
	return "", fmt.Errorf("no default rpc configured for chain id %d; set fees.%s.rpc_url", chain.EVMChainID, chain.ID)
}
