package model

import (
	"github.com/ggonzalez94/stablepay/internal/chains"
	"github.com/ggonzalez94/stablepay/internal/resolver"
)

func ChainInfoFrom(c chains.Chain) ChainInfo {
	info := ChainInfo{
		ID:           c.ID,
		Name:         c.Name,
		NativeToken:  c.NativeToken,
		EVMChainID:   c.EVMChainID,
		Tokens:       make([]TokenInfo, 0, len(c.Tokens)),
		TokenSymbols: c.TokenSymbols(),
	}
	if c.Address != nil {
		info.AddressRule = c.Address.String()
	}
	for _, t := range c.Tokens {
		info.Tokens = append(info.Tokens, TokenInfo{Symbol: t.Symbol, Address: t.Address, Decimals: t.Decimals})
	}
	return info
}

func ChainInfos(reg *chains.Registry) []ChainInfo {
	list := reg.Chains()
	out := make([]ChainInfo, 0, len(list))
	for _, c := range list {
		out = append(out, ChainInfoFrom(c))
	}
	return out
}

// RouteQuotes ranks successful quotes within their fee token only; a TRX fee
// and an ETH fee are never ranked against each other.
func RouteQuotes(routes []resolver.Route) []RouteQuote {
	out := make([]RouteQuote, 0, len(routes))
	ranks := map[string]int{}
	for _, r := range routes {
		q := RouteQuote{
			Chain:    r.Chain.ID,
			Name:     r.Chain.Name,
			Token:    r.Token.Symbol,
			FeeToken: r.Chain.NativeToken,
			Status:   "ok",
		}
		if r.Fee.Valid {
			ranks[q.FeeToken]++
			q.Rank = ranks[q.FeeToken]
			q.Fee = r.Fee.Decimal.String()
		} else {
			q.Status = "error"
			if r.Err != nil {
				q.Error = r.Err.Error()
			}
		}
		out = append(out, q)
	}
	return out
}
