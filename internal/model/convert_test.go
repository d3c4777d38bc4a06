package model

import (
	"errors"
	"testing"

	"github.com/ggonzalez94/stablepay/internal/chains"
	"github.com/ggonzalez94/stablepay/internal/resolver"
	"github.com/shopspring/decimal"
)

func TestChainInfos(t *testing.T) {
	reg, err := chains.NewRegistry(chains.Defaults()...)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	infos := ChainInfos(reg)
	if len(infos) != 3 || infos[0].ID != "tron" || infos[2].EVMChainID != 8453 {
		t.Fatalf("unexpected infos: %+v", infos)
	}
	if infos[0].AddressRule != "prefix:T" || infos[1].TokenSymbols[3] != "DAI" {
		t.Fatalf("unexpected chain detail: %+v", infos[:2])
	}
}

func TestRouteQuotesRanksAndErrors(t *testing.T) {
	base := chains.Defaults()[2]
	usdc, _ := base.Token("USDC")
	routes := []resolver.Route{
		{Chain: base, Token: usdc, Fee: decimal.NewNullDecimal(decimal.RequireFromString("0.10"))},
		{Chain: chains.Defaults()[1], Token: usdc, Err: errors.New("rpc down")},
	}
	quotes := RouteQuotes(routes)
	if quotes[0].Rank != 1 || quotes[0].Fee != "0.1" || quotes[0].FeeToken != "ETH" || quotes[0].Status != "ok" {
		t.Fatalf("unexpected first quote: %+v", quotes[0])
	}
	if quotes[1].Status != "error" || quotes[1].Fee != "" || quotes[1].Error != "rpc down" || quotes[1].Rank != 0 {
		t.Fatalf("failed route must not carry a fee or rank: %+v", quotes[1])
	}
}

func TestRouteQuotesRankPerFeeToken(t *testing.T) {
	list := chains.Defaults()
	usdc, _ := list[0].Token("USDC")
	routes := []resolver.Route{
		{Chain: list[0], Token: usdc, Fee: decimal.NewNullDecimal(decimal.RequireFromString("0.2"))},
		{Chain: list[2], Token: usdc, Fee: decimal.NewNullDecimal(decimal.RequireFromString("0.00003"))},
		{Chain: list[1], Token: usdc, Fee: decimal.NewNullDecimal(decimal.RequireFromString("5"))},
	}
	quotes := RouteQuotes(routes)
	want := map[string]int{"tron": 1, "base": 1, "ethereum": 2}
	for _, q := range quotes {
		if q.Rank != want[q.Chain] {
			t.Fatalf("unexpected rank for %s (%s): %d", q.Chain, q.FeeToken, q.Rank)
		}
	}
}
