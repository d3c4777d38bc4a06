package resolver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ggonzalez94/stablepay/internal/chains"
	clierr "github.com/ggonzalez94/stablepay/internal/errors"
	"github.com/ggonzalez94/stablepay/internal/normalize"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Route is the fee quote for sending a token on one chain. Err is set when
// the quote failed; Fee is then invalid.
type Route struct {
	Chain chains.Chain
	Token chains.Token
	Fee   decimal.NullDecimal
	Err   error
}

// Routes quotes every chain that supports the requested token and accepts
// the recipient. Fees are only comparable within one native token, so routes
// are grouped by fee token (groups in registry order) and each group lists
// the cheapest first, failed quotes last and ties in registry order.
// Req.Chain is ignored.
func (r *Resolver) Routes(ctx context.Context, req Request) ([]Route, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Token))
	recipient := strings.TrimSpace(req.Recipient)

	var routes []Route
	for _, chain := range r.registry.Chains() {
		token, ok := r.normalizer.Token(symbol, chain)
		if !ok {
			continue
		}
		if recipient != "" && !chain.ValidAddress(recipient) {
			continue
		}
		routes = append(routes, Route{Chain: chain, Token: token})
	}
	if len(routes) == 0 {
		msg := fmt.Sprintf("No supported chain carries %s", r.displaySymbol(symbol))
		if recipient != "" {
			msg = fmt.Sprintf("No supported chain can send %s to %s", r.displaySymbol(symbol), recipient)
		}
		return nil, clierr.Reject(clierr.CodeUnsupportedToken, msg, r.registry.IDs())
	}

	if strings.TrimSpace(req.Amount) != "" {
		for _, route := range routes {
			if _, err := normalize.Amount(req.Amount, route.Token.Decimals); err != nil {
				return nil, clierr.New(clierr.CodeMissingParameter, fmt.Sprintf("Invalid amount: %v", err))
			}
		}
	}

	// Each goroutine owns one slot, and failures stay on their route.
	g, gctx := errgroup.WithContext(ctx)
	for i := range routes {
		g.Go(func() error {
			fee, err := estimateFee(gctx, routes[i].Chain)
			if err != nil {
				routes[i].Err = err
				return nil
			}
			routes[i].Fee = decimal.NewNullDecimal(fee)
			return nil
		})
	}
	_ = g.Wait()

	group := map[string]int{}
	for _, route := range routes {
		if _, ok := group[route.Chain.NativeToken]; !ok {
			group[route.Chain.NativeToken] = len(group)
		}
	}
	sort.SliceStable(routes, func(i, j int) bool {
		a, b := routes[i], routes[j]
		if ga, gb := group[a.Chain.NativeToken], group[b.Chain.NativeToken]; ga != gb {
			return ga < gb
		}
		if a.Fee.Valid != b.Fee.Valid {
			return a.Fee.Valid
		}
		if !a.Fee.Valid {
			return false
		}
		return a.Fee.Decimal.LessThan(b.Fee.Decimal)
	})
	return routes, nil
}

func (r *Resolver) displaySymbol(symbol string) string {
	if symbol == "" {
		return r.normalizer.DefaultToken()
	}
	return symbol
}
