// Package resolver validates a transfer or balance request against the chain
// registry and turns it into a fully resolved intent.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/ggonzalez94/stablepay/internal/chains"
	clierr "github.com/ggonzalez94/stablepay/internal/errors"
	"github.com/ggonzalez94/stablepay/internal/normalize"
	"github.com/shopspring/decimal"
)

type Operation string

const (
	OpBalance  Operation = "balance"
	OpTransfer Operation = "transfer"
)

func (o Operation) Valid() bool {
	return o == OpBalance || o == OpTransfer
}

// Request carries raw, untrusted values exactly as the user supplied them.
type Request struct {
	Operation Operation
	Token     string
	Chain     string
	Amount    string
	Recipient string
	Requester string
	Text      string
}

// Intent is only ever built by Resolve. Amount, Recipient and Fee are set
// for transfers and empty for balance checks.
type Intent struct {
	Operation Operation
	Chain     chains.Chain
	Token     chains.Token
	Amount    decimal.NullDecimal
	Recipient string
	Fee       decimal.NullDecimal
	Requester string
}

type Resolver struct {
	registry   *chains.Registry
	normalizer *normalize.Normalizer
}

func New(registry *chains.Registry, normalizer *normalize.Normalizer) *Resolver {
	return &Resolver{registry: registry, normalizer: normalizer}
}

func (r *Resolver) Registry() *chains.Registry { return r.registry }

func (r *Resolver) Resolve(ctx context.Context, req Request) (Intent, error) {
	if !req.Operation.Valid() {
		return Intent{}, clierr.Reject(clierr.CodeUnknownCommand, fmt.Sprintf("unsupported operation %q", req.Operation), []string{string(OpBalance), string(OpTransfer)})
	}

	if req.Operation == OpBalance && strings.TrimSpace(req.Chain) == "" && r.normalizer.NamesChain(req.Token) {
		req.Chain, req.Token = req.Token, ""
	}

	chain, err := r.resolveChain(req)
	if err != nil {
		return Intent{}, err
	}
	token, err := r.resolveToken(req, chain)
	if err != nil {
		return Intent{}, err
	}

	intent := Intent{
		Operation: req.Operation,
		Chain:     chain,
		Token:     token,
		Requester: strings.TrimSpace(req.Requester),
	}
	if req.Operation == OpBalance {
		return intent, nil
	}

	recipient, err := checkRecipient(req.Recipient, chain)
	if err != nil {
		return Intent{}, err
	}
	amount, err := normalize.Amount(req.Amount, token.Decimals)
	if err != nil {
		return Intent{}, clierr.New(clierr.CodeMissingParameter, fmt.Sprintf("Invalid amount: %v", err))
	}
	fee, err := estimateFee(ctx, chain)
	if err != nil {
		return Intent{}, err
	}

	intent.Recipient = recipient
	intent.Amount = decimal.NewNullDecimal(amount)
	intent.Fee = decimal.NewNullDecimal(fee)
	return intent, nil
}

func (r *Resolver) resolveChain(req Request) (chains.Chain, error) {
	chain, ok := r.normalizer.Chain(req.Chain, req.Text)
	if ok {
		return chain, nil
	}
	requested := strings.TrimSpace(req.Chain)
	if requested == "" {
		requested = "(none)"
	}
	return chains.Chain{}, clierr.Reject(
		clierr.CodeUnsupportedChain,
		fmt.Sprintf("Unsupported chain: %s. Supported chains are: %s", requested, strings.Join(r.registry.Names(), ", ")),
		r.registry.IDs(),
	)
}

func (r *Resolver) resolveToken(req Request, chain chains.Chain) (chains.Token, error) {
	token, ok := r.normalizer.Token(req.Token, chain)
	if ok {
		return token, nil
	}
	requested := strings.ToUpper(strings.TrimSpace(req.Token))
	if requested == "" {
		requested = "(default)"
	}
	supported := chain.TokenSymbols()
	return chains.Token{}, clierr.Reject(
		clierr.CodeUnsupportedToken,
		fmt.Sprintf("Unsupported token %s on %s. Supported tokens are: %s", requested, chain.Name, strings.Join(supported, ", ")),
		supported,
	)
}

func checkRecipient(raw string, chain chains.Chain) (string, error) {
	recipient := strings.TrimSpace(raw)
	if recipient == "" {
		return "", clierr.New(clierr.CodeMissingParameter, "Recipient address is required for transfers")
	}
	if !chain.ValidAddress(recipient) {
		return "", clierr.New(clierr.CodeInvalidAddress, fmt.Sprintf("Invalid %s address: %s", chain.Name, recipient))
	}
	return recipient, nil
}

func estimateFee(ctx context.Context, chain chains.Chain) (decimal.Decimal, error) {
	fee, err := chain.Fee.EstimateFee(ctx)
	if err != nil {
		return decimal.Zero, clierr.Wrap(clierr.CodeFeeEstimation, fmt.Sprintf("Could not estimate the %s network fee", chain.Name), err)
	}
	if fee.IsNegative() {
		return decimal.Zero, clierr.New(clierr.CodeFeeEstimation, fmt.Sprintf("Fee estimator for %s returned a negative fee %s", chain.Name, fee))
	}
	return fee, nil
}
