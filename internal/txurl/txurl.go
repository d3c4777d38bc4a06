// Package txurl renders resolved intents as transaction-frame URLs.
package txurl

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ggonzalez94/stablepay/internal/resolver"
)

const DefaultEndpoint = "https://base-tx-frame.vercel.app/transaction/"

type Builder struct {
	endpoint string
}

func New(endpoint string) (*Builder, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse frame endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("frame endpoint %q must be an absolute http(s) URL", endpoint)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, fmt.Errorf("frame endpoint %q must not carry a query or fragment", endpoint)
	}
	return &Builder{endpoint: endpoint}, nil
}

func (b *Builder) Endpoint() string { return b.endpoint }

// Build is pure: keys always appear in the order transaction_type, chain,
// token, amount, recipient, fee and absent values are left out.
func (b *Builder) Build(intent resolver.Intent) string {
	var sb strings.Builder
	sb.WriteString(b.endpoint)
	sep := byte('?')
	add := func(key, value string) {
		sb.WriteByte(sep)
		sep = '&'
		sb.WriteString(key)
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(value))
	}

	add("transaction_type", string(intent.Operation))
	add("chain", intent.Chain.ID)
	add("token", intent.Token.Symbol)
	if intent.Amount.Valid {
		add("amount", intent.Amount.Decimal.String())
	}
	if intent.Recipient != "" {
		add("recipient", intent.Recipient)
	}
	if intent.Fee.Valid {
		add("fee", intent.Fee.Decimal.String())
	}
	return sb.String()
}
