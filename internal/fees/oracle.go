package fees

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	clierr "github.com/ggonzalez94/stablepay/internal/errors"
	"github.com/ggonzalez94/stablepay/internal/httpx"
	"github.com/shopspring/decimal"
)

// Oracle reads a fee from a JSON HTTP endpoint. Field is a dot separated
// path to a number or numeric string, e.g. "data.fee".
type Oracle struct {
	client  *httpx.Client
	url     string
	field   string
	headers map[string]string
}

func NewOracle(client *httpx.Client, url, field string, headers map[string]string) *Oracle {
	if strings.TrimSpace(field) == "" {
		field = "fee"
	}
	return &Oracle{client: client, url: strings.TrimSpace(url), field: strings.TrimSpace(field), headers: headers}
}

func (o *Oracle) EstimateFee(ctx context.Context) (decimal.Decimal, error) {
	body, err := o.client.Fetch(ctx, o.url, o.headers)
	if err != nil {
		return decimal.Zero, err
	}
	raw, err := lookupField(body, o.field)
	if err != nil {
		return decimal.Zero, err
	}
	if strings.TrimSpace(string(raw)) == "null" {
		return decimal.Zero, clierr.New(clierr.CodeUnavailable, fmt.Sprintf("oracle field %s is null", o.field))
	}
	var fee decimal.Decimal
	if err := fee.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, clierr.Wrap(clierr.CodeUnavailable, fmt.Sprintf("decode oracle field %s", o.field), err)
	}
	return fee, nil
}

func lookupField(body json.RawMessage, path string) (json.RawMessage, error) {
	current := body
	for _, part := range strings.Split(path, ".") {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(current, &obj); err != nil {
			return nil, clierr.Wrap(clierr.CodeUnavailable, fmt.Sprintf("oracle field %s: not an object", path), err)
		}
		next, ok := obj[part]
		if !ok {
			return nil, clierr.New(clierr.CodeUnavailable, fmt.Sprintf("oracle response missing field %s", path))
		}
		current = next
	}
	return current, nil
}
