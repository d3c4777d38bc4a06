package fees

import (
	"context"
	"time"

	"github.com/ggonzalez94/stablepay/internal/cache"
	"github.com/shopspring/decimal"
)

type QuoteStore interface {
	Get(key string) (cache.Result, error)
	Set(key string, fee decimal.Decimal, ttl time.Duration) error
}

// Cached serves a stored quote while it is younger than its TTL and asks the
// wrapped estimator otherwise. Expired quotes are never served.
type Cached struct {
	next  Estimator
	store QuoteStore
	key   string
	ttl   time.Duration
}

func NewCached(next Estimator, store QuoteStore, key string, ttl time.Duration) *Cached {
	return &Cached{next: next, store: store, key: key, ttl: ttl}
}

func (c *Cached) EstimateFee(ctx context.Context) (decimal.Decimal, error) {
	if res, err := c.store.Get(c.key); err == nil && res.Hit && !res.Expired {
		return res.Fee, nil
	}
	fee, err := c.next.EstimateFee(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	// A failed write only costs a cache miss next time.
	_ = c.store.Set(c.key, fee, c.ttl)
	return fee, nil
}
