// Package fees estimates the network fee of a stablecoin transfer in units of
// the chain's native token.
package fees

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Estimator returns the current fee estimate. Implementations may block on
// network calls and must honour ctx cancellation.
type Estimator interface {
	EstimateFee(ctx context.Context) (decimal.Decimal, error)
}

type EstimatorFunc func(ctx context.Context) (decimal.Decimal, error)

func (f EstimatorFunc) EstimateFee(ctx context.Context) (decimal.Decimal, error) {
	return f(ctx)
}

type staticEstimator struct {
	fee decimal.Decimal
}

// Static always reports the same fee.
func Static(fee decimal.Decimal) Estimator {
	return staticEstimator{fee: fee}
}

func (s staticEstimator) EstimateFee(ctx context.Context) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	return s.fee, nil
}

// Instrument reports the outcome and latency of every estimate to observe.
func Instrument(next Estimator, observe func(status string, elapsed time.Duration)) Estimator {
	return EstimatorFunc(func(ctx context.Context) (decimal.Decimal, error) {
		start := time.Now()
		fee, err := next.EstimateFee(ctx)
		status := "ok"
		if err != nil {
			status = "error"
		}
		observe(status, time.Since(start))
		return fee, err
	})
}
