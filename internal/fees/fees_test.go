package fees

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ggonzalez94/stablepay/internal/cache"
	clierr "github.com/ggonzalez94/stablepay/internal/errors"
	"github.com/ggonzalez94/stablepay/internal/httpx"
	"github.com/shopspring/decimal"
)

func TestStaticHonoursCancellation(t *testing.T) {
	est := Static(decimal.RequireFromString("5.0"))
	fee, err := est.EstimateFee(context.Background())
	if err != nil || fee.String() != "5" {
		t.Fatalf("unexpected static result: fee=%s err=%v", fee, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := est.EstimateFee(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestOracleReadsNestedField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"fee":"0.35","unit":"TRX"}}`))
	}))
	defer srv.Close()

	fee, err := NewOracle(httpx.New(time.Second, 0), srv.URL, "data.fee", nil).EstimateFee(context.Background())
	if err != nil {
		t.Fatalf("EstimateFee failed: %v", err)
	}
	if fee.String() != "0.35" {
		t.Fatalf("unexpected fee: %s", fee)
	}
}

func TestOracleAcceptsNumbers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"fee":1.25}`))
	}))
	defer srv.Close()

	fee, err := NewOracle(httpx.New(time.Second, 0), srv.URL, "", nil).EstimateFee(context.Background())
	if err != nil {
		t.Fatalf("EstimateFee failed: %v", err)
	}
	if fee.String() != "1.25" {
		t.Fatalf("unexpected fee: %s", fee)
	}
}

func TestOracleMissingOrNullField(t *testing.T) {
	for _, body := range []string{`{"other":1}`, `{"fee":null}`, `[1,2]`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		_, err := NewOracle(httpx.New(time.Second, 0), srv.URL, "fee", nil).EstimateFee(context.Background())
		srv.Close()
		if !clierr.IsCode(err, clierr.CodeUnavailable) {
			t.Fatalf("body %s: expected unavailable error, got %v", body, err)
		}
	}
}

func TestCachedServesFreshQuote(t *testing.T) {
	tmp := t.TempDir()
	store, err := cache.Open(filepath.Join(tmp, "fees.db"), filepath.Join(tmp, "fees.lock"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer store.Close()

	var calls int32
	live := EstimatorFunc(func(ctx context.Context) (decimal.Decimal, error) {
		atomic.AddInt32(&calls, 1)
		return decimal.RequireFromString("0.2"), nil
	})
	est := NewCached(live, store, "tron", time.Minute)
	for i := 0; i < 3; i++ {
		fee, err := est.EstimateFee(context.Background())
		if err != nil {
			t.Fatalf("EstimateFee failed: %v", err)
		}
		if fee.String() != "0.2" {
			t.Fatalf("unexpected fee: %s", fee)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single live estimate, got %d", calls)
	}
}

func TestCachedPropagatesFailure(t *testing.T) {
	tmp := t.TempDir()
	store, err := cache.Open(filepath.Join(tmp, "fees.db"), filepath.Join(tmp, "fees.lock"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer store.Close()

	boom := errors.New("rpc down")
	est := NewCached(EstimatorFunc(func(ctx context.Context) (decimal.Decimal, error) {
		return decimal.Zero, boom
	}), store, "ethereum", time.Minute)
	if _, err := est.EstimateFee(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected live error, got %v", err)
	}
	res, err := store.Get("ethereum")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if res.Hit {
		t.Fatal("failed estimates must not be cached")
	}
}

func TestInstrumentReportsStatus(t *testing.T) {
	var statuses []string
	observe := func(status string, _ time.Duration) { statuses = append(statuses, status) }

	ok := Instrument(Static(decimal.NewFromInt(1)), observe)
	failing := Instrument(EstimatorFunc(func(ctx context.Context) (decimal.Decimal, error) {
		return decimal.Zero, errors.New("x")
	}), observe)

	_, _ = ok.EstimateFee(context.Background())
	_, _ = failing.EstimateFee(context.Background())
	if len(statuses) != 2 || statuses[0] != "ok" || statuses[1] != "error" {
		t.Fatalf("unexpected statuses: %#v", statuses)
	}
}
