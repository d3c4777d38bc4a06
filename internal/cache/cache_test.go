package cache

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	tmp := t.TempDir()
	store, err := Open(filepath.Join(tmp, "fees.db"), filepath.Join(tmp, "fees.lock"))
	if err != nil {
		t.Fatalf("Open cache failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCacheSetGetFreshAndExpired(t *testing.T) {
	store := openTestStore(t)
	base := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return base }

	if err := store.Set("ethereum", decimal.RequireFromString("0.000195"), 30*time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	res, err := store.Get("ethereum")
	if err != nil {
		t.Fatalf("Get fresh failed: %v", err)
	}
	if !res.Hit || res.Expired {
		t.Fatalf("expected fresh hit, got %+v", res)
	}
	if res.Fee.String() != "0.000195" {
		t.Fatalf("unexpected fee: %s", res.Fee)
	}

	store.now = func() time.Time { return base.Add(31 * time.Second) }
	res, err = store.Get("ethereum")
	if err != nil {
		t.Fatalf("Get expired failed: %v", err)
	}
	if !res.Hit || !res.Expired {
		t.Fatalf("expected expired hit, got %+v", res)
	}
}

func TestCacheMiss(t *testing.T) {
	store := openTestStore(t)
	res, err := store.Get("tron")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if res.Hit {
		t.Fatalf("expected miss, got %+v", res)
	}
}

func TestCachePruneDropsExpired(t *testing.T) {
	store := openTestStore(t)
	base := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return base }
	if err := store.Set("base", decimal.RequireFromString("0.1"), time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	store.now = func() time.Time { return base.Add(time.Minute) }
	if err := store.Prune(); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	res, err := store.Get("base")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if res.Hit {
		t.Fatalf("expected pruned entry to miss, got %+v", res)
	}
}

func TestCacheConcurrentOpenAndSet(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "fees.db")
	lockPath := filepath.Join(tmp, "fees.lock")

	const workers = 8
	const iterations = 20

	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for worker := 0; worker < workers; worker++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			store, err := Open(dbPath, lockPath)
			if err != nil {
				errCh <- fmt.Errorf("worker %d open: %w", workerID, err)
				return
			}
			defer store.Close()

			for i := 0; i < iterations; i++ {
				key := fmt.Sprintf("worker-%d-chain-%d", workerID, i)
				if err := store.Set(key, decimal.NewFromInt(int64(i)), time.Minute); err != nil {
					errCh <- fmt.Errorf("worker %d set iter %d: %w", workerID, i, err)
					return
				}
				res, err := store.Get(key)
				if err != nil {
					errCh <- fmt.Errorf("worker %d get iter %d: %w", workerID, i, err)
					return
				}
				if !res.Hit {
					errCh <- fmt.Errorf("worker %d get iter %d: expected hit", workerID, i)
					return
				}
			}
		}(worker)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatal(err)
	}
}
