package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Store keeps the last fee quote per key (usually a chain id) in sqlite.
// Writers serialise through a file lock so several processes can share one file.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	now  func() time.Time
}

type Result struct {
	Hit     bool
	Fee     decimal.Decimal
	Age     time.Duration
	Expired bool
}

func Open(path, lockPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}

	queries := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"CREATE TABLE IF NOT EXISTS fee_quotes (quote_key TEXT PRIMARY KEY, fee TEXT NOT NULL, created_at INTEGER NOT NULL, ttl_seconds INTEGER NOT NULL);",
	}
	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init cache schema: %w", err)
		}
	}

	store := &Store{db: db, lock: flock.New(lockPath), now: time.Now}
	_ = store.Prune()
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Prune deletes quotes whose TTL has expired.
func (s *Store) Prune() error {
	if s == nil || s.db == nil {
		return nil
	}
	nowUnix := s.now().UTC().Unix()
	if _, err := s.db.Exec("DELETE FROM fee_quotes WHERE created_at + ttl_seconds < ?", nowUnix); err != nil {
		return fmt.Errorf("prune cache: %w", err)
	}
	return nil
}

func (s *Store) Get(key string) (Result, error) {
	var raw string
	var createdUnix int64
	var ttlSeconds int64
	err := s.db.QueryRow("SELECT fee, created_at, ttl_seconds FROM fee_quotes WHERE quote_key = ?", key).Scan(&raw, &createdUnix, &ttlSeconds)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{Hit: false}, nil
		}
		return Result{}, fmt.Errorf("cache read: %w", err)
	}

	fee, err := decimal.NewFromString(raw)
	if err != nil {
		return Result{}, fmt.Errorf("cache decode fee %q: %w", raw, err)
	}

	age := s.now().UTC().Sub(time.Unix(createdUnix, 0).UTC())
	if age < 0 {
		age = 0
	}
	ttl := time.Duration(ttlSeconds) * time.Second

	return Result{
		Hit:     true,
		Fee:     fee,
		Age:     age,
		Expired: age > ttl,
	}, nil
}

func (s *Store) Set(key string, fee decimal.Decimal, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	locked, err := s.lock.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock cache: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock cache: timeout acquiring lock")
	}
	defer func() { _ = s.lock.Unlock() }()

	createdUnix := s.now().UTC().Unix()
	ttlSeconds := int64(ttl.Seconds())
	if ttlSeconds <= 0 {
		ttlSeconds = 1
	}
	_, err = s.db.Exec(`
		INSERT INTO fee_quotes (quote_key, fee, created_at, ttl_seconds)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(quote_key) DO UPDATE SET
			fee=excluded.fee,
			created_at=excluded.created_at,
			ttl_seconds=excluded.ttl_seconds
	`, key, fee.String(), createdUnix, ttlSeconds)
	if err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}
