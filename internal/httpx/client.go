// Package httpx fetches JSON documents from fee oracles.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	clierr "github.com/ggonzalez94/stablepay/internal/errors"
	"github.com/ggonzalez94/stablepay/internal/version"
)

const (
	maxBodyBytes  = 1 << 20
	maxRetryAfter = 5 * time.Second
)

// Client reads fee oracles over HTTP. Network errors, 5xx and 429 responses
// are retried with jittered backoff while the caller's deadline still leaves
// room for another attempt.
type Client struct {
	httpClient *http.Client
	retries    int
	userAgent  string
}

func New(timeout time.Duration, retries int) *Client {
	if retries < 0 {
		retries = 0
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		retries:    retries,
		userAgent:  version.UserAgent(),
	}
}

type result struct {
	body       json.RawMessage
	err        error
	retryable  bool
	retryAfter time.Duration
}

// Fetch GETs rawURL and returns its JSON body.
func (c *Client) Fetch(ctx context.Context, rawURL string, headers map[string]string) (json.RawMessage, error) {
	host := hostOf(rawURL)
	var last result
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			delay := last.retryAfter
			if delay == 0 {
				delay = backoff(attempt)
			}
			if !wait(ctx, delay) {
				return nil, last.err
			}
		}
		last = c.fetchOnce(ctx, rawURL, host, headers)
		if last.err == nil {
			return last.body, nil
		}
		if !last.retryable {
			break
		}
	}
	return nil, last.err
}

func (c *Client) fetchOnce(ctx context.Context, rawURL, host string, headers map[string]string) result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return result{err: clierr.Wrap(clierr.CodeUsage, fmt.Sprintf("invalid fee oracle url %q", rawURL), err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result{err: netError(host, err), retryable: ctx.Err() == nil}
	}
	defer resp.Body.Close()
	buf, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return result{err: clierr.Wrap(clierr.CodeUnavailable, fmt.Sprintf("read fee oracle %s response", host), err), retryable: true}
	}

	switch status := resp.StatusCode; {
	case status == http.StatusTooManyRequests:
		return result{
			err:        clierr.New(clierr.CodeRateLimited, fmt.Sprintf("fee oracle %s is rate limiting requests", host)),
			retryable:  true,
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return result{err: clierr.New(clierr.CodeAuth, fmt.Sprintf("fee oracle %s rejected the configured credentials (status %d)", host, status))}
	case status >= http.StatusInternalServerError:
		return result{err: clierr.New(clierr.CodeUnavailable, fmt.Sprintf("fee oracle %s unavailable (status %d)", host, status)), retryable: true}
	case status < 200 || status >= 300:
		return result{err: clierr.New(clierr.CodeUnsupported, fmt.Sprintf("fee oracle %s returned status %d", host, status))}
	}

	body := bytes.TrimSpace(buf)
	if len(body) == 0 {
		return result{err: clierr.New(clierr.CodeUnavailable, fmt.Sprintf("fee oracle %s returned an empty body", host))}
	}
	if !json.Valid(body) {
		return result{err: clierr.New(clierr.CodeUnavailable, fmt.Sprintf("fee oracle %s returned malformed JSON", host))}
	}
	return result{body: json.RawMessage(body)}
}

// wait sleeps for d unless ctx ends first or its deadline is closer than d.
func wait(ctx context.Context, d time.Duration) bool {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < d {
		return false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// parseRetryAfter reads delta-seconds or an HTTP date, capped at maxRetryAfter.
func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}
	var d time.Duration
	if secs, err := strconv.Atoi(value); err == nil {
		d = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(value); err == nil {
		d = at.Sub(now)
	}
	if d < 0 {
		return 0
	}
	return min(d, maxRetryAfter)
}

func netError(host string, err error) error {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return clierr.Wrap(clierr.CodeUnavailable, fmt.Sprintf("fee oracle %s timed out", host), err)
	}
	return clierr.Wrap(clierr.CodeUnavailable, fmt.Sprintf("fee oracle %s unreachable", host), err)
}

func hostOf(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		return u.Host
	}
	return rawURL
}

func backoff(attempt int) time.Duration {
	d := min(120*time.Millisecond*time.Duration(1<<uint(attempt-1)), 2*time.Second)
	return d + time.Duration(rand.Intn(75))*time.Millisecond
}
