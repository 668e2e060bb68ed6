package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ahmethakanbesel/yahoojp-history/internal/apperror"
)

const (
	DefaultRetries    = 2
	DefaultTimeout    = 5 * time.Second
	DefaultRetryPause = time.Millisecond
	defaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// StatusError describes the last failed attempt of an exhausted fetch.
type StatusError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Timeout    bool
	Attempts   int
	Err        error
}

func (e *StatusError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("%s: timed out after %d attempts", e.URL, e.Attempts)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: HTTP %d after %d attempts", e.URL, e.StatusCode, e.Attempts)
	default:
		return fmt.Sprintf("%s: %v after %d attempts", e.URL, e.Err, e.Attempts)
	}
}

func (e *StatusError) Unwrap() error { return e.Err }

// Fetcher issues GET requests with a per-attempt timeout and a bounded
// number of retries.
type Fetcher struct {
	client     *http.Client
	timeout    time.Duration
	retries    int
	retryPause time.Duration
	userAgent  string
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher with the given options applied.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:     http.DefaultClient,
		timeout:    DefaultTimeout,
		retries:    DefaultRetries,
		retryPause: DefaultRetryPause,
		userAgent:  defaultUserAgent,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithClient sets the HTTP client. The fetcher never closes it.
func WithClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) { f.timeout = d }
}

// WithRetries sets how many times a failed attempt is repeated and the pause
// before each repeat.
func WithRetries(n int, pause time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.retries = max(n, 0)
		f.retryPause = pause
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// Fetch returns the body of the first attempt answered with HTTP 200. Other
// statuses, timeouts and transport errors each consume one attempt. When all
// attempts fail the error is a NetworkFailure wrapping *StatusError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	last := &StatusError{URL: url}

	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			f.logger.Debug("retrying page request",
				"attempt", attempt,
				"pause", f.retryPause,
				"url", url,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.retryPause):
			}
		}

		body, status, err := f.attempt(ctx, url)
		if err == nil && status == http.StatusOK {
			f.logger.Debug("fetched page", "url", url, "size", humanize.Bytes(uint64(len(body))))
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		last.Attempts = attempt + 1
		last.StatusCode = status
		last.Err = err
		last.Timeout = isTimeout(err)

		f.logger.Warn("page request failed",
			"attempt", attempt+1,
			"url", url,
			"status", status,
			"timeout", last.Timeout,
			"error", err,
		)
	}

	return nil, apperror.Wrap(apperror.NetworkFailure, "page request failed", last)
}

func (f *Fetcher) attempt(ctx context.Context, url string) ([]byte, int, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	res, err := f.client.Do(req) //nolint:gosec // URL built from internal config
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, res.StatusCode, nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, res.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, res.StatusCode, nil
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
