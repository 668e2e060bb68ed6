// Package yahoojp scrapes daily price history from Yahoo! Finance Japan.
// History is served as numbered HTML pages of a fixed row count; the last page
// is followed by one whose table has no rows.
package yahoojp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ahmethakanbesel/yahoojp-history/internal/history"
	"github.com/ahmethakanbesel/yahoojp-history/internal/scraper"
)

const (
	DefaultEndpoint = "http://info.finance.yahoo.co.jp/history"
	exchangeSuffix  = ".T"
)

// Scraper downloads and normalizes the full history of one query.
type Scraper struct {
	client     *http.Client
	endpoint   string
	timeout    time.Duration
	retries    int
	retryPause time.Duration
	pagePause  time.Duration
	maxPages   int
	logger     *slog.Logger
}

// New creates a Scraper with the given options applied.
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client:     http.DefaultClient,
		endpoint:   DefaultEndpoint,
		timeout:    scraper.DefaultTimeout,
		retries:    scraper.DefaultRetries,
		retryPause: scraper.DefaultRetryPause,
		pagePause:  scraper.DefaultPagePause,
		maxPages:   scraper.DefaultMaxPages,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithClient sets the HTTP client shared by every page request.
func WithClient(c *http.Client) Option {
	return func(s *Scraper) {
		if c != nil {
			s.client = c
		}
	}
}

// WithEndpoint overrides the history page URL.
func WithEndpoint(ep string) Option {
	return func(s *Scraper) { s.endpoint = ep }
}

// WithTimeout bounds each page request attempt.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) { s.timeout = d }
}

// WithRetries sets the retry count and the pause before each retry.
func WithRetries(n int, pause time.Duration) Option {
	return func(s *Scraper) {
		s.retries = n
		s.retryPause = pause
	}
}

// WithPagePause sets the minimum spacing between page requests.
func WithPagePause(d time.Duration) Option {
	return func(s *Scraper) { s.pagePause = d }
}

// WithMaxPages overrides the page-index guard.
func WithMaxPages(n int) Option {
	return func(s *Scraper) { s.maxPages = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scraper) {
		if l != nil {
			s.logger = l
		}
	}
}

// Source returns the scraper identifier.
func (s *Scraper) Source() string { return "yahoojp" }

// PageURL returns the page template for q: a function from page index to the
// URL of that page.
func (s *Scraper) PageURL(q history.Query) scraper.PageURLFunc {
	base := fmt.Sprintf("%s?code=%s%s&sy=%d&sm=%d&sd=%d&ey=%d&em=%d&ed=%d&tm=%s",
		s.endpoint, q.Code, exchangeSuffix,
		q.Start.Year(), int(q.Start.Month()), q.Start.Day(),
		q.End.Year(), int(q.End.Month()), q.End.Day(),
		q.Interval,
	)
	return func(page int) string {
		return fmt.Sprintf("%s&p=%d", base, page)
	}
}

// Scrape collects every page for q and returns the normalized dataset with
// any data-quality warnings.
func (s *Scraper) Scrape(ctx context.Context, q history.Query) (*history.Dataset, []history.Warning, error) {
	logger := s.logger.With("code", q.Code)

	fetcher := scraper.NewFetcher(
		scraper.WithClient(s.client),
		scraper.WithTimeout(s.timeout),
		scraper.WithRetries(s.retries, s.retryPause),
		scraper.WithLogger(logger),
	)
	collector := scraper.NewCollector(fetcher, TableExtractor{},
		scraper.WithPagePause(s.pagePause),
		scraper.WithMaxPages(s.maxPages),
		scraper.WithCollectorLogger(logger),
	)

	table, err := collector.CollectAll(ctx, s.PageURL(q))
	if err != nil {
		return nil, nil, fmt.Errorf("collect %s: %w", q.Code, err)
	}

	ds, warnings, err := history.NewNormalizer(logger).Normalize(table)
	if err != nil {
		return nil, warnings, fmt.Errorf("normalize %s: %w", q.Code, err)
	}

	logger.Info("retrieved yahoojp data",
		"from", q.Start.Format(time.DateOnly), "to", q.End.Format(time.DateOnly),
		"count", ds.Len(), "warnings", len(warnings))
	return ds, warnings, nil
}
