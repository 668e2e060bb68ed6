package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultMaxPages guards against a source that never returns an empty
	// page. Seven years of daily bars stay well below it.
	DefaultMaxPages  = 200
	DefaultPagePause = 10 * time.Millisecond
)

// Collector walks numbered pages and concatenates their rows.
type Collector struct {
	fetcher   PageFetcher
	extractor Extractor
	pause     time.Duration
	maxPages  int
	logger    *slog.Logger
}

// NewCollector creates a Collector with the given options applied.
func NewCollector(fetcher PageFetcher, extractor Extractor, opts ...CollectorOption) *Collector {
	c := &Collector{
		fetcher:   fetcher,
		extractor: extractor,
		pause:     DefaultPagePause,
		maxPages:  DefaultMaxPages,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithPagePause sets the minimum spacing between consecutive page requests.
func WithPagePause(d time.Duration) CollectorOption {
	return func(c *Collector) { c.pause = d }
}

// WithMaxPages overrides the page-index guard.
func WithMaxPages(n int) CollectorOption {
	return func(c *Collector) {
		if n > 1 {
			c.maxPages = n
		}
	}
}

// WithCollectorLogger sets the logger.
func WithCollectorLogger(l *slog.Logger) CollectorOption {
	return func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	}
}

// CollectAll fetches pages 1, 2, ... until a page yields no rows and returns
// the concatenated rows in page order. The empty page is not part of the
// result. Any fetch or extract failure aborts the whole collection.
func (c *Collector) CollectAll(ctx context.Context, pageURL PageURLFunc) (Table, error) {
	pacer := NewPacer(c.pause)
	var out Table

	page := 1
	for ; page < c.maxPages; page++ {
		if err := pacer.Wait(ctx); err != nil {
			return Table{}, err
		}

		url := pageURL(page)
		content, err := c.fetcher.Fetch(ctx, url)
		if err != nil {
			return Table{}, fmt.Errorf("fetch page %d: %w", page, err)
		}

		t, err := c.extractor.Extract(content)
		if err != nil {
			return Table{}, fmt.Errorf("extract page %d: %w", page, err)
		}

		if len(t.Rows) == 0 {
			c.logger.Debug("reached empty page", "page", page, "rows", len(out.Rows))
			return out, nil
		}

		if out.Header == nil {
			out.Header = t.Header
		}
		out.Rows = append(out.Rows, t.Rows...)
	}

	c.logger.Warn("page guard reached before an empty page", "pages", page-1, "rows", len(out.Rows))
	return out, nil
}

// Pacer spaces consecutive operations at least a fixed interval apart. The
// first Wait returns immediately.
type Pacer struct {
	lim *rate.Limiter
}

// NewPacer returns a Pacer for interval d; d <= 0 disables pacing.
func NewPacer(d time.Duration) *Pacer {
	if d <= 0 {
		return &Pacer{}
	}
	return &Pacer{lim: rate.NewLimiter(rate.Every(d), 1)}
}

// Wait blocks until the next operation may start or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.lim == nil {
		return ctx.Err()
	}
	return p.lim.Wait(ctx)
}
