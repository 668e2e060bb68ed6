// Package download binds one instrument query to a cached scrape and exposes
// it as data or as a CSV file.
package download

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/ahmethakanbesel/yahoojp-history/internal/apperror"
	"github.com/ahmethakanbesel/yahoojp-history/internal/export"
	"github.com/ahmethakanbesel/yahoojp-history/internal/history"
	"github.com/ahmethakanbesel/yahoojp-history/internal/scraper/yahoojp"
)

// NewClient returns an HTTP client with a cookie jar, suitable for sharing
// across sessions.
func NewClient() *http.Client {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return &http.Client{Jar: jar}
}

type cacheState int

const (
	cacheEmpty cacheState = iota
	cachePopulated
)

// Session downloads the history of one query at most once unless asked to
// refresh. It is not safe for concurrent use.
type Session struct {
	query     history.Query
	client    *http.Client
	ownClient bool
	scraper   *yahoojp.Scraper
	logger    *slog.Logger

	state    cacheState
	cache    *history.Dataset
	warnings []history.Warning
	closed   bool
}

type settings struct {
	client  *http.Client
	scraper []yahoojp.Option
	logger  *slog.Logger
}

// Option configures a Session.
type Option func(*settings)

// WithHTTPClient makes the session use c. The session never releases a
// client it did not create.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.client = c }
}

func WithEndpoint(ep string) Option {
	return func(s *settings) { s.scraper = append(s.scraper, yahoojp.WithEndpoint(ep)) }
}

func WithPagePause(d time.Duration) Option {
	return func(s *settings) { s.scraper = append(s.scraper, yahoojp.WithPagePause(d)) }
}

func WithRetries(n int, pause time.Duration) Option {
	return func(s *settings) { s.scraper = append(s.scraper, yahoojp.WithRetries(n, pause)) }
}

func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.scraper = append(s.scraper, yahoojp.WithTimeout(d)) }
}

func WithMaxPages(n int) Option {
	return func(s *settings) { s.scraper = append(s.scraper, yahoojp.WithMaxPages(n)) }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// New creates a session for q. Callers release it with Close.
func New(q history.Query, opts ...Option) *Session {
	st := settings{logger: slog.Default()}
	for _, o := range opts {
		o(&st)
	}
	if st.logger == nil {
		st.logger = slog.Default()
	}

	s := &Session{query: q, client: st.client, logger: st.logger.With("code", q.Code)}
	if s.client == nil {
		s.client = NewClient()
		s.ownClient = true
	}
	s.scraper = yahoojp.New(append(st.scraper,
		yahoojp.WithClient(s.client),
		yahoojp.WithLogger(st.logger),
	)...)
	return s
}

func (s *Session) Query() history.Query { return s.query }

// Warnings returns the data-quality warnings of the cached download.
func (s *Session) Warnings() []history.Warning { return s.warnings }

// StockData returns the unadjusted history. The first call downloads it;
// later calls return the cached dataset without network activity unless
// force is set, in which case the cache is replaced. The returned dataset is
// shared with the cache and must not be modified.
func (s *Session) StockData(ctx context.Context, force bool) (*history.Dataset, error) {
	if s.closed {
		return nil, apperror.New(apperror.Conflict, "session is closed")
	}
	if s.state == cachePopulated && !force {
		return s.cache, nil
	}

	ds, warnings, err := s.scraper.Scrape(ctx, s.query)
	if err != nil {
		return nil, err
	}
	s.cache, s.warnings, s.state = ds, warnings, cachePopulated
	return ds, nil
}

// ExportCSV writes the history to path, adjusted for splits and dividends
// when adjust is set. The cached dataset stays unadjusted.
func (s *Session) ExportCSV(ctx context.Context, path string, adjust bool) error {
	ds, err := s.StockData(ctx, false)
	if err != nil {
		return err
	}
	if adjust {
		if ds, err = history.Adjust(ds, false); err != nil {
			return err
		}
	}
	if err := export.WriteFile(path, ds); err != nil {
		return err
	}
	s.logger.Info("exported history", "path", path, "records", ds.Len(), "adjusted", adjust)
	return nil
}

// Filename returns the conventional CSV path for this session under dir.
func (s *Session) Filename(dir string) string {
	return export.LocalPath(dir, s.query, time.Now())
}

// Close drops the cache and releases the HTTP client if the session created
// it. Calling Close more than once is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cache, s.warnings, s.state = nil, nil, cacheEmpty
	if s.ownClient {
		s.client.CloseIdleConnections()
	}
	return nil
}
