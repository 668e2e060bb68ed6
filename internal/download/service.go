package download

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/ahmethakanbesel/yahoojp-history/internal/history"
)

// Service answers history requests, one session per request over a shared
// client.
type Service struct {
	client     *http.Client
	periodDays int
	opts       []Option
}

// NewService creates a Service. periodDays is the range used when a request
// names neither a start date nor a day count.
func NewService(client *http.Client, periodDays int, opts ...Option) *Service {
	if client == nil {
		client = NewClient()
	}
	if periodDays <= 0 {
		periodDays = history.DefaultPeriodDays
	}
	return &Service{client: client, periodDays: periodDays, opts: opts}
}

func (s *Service) GetHistory(ctx context.Context, req GetHistoryRequest) (*GetHistoryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	q, err := s.query(req)
	if err != nil {
		return nil, err
	}

	sess := New(q, append(slices.Clip(s.opts), WithHTTPClient(s.client))...)
	defer func() { _ = sess.Close() }()

	ds, err := sess.StockData(ctx, false)
	if err != nil {
		return nil, err
	}
	if req.Adjust {
		if ds, err = history.Adjust(ds, false); err != nil {
			return nil, err
		}
	}

	warnings := make([]string, 0, len(sess.Warnings()))
	for _, w := range sess.Warnings() {
		warnings = append(warnings, w.String())
	}
	if len(warnings) > 0 {
		slog.Warn("history has data-quality warnings", "code", q.Code, "count", len(warnings))
	}

	return &GetHistoryResponse{
		Code:      q.Code,
		StartDate: q.Start.Format(time.DateOnly),
		EndDate:   q.End.Format(time.DateOnly),
		Dataset:   ds,
		Warnings:  warnings,
	}, nil
}

func (s *Service) query(req GetHistoryRequest) (history.Query, error) {
	if !req.StartDate.IsZero() {
		end := req.EndDate
		if end.IsZero() {
			end = time.Now()
		}
		return history.NewQuery(req.Code, req.StartDate, end)
	}
	days := req.Days
	if days == 0 {
		days = s.periodDays
	}
	return history.NewQueryForPeriod(req.Code, req.EndDate, days)
}
