package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/ahmethakanbesel/yahoojp-history/internal/apperror"
)

const dateFormat = "2006-01-02"

// Interval is the bar granularity requested from the source. Only daily
// bars are served.
type Interval string

const Daily Interval = "d"

// DefaultPeriodDays is the look-back used when only an end date is known.
const DefaultPeriodDays = 10

// Query identifies one instrument and date range. Build it with NewQuery or
// NewQueryForPeriod; the zero value is not valid.
type Query struct {
	Code     string
	Start    time.Time
	End      time.Time
	Interval Interval
}

// NewQuery validates the range and truncates both ends to calendar dates.
func NewQuery(code string, start, end time.Time) (Query, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Query{}, apperror.New(apperror.InvalidQuery, "instrument code cannot be empty")
	}
	if start.IsZero() {
		return Query{}, apperror.New(apperror.InvalidQuery, "start date cannot be empty")
	}
	if end.IsZero() {
		return Query{}, apperror.New(apperror.InvalidQuery, "end date cannot be empty")
	}

	start, end = Day(start), Day(end)
	if !end.After(start) {
		return Query{}, apperror.New(apperror.InvalidQuery,
			fmt.Sprintf("end date %s should be later than start date %s", end.Format(dateFormat), start.Format(dateFormat)))
	}

	return Query{Code: code, Start: start, End: end, Interval: Daily}, nil
}

// NewQueryForPeriod builds a query ending at end and reaching periodDays
// back. A zero end means today.
func NewQueryForPeriod(code string, end time.Time, periodDays int) (Query, error) {
	if end.IsZero() {
		end = time.Now()
	}
	if periodDays <= 0 {
		return Query{}, apperror.New(apperror.InvalidQuery, "period days must be positive")
	}
	end = Day(end)
	return NewQuery(code, end.AddDate(0, 0, -periodDays), end)
}

// Days is the length of the range in whole days.
func (q Query) Days() int {
	return int(q.End.Sub(q.Start).Hours() / 24)
}

func (q Query) String() string {
	return fmt.Sprintf("%s[%s..%s]", q.Code, q.Start.Format(dateFormat), q.End.Format(dateFormat))
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
