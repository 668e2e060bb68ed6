package history

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/width"

	"github.com/ahmethakanbesel/yahoojp-history/internal/apperror"
	"github.com/ahmethakanbesel/yahoojp-history/internal/scraper"
)

// WarningKind classifies a non-fatal data-quality finding.
type WarningKind string

const (
	WarnColumns   WarningKind = "columns"
	WarnMissing   WarningKind = "missing"
	WarnDuplicate WarningKind = "duplicate"
)

type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string { return string(w.Kind) + ": " + w.Message }

type field int

const (
	fieldDate field = iota
	fieldOpen
	fieldHigh
	fieldLow
	fieldClose
	fieldVolume
	fieldAdjClose
)

// column maps one native table column, by position, to a canonical field.
type column struct {
	label string
	field field
}

// nativeColumns is the history table layout of the Japanese site. Tables
// without the adjusted close column carry only the first six.
var nativeColumns = []column{
	{"日付", fieldDate},
	{"始値", fieldOpen},
	{"高値", fieldHigh},
	{"安値", fieldLow},
	{"終値", fieldClose},
	{"出来高", fieldVolume},
	{"調整後終値*", fieldAdjClose},
}

var dateLayouts = []string{"2006年1月2日", "2006/1/2", dateFormat}

// Normalizer turns native table rows into a canonical Dataset.
type Normalizer struct {
	columns []column
	logger  *slog.Logger
}

func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{columns: nativeColumns, logger: logger}
}

// Normalize maps, parses and date-sorts the rows of t. Data-quality problems
// are returned as warnings; only an unreadable date or number fails.
func (n *Normalizer) Normalize(t scraper.Table) (*Dataset, []Warning, error) {
	var warnings []Warning
	warn := func(kind WarningKind, format string, args ...any) {
		w := Warning{Kind: kind, Message: fmt.Sprintf(format, args...)}
		n.logger.Warn("data quality", "kind", string(kind), "detail", w.Message)
		warnings = append(warnings, w)
	}

	cols := n.columnsFor(len(t.Header))
	if len(t.Rows) > 0 && !n.headerMatches(t.Header, cols) {
		warn(WarnColumns, "column labels %v differ from expected %v", t.Header, labels(cols))
	}

	ds := &Dataset{Records: make([]Record, 0, len(t.Rows))}
	missingRows := 0
	for i, row := range t.Rows {
		rec, missing, err := n.parseRow(row, cols)
		if err != nil {
			return nil, warnings, fmt.Errorf("row %d: %w", i+1, err)
		}
		if missing {
			missingRows++
		}
		ds.Records = append(ds.Records, rec)
	}
	if missingRows > 0 {
		warn(WarnMissing, "%d of %d rows contain missing values", missingRows, len(t.Rows))
	}

	slices.SortStableFunc(ds.Records, func(a, b Record) int { return a.Date.Compare(b.Date) })

	for i := 1; i < len(ds.Records); i++ {
		if ds.Records[i].Date.Equal(ds.Records[i-1].Date) {
			warn(WarnDuplicate, "date %s appears more than once", ds.Records[i].Date.Format(dateFormat))
		}
	}

	return ds, warnings, nil
}

func (n *Normalizer) columnsFor(headerLen int) []column {
	if headerLen == len(n.columns)-1 {
		return n.columns[:headerLen]
	}
	return n.columns
}

func (n *Normalizer) headerMatches(header []string, cols []column) bool {
	if len(header) != len(cols) {
		return false
	}
	for i, c := range cols {
		if strings.TrimSpace(header[i]) != c.label {
			return false
		}
	}
	return true
}

func (n *Normalizer) parseRow(row scraper.RawRecord, cols []column) (Record, bool, error) {
	rec := Record{Open: Missing, High: Missing, Low: Missing, Close: Missing, Volume: Missing, AdjClose: Missing}
	missing := false
	// Split and dividend notices span the value columns with free text.
	notice := len(row) < len(cols)

	for i, c := range cols {
		var cell string
		if i < len(row) {
			cell = row[i]
		}

		if c.field == fieldDate {
			d, err := parseDate(cell)
			if err != nil {
				return Record{}, false, err
			}
			rec.Date = d
			continue
		}

		v, ok, err := parseNumber(cell)
		if err != nil && !notice {
			return Record{}, false, err
		}
		if !ok {
			missing = true
			continue
		}
		switch c.field {
		case fieldOpen:
			rec.Open = v
		case fieldHigh:
			rec.High = v
		case fieldLow:
			rec.Low = v
		case fieldClose:
			rec.Close = v
		case fieldVolume:
			rec.Volume = v
		case fieldAdjClose:
			rec.AdjClose = v
		}
	}

	if len(cols) < len(n.columns) {
		rec.AdjClose = rec.Close
	}
	return rec, missing, nil
}

func parseDate(cell string) (time.Time, error) {
	s := strings.TrimSpace(width.Narrow.String(cell))
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, apperror.New(apperror.ParseError, fmt.Sprintf("cannot parse date %q", cell))
}

// parseNumber reads a localized number. ok is false for an empty or dash
// placeholder cell.
func parseNumber(cell string) (float64, bool, error) {
	s := strings.TrimSpace(width.Narrow.String(cell))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || strings.Trim(s, "-") == "" {
		return 0, false, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false, apperror.Wrap(apperror.ParseError, fmt.Sprintf("cannot parse number %q", cell), err)
	}
	return d.InexactFloat64(), true, nil
}

func labels(cols []column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.label
	}
	return out
}
