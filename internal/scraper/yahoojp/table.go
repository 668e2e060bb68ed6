package yahoojp

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ahmethakanbesel/yahoojp-history/internal/apperror"
	"github.com/ahmethakanbesel/yahoojp-history/internal/scraper"
)

// tableSelector matches the price history table. A well-formed page has
// exactly one.
const tableSelector = "table.boardFin"

// TableExtractor reads the history table out of a page.
type TableExtractor struct{}

var _ scraper.Extractor = TableExtractor{}

func (TableExtractor) Extract(content []byte) (scraper.Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return scraper.Table{}, apperror.Wrap(apperror.FormatMismatch, "parse page", err)
	}

	tables := doc.Find(tableSelector)
	switch n := tables.Length(); n {
	case 1:
	case 0:
		return scraper.Table{}, apperror.New(apperror.FormatMismatch, "no data table in page")
	default:
		return scraper.Table{}, apperror.New(apperror.FormatMismatch, fmt.Sprintf("%d data tables in page, expected one", n))
	}

	var t scraper.Table
	tables.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if t.Header == nil {
			if th := tr.Find("th"); th.Length() > 0 {
				t.Header = cellTexts(th)
				return
			}
		}
		if td := tr.Find("td"); td.Length() > 0 {
			t.Rows = append(t.Rows, scraper.RawRecord(cellTexts(td)))
		}
	})
	return t, nil
}

func cellTexts(s *goquery.Selection) []string {
	out := make([]string, 0, s.Length())
	s.Each(func(_ int, cell *goquery.Selection) {
		out = append(out, strings.TrimSpace(cell.Text()))
	})
	return out
}
