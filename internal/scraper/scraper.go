// Package scraper holds the source-independent half of the download
// pipeline: a retrying page fetcher and a collector that walks numbered
// pages until the source returns an empty table.
package scraper

import "context"

// RawRecord is one table row as cell text, in the source's column order.
type RawRecord []string

// Table is the header plus data rows extracted from one or more pages.
type Table struct {
	Header []string
	Rows   []RawRecord
}

// PageFetcher returns the raw content of one page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Extractor pulls the single data table out of page content. It must fail
// when the table is absent or ambiguous; a table without rows is a valid
// result and ends pagination.
type Extractor interface {
	Extract(content []byte) (Table, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(content []byte) (Table, error)

func (f ExtractorFunc) Extract(content []byte) (Table, error) { return f(content) }

// PageURLFunc renders the URL of a 1-based page index.
type PageURLFunc func(page int) string
