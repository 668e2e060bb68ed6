// Package yahoojptest provides a fake Yahoo! Finance Japan history site for
// tests.
package yahoojptest

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// Header is the native column header of the history table.
var Header = []string{"日付", "始値", "高値", "安値", "終値", "出来高", "調整後終値*"}

// Server serves numbered history pages per instrument code. Pages past the
// configured ones render an empty table.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	pages    map[string][][][]string
	raw      map[string]string
	status   map[string]int
	requests map[string][]int
}

// NewServer starts a fake site. Configure it with SetPages, SetRaw and
// SetStatus before issuing requests.
func NewServer() *Server {
	s := &Server{
		pages:    make(map[string][][][]string),
		raw:      make(map[string]string),
		status:   make(map[string]int),
		requests: make(map[string][]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Endpoint is the history URL to configure scrapers with.
func (s *Server) Endpoint() string { return s.URL + "/history" }

// SetPages sets the rows of each page for code, page 1 first.
func (s *Server) SetPages(code string, pages ...[][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[code] = pages
}

// SetRaw makes every page of code return body verbatim.
func (s *Server) SetRaw(code, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[code] = body
}

// SetStatus makes every request for code answer with status.
func (s *Server) SetStatus(code string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[code] = status
}

// Requests returns the page indices requested for code, in order.
func (s *Server) Requests(code string) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.requests[code]...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := strings.TrimSuffix(q.Get("code"), ".T")
	page, _ := strconv.Atoi(q.Get("p"))

	s.mu.Lock()
	s.requests[code] = append(s.requests[code], page)
	status, hasStatus := s.status[code]
	raw, hasRaw := s.raw[code]
	pages := s.pages[code]
	s.mu.Unlock()

	if hasStatus {
		w.WriteHeader(status)
		return
	}
	if hasRaw {
		_, _ = w.Write([]byte(raw))
		return
	}

	var rows [][]string
	if page >= 1 && page <= len(pages) {
		rows = pages[page-1]
	}
	_, _ = w.Write([]byte(Page(Header, rows)))
}

// Page renders a history page holding one data table.
func Page(header []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(`<html><head><meta charset="utf-8"></head><body><div id="main">`)
	b.WriteString(`<table class="boardFin yjSt marB6"><tr>`)
	for _, h := range header {
		fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(h))
	}
	b.WriteString("</tr>")
	for _, row := range rows {
		b.WriteString("<tr>")
		for i, c := range row {
			if len(row) < len(header) && i == len(row)-1 {
				fmt.Fprintf(&b, `<td colspan="%d">%s</td>`, len(header)-i, html.EscapeString(c))
				continue
			}
			fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(c))
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table></div></body></html>")
	return b.String()
}

// Row builds a regular data row.
func Row(date string, open, high, low, close, volume, adjClose string) []string {
	return []string{date, open, high, low, close, volume, adjClose}
}
