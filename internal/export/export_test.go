package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ahmethakanbesel/yahoojp-history/internal/history"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleDataset() *history.Dataset {
	return &history.Dataset{Records: []history.Record{
		{Date: day(2017, 4, 20), Open: 5750, High: 5810, Low: 5740, Close: 5800, Volume: 5100200, AdjClose: 5800},
		{Date: day(2017, 4, 21), Open: 5800.5, High: 5850, Low: history.Missing, Close: 5820, Volume: 6321500, AdjClose: 5820},
	}}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleDataset()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Date,Open,High,Low,Close,Volume,AdjClose\n" +
		"2017-04-20,5750,5810,5740,5800,5100200,5800\n" +
		"2017-04-21,5800.5,5850,,5820,6321500,5820\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteCSV_Adjusted(t *testing.T) {
	ds, err := history.Adjust(&history.Dataset{Records: []history.Record{
		{Date: day(2017, 4, 21), Open: 100, High: 110, Low: 90, Close: 100, Volume: 1000, AdjClose: 95},
	}}, false)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, ds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Date,Open,High,Low,Close,Volume\n2017-04-21,95,104.5,85.5,95,1000\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, &history.Dataset{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "Date,Open,High,Low,Close,Volume,AdjClose\n" {
		t.Errorf("expected header only, got %q", buf.String())
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")

	if err := WriteFile(path, sampleDataset()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if lines := strings.Count(string(b), "\n"); lines != 3 {
		t.Errorf("expected 3 lines, got %d", lines)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the output file, found %d entries", len(entries))
	}
}

func TestLocalPath(t *testing.T) {
	q, err := history.NewQuery("7203", day(2017, 3, 24), day(2017, 4, 23))
	if err != nil {
		t.Fatalf("new query: %v", err)
	}

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"single digit hour", time.Date(2017, 4, 23, 2, 15, 0, 0, time.UTC), "code_7203_i_86400_p_30d_2017-04-23_2.csv"},
		{"afternoon", time.Date(2017, 3, 1, 16, 0, 0, 0, time.UTC), "code_7203_i_86400_p_30d_2017-03-01_16.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LocalPath("data", q, tt.now)
			if got != filepath.Join("data", tt.want) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
