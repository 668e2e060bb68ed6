package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ahmethakanbesel/yahoojp-history/internal/apperror"
)

func newTestFetcher(ts *httptest.Server, opts ...FetcherOption) *Fetcher {
	base := []FetcherOption{
		WithClient(ts.Client()),
		WithTimeout(time.Second),
		WithRetries(2, time.Millisecond),
	}
	return NewFetcher(append(base, opts...)...)
}

func TestFetch_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("unexpected user agent: %s", r.Header.Get("User-Agent"))
		}
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer ts.Close()

	f := newTestFetcher(ts, WithUserAgent("test-agent"))
	body, err := f.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "<html>ok</html>" {
		t.Errorf("body = %q", body)
	}
}

func TestFetch_RetriesUntilOK(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("third time"))
	}))
	defer ts.Close()

	body, err := newTestFetcher(ts).Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "third time" {
		t.Errorf("body = %q", body)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 requests, got %d", calls.Load())
	}
}

func TestFetch_ExhaustedRetries(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := newTestFetcher(ts).Fetch(context.Background(), ts.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperror.Is(err, apperror.NetworkFailure) {
		t.Errorf("expected NetworkFailure, got %v", err)
	}

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError in chain, got %T", err)
	}
	if se.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", se.StatusCode)
	}
	if se.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", se.Attempts)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 requests, got %d", calls.Load())
	}
}

func TestFetch_ZeroRetries(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := newTestFetcher(ts, WithRetries(0, 0)).Fetch(context.Background(), ts.URL)
	if !apperror.Is(err, apperror.NetworkFailure) {
		t.Fatalf("expected NetworkFailure, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 request, got %d", calls.Load())
	}
}

func TestFetch_TimeoutConsumesRetry(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		_, _ = w.Write([]byte("late but fine"))
	}))
	defer ts.Close()

	f := newTestFetcher(ts, WithTimeout(50*time.Millisecond))
	body, err := f.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "late but fine" {
		t.Errorf("body = %q", body)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 requests, got %d", calls.Load())
	}
}

func TestFetch_AllAttemptsTimeOut(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	f := newTestFetcher(ts, WithTimeout(20*time.Millisecond), WithRetries(1, time.Millisecond))
	_, err := f.Fetch(context.Background(), ts.URL)
	if !apperror.Is(err, apperror.NetworkFailure) {
		t.Fatalf("expected NetworkFailure, got %v", err)
	}

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %T", err)
	}
	if !se.Timeout {
		t.Error("expected timeout to be recorded")
	}
	if se.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", se.Attempts)
	}
}

func TestFetch_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher(ts, WithRetries(5, time.Second)).Fetch(ctx, ts.URL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
