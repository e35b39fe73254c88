package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"transcriptsync/internal/services"
)

func TestDoJSONSendsHeadersAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Fatalf("missing auth header: %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		_, _ = w.Write([]byte(`{"id":"abc"}`))
	}))
	defer server.Close()

	client := New("test", server.URL, time.Second, WithHeader("Authorization", "Bearer k"))
	var out struct {
		ID string `json:"id"`
	}
	if err := client.DoJSON(context.Background(), http.MethodPost, "/items", nil, map[string]string{"a": "b"}, &out); err != nil {
		t.Fatalf("DoJSON: %v", err)
	}
	if out.ID != "abc" {
		t.Fatalf("unexpected id %q", out.ID)
	}
}

func TestDoJSONRetriesRateLimited(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var slept []time.Duration
	client := New("test", server.URL, time.Second, WithSleeper(func(d time.Duration) { slept = append(slept, d) }))
	if err := client.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil); err != nil {
		t.Fatalf("DoJSON: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
	if len(slept) != 1 || slept[0] != 2*time.Second {
		t.Fatalf("expected Retry-After sleep of 2s, got %v", slept)
	}
}

func TestStatusMapsToTaxonomy(t *testing.T) {
	cases := map[int]error{
		http.StatusUnauthorized:        services.ErrConfiguration,
		http.StatusNotFound:            services.ErrNotFound,
		http.StatusBadRequest:          services.ErrValidation,
		http.StatusConflict:            services.ErrSinkConflict,
		http.StatusInternalServerError: services.ErrTransient,
	}
	for code, want := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", code)
		}))
		client := New("test", server.URL, time.Second, WithRetryMaxAttempts(1))
		err := client.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil)
		server.Close()
		if !errors.Is(err, want) {
			t.Fatalf("status %d: expected %v, got %v", code, want, err)
		}
		if !IsStatus(err, code) {
			t.Fatalf("status %d: IsStatus false for %v", code, err)
		}
	}
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	client := New("test", "http://example", time.Second, WithRetryBackoff(time.Second, 3*time.Second))
	if got := client.backoffDelay(1); got != time.Second {
		t.Fatalf("attempt 1: %v", got)
	}
	if got := client.backoffDelay(2); got != 2*time.Second {
		t.Fatalf("attempt 2: %v", got)
	}
	if got := client.backoffDelay(5); got != 3*time.Second {
		t.Fatalf("attempt 5: %v", got)
	}
}

func TestResolveKeepsAbsoluteURLs(t *testing.T) {
	client := New("test", "https://api.example.com/v1/", time.Second)
	if got := client.resolve("pages/1"); got != "https://api.example.com/v1/pages/1" {
		t.Fatalf("unexpected resolved url %q", got)
	}
	if got := client.resolve("https://other.example.com/x"); got != "https://other.example.com/x" {
		t.Fatalf("unexpected absolute url %q", got)
	}
}
