package assemblyai_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"transcriptsync/internal/services"
	"transcriptsync/internal/services/assemblyai"
)

func TestSubmitSendsSpeakerLabels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcript" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "key" {
			t.Fatalf("missing authorization header")
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["audio_url"] != "https://cdn.example/audio" || body["speaker_labels"] != true {
			t.Fatalf("unexpected body %v", body)
		}
		_, _ = io.WriteString(w, `{"id":"job-1","status":"queued"}`)
	}))
	defer server.Close()

	client, err := assemblyai.New(assemblyai.Config{APIKey: "key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id, err := client.Submit(context.Background(), "https://cdn.example/audio", assemblyai.Options{SpeakerLabels: true})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != "job-1" {
		t.Fatalf("unexpected id %q", id)
	}
}

func TestPollerReturnsCompletedJob(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcript/job-9" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if calls.Add(1) < 3 {
			_, _ = io.WriteString(w, `{"id":"job-9","status":"processing"}`)
			return
		}
		_, _ = io.WriteString(w, `{"id":"job-9","status":"completed","text":"hi","utterances":[{"speaker":"A","text":"hi"}]}`)
	}))
	defer server.Close()

	client, _ := assemblyai.New(assemblyai.Config{APIKey: "key", BaseURL: server.URL})
	var waits int
	poller := assemblyai.Poller{
		Interval: 10 * time.Second,
		MaxWait:  600 * time.Second,
		Sleep:    func(context.Context, time.Duration) error { waits++; return nil },
	}
	job, err := poller.Wait(context.Background(), client, "job-9")
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if job.Status != assemblyai.StatusCompleted || len(job.Utterances) != 1 {
		t.Fatalf("unexpected job %+v", job)
	}
	if waits != 2 {
		t.Fatalf("expected 2 waits, got %d", waits)
	}
	if !strings.Contains(string(job.Raw), `"utterances"`) {
		t.Fatalf("expected raw document to be retained")
	}
}

func TestPollerTimesOutWithoutFailing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"job-2","status":"processing"}`)
	}))
	defer server.Close()

	client, _ := assemblyai.New(assemblyai.Config{APIKey: "key", BaseURL: server.URL})
	var waits int
	poller := assemblyai.Poller{
		Interval: 10 * time.Second,
		MaxWait:  30 * time.Second,
		Sleep:    func(context.Context, time.Duration) error { waits++; return nil },
	}
	_, err := poller.Wait(context.Background(), client, "job-2")
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if services.Classify(err) != services.DispositionRetry {
		t.Fatalf("expected timeout to stay resumable")
	}
	if waits != 3 {
		t.Fatalf("expected 3 waits within the ceiling, got %d", waits)
	}
}

func TestPollerReportsJobError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"job-3","status":"error","error":"audio too short"}`)
	}))
	defer server.Close()

	client, _ := assemblyai.New(assemblyai.Config{APIKey: "key", BaseURL: server.URL})
	_, err := assemblyai.Poller{}.Wait(context.Background(), client, "job-3")
	if !errors.Is(err, services.ErrValidation) || !errors.Is(err, assemblyai.ErrJobFailed) || errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected rejected job to need review, got %v", err)
	}
	if !strings.Contains(err.Error(), "audio too short") {
		t.Fatalf("expected service message in %v", err)
	}
}
