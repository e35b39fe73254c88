package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"transcriptsync/internal/metrics"
)

func TestRecorderWritesTextfile(t *testing.T) {
	rec := metrics.New()
	rec.ObserveItem("captions", "completed", 2*time.Second)
	rec.ObserveItem("captions", "completed", time.Second)
	rec.ObserveItem("captions", "skipped", 0)
	rec.ObserveRun("captions", time.Unix(1714564800, 0), 90*time.Second)

	count, err := testutil.GatherAndCount(rec.Gatherer(), "transcriptsync_items_total")
	if err != nil {
		t.Fatalf("GatherAndCount: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 outcome series, got %d", count)
	}

	path := filepath.Join(t.TempDir(), "textfile", "transcriptsync.prom")
	if err := rec.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`transcriptsync_items_total{outcome="completed",pipeline="captions"} 2`,
		`transcriptsync_items_total{outcome="skipped",pipeline="captions"} 1`,
		`transcriptsync_last_run_duration_seconds{pipeline="captions"} 90`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile missing %q:\n%s", want, text)
		}
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *metrics.Recorder
	rec.ObserveItem("docs", "failed", time.Second)
	rec.ObserveRun("docs", time.Now(), time.Second)
	if err := rec.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Fatalf("nil recorder write: %v", err)
	}
}
