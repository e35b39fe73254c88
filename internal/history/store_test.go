package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"transcriptsync/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.StartRun(ctx, "run-1", "captions"); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	events := []history.ItemEvent{
		{RunID: "run-1", ItemKey: "1171", Label: "Ep1171 Alex Rivera", Outcome: "completed", Duration: 1500 * time.Millisecond},
		{RunID: "run-1", ItemKey: "1170", Outcome: "skipped", Reason: "no_captions"},
		{RunID: "run-1", ItemKey: "1169", Outcome: "failed", Error: "status 503"},
	}
	for _, ev := range events {
		if err := store.RecordItem(ctx, ev); err != nil {
			t.Fatalf("RecordItem: %v", err)
		}
	}
	counts := history.Counts{Processed: 3, Completed: 1, Failed: 1, Skipped: 1}
	if err := store.FinishRun(ctx, "run-1", counts, ""); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err := store.ListRuns(ctx, "captions", 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.Status != history.RunFinished || run.Counts != counts || run.FinishedAt.IsZero() || run.Error != "" {
		t.Fatalf("unexpected run %+v", run)
	}

	items, err := store.Items(ctx, "run-1")
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ItemKey != "1171" || items[0].Duration != 1500*time.Millisecond || items[0].Label != "Ep1171 Alex Rivera" {
		t.Fatalf("unexpected first item %+v", items[0])
	}
	if items[1].Reason != "no_captions" || items[2].Error != "status 503" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestAbortedRunAndPipelineFilter(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.StartRun(ctx, "a", "transcribe"); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := store.StartRun(ctx, "b", "docs"); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := store.FinishRun(ctx, "a", history.Counts{Processed: 1}, "write ledger: disk full"); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err := store.ListRuns(ctx, "transcribe", 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != history.RunAborted || runs[0].Error == "" {
		t.Fatalf("unexpected runs %+v", runs)
	}
	all, err := store.ListRuns(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(all))
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.StartRun(context.Background(), "r", "captions"); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	_ = store.Close()

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.ListRuns(context.Background(), "", 5)
	if err != nil || len(runs) != 1 || runs[0].Status != history.RunRunning {
		t.Fatalf("unexpected runs %+v err=%v", runs, err)
	}
	if err := reopened.StartRun(context.Background(), "", "captions"); err == nil || errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected run id error, got %v", err)
	}
}
