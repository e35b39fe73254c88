package deps

import (
	"os"
	"path/filepath"
	"testing"

	"transcriptsync/internal/config"
)

func TestCheck(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "yt-dlp")
	if err := os.WriteFile(present, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present, Pipelines: []string{"captions"}},
		{Name: "Missing", Command: "clearly-not-present-binary", Pipelines: []string{"transcribe"}},
		{Name: "Blank", Command: "  "},
	}

	results := Check(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected blank detail: %#v", results[2])
	}

	if _, ok := Missing(results, "captions"); ok {
		t.Fatal("captions has its binary")
	}
	if s, ok := Missing(results, "transcribe"); !ok || s.Name != "Missing" {
		t.Fatalf("Missing(transcribe) = %#v, %v", s, ok)
	}
	if _, ok := Missing(results, "docs"); ok {
		t.Fatal("docs needs no binary")
	}
}

func TestForConfigUsesConfiguredBinary(t *testing.T) {
	cfg := config.Default()
	cfg.Captions.YtDlpBinary = "/opt/bin/yt-dlp"
	reqs := ForConfig(&cfg)
	if len(reqs) != 1 || reqs[0].Command != "/opt/bin/yt-dlp" {
		t.Fatalf("requirements = %#v", reqs)
	}
}
