package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"transcriptsync/internal/catalog"
	"transcriptsync/internal/config"
	"transcriptsync/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, extra string, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("ASSEMBLYAI_API_KEY", "")
	t.Setenv("NOTION_API_KEY", "")
	t.Setenv("GOOGLE_ACCESS_TOKEN", "")

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg, extra)

	testsupport.WriteCatalog(t, cfg.Catalog.Path,
		catalog.Episode{ID: "1171", Guest: "Alex Rivera", VideoID: "8AkPm4Zy3MU", Title: "Ep1171: Alex Rivera: Leading Teams"},
		catalog.Episode{ID: "1170", Guest: "Jane Smith", VideoURL: "https://youtu.be/dQw4w9WgXcQ"},
		catalog.Episode{ID: "1169", Guest: "Mika Chen"},
	)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config, extra string) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "[paths]\nstate_dir = %q\noutput_dir = %q\nlog_dir = %q\n", cfg.Paths.StateDir, cfg.Paths.OutputDir, cfg.Paths.LogDir)
	if cfg.Paths.MetricsFile != "" {
		fmt.Fprintf(&b, "metrics_file = %q\n", cfg.Paths.MetricsFile)
	}
	fmt.Fprintf(&b, "\n[catalog]\npath = %q\n", cfg.Catalog.Path)
	if cfg.Drive.AccessToken != "" {
		fmt.Fprintf(&b, "\n[drive]\naccess_token = %q\nbase_url = %q\ndocs_base_url = %q\n", cfg.Drive.AccessToken, cfg.Drive.BaseURL, cfg.Drive.DocsBaseURL)
	}
	if cfg.Notion.APIKey != "" {
		fmt.Fprintf(&b, "\n[notion]\napi_key = %q\nbase_url = %q\ndatabase_id = %q\n", cfg.Notion.APIKey, cfg.Notion.BaseURL, cfg.Notion.DatabaseID)
	}
	b.WriteString("\n[pipeline]\nitem_delay_ms = 0\n")
	b.WriteString(extra)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
