package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"transcriptsync/internal/catalog"
)

// WriteCatalog saves episodes to path in the format its extension selects.
func WriteCatalog(t testing.TB, path string, episodes ...catalog.Episode) {
	t.Helper()

	if err := catalog.Save(path, episodes); err != nil {
		t.Fatalf("write catalog %s: %v", path, err)
	}
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
