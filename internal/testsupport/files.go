package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteHashFile writes one hash per line into dir and returns the path.
func WriteHashFile(t testing.TB, dir string, hashes ...string) string {
	t.Helper()
	var content string
	for _, h := range hashes {
		content += h + "\n"
	}
	return WriteFile(t, filepath.Join(dir, "hashes.txt"), content)
}
