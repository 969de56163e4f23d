package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSplitHashText(t *testing.T) {
	got := SplitHashText(" aaa ,bbb\r\n\n ccc,, ")
	want := []string{"aaa", "bbb", "ccc"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriteTempHashFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "work")
	path, err := WriteTempHashFile(dir, "5f4dcc3b5aa765d61d8327deb882cf99, e10adc3949ba59abbe56e057f20f883e")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("expected file in %s, got %s", dir, path)
	}
	if !strings.HasPrefix(filepath.Base(path), "hashcat_temp_") || filepath.Ext(path) != ".hash" {
		t.Fatalf("unexpected temp name %s", filepath.Base(path))
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "5f4dcc3b5aa765d61d8327deb882cf99\ne10adc3949ba59abbe56e057f20f883e\n" {
		t.Fatalf("content mismatch: %q", got)
	}
}

func TestWriteTempHashFileRejectsEmpty(t *testing.T) {
	if _, err := WriteTempHashFile(t.TempDir(), " ,\n "); err == nil {
		t.Fatal("expected error for empty hash text")
	}
}

func TestRemoveIfExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.hash")
	if err := RemoveIfExists(path); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RemoveIfExists(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected file removed, got %v", err)
	}
	if err := RemoveIfExists(""); err != nil {
		t.Fatalf("empty path should be ignored: %v", err)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "results.txt")
	if err := WriteFileAtomic(path, []byte("first"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("second"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Fatalf("content mismatch: %q", got)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files cleaned up, found %d entries", len(entries))
	}
}
