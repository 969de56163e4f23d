package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lovelyhashcat/internal/config"
	"lovelyhashcat/internal/logging"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Level = "debug"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug message")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "debug message") {
		t.Fatalf("expected message in log file, got %q", data)
	}
}

func TestConsoleLoggerPrefixesComponentAndSession(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger = logging.NewComponentLogger(logger, "runner")
	logger.Info("session started",
		logging.String(logging.FieldSessionID, "0123456789abcdef"),
		logging.Int(logging.FieldPID, 42),
		logging.String("hash_file", "/tmp/with space.txt"),
	)
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, " INFO runner[01234567]: session started") {
		t.Fatalf("unexpected prefix: %q", out)
	}
	if !strings.Contains(out, "pid=42") || !strings.Contains(out, `hash_file="/tmp/with space.txt"`) {
		t.Fatalf("missing fields: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered at info level: %q", out)
	}
}

func TestJSONLoggerUsesShortKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("potfile missing", logging.String(logging.FieldEventType, "potfile_missing"))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if line["level"] != "warn" || line["msg"] != "potfile missing" || line["ts"] == nil {
		t.Fatalf("unexpected json line %v", line)
	}
	if line[logging.FieldEventType] != "potfile_missing" {
		t.Fatalf("missing event type: %v", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logging.WarnWithContext(logger, "reconcile failed", "reconcile_failed", logging.String(logging.FieldImpact, "results may be delayed"))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatal(err)
	}
	if line[logging.FieldEventType] != "reconcile_failed" || line[logging.FieldErrorHint] == nil {
		t.Fatalf("expected injected defaults, got %v", line)
	}
	if line[logging.FieldImpact] != "results may be delayed" {
		t.Fatalf("caller impact should win, got %v", line[logging.FieldImpact])
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "x")
	logger.Error("ignored")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should not be enabled")
	}
}
