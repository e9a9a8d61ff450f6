package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "gantry.log")

	logger, err := New(Options{Level: "debug", Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("plan computed", slog.Int("operations", 7), slog.String("run", "run-1a2b"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "plan computed") {
		t.Fatalf("missing message in %q", line)
	}
	if !strings.Contains(line, "operations=7") {
		t.Fatalf("missing attr in %q", line)
	}
	if !strings.Contains(line, "run=run-1a2b") {
		t.Fatalf("missing run attr in %q", line)
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "gantry.log")

	logger, err := New(Options{Level: "warn", Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("quiet")
	logger.Warn("loud")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "quiet") {
		t.Fatalf("info record should be suppressed: %q", data)
	}
	if !strings.Contains(string(data), "loud") {
		t.Fatalf("warn record missing: %q", data)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("should not panic or write anywhere")
}

func TestGroupedAttrsRender(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "gantry.log")

	logger, err := New(Options{Level: "info", Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.WithGroup("apply").Info("done", slog.Int("written", 3))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "apply.written=3") {
		t.Fatalf("grouped attr missing: %q", data)
	}
}
