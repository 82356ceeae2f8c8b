package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONToFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := New(dir, LevelDebug)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("monitor started", "target", "sess-1")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "agentwatch.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var entry map[string]any
	line := strings.TrimSpace(string(data))
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "monitor started" {
		t.Errorf("msg = %v, want monitor started", entry["msg"])
	}
	if entry["target"] != "sess-1" {
		t.Errorf("target = %v, want sess-1", entry["target"])
	}
}

func TestChildLoggersCarryAttrs(t *testing.T) {
	dir := t.TempDir()

	logger, err := New(dir, LevelInfo)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	child := logger.WithTarget("sess-2").WithStrategy("hybrid")
	child.Info("detection finished")
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "agentwatch.log"))
	if err != nil {
		t.Fatal(err)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["target"] != "sess-2" {
		t.Errorf("target = %v, want sess-2", entry["target"])
	}
	if entry["strategy"] != "hybrid" {
		t.Errorf("strategy = %v, want hybrid", entry["strategy"])
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()

	logger, err := New(dir, LevelWarn)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Debug("hidden")
	logger.Info("also hidden")
	logger.Warn("visible")
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "agentwatch.log"))
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	if strings.Contains(content, "hidden") {
		t.Error("below-level entries were written")
	}
	if !strings.Contains(content, "visible") {
		t.Error("warn entry missing")
	}
}

func TestNopLoggerIsSafe(t *testing.T) {
	logger := Nop()
	logger.Info("discarded")
	logger.WithTarget("x").Error("also discarded")
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
