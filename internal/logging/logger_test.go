package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"curator/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curator.log")
	logger, err := New(Options{Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("sync pass finished", Args(String(FieldComponent, "syncer"), Int("added", 3))...)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "INFO syncer: sync pass finished") {
		t.Fatalf("unexpected log line %q", line)
	}
	if !strings.Contains(line, "added=3") {
		t.Fatalf("expected attribute in log line %q", line)
	}
}

func TestNewJSONFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curator.log")
	logger, err := New(Options{Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, `"msg":"hello"`) || !strings.Contains(line, `"level":"info"`) {
		t.Fatalf("unexpected json line %q", line)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := services.WithCollectionID(context.Background(), "col-7")
	ctx = services.WithRunID(ctx, "run-1")

	fields := ContextFields(ctx)
	keys := make(map[string]string, len(fields))
	for _, f := range fields {
		keys[f.Key] = f.Value.String()
	}
	if keys[FieldCollectionID] != "col-7" {
		t.Fatalf("missing collection id field: %v", keys)
	}
	if keys[FieldRunID] != "run-1" {
		t.Fatalf("missing run id field: %v", keys)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.log")
	newPath := filepath.Join(dir, "new.log")
	for _, path := range []string{oldPath, newPath} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	stale := time.Now().AddDate(0, 0, -10)
	if err := os.Chtimes(oldPath, stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	CleanupOldLogs(NewNop(), dir, "*.log", 7)

	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatal("expected old log removed")
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Fatal("expected recent log kept")
	}
}
