package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildJSONDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")

	log, err := build(true, true, []string{path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Debug("scoring batch")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("decode entry %q: %v", data, err)
	}
	if entry["step"] != "scoring batch" || entry["level"] != "debug" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestBuildInfoSkipsDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")

	log, err := build(false, false, []string{path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Debug("hidden")
	log.Info("visible")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "hidden") || !strings.Contains(string(data), "visible") {
		t.Fatalf("unexpected log output %q", data)
	}
}
