package cli

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLogger_JSONCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "json", "debug", "cli")
	logger.Debug("hello", "n", 1)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected one JSON record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "hello" {
		t.Errorf("msg = %v", rec["msg"])
	}
	if rec["component"] != "cli" {
		t.Errorf("component = %v", rec["component"])
	}
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "text", "warn", "cli")
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}
}
