package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gencatalog/internal/config"
	"gencatalog/internal/logging"
)

func TestNewFromConfigConsole(t *testing.T) {
	cfg := config.Default()
	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleLoggerWritesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger = logging.NewComponentLogger(logger, "gencode")
	logger.Info("discovered releases", logging.String(logging.FieldSpecies, "mouse"), logging.Int("count", 2))
	logger.WithGroup("peer").Info("loaded", logging.String("name", "UCSC genome browser"))
	logger.Debug("hidden at info")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "INFO gencode: discovered releases") {
		t.Fatalf("expected component prefix, got %q", lines[0])
	}
	if !strings.Contains(lines[0], "species=mouse") || !strings.Contains(lines[0], "count=2") {
		t.Fatalf("expected fields in output, got %q", lines[0])
	}
	if !strings.Contains(lines[1], `peer.name="UCSC genome browser"`) {
		t.Fatalf("expected grouped, quoted field, got %q", lines[1])
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected no color codes, got %q", buf.String())
	}
}

func TestConsoleLoggerColorsWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Writer: &buf, Color: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("cache lookup failed")
	if !strings.Contains(buf.String(), "\x1b[33mWARN\x1b[0m") {
		t.Fatalf("expected colored level, got %q", buf.String())
	}
}

func TestJSONLoggerEmitsStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(logger, "peer lookup slow", "peer_slow", logging.Error(errors.New("timeout")))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log line: %v (%q)", err, buf.String())
	}
	if payload["level"] != "warn" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload[logging.FieldEventType] != "peer_slow" {
		t.Fatalf("expected event_type injected, got %v", payload[logging.FieldEventType])
	}
	if _, ok := payload[logging.FieldImpact]; !ok {
		t.Fatal("expected impact field injected")
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatal("expected ts key")
	}
}

func TestWarnWithContextKeepsCallerFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "partial", "provider_partial_init",
		logging.String(logging.FieldImpact, "links unavailable"))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if payload[logging.FieldImpact] != "links unavailable" {
		t.Fatalf("caller impact overwritten: %v", payload[logging.FieldImpact])
	}
	if payload[logging.FieldErrorHint] != "check logs for details" {
		t.Fatalf("expected default hint, got %v", payload[logging.FieldErrorHint])
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(t.Context(), 0) {
		t.Fatal("expected nop logger to be disabled")
	}
}
