package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func decodeLine(t *testing.T, b []byte) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(b), &m); err != nil {
		t.Fatalf("decode %q: %v", b, err)
	}
	return m
}

func TestFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWriter(&buf, "debug")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Info("analysis done",
		String("symbol", "EURUSD"),
		Int("bars", 180),
		Duration("duration_ms", 1500*time.Millisecond),
		Strings("available", []string{"M1", "H1"}),
		Bool("parallel", true),
		Float64("minimum", 1.25),
		Time("from", time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)),
		Error(errors.New("boom")))

	m := decodeLine(t, buf.Bytes())
	if m["message"] != "analysis done" || m["level"] != "info" {
		t.Fatalf("unexpected entry %v", m)
	}
	if m["symbol"] != "EURUSD" || m["bars"] != float64(180) || m["duration_ms"] != float64(1500) {
		t.Fatalf("unexpected fields %v", m)
	}
	if m["available"] != "M1, H1" || m["parallel"] != true || m["error"] != "boom" {
		t.Fatalf("unexpected fields %v", m)
	}
	if m["minimum"] != 1.25 || m["from"] == nil {
		t.Fatalf("unexpected fields %v", m)
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWriter(&buf, "warn")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}
	l.Warn("shown")
	if decodeLine(t, buf.Bytes())["level"] != "warn" {
		t.Fatalf("unexpected entry %q", buf.String())
	}
}

func TestWithAddsContext(t *testing.T) {
	var buf bytes.Buffer
	l, _ := NewWriter(&buf, "info")
	l.With(String("component", "scheduler"), Error(nil)).Error("tick failed")
	m := decodeLine(t, buf.Bytes())
	if m["component"] != "scheduler" || m["level"] != "error" {
		t.Fatalf("unexpected entry %v", m)
	}
}

func TestInvalidLevel(t *testing.T) {
	if _, err := NewWriter(&bytes.Buffer{}, "loud"); err == nil {
		t.Fatalf("expected an error")
	}
	if _, err := New(&Config{Level: "loud", Output: "stdout"}); err == nil {
		t.Fatalf("expected an error")
	}
}
