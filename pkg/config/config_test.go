package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Server.Port != 8080 || c.Source.Type != "csv" || c.Cache.TTL != 10*time.Minute {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if len(c.Analysis.TypicalTypes) != 2 {
		t.Fatalf("expected both typical types by default, got %v", c.Analysis.TypicalTypes)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
environment: test
server:
  port: 9090
cache:
  type: redis
  ttl: 1m
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Server.Port != 9090 || c.Cache.Type != "redis" || c.Cache.TTL != time.Minute {
		t.Fatalf("yaml not applied %+v", c)
	}
	if c.Kafka.JobsTopic != "wave.jobs" {
		t.Fatalf("defaults lost: %q", c.Kafka.JobsTopic)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"source":   "source:\n  type: ftp\n",
		"cache":    "cache:\n  type: disk\n",
		"typical":  "analysis:\n  typical_types: [OHLC]\n",
		"kafka":    "kafka:\n  enabled: true\n",
		"schedule": "schedule:\n  enabled: true\n",
		"ch":       "source:\n  type: clickhouse\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected a validation error", name)
		}
	}
}

func TestLoadWithEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("environment: test\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("HTTP_PORT", "7070")
	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 || c.Server.Port != 7070 {
		t.Fatalf("env not applied %+v", c.Kafka)
	}

	t.Setenv("HTTP_PORT", "seventy")
	if _, err := LoadWithEnv(path); err == nil {
		t.Fatalf("expected an error for a bad port")
	}
}
