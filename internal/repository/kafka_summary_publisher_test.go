package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"NeelyWave/internal/domain/models"
)

type fakeProducer struct {
	topic  string
	key    []byte
	value  interface{}
	closed bool
}

func (p *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	p.topic, p.key, p.value = topic, key, value
	return nil
}

func (p *fakeProducer) Close() error { p.closed = true; return nil }

func TestKafkaSummaryPublisher(t *testing.T) {
	fp := &fakeProducer{}
	pub := NewKafkaSummaryPublisher(fp, "wave.summaries")
	sum := &models.WaveSummary{Symbol: "EURUSD", Finest: "M1", GeneratedAt: time.Now()}

	if err := pub.Publish(context.Background(), sum); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if fp.topic != "wave.summaries" || string(fp.key) != "EURUSD" || fp.value != sum {
		t.Fatalf("unexpected message %s %s %v", fp.topic, fp.key, fp.value)
	}
	if err := pub.Publish(context.Background(), nil); err == nil {
		t.Fatalf("expected an error for a nil summary")
	}
	if err := pub.Close(); err != nil || !fp.closed {
		t.Fatalf("close not forwarded")
	}
}

func TestClickHouseQueries(t *testing.T) {
	from := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	q, args := selectQuery("market.candles_1m", "EURUSD", from, time.Time{})
	if !strings.Contains(q, "FROM market.candles_1m FINAL WHERE symbol = ? AND ts >= ? ORDER BY ts ASC") {
		t.Fatalf("unexpected query %s", q)
	}
	if len(args) != 2 || args[0] != "EURUSD" {
		t.Fatalf("unexpected args %v", args)
	}

	bars := []models.Bar{{Date: from, Open: 1}, {Date: from.Add(time.Minute), Open: 2}}
	q, args = insertQuery("market.candles_1m", "EURUSD", bars)
	if strings.Count(q, "(?, ?, ?, ?, ?, ?, ?, ?, ?)") != 2 || len(args) != 18 {
		t.Fatalf("unexpected insert %s with %d args", q, len(args))
	}
	if qualify("market", "candles_1m") != "market.candles_1m" || qualify("market", "db.t") != "db.t" {
		t.Fatalf("qualify")
	}
	if stmts := CandleSchema("market", "candles_1m"); len(stmts) != 2 || !strings.Contains(stmts[1], "market.candles_1m") {
		t.Fatalf("schema %v", stmts)
	}
}
