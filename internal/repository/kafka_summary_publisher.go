package repository

import (
	"context"
	"fmt"

	"NeelyWave/internal/domain/models"
	domrepo "NeelyWave/internal/domain/repository"
)

// MessagePublisher is the part of pkg/kafka.Producer the publisher needs.
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaSummaryPublisher writes summaries as JSON keyed by symbol, so every
// summary of a symbol lands on the same partition.
type KafkaSummaryPublisher struct {
	producer MessagePublisher
	topic    string
}

func NewKafkaSummaryPublisher(p MessagePublisher, topic string) domrepo.SummaryPublisher {
	return &KafkaSummaryPublisher{producer: p, topic: topic}
}

func (p *KafkaSummaryPublisher) Publish(ctx context.Context, s *models.WaveSummary) error {
	if s == nil {
		return fmt.Errorf("nil summary")
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(s.Symbol), s); err != nil {
		return fmt.Errorf("publish summary %s: %w", s.Symbol, err)
	}
	return nil
}

func (p *KafkaSummaryPublisher) Close() error {
	return p.producer.Close()
}

// NopSummaryPublisher drops summaries; used when Kafka is disabled.
type NopSummaryPublisher struct{}

func (NopSummaryPublisher) Publish(context.Context, *models.WaveSummary) error { return nil }
func (NopSummaryPublisher) Close() error                                       { return nil }
