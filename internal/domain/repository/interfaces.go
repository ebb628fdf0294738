package repository

import (
	"context"
	"errors"
	"time"

	"NeelyWave/internal/domain/models"
)

// ErrSymbolNotFound is returned by a BarSource that holds no data for a symbol.
var ErrSymbolNotFound = errors.New("bar source: symbol not found")

// BarSource loads finest-resolution bars for a symbol, oldest first.
type BarSource interface {
	GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error)
}

// SummaryPublisher ships finished wave summaries to downstream consumers.
type SummaryPublisher interface {
	Publish(ctx context.Context, s *models.WaveSummary) error
	Close() error
}

// Metrics records pipeline observations.
type Metrics interface {
	RecordStage(stage string, seconds float64)
	RecordBars(resolution string, n int)
	RecordWaves(resolution, typical, kind string, n int)
	RecordUnavailable(resolution string)
	RecordError(kind string)
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) RecordStage(string, float64)             {}
func (NopMetrics) RecordBars(string, int)                  {}
func (NopMetrics) RecordWaves(string, string, string, int) {}
func (NopMetrics) RecordUnavailable(string)                {}
func (NopMetrics) RecordError(string)                      {}
