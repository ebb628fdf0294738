package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"NeelyWave/internal/domain/models"
	domrepo "NeelyWave/internal/domain/repository"
	"NeelyWave/internal/services/waves"
	"NeelyWave/pkg/logger"
)

var (
	// ErrInvalidParams covers caller mistakes caught before any data is read.
	ErrInvalidParams = errors.New("invalid analysis parameters")
	// ErrTooManyBars is returned when the input exceeds the configured limit.
	ErrTooManyBars = errors.New("too many bars")
	// ErrSeriesUnavailable is returned for a resolution finer than the input.
	ErrSeriesUnavailable = errors.New("series unavailable")
)

// AnalysisConfig tunes every analysis run.
type AnalysisConfig struct {
	TypicalTypes []models.TypicalType
	Parallel     bool
	// MaxBars caps the finest series length; zero disables the check.
	MaxBars int
	// Timeout bounds one run; zero disables it.
	Timeout time.Duration
}

// WaveAnalysisUseCase loads bars and runs the wave pipeline on them.
type WaveAnalysisUseCase struct {
	source    domrepo.BarSource
	publisher domrepo.SummaryPublisher
	metrics   domrepo.Metrics
	l         *logger.Logger
	cfg       AnalysisConfig
}

func NewWaveAnalysisUseCase(source domrepo.BarSource, publisher domrepo.SummaryPublisher, metrics domrepo.Metrics, l *logger.Logger, cfg AnalysisConfig) *WaveAnalysisUseCase {
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	if l == nil {
		l = logger.Nop()
	}
	return &WaveAnalysisUseCase{source: source, publisher: publisher, metrics: metrics, l: l, cfg: cfg}
}

type AnalyzeParams struct {
	Symbol string
	From   time.Time
	To     time.Time
}

type AnalyzeResult struct {
	Symbol  string
	Store   *waves.Store
	Summary *models.WaveSummary
}

func (p AnalyzeParams) validate() error {
	if p.Symbol == "" {
		return fmt.Errorf("%w: symbol required", ErrInvalidParams)
	}
	if !p.From.IsZero() && !p.To.IsZero() && p.From.After(p.To) {
		return fmt.Errorf("%w: from must be <= to", ErrInvalidParams)
	}
	return nil
}

// Analyze loads the symbol's bars from the source and analyses them.
func (uc *WaveAnalysisUseCase) Analyze(ctx context.Context, p AnalyzeParams) (*AnalyzeResult, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	bars, err := uc.source.GetBars(ctx, p.Symbol, p.From, p.To)
	if err != nil {
		if !errors.Is(err, domrepo.ErrSymbolNotFound) && !waves.IsRejection(err) {
			uc.metrics.RecordError("source")
		}
		return nil, fmt.Errorf("load bars: %w", err)
	}
	return uc.AnalyzeBars(ctx, p.Symbol, bars)
}

// AnalyzeBars runs the pipeline on bars already in memory, oldest first.
func (uc *WaveAnalysisUseCase) AnalyzeBars(ctx context.Context, symbol string, bars []models.Bar) (*AnalyzeResult, error) {
	if uc.cfg.MaxBars > 0 && len(bars) > uc.cfg.MaxBars {
		uc.metrics.RecordError("too_many_bars")
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyBars, len(bars), uc.cfg.MaxBars)
	}
	if uc.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	store, err := waves.Ingest(ctx, bars,
		waves.WithLogger(uc.l.With(logger.String("symbol", symbol))),
		waves.WithMetrics(uc.metrics),
		waves.WithTypicalTypes(uc.cfg.TypicalTypes...),
		waves.WithParallel(uc.cfg.Parallel),
	)
	if err != nil {
		switch {
		case waves.IsRejection(err):
			uc.metrics.RecordError("rejected")
			uc.l.Info("input rejected", logger.String("symbol", symbol), logger.Error(err))
		case errors.Is(err, waves.ErrInvariant), errors.Is(err, waves.ErrPipelineOrder), errors.Is(err, waves.ErrUnsupportedTypicalType):
			uc.metrics.RecordError("invariant")
			uc.l.Error("wave pipeline failed", logger.String("symbol", symbol), logger.Error(err))
		default:
			uc.metrics.RecordError("pipeline")
		}
		return nil, err
	}

	summary := store.Summary(symbol)
	uc.l.Info("analysis done",
		logger.String("symbol", symbol),
		logger.String("finest", summary.Finest),
		logger.Int("bars", summary.Bars),
		logger.Strings("available", summary.Available),
		logger.Duration("duration_ms", time.Since(start)))
	return &AnalyzeResult{Symbol: symbol, Store: store, Summary: summary}, nil
}

// AnalyzeAndPublish analyses the symbol and ships its summary downstream.
func (uc *WaveAnalysisUseCase) AnalyzeAndPublish(ctx context.Context, p AnalyzeParams) (*models.WaveSummary, error) {
	res, err := uc.Analyze(ctx, p)
	if err != nil {
		return nil, err
	}
	if uc.publisher == nil {
		return res.Summary, nil
	}
	if err := uc.publisher.Publish(ctx, res.Summary); err != nil {
		uc.metrics.RecordError("publish")
		return nil, err
	}
	return res.Summary, nil
}

type SeriesParams struct {
	AnalyzeParams
	Resolution models.Resolution
	Typical    models.TypicalType
	Kind       models.Kind
}

// Series analyses the symbol and returns one stored series.
func (uc *WaveAnalysisUseCase) Series(ctx context.Context, p SeriesParams) (*models.Series, error) {
	res, err := uc.Analyze(ctx, p.AnalyzeParams)
	if err != nil {
		return nil, err
	}
	s, ok := res.Store.Series(p.Resolution, p.Typical, p.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s/%s", ErrSeriesUnavailable, p.Resolution, p.Typical, p.Kind)
	}
	return s, nil
}

// Resolutions analyses the symbol and lists the resolutions with data.
func (uc *WaveAnalysisUseCase) Resolutions(ctx context.Context, p AnalyzeParams) ([]models.Resolution, error) {
	res, err := uc.Analyze(ctx, p)
	if err != nil {
		return nil, err
	}
	return res.Store.AvailableResolutions(), nil
}
