package waves

import (
	"context"
	"fmt"
	"sync"
	"time"

	"NeelyWave/internal/domain/models"
	"NeelyWave/internal/domain/repository"
	"NeelyWave/pkg/logger"
)

type stage int

const (
	stageNew stage = iota
	stageInitialized
	stageReduced
	stageTypical
	stageTrimmed
	stageSegmented
)

func (s stage) String() string {
	switch s {
	case stageNew:
		return "new"
	case stageInitialized:
		return "initialize"
	case stageReduced:
		return "reduce"
	case stageTypical:
		return "calculate_typical"
	case stageTrimmed:
		return "remove_trailing_data"
	case stageSegmented:
		return "segment_and_aggregate"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Orchestrator drives one input through every pipeline stage. An instance is
// single use and must not be shared between goroutines.
type Orchestrator struct {
	log      *logger.Logger
	metrics  repository.Metrics
	types    []models.TypicalType
	parallel bool

	stage   stage
	finest  *models.Series
	reduced [models.NumResolutions]*models.Series
	full    [models.NumResolutions][models.NumTypicalTypes]*models.Series
	store   *Store
}

type Option func(*Orchestrator)

func WithLogger(l *logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

func WithMetrics(m repository.Metrics) Option {
	return func(o *Orchestrator) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTypicalTypes restricts the typical types computed. An empty list keeps
// the default of every type.
func WithTypicalTypes(types ...models.TypicalType) Option {
	return func(o *Orchestrator) {
		if len(types) > 0 {
			o.types = append([]models.TypicalType(nil), types...)
		}
	}
}

// WithParallel runs the per resolution/type work of the last stage on
// separate goroutines.
func WithParallel(enabled bool) Option {
	return func(o *Orchestrator) { o.parallel = enabled }
}

func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		log:     logger.Nop(),
		metrics: repository.NopMetrics{},
		types:   models.TypicalTypes(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) expect(want stage) error {
	if o.stage != want {
		return fmt.Errorf("%w: at %s, want %s", ErrPipelineOrder, o.stage, want)
	}
	return nil
}

func (o *Orchestrator) observe(st stage, started time.Time) {
	elapsed := time.Since(started)
	o.metrics.RecordStage(st.String(), elapsed.Seconds())
	o.log.Debug("pipeline stage done", logger.String("stage", st.String()), logger.Duration("elapsed_ms", elapsed))
}

func (o *Orchestrator) unavailable(res models.Resolution) {
	o.metrics.RecordUnavailable(res.String())
	o.log.Info("resolution unavailable",
		logger.String("resolution", res.String()),
		logger.String("finest", o.finest.Resolution.String()))
}

// Initialize takes a private copy of the finest series.
func (o *Orchestrator) Initialize(finest *models.Series) error {
	if err := o.expect(stageNew); err != nil {
		return err
	}
	if finest.Len() == 0 {
		return ErrEmptySeries
	}
	if !finest.Resolution.Valid() {
		return fmt.Errorf("%w: finest resolution %s", ErrInvariant, finest.Resolution)
	}
	for _, typ := range o.types {
		if !typ.Valid() {
			return fmt.Errorf("%w: %s", ErrUnsupportedTypicalType, typ)
		}
	}
	if err := finest.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvariant, err)
	}
	o.finest = finest.Clone()
	o.finest.TypicalType = models.DefaultTypicalType
	o.metrics.RecordBars(o.finest.Resolution.String(), o.finest.Len())
	o.stage = stageInitialized
	return nil
}

// Reduce produces every coarser resolution from the finest series. Every
// coarser target holds at least one bar; resolutions finer than the input
// stay empty and are reported as unavailable.
func (o *Orchestrator) Reduce() error {
	if err := o.expect(stageInitialized); err != nil {
		return err
	}
	started := time.Now()

	reduced, err := Reduce(o.finest)
	if err != nil {
		return fmt.Errorf("%w: reduce: %v", ErrInvariant, err)
	}
	for res := models.Resolution(0); res < o.finest.Resolution; res++ {
		o.unavailable(res)
	}
	o.reduced[o.finest.Resolution] = o.finest
	for _, res := range o.finest.Resolution.Coarser() {
		s := reduced[res]
		if s == nil || s.Len() == 0 {
			o.unavailable(res)
			continue
		}
		o.metrics.RecordBars(res.String(), s.Len())
		o.reduced[res] = s
	}

	o.observe(stageReduced, started)
	o.stage = stageReduced
	return nil
}

// CalculateTypical copies every reduced series once per typical type and
// fills in its typical column.
func (o *Orchestrator) CalculateTypical() error {
	if err := o.expect(stageReduced); err != nil {
		return err
	}
	started := time.Now()

	for res, base := range o.reduced {
		if base == nil {
			continue
		}
		for _, typ := range o.types {
			s := base.Clone()
			if err := CalculateTypical(s, typ); err != nil {
				return err
			}
			o.full[res][typ] = s
		}
	}

	o.observe(stageTypical, started)
	o.stage = stageTypical
	return nil
}

// RemoveTrailingData trims each series up to its own typical minimum.
func (o *Orchestrator) RemoveTrailingData() error {
	if err := o.expect(stageTypical); err != nil {
		return err
	}
	started := time.Now()

	for res := range o.full {
		for typ, s := range o.full[res] {
			if s == nil {
				continue
			}
			if cut := TrimToMinimum(s); cut > 0 {
				o.log.Debug("trimmed leading bars",
					logger.String("resolution", models.Resolution(res).String()),
					logger.String("typical", models.TypicalType(typ).String()),
					logger.Int("removed", cut),
					logger.Float64("minimum", s.Typical[0]))
			}
		}
	}

	o.observe(stageTrimmed, started)
	o.stage = stageTrimmed
	return nil
}

// SegmentAndAggregate decomposes every series into raw monowaves, directional
// actions and merged monowaves, and builds the store.
func (o *Orchestrator) SegmentAndAggregate(ctx context.Context) error {
	if err := o.expect(stageTrimmed); err != nil {
		return err
	}
	started := time.Now()

	store := &Store{
		finest: o.finest.Resolution,
		bars:   o.finest.Len(),
		from:   o.finest.Date[0],
		to:     o.finest.Date[o.finest.Len()-1],
	}
	var errs [models.NumResolutions][models.NumTypicalTypes]error

	var wg sync.WaitGroup
	for res := range o.full {
		for typ, s := range o.full[res] {
			if s == nil {
				continue
			}
			res, typ, s := res, typ, s
			run := func() {
				store.entries[res][typ], errs[res][typ] = decompose(s)
			}
			if !o.parallel {
				run()
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				run()
			}()
		}
	}
	wg.Wait()

	for res := range errs {
		for typ, err := range errs[res] {
			if err != nil {
				return fmt.Errorf("%s/%s: %w", models.Resolution(res), models.TypicalType(typ), err)
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for res := range store.entries {
		for typ, e := range store.entries[res] {
			if e == nil {
				continue
			}
			r, t := models.Resolution(res).String(), models.TypicalType(typ).String()
			o.metrics.RecordWaves(r, t, models.KindRawMonowaves.String(), len(e.raw))
			o.metrics.RecordWaves(r, t, models.KindMergedMonowaves.String(), len(e.merged))
			o.metrics.RecordWaves(r, t, "directionalActions", len(e.actions))
		}
	}

	o.store = store
	o.log.Debug("segmentation done",
		logger.String("finest", store.finest.String()),
		logger.Int("bars", store.bars),
		logger.Bool("parallel", o.parallel))
	o.observe(stageSegmented, started)
	o.stage = stageSegmented
	return nil
}

func decompose(s *models.Series) (*entry, error) {
	raw, err := Segment(s)
	if err != nil {
		return nil, fmt.Errorf("%w: segment: %v", ErrInvariant, err)
	}
	actions := EvaluateDirectionalActions(raw)
	merged, err := MergeByDirectionalActions(s, actions)
	if err != nil {
		return nil, err
	}

	e := &entry{raw: raw, merged: merged, actions: actions}
	e.series[models.KindFull] = s
	e.series[models.KindRawMonowaves] = MonowaveSeries(s, raw)
	e.series[models.KindMergedMonowaves] = MonowaveSeries(s, merged)
	e.series[models.KindSimpleTrim] = TrimSeries(s, raw)
	e.series[models.KindNeelyTrim] = TrimSeries(s, merged)
	return e, nil
}

// Store returns the finished store, or nil before SegmentAndAggregate ran.
func (o *Orchestrator) Store() *Store { return o.store }

// Run executes every stage in order, checking ctx between stages.
func (o *Orchestrator) Run(ctx context.Context, finest *models.Series) (*Store, error) {
	steps := []func() error{
		func() error { return o.Initialize(finest) },
		o.Reduce,
		o.CalculateTypical,
		o.RemoveTrailingData,
		func() error { return o.SegmentAndAggregate(ctx) },
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := step(); err != nil {
			return nil, err
		}
	}
	return o.store, nil
}
