package scheduler

import (
	"context"
	"fmt"
	"time"

	"NeelyWave/internal/domain/models"
	"NeelyWave/internal/usecase"
	"NeelyWave/pkg/logger"
	"NeelyWave/pkg/util"

	"github.com/robfig/cron/v3"
)

const lockKey = "neelywave:schedule:lock"

// Analyzer runs one analysis and publishes its summary.
type Analyzer interface {
	AnalyzeAndPublish(ctx context.Context, p usecase.AnalyzeParams) (*models.WaveSummary, error)
}

// Locker is the part of pkg/cache.Service used to keep replicas from running
// the same tick twice.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

type Config struct {
	Spec     string
	Symbols  []string
	Lookback time.Duration
	LockTTL  time.Duration
}

// Scheduler re-analyses the watched symbols on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	cfg      Config
	analyzer Analyzer
	lock     Locker
	l        *logger.Logger
	now      func() time.Time
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(cfg Config, analyzer Analyzer, lock Locker, l *logger.Logger) *Scheduler {
	if l == nil {
		l = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		cfg:      cfg,
		analyzer: analyzer,
		lock:     lock,
		l:        l.With(logger.String("component", "scheduler")),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Register adds the analysis task under cfg.Spec (six fields, seconds first).
func (s *Scheduler) Register() error {
	if _, err := s.cron.AddFunc(s.cfg.Spec, s.tick); err != nil {
		return fmt.Errorf("register analysis task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.l.Info("scheduler started", logger.String("spec", s.cfg.Spec), logger.Strings("symbols", s.cfg.Symbols))
}

// Stop cancels a running tick and waits for it to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.l.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for scheduler: %w", ctx.Err())
	}
}

// RunNow executes one tick synchronously and reports how many symbols
// succeeded. A tick skipped because another holds the lock returns 0, nil.
func (s *Scheduler) RunNow(ctx context.Context) (int, error) {
	if s.lock != nil {
		ok, err := s.lock.TryLock(ctx, lockKey, s.cfg.LockTTL)
		if err != nil {
			return 0, fmt.Errorf("acquire schedule lock: %w", err)
		}
		if !ok {
			s.l.Info("tick skipped, lock held elsewhere")
			return 0, nil
		}
		defer func() {
			if err := s.lock.Unlock(context.Background(), lockKey); err != nil {
				s.l.Warn("release schedule lock", logger.Error(err))
			}
		}()
	}

	// minute-aligned bounds give ticks within one minute the same cache key
	now := s.now().UTC()
	from, to := util.AlignFromTo(now.Add(-s.cfg.Lookback), now, time.Minute)
	done := 0
	for _, sym := range s.cfg.Symbols {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		started := time.Now()
		sum, err := s.analyzer.AnalyzeAndPublish(ctx, usecase.AnalyzeParams{Symbol: sym, From: from, To: to})
		if err != nil {
			s.l.Error("scheduled analysis failed", logger.String("symbol", sym), logger.Error(err))
			continue
		}
		done++
		s.l.Info("scheduled analysis done",
			logger.String("symbol", sym),
			logger.Strings("available", sum.Available),
			logger.Time("from", from),
			logger.Time("to", to),
			logger.Duration("duration_ms", time.Since(started)))
	}
	return done, nil
}

func (s *Scheduler) tick() {
	if _, err := s.RunNow(s.ctx); err != nil {
		s.l.Error("scheduled tick failed", logger.Error(err))
	}
}
