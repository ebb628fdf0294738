package repository

import (
	"context"
	"errors"
	"time"

	"NeelyWave/internal/domain/models"
	domrepo "NeelyWave/internal/domain/repository"
	"NeelyWave/pkg/cache"
	applogger "NeelyWave/pkg/logger"
)

const barsKeyPrefix = "bars"

// CachedBarSource serves repeated range reads from a cache in front of
// another source. Cache failures fall through to the source.
type CachedBarSource struct {
	next  domrepo.BarSource
	cache cache.Service
	ttl   time.Duration
	l     *applogger.Logger
}

func NewCachedBarSource(next domrepo.BarSource, c cache.Service, ttl time.Duration, l *applogger.Logger) *CachedBarSource {
	if l == nil {
		l = applogger.Nop()
	}
	return &CachedBarSource{next: next, cache: c, ttl: ttl, l: l}
}

// BarsKey is the cache key of one range read.
func BarsKey(symbol string, from, to time.Time) string {
	return cache.GenerateKeyWithParams(barsKeyPrefix, symbol, from.Unix(), to.Unix())
}

func (s *CachedBarSource) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	key := BarsKey(symbol, from, to)

	var bars []models.Bar
	err := s.cache.Get(ctx, key, &bars)
	if err == nil {
		s.l.Debug("bars cache hit", applogger.String("key", key), applogger.Int("rows", len(bars)))
		return bars, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.l.Warn("bars cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	bars, err = s.next.GetBars(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, bars, s.ttl); err != nil {
		s.l.Warn("bars cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	return bars, nil
}

// Invalidate drops a cached range.
func (s *CachedBarSource) Invalidate(ctx context.Context, symbol string, from, to time.Time) error {
	return s.cache.Delete(ctx, BarsKey(symbol, from, to))
}
