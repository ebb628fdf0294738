package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"NeelyWave/internal/domain/models"
	"NeelyWave/internal/usecase"
	"NeelyWave/pkg/cache"
)

type fakeAnalyzer struct {
	calls []usecase.AnalyzeParams
	fail  map[string]bool
}

func (a *fakeAnalyzer) AnalyzeAndPublish(_ context.Context, p usecase.AnalyzeParams) (*models.WaveSummary, error) {
	a.calls = append(a.calls, p)
	if a.fail[p.Symbol] {
		return nil, errors.New("no data")
	}
	return &models.WaveSummary{Symbol: p.Symbol}, nil
}

func TestRunNow(t *testing.T) {
	now := time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC)
	a := &fakeAnalyzer{fail: map[string]bool{"GBPUSD": true}}
	mc := cache.NewMemoryCache()
	defer mc.Close()

	s := New(Config{
		Spec:     "0 */15 * * * *",
		Symbols:  []string{"EURUSD", "GBPUSD", "USDJPY"},
		Lookback: 24 * time.Hour,
		LockTTL:  time.Minute,
	}, a, mc, nil)
	s.now = func() time.Time { return now }

	done, err := s.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if done != 2 || len(a.calls) != 3 {
		t.Fatalf("expected 2 of 3 symbols done, got %d of %d", done, len(a.calls))
	}
	if !a.calls[0].To.Equal(now) || !a.calls[0].From.Equal(now.Add(-24*time.Hour)) {
		t.Fatalf("unexpected range %s - %s", a.calls[0].From, a.calls[0].To)
	}

	// the lock is released after a tick
	if ok, _ := mc.TryLock(context.Background(), lockKey, time.Minute); !ok {
		t.Fatalf("lock still held after the tick")
	}
	done, err = s.RunNow(context.Background())
	if err != nil || done != 0 || len(a.calls) != 3 {
		t.Fatalf("tick should be skipped while the lock is held: done=%d err=%v", done, err)
	}
}

func TestRegisterRejectsBadCron(t *testing.T) {
	s := New(Config{Spec: "every minute"}, &fakeAnalyzer{}, nil, nil)
	if err := s.Register(); err == nil {
		t.Fatalf("expected an error for a bad cron expression")
	}
	ok := New(Config{Spec: "0 */15 * * * *"}, &fakeAnalyzer{}, nil, nil)
	if err := ok.Register(); err != nil {
		t.Fatalf("register: %v", err)
	}
	ok.Start()
	if err := ok.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
