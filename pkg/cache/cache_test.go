package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type point struct {
	Symbol string    `json:"symbol"`
	At     time.Time `json:"at"`
	Values []float64 `json:"values"`
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestMemory(size int) (*MemoryCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(WithMemoryMaxSize(size), WithMemoryClock(clock.now))
	return mc, clock
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mc, clock := newTestMemory(10)
	defer mc.Close()

	in := point{Symbol: "EURUSD", At: clock.t, Values: []float64{1.1, 1.2}}
	if err := mc.Set(ctx, "k", in, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var out point
	if err := mc.Get(ctx, "k", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.Symbol != in.Symbol || !out.At.Equal(in.At) || len(out.Values) != 2 {
		t.Fatalf("unexpected value %+v", out)
	}

	clock.t = clock.t.Add(2 * time.Minute)
	if err := mc.Get(ctx, "k", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc, clock := newTestMemory(2)
	defer mc.Close()

	_ = mc.Set(ctx, "a", "1", 0)
	clock.t = clock.t.Add(time.Second)
	_ = mc.Set(ctx, "b", "2", 0)
	clock.t = clock.t.Add(time.Second)
	var s string
	_ = mc.Get(ctx, "a", &s)
	clock.t = clock.t.Add(time.Second)
	_ = mc.Set(ctx, "c", "3", 0)

	if ok, _ := mc.Exists(ctx, "b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if ok, _ := mc.Exists(ctx, "a", "c"); !ok || mc.Len() != 2 {
		t.Fatalf("unexpected contents, len %d", mc.Len())
	}
}

func TestMemoryCacheLock(t *testing.T) {
	ctx := context.Background()
	mc, clock := newTestMemory(10)
	defer mc.Close()

	if ok, _ := mc.TryLock(ctx, "job", time.Minute); !ok {
		t.Fatalf("first lock should succeed")
	}
	if ok, _ := mc.TryLock(ctx, "job", time.Minute); ok {
		t.Fatalf("second lock should fail")
	}
	clock.t = clock.t.Add(2 * time.Minute)
	if ok, _ := mc.TryLock(ctx, "job", time.Minute); !ok {
		t.Fatalf("expired lock should be reacquired")
	}
	_ = mc.Unlock(ctx, "job")
	if ok, _ := mc.TryLock(ctx, "job", time.Minute); !ok {
		t.Fatalf("lock should be free after unlock")
	}
}

func TestLayeredCacheReadsThrough(t *testing.T) {
	ctx := context.Background()
	remote, _ := newTestMemory(10)
	lc := NewLayeredCache(remote)
	defer lc.Close()

	_ = remote.Set(ctx, "k", []int{1, 2, 3}, time.Hour)
	var got []int
	if err := lc.Get(ctx, "k", &got); err != nil || len(got) != 3 {
		t.Fatalf("read through failed: %v %v", got, err)
	}
	_ = remote.Delete(ctx, "k")
	got = nil
	if err := lc.Get(ctx, "k", &got); err != nil || len(got) != 3 {
		t.Fatalf("value should be served from L1: %v %v", got, err)
	}
	if err := lc.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := lc.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestGenerateKeyWithParams(t *testing.T) {
	if got := GenerateKeyWithParams("bars", "EURUSD", 1, 2); got != "bars:EURUSD:1:2" {
		t.Fatalf("unexpected key %s", got)
	}
	if len(HashKey("x")) != 32 {
		t.Fatalf("unexpected hash length")
	}
}
