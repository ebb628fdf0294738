package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterRefill(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewWithClock(func() time.Time { return now })

	for i := 0; i < 2; i++ {
		if !l.Allow("10.0.0.1", 2, 1) {
			t.Fatalf("request %d should pass", i)
		}
	}
	if l.Allow("10.0.0.1", 2, 1) {
		t.Fatalf("bucket should be empty")
	}
	if !l.Allow("10.0.0.2", 2, 1) {
		t.Fatalf("keys must not share a bucket")
	}

	now = now.Add(1500 * time.Millisecond)
	if !l.Allow("10.0.0.1", 2, 1) {
		t.Fatalf("bucket should have refilled")
	}
}

func TestLimiterForget(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewWithClock(func() time.Time { return now })
	l.Allow("a", 1, 1)
	now = now.Add(time.Hour)
	l.Allow("b", 1, 1)
	if n := l.Forget(time.Minute); n != 1 {
		t.Fatalf("expected one idle bucket removed, got %d", n)
	}
}
