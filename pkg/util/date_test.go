package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}

	got, ok = ParseTime(strconv.FormatInt(ts*1000, 10))
	if !ok || got.Unix() != ts {
		t.Fatalf("unix millis not detected: %v", got)
	}
}

func TestParseTimeLayouts(t *testing.T) {
	want := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)
	for _, s := range []string{
		"2024-03-04 09:30",
		"2024-03-04 09:30:00",
		"2024.03.04 09:30",
		"2024.03.04 09:30:00",
		" 2024/03/04 09:30 ",
	} {
		got, ok := ParseTime(s)
		if !ok || !got.Equal(want) {
			t.Fatalf("%q: got %v %v", s, got, ok)
		}
	}
	if _, ok := ParseTime("yesterday"); ok {
		t.Fatalf("expected failure")
	}
}

func TestJoinDateTime(t *testing.T) {
	got, ok := JoinDateTime("2024.03.04", "09:30:00")
	if !ok || !got.Equal(time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected %v %v", got, ok)
	}
	got, ok = JoinDateTime("2024-03-04", "")
	if !ok || got.Hour() != 0 {
		t.Fatalf("unexpected %v %v", got, ok)
	}
}

func TestAlignFromTo(t *testing.T) {
	from := time.Date(2024, 3, 4, 9, 30, 17, 0, time.UTC)
	to := from.Add(90 * time.Minute)
	f, e := AlignFromTo(from, to, time.Hour)
	if f.Minute() != 0 || e.Minute() != 0 || e.Hour() != 11 {
		t.Fatalf("unexpected alignment %v %v", f, e)
	}
}
