package waves

import (
	"errors"
	"math"
	"testing"
	"time"

	"NeelyWave/internal/domain/models"
)

func minuteBars(offsets ...int) *models.Series {
	s := models.NewSeries(models.ResolutionM1, models.TypicalHLC, len(offsets))
	for i, off := range offsets {
		open := 100 + float64(i)
		s.Append(models.Bar{
			Date:       testStart.Add(time.Duration(off) * time.Minute),
			Open:       open,
			High:       open + 2,
			Low:        open - 3,
			Close:      open + 1,
			TickVolume: float64(i + 1),
			Volume:     float64(2 * (i + 1)),
			Spread:     1,
		})
	}
	return s
}

func consecutive(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func sum(v []float64) float64 {
	var total float64
	for _, x := range v {
		total += x
	}
	return total
}

func TestReduceHourly(t *testing.T) {
	finest := minuteBars(consecutive(150)...)
	reduced, err := Reduce(finest)
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if len(reduced) != 3 {
		t.Fatalf("expected 3 coarser resolutions, got %d", len(reduced))
	}

	h1 := reduced[models.ResolutionH1]
	if h1.Len() != 3 {
		t.Fatalf("expected 3 hourly bars, got %d", h1.Len())
	}
	if err := h1.Validate(); err != nil {
		t.Fatalf("invalid reduced series: %v", err)
	}
	first := h1.Bar(0)
	if first.Open != 100 || first.High != 161 || first.Low != 97 || first.Close != 160 {
		t.Fatalf("unexpected first hourly bar %+v", first)
	}
	if !h1.Date[1].Equal(testStart.Add(time.Hour)) || h1.Open[1] != 160 || h1.Close[1] != 220 {
		t.Fatalf("unexpected second hourly bar %+v", h1.Bar(1))
	}
	if h1.Close[2] != 250 {
		t.Fatalf("last bar must close on the last input close, got %v", h1.Close[2])
	}

	for _, res := range finest.Resolution.Coarser() {
		s := reduced[res]
		if sum(s.TickVolume) != sum(finest.TickVolume) || sum(s.Volume) != sum(finest.Volume) {
			t.Fatalf("%s does not conserve volume", res)
		}
		span := finest.Date[finest.Len()-1].Sub(finest.Date[0])
		want := int(math.Ceil(float64(span) / float64(res.Duration())))
		if d := s.Len() - want; d < -1 || d > 1 {
			t.Fatalf("%s has %d bars, want %d +/- 1", res, s.Len(), want)
		}
	}
	if d1 := reduced[models.ResolutionD1]; d1.Len() != 1 || d1.Close[0] != 250 {
		t.Fatalf("unexpected daily reduction %+v", d1.Bars())
	}
}

func TestReduceWindowAnchorsOnOpeningBar(t *testing.T) {
	offsets := append(consecutive(10), 130, 131, 132, 139)
	reduced, err := Reduce(minuteBars(offsets...))
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	h1 := reduced[models.ResolutionH1]
	if h1.Len() != 2 {
		t.Fatalf("expected 2 hourly bars, got %d", h1.Len())
	}
	if !h1.Date[1].Equal(testStart.Add(130 * time.Minute)) {
		t.Fatalf("second window should open on the first bar after the gap, got %s", h1.Date[1])
	}
	if h1.Close[0] != 110 {
		t.Fatalf("first window should close on the last bar before the gap, got %v", h1.Close[0])
	}
}

func TestReduceSingleBar(t *testing.T) {
	reduced, err := Reduce(minuteBars(0))
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	for res, s := range reduced {
		if s.Len() != 1 {
			t.Fatalf("%s: expected a single bar, got %d", res, s.Len())
		}
	}
}

func TestReduceEmpty(t *testing.T) {
	_, err := Reduce(models.NewSeries(models.ResolutionM1, models.TypicalHLC, 0))
	if !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}

func TestReduceFromCoarsestHasNoTargets(t *testing.T) {
	s := minuteBars(0, 1)
	s.Resolution = models.ResolutionW1
	reduced, err := Reduce(s)
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if len(reduced) != 0 {
		t.Fatalf("expected no targets, got %d", len(reduced))
	}
}
