package waves

import (
	"errors"
	"math"
	"testing"
	"time"

	"NeelyWave/internal/domain/models"
)

var testStart = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

// seriesOf builds a minute series whose HLC typical price equals values.
func seriesOf(values ...float64) *models.Series {
	s := models.NewSeries(models.ResolutionM1, models.TypicalHLC, len(values))
	for i, v := range values {
		s.Append(models.Bar{
			Date:       testStart.Add(time.Duration(i) * time.Minute),
			Open:       v,
			High:       v,
			Low:        v,
			Close:      v,
			Typical:    v,
			TickVolume: 1,
			Volume:     10,
		})
	}
	return s
}

func wavy(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 10*math.Sin(float64(i)*0.7) + 3*math.Sin(float64(i)*2.3) + float64(i)*0.05
	}
	return out
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSegmentScenario(t *testing.T) {
	ws, err := Segment(seriesOf(10, 12, 11, 14, 9))
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	if len(ws) != 4 {
		t.Fatalf("expected 4 monowaves, got %d", len(ws))
	}
	advances := []float64{2, -1, 3, -5}
	relative := []float64{100, -50, -300, -500.0 / 3}
	for i, m := range ws {
		if !almostEqual(m.Advance, advances[i]) {
			t.Fatalf("wave %d advance %v, want %v", i, m.Advance, advances[i])
		}
		if !almostEqual(m.RelativeAdvance, relative[i]) {
			t.Fatalf("wave %d relative advance %v, want %v", i, m.RelativeAdvance, relative[i])
		}
		if !m.Closed {
			t.Fatalf("wave %d not closed", i)
		}
	}
	if ws[0].Direction != models.DirectionUp || ws[1].Direction != models.DirectionDown {
		t.Fatalf("unexpected directions %v %v", ws[0].Direction, ws[1].Direction)
	}
	if ws[2].StartIndex != 2 || ws[2].EndIndex != 3 {
		t.Fatalf("wave 2 spans [%d, %d]", ws[2].StartIndex, ws[2].EndIndex)
	}
}

func TestSegmentCoverageAndAlternation(t *testing.T) {
	s := seriesOf(wavy(500)...)
	ws, err := Segment(s)
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	if ws[0].StartIndex != 0 || ws[len(ws)-1].EndIndex != s.Len()-1 {
		t.Fatalf("waves do not cover the series: first %d last %d", ws[0].StartIndex, ws[len(ws)-1].EndIndex)
	}
	for i, m := range ws {
		if m.Direction != models.DirectionOf(m.ValueEnd-m.ValueStart) {
			t.Fatalf("wave %d direction %v does not match its values", i, m.Direction)
		}
		if m.ValueStart != s.Typical[m.StartIndex] || m.ValueEnd != s.Typical[m.EndIndex] {
			t.Fatalf("wave %d values do not match the series", i)
		}
		if i == 0 {
			continue
		}
		if m.StartIndex != ws[i-1].EndIndex {
			t.Fatalf("gap between wave %d and %d", i-1, i)
		}
		if m.Direction == ws[i-1].Direction {
			t.Fatalf("waves %d and %d share direction %v", i-1, i, m.Direction)
		}
	}
}

func TestSegmentFlatStepsJoinTheOpenWave(t *testing.T) {
	ws, err := Segment(seriesOf(10, 12, 12, 12, 11))
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	if len(ws) != 2 {
		t.Fatalf("expected 2 monowaves, got %d", len(ws))
	}
	if ws[0].EndIndex != 3 {
		t.Fatalf("flat bars should extend the first wave, end %d", ws[0].EndIndex)
	}
}

func TestSegmentSingleBarAndEmpty(t *testing.T) {
	ws, err := Segment(seriesOf(7))
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	if len(ws) != 1 || ws[0].Direction != models.DirectionFlat || ws[0].RelativeAdvance != 100 {
		t.Fatalf("unexpected single bar decomposition %+v", ws)
	}
	if _, err := Segment(models.NewSeries(models.ResolutionM1, models.TypicalHLC, 0)); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}

func TestSegmentRejectsNonFiniteTypical(t *testing.T) {
	for _, s := range []*models.Series{
		seriesOf(10, math.NaN(), 12),
		seriesOf(math.Inf(1), 11, 12),
		seriesOf(10, 11, math.Inf(-1), 12),
	} {
		ws, err := Segment(s)
		if !errors.Is(err, ErrInvariant) {
			t.Fatalf("typical %v: expected ErrInvariant, got %v (%d waves)", s.Typical, err, len(ws))
		}
	}
}
