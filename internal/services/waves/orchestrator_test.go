package waves

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"NeelyWave/internal/domain/models"
)

type recordingMetrics struct {
	mu          sync.Mutex
	stages      []string
	unavailable []string
	waves       int
}

func (m *recordingMetrics) RecordStage(stage string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = append(m.stages, stage)
}
func (m *recordingMetrics) RecordBars(string, int) {}
func (m *recordingMetrics) RecordWaves(_, _, _ string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waves += n
}
func (m *recordingMetrics) RecordUnavailable(res string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavailable = append(m.unavailable, res)
}
func (m *recordingMetrics) RecordError(string) {}

func barsEvery(step time.Duration, values []float64) []models.Bar {
	out := make([]models.Bar, len(values))
	for i, v := range values {
		out[i] = models.Bar{
			Date:       testStart.Add(time.Duration(i) * step),
			Open:       v,
			High:       v + 1,
			Low:        v - 1.5,
			Close:      v,
			TickVolume: 3,
		}
	}
	return out
}

func TestIngestMinuteInput(t *testing.T) {
	metrics := &recordingMetrics{}
	store, err := Ingest(context.Background(), barsEvery(time.Minute, wavy(180)), WithMetrics(metrics))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if store.Finest() != models.ResolutionM1 || store.InputBars() != 180 {
		t.Fatalf("unexpected store header %s %d", store.Finest(), store.InputBars())
	}

	avail := store.AvailableResolutions()
	if len(avail) != models.NumResolutions || avail[0] != models.ResolutionM1 || avail[3] != models.ResolutionW1 {
		t.Fatalf("unexpected available resolutions %v", avail)
	}
	if len(metrics.unavailable) != 0 {
		t.Fatalf("nothing should be unavailable, got %v", metrics.unavailable)
	}
	if len(metrics.stages) != 4 || metrics.waves == 0 {
		t.Fatalf("metrics not recorded: %v %d", metrics.stages, metrics.waves)
	}
	// three hours of minutes reduce to a single daily and weekly bar
	for _, res := range []models.Resolution{models.ResolutionD1, models.ResolutionW1} {
		d, ok := store.Series(res, models.TypicalHLC, models.KindFull)
		if !ok || d.Len() != 1 {
			t.Fatalf("%s should hold its single reduced bar", res)
		}
	}

	for _, res := range avail {
		for _, typ := range models.TypicalTypes() {
			for _, kind := range models.Kinds() {
				s, ok := store.Series(res, typ, kind)
				if !ok {
					t.Fatalf("%s/%s/%s missing", res, typ, kind)
				}
				if s.Resolution != res || s.TypicalType != typ {
					t.Fatalf("%s/%s/%s tagged %s/%s", res, typ, kind, s.Resolution, s.TypicalType)
				}
				if err := s.Validate(); err != nil {
					t.Fatalf("%s/%s/%s: %v", res, typ, kind, err)
				}
			}
			full, _ := store.Series(res, typ, models.KindFull)
			if MinimumIndex(full) != 0 {
				t.Fatalf("%s/%s not trimmed to its minimum", res, typ)
			}
			raw, _ := store.Monowaves(res, typ, false)
			simple, _ := store.Series(res, typ, models.KindSimpleTrim)
			if simple.Len() != len(raw)+1 && !(len(raw) == 1 && raw[0].Bars() == 1) {
				t.Fatalf("%s/%s simple trim has %d bars for %d waves", res, typ, simple.Len(), len(raw))
			}
		}
	}
}

func TestStoreSeriesIsACopy(t *testing.T) {
	store, err := Ingest(context.Background(), barsEvery(time.Minute, wavy(120)))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	s, _ := store.Series(models.ResolutionM1, models.TypicalHL, models.KindFull)
	s.Close[0] = -1
	s.Typical = s.Typical[:0]
	again, _ := store.Series(models.ResolutionM1, models.TypicalHL, models.KindFull)
	if again.Close[0] == -1 || again.Len() != len(again.Typical) {
		t.Fatalf("store was mutated through a returned series")
	}
}

func TestIngestHourlyInput(t *testing.T) {
	metrics := &recordingMetrics{}
	store, err := Ingest(context.Background(), barsEvery(time.Hour, wavy(48)), WithMetrics(metrics))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if store.Finest() != models.ResolutionH1 {
		t.Fatalf("expected H1, got %s", store.Finest())
	}
	if store.Available(models.ResolutionM1) || !store.Available(models.ResolutionD1) || !store.Available(models.ResolutionW1) {
		t.Fatalf("unexpected availability %v", store.AvailableResolutions())
	}
	if len(metrics.unavailable) != 1 || metrics.unavailable[0] != "M1" {
		t.Fatalf("expected M1 reported unavailable, got %v", metrics.unavailable)
	}

	sum := store.Summary("EURUSD")
	if sum.Symbol != "EURUSD" || sum.Finest != "H1" || sum.Bars != 48 {
		t.Fatalf("unexpected summary header %+v", sum)
	}
	if len(sum.Available) != 3 || len(sum.Entries) != 6 {
		t.Fatalf("unexpected summary %v %d", sum.Available, len(sum.Entries))
	}
	for _, e := range sum.Entries {
		if e.DirectionalActions != len(e.Actions) || e.MergedMonowaves != e.DirectionalActions {
			t.Fatalf("inconsistent summary entry %+v", e)
		}
	}
}

func TestIngestRejections(t *testing.T) {
	unsorted := barsEvery(time.Minute, []float64{1, 2, 3, 4})
	unsorted[2].Date = unsorted[0].Date.Add(30 * time.Second)
	infinite := barsEvery(time.Minute, []float64{10, 11, 12, 11})
	infinite[2].High = math.Inf(1)
	nan := barsEvery(time.Minute, []float64{10, 11, 12, 11})
	nan[3].Close = math.NaN()

	cases := []struct {
		name string
		bars []models.Bar
		want error
	}{
		{"empty", nil, ErrEmptySeries},
		{"single", barsEvery(time.Minute, []float64{1}), ErrInsufficientData},
		{"spacing", barsEvery(90*time.Second, []float64{1, 2, 3}), ErrUnknownResolutionSpacing},
		{"duplicate", barsEvery(0, []float64{1, 2}), ErrUnsortedSeries},
		{"unsorted", unsorted, ErrUnsortedSeries},
		{"infinite high", infinite, ErrNonFiniteValue},
		{"nan close", nan, ErrNonFiniteValue},
	}
	for _, tc := range cases {
		store, err := Ingest(context.Background(), tc.bars)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if store != nil {
			t.Fatalf("%s: partial store returned", tc.name)
		}
		if !IsRejection(err) {
			t.Fatalf("%s: %v should be a rejection", tc.name, err)
		}
	}
}

func TestIngestParallelMatchesSequential(t *testing.T) {
	bars := barsEvery(time.Minute, wavy(3000))
	seq, err := Ingest(context.Background(), bars)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	par, err := Ingest(context.Background(), bars, WithParallel(true))
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	for _, res := range seq.AvailableResolutions() {
		for _, typ := range models.TypicalTypes() {
			a, _ := seq.Actions(res, typ)
			b, _ := par.Actions(res, typ)
			if len(a) != len(b) {
				t.Fatalf("%s/%s: %d vs %d actions", res, typ, len(a), len(b))
			}
			for i := range a {
				if a[i] != b[i] {
					t.Fatalf("%s/%s: action %d differs", res, typ, i)
				}
			}
		}
	}
}

func TestIngestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Ingest(ctx, barsEvery(time.Minute, wavy(10))); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOrchestratorStageOrder(t *testing.T) {
	o := NewOrchestrator()
	if err := o.Reduce(); !errors.Is(err, ErrPipelineOrder) {
		t.Fatalf("expected ErrPipelineOrder, got %v", err)
	}
	if err := o.Initialize(seriesOf(1, 2, 3)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := o.Initialize(seriesOf(1, 2, 3)); !errors.Is(err, ErrPipelineOrder) {
		t.Fatalf("expected ErrPipelineOrder on second initialize, got %v", err)
	}
	if o.Store() != nil {
		t.Fatalf("store exposed before the last stage")
	}
}

func TestOrchestratorUnsupportedTypicalType(t *testing.T) {
	o := NewOrchestrator(WithTypicalTypes(models.TypicalType(9)))
	if err := o.Initialize(seriesOf(1, 2, 3)); !errors.Is(err, ErrUnsupportedTypicalType) {
		t.Fatalf("expected ErrUnsupportedTypicalType, got %v", err)
	}
}

func TestCheckHeader(t *testing.T) {
	if err := CheckHeader([]string{"<DATE>", "<TIME>", "<OPEN>", "<HIGH>", "<LOW>", "<CLOSE>", "<TICKVOL>"}); err != nil {
		t.Fatalf("metatrader header rejected: %v", err)
	}
	err := CheckHeader([]string{"Date", "Open", "High", "Low"})
	if !errors.Is(err, ErrInvalidHeader) {
		t.Fatalf("expected ErrInvalidHeader, got %v", err)
	}
}
