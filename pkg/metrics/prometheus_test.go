package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordBars("M1", 120)
	r.RecordBars("M1", 30)
	r.RecordWaves("H1", "HLC", "rawMonowaves", 7)
	r.RecordUnavailable("W1")
	r.RecordError("ingest")
	r.RecordStage("reduce", 0.01)

	if got := testutil.ToFloat64(r.barsTotal.WithLabelValues("M1")); got != 150 {
		t.Fatalf("bars: got %v", got)
	}
	if got := testutil.ToFloat64(r.wavesTotal.WithLabelValues("H1", "HLC", "rawMonowaves")); got != 7 {
		t.Fatalf("waves: got %v", got)
	}
	if got := testutil.ToFloat64(r.unavailable.WithLabelValues("W1")); got != 1 {
		t.Fatalf("unavailable: got %v", got)
	}
	if got := testutil.CollectAndCount(r.stageLatency); got != 1 {
		t.Fatalf("stage series: got %d", got)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg).RecordError("source")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `neelywave_errors_total{type="source"} 1`) {
		t.Fatalf("metric not exposed:\n%s", rec.Body.String())
	}
}
