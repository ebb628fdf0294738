package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	stageLatency *prometheus.HistogramVec
	barsTotal    *prometheus.CounterVec
	wavesTotal   *prometheus.CounterVec
	unavailable  *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
}

// New creates a recorder whose collectors are registered on reg. A nil reg
// uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		stageLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "neelywave",
				Subsystem: "pipeline",
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"stage"},
		),
		barsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "neelywave",
				Name:      "bars_total",
				Help:      "Bars fed to the pipeline per resolution",
			},
			[]string{"resolution"},
		),
		wavesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "neelywave",
				Name:      "waves_total",
				Help:      "Waves produced per resolution, typical type and kind",
			},
			[]string{"resolution", "typical", "kind"},
		),
		unavailable: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "neelywave",
				Name:      "resolution_unavailable_total",
				Help:      "Inputs too short to produce a resolution",
			},
			[]string{"resolution"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "neelywave",
				Name:      "errors_total",
				Help:      "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordStage records the duration of one pipeline stage.
func (r *Recorder) RecordStage(stage string, seconds float64) {
	r.stageLatency.WithLabelValues(stage).Observe(seconds)
}

// RecordBars counts bars handled at a resolution.
func (r *Recorder) RecordBars(resolution string, n int) {
	r.barsTotal.WithLabelValues(resolution).Add(float64(n))
}

// RecordWaves counts waves of one kind.
func (r *Recorder) RecordWaves(resolution, typical, kind string, n int) {
	r.wavesTotal.WithLabelValues(resolution, typical, kind).Add(float64(n))
}

// RecordUnavailable counts a resolution the input was too short for.
func (r *Recorder) RecordUnavailable(resolution string) {
	r.unavailable.WithLabelValues(resolution).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// Handler exposes g for scraping. A nil g uses the default gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
