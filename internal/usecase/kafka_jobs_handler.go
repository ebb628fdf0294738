package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"NeelyWave/internal/domain/models"
	domrepo "NeelyWave/internal/domain/repository"
	"NeelyWave/internal/services/waves"
	pkgkafka "NeelyWave/pkg/kafka"
	"NeelyWave/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// KafkaJobsHandler consumes AnalysisJob messages and publishes the resulting
// summaries.
type KafkaJobsHandler struct {
	topic    string
	analysis *WaveAnalysisUseCase
	metrics  domrepo.Metrics
	l        *logger.Logger
	validate *validator.Validate
}

func NewKafkaJobsHandler(topic string, analysis *WaveAnalysisUseCase, metrics domrepo.Metrics, l *logger.Logger) *KafkaJobsHandler {
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	if l == nil {
		l = logger.Nop()
	}
	return &KafkaJobsHandler{topic: topic, analysis: analysis, metrics: metrics, l: l, validate: validator.New()}
}

func (h *KafkaJobsHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, from, to} with RFC 3339 times
func (h *KafkaJobsHandler) Handle(ctx context.Context, b []byte) error {
	var job models.AnalysisJob
	if err := json.Unmarshal(b, &job); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return pkgkafka.Permanent(fmt.Errorf("decode job: %w", err))
	}
	if err := h.validate.StructCtx(ctx, &job); err != nil {
		h.metrics.RecordError("consumer_validate")
		return pkgkafka.Permanent(fmt.Errorf("validate job: %w", err))
	}

	summary, err := h.analysis.AnalyzeAndPublish(ctx, AnalyzeParams{Symbol: job.Symbol, From: job.From, To: job.To})
	if err != nil {
		// rejected input and missing data are final
		if waves.IsRejection(err) || errors.Is(err, domrepo.ErrSymbolNotFound) ||
			errors.Is(err, ErrInvalidParams) || errors.Is(err, ErrTooManyBars) {
			return pkgkafka.Permanent(err)
		}
		return err
	}
	h.l.Info("analysis job done",
		logger.String("symbol", job.Symbol),
		logger.String("trace_id", pkgkafka.TraceID(ctx)),
		logger.Int("entries", len(summary.Entries)))
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaJobsHandler)(nil)
