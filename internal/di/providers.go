package di

import (
	"context"
	"fmt"
	"time"

	domrepo "NeelyWave/internal/domain/repository"
	"NeelyWave/internal/handler/api"
	internalrepo "NeelyWave/internal/repository"
	"NeelyWave/internal/scheduler"
	"NeelyWave/internal/service/ratelimit"
	"NeelyWave/internal/usecase"
	"NeelyWave/pkg/cache"
	pkgch "NeelyWave/pkg/clickhouse"
	"NeelyWave/pkg/config"
	xhttp "NeelyWave/pkg/http"
	pkgkafka "NeelyWave/pkg/kafka"
	applogger "NeelyWave/pkg/logger"
	"NeelyWave/pkg/metrics"
	"NeelyWave/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the Prometheus registry shared by every collector.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates the pipeline metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) domrepo.Metrics {
	return metrics.New(reg)
}

// ProvideCache creates the bars cache. It returns nil for cache type none.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Type {
	case "none":
		return nil, nil
	case "memory":
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MaxSize)), nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	if cfg.Cache.Type == "layered" {
		return cache.NewLayeredCache(rc,
			cache.WithLayeredMemorySize(cfg.Cache.MaxSize),
			cache.WithLayeredMemoryTTL(time.Minute),
		), nil
	}
	return rc, nil
}

// ProvideClickHouseClient connects to ClickHouse and creates the candle table.
// It returns nil when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.CandleSchema(cfg.ClickHouse.Database, cfg.ClickHouse.Table)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideBarSource selects the configured source and puts the cache in front
// of it.
func ProvideBarSource(cfg *config.Config, ch *pkgch.Client, c cache.Service, l *applogger.Logger) (domrepo.BarSource, error) {
	var src domrepo.BarSource
	switch cfg.Source.Type {
	case "clickhouse":
		if ch == nil {
			return nil, fmt.Errorf("clickhouse source: client not configured")
		}
		src = internalrepo.NewCHBarSource(ch, cfg.ClickHouse.Table, l)
	default:
		src = internalrepo.NewCSVBarSource(cfg.Source.CSVDir, l)
	}
	if c == nil {
		return src, nil
	}
	return internalrepo.NewCachedBarSource(src, c, cfg.Cache.TTL, l), nil
}

// ProvideKafkaProducer creates a Kafka producer. It returns nil when Kafka is
// disabled.
func ProvideKafkaProducer(cfg *config.Config, l *applogger.Logger, reg *prometheus.Registry) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithProducerLogger(l),
		pkgkafka.WithProducerMetrics(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSummaryPublisher publishes summaries to the results topic, or drops
// them when Kafka is disabled.
func ProvideSummaryPublisher(cfg *config.Config, producer *pkgkafka.Producer) domrepo.SummaryPublisher {
	if producer == nil {
		return internalrepo.NopSummaryPublisher{}
	}
	return internalrepo.NewKafkaSummaryPublisher(producer, cfg.Kafka.ResultsTopic)
}

// ProvideAnalysisConfig maps the analysis section onto the use case config.
func ProvideAnalysisConfig(cfg *config.Config) usecase.AnalysisConfig {
	out := usecase.AnalysisConfig{
		Parallel: cfg.Analysis.Parallel,
		MaxBars:  cfg.Analysis.MaxBars,
		Timeout:  cfg.Analysis.Timeout,
	}
	for _, t := range cfg.Analysis.TypicalTypes {
		out.TypicalTypes = append(out.TypicalTypes, domrepo.NormalizeTypicalType(t))
	}
	return out
}

// ProvideWaveAnalysis creates the analysis use case.
func ProvideWaveAnalysis(
	source domrepo.BarSource,
	publisher domrepo.SummaryPublisher,
	m domrepo.Metrics,
	l *applogger.Logger,
	ac usecase.AnalysisConfig,
) *usecase.WaveAnalysisUseCase {
	return usecase.NewWaveAnalysisUseCase(source, publisher, m, l, ac)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML. It
// returns nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger, reg *prometheus.Registry) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
		pkgkafka.WithConsumerMetrics(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaJobsHandler handles analysis jobs from the jobs topic.
func ProvideKafkaJobsHandler(cfg *config.Config, uc *usecase.WaveAnalysisUseCase, m domrepo.Metrics, l *applogger.Logger) *usecase.KafkaJobsHandler {
	return usecase.NewKafkaJobsHandler(cfg.Kafka.JobsTopic, uc, m, l)
}

// ProvideScheduler registers the periodic analysis task. It returns nil when
// the schedule is disabled.
func ProvideScheduler(cfg *config.Config, uc *usecase.WaveAnalysisUseCase, c cache.Service, l *applogger.Logger) (*scheduler.Scheduler, error) {
	if !cfg.Schedule.Enabled {
		return nil, nil
	}
	var lock scheduler.Locker
	if c != nil {
		lock = c
	}
	s := scheduler.New(scheduler.Config{
		Spec:     cfg.Schedule.Cron,
		Symbols:  cfg.Schedule.Symbols,
		Lookback: cfg.Schedule.Lookback,
		LockTTL:  cfg.Schedule.LockTTL,
	}, uc, lock, l)
	if err := s.Register(); err != nil {
		return nil, err
	}
	return s, nil
}

// ProvideWavesHandler creates the Echo handler for /api/waves.
func ProvideWavesHandler(cfg *config.Config, uc *usecase.WaveAnalysisUseCase, l *applogger.Logger) *api.WavesEchoHandler {
	return api.NewWavesEchoHandler(l, uc, cfg.Server.MaxUploadBytes)
}

// ProvideHTTPServer creates the Echo server with rate limiting and metrics.
func ProvideHTTPServer(cfg *config.Config, h *api.WavesEchoHandler, l *applogger.Logger, reg *prometheus.Registry) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(reg, reg, cfg.Metrics.Path))
	} else {
		opts = append(opts, xhttp.WithMetrics(nil, nil, ""))
	}
	if cfg.Server.RateLimit.PerMinute > 0 {
		opts = append(opts, xhttp.WithRateLimit(ratelimit.New(), cfg.Server.RateLimit.PerMinute, cfg.Server.RateLimit.Burst))
	}
	return xhttp.NewServer(h, opts...)
}

// ProvideApp assembles the application and registers every resource it must
// release on shutdown.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaJobsHandler,
	sched *scheduler.Scheduler,
	producer *pkgkafka.Producer,
	c cache.Service,
	ch *pkgch.Client,
) *server.App {
	var handler pkgkafka.MessageHandler
	if consumer != nil {
		handler = kh
	}
	app := server.New(cfg, l, httpServer, consumer, handler, sched)
	if ch != nil {
		app.AddCloser("clickhouse", ch)
	}
	if c != nil {
		app.AddCloser("cache", c)
	}
	if producer != nil {
		app.AddCloser("kafka producer", producer)
	}
	return app
}
