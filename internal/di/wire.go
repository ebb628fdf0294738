//go:build wireinject
// +build wireinject

package di

import (
	"NeelyWave/pkg/config"
	"NeelyWave/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideBarSource,
		ProvideSummaryPublisher,

		// Use cases
		ProvideAnalysisConfig,
		ProvideWaveAnalysis,
		ProvideKafkaJobsHandler,
		ProvideScheduler,

		// HTTP
		ProvideWavesHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
