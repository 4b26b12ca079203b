//go:build wireinject
// +build wireinject

package di

import (
	"PriceAnomaly/pkg/config"
	"PriceAnomaly/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Detection
		ProvideCacheBackend,
		ProvideZScoreCache,
		ProvideRegistry,
		ProvideEngine,

		// HTTP
		ProvideLimiter,
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Kafka (optional)
		ProvideKafkaProducer,
		ProvideResultPublisher,
		ProvideKafkaRequestsHandler,
		ProvideKafkaConsumer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
