package di

import (
	"context"
	"fmt"
	"time"

	"PriceAnomaly/internal/domain/models"
	"PriceAnomaly/internal/domain/repository"
	"PriceAnomaly/internal/handler/api"
	internalrepo "PriceAnomaly/internal/repository"
	icache "PriceAnomaly/internal/service/cache"
	"PriceAnomaly/internal/service/ratelimit"
	"PriceAnomaly/internal/services/analytics"
	"PriceAnomaly/internal/usecase"
	pkgcache "PriceAnomaly/pkg/cache"
	"PriceAnomaly/pkg/config"
	xhttp "PriceAnomaly/pkg/http"
	pkgkafka "PriceAnomaly/pkg/kafka"
	applogger "PriceAnomaly/pkg/logger"
	"PriceAnomaly/pkg/metrics"
	"PriceAnomaly/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger creates the application logger from the log section.
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

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() repository.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideCacheBackend builds the z-score cache store: a bounded LRU, layered
// over Redis when cache.redis is enabled.
func ProvideCacheBackend(cfg *config.Config, logger *applogger.Logger) (pkgcache.Service, error) {
	memory := pkgcache.NewMemoryCache(
		pkgcache.WithMemoryMaxSize(cfg.Detection.CacheCapacity),
		pkgcache.WithMemoryCleanup(time.Minute),
	)
	if !cfg.Cache.Redis.Enabled {
		return memory, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	redisCache, err := pkgcache.NewRedisCache(ctx,
		pkgcache.WithRedisAddr(cfg.Cache.Redis.Addr),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		pkgcache.WithRedisPool(cfg.Cache.Redis.PoolSize, 2, 30*time.Second),
		pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		pkgcache.WithRedisPingAttempts(cfg.Cache.Redis.PingAttempts),
	)
	if err != nil {
		_ = memory.Close()
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	logger.Info("redis cache connected", applogger.String("addr", cfg.Cache.Redis.Addr))
	return pkgcache.NewLayeredCache(redisCache, memory), nil
}

// ProvideZScoreCache memoizes z-score results in the cache backend.
func ProvideZScoreCache(backend pkgcache.Service, cfg *config.Config, m repository.Metrics, logger *applogger.Logger) *icache.ZScoreCache {
	layer, ttl := "memory", cfg.Detection.CacheTTL
	if cfg.Cache.Redis.Enabled {
		layer, ttl = "layered", cfg.Cache.Redis.TTL
	}
	return icache.NewZScoreCache(backend, ttl, layer, m, logger)
}

// ProvideRegistry registers the three detectors.
func ProvideRegistry(zc *icache.ZScoreCache) *analytics.Registry {
	return analytics.NewDefaultRegistry(zc)
}

// ProvideEngine creates the detection engine with configured defaults.
func ProvideEngine(registry *analytics.Registry, m repository.Metrics, logger *applogger.Logger, cfg *config.Config) *usecase.AnomalyEngine {
	return usecase.NewAnomalyEngine(registry, m, logger,
		usecase.WithDefaults(models.DetectionMethod(cfg.Detection.DefaultMethod), cfg.Detection.DefaultWindow),
	)
}

// ProvideLimiter creates the per-client limiter for the detect endpoint.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

// ProvideHTTPHandler creates the detection API handler.
func ProvideHTTPHandler(engine *usecase.AnomalyEngine, limiter *ratelimit.Limiter, zc *icache.ZScoreCache, logger *applogger.Logger) *api.DetectEchoHandler {
	return api.NewDetectEchoHandler(engine, logger,
		api.WithRateLimit(limiter.Middleware()),
		api.WithCacheSize(zc.Len),
	)
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, handler *api.DetectEchoHandler, logger *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(handler, logger,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORSOrigins),
		xhttp.WithMetrics(metricsPath, prometheus.DefaultGatherer),
	)
}

// ProvideKafkaProducer creates a Kafka producer. Nil when kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideResultPublisher publishes detection replies. Nil when kafka is disabled.
func ProvideResultPublisher(producer *pkgkafka.Producer, cfg *config.Config, logger *applogger.Logger) repository.ResultPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaResultPublisher(producer, cfg.Kafka.ResultTopic,
		cfg.Kafka.Producer.PublishRetries, cfg.Kafka.Producer.PublishMaxWait, logger)
}

// ProvideKafkaRequestsHandler answers requests from the request topic.
func ProvideKafkaRequestsHandler(cfg *config.Config, engine *usecase.AnomalyEngine, pub repository.ResultPublisher, m repository.Metrics, logger *applogger.Logger) *usecase.KafkaRequestsHandler {
	if pub == nil {
		return nil
	}
	return usecase.NewKafkaRequestsHandler(cfg.Kafka.RequestTopic, engine, pub, m, logger)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML. Nil when kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, logger *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(logger,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerStartOffset(cfg.Kafka.Consumer.StartOffset),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaRequestsHandler,
	pub repository.ResultPublisher,
	backend pkgcache.Service,
) *server.App {
	app := server.New(cfg, logger, httpServer, backend)
	if consumer != nil && kh != nil {
		app.SetKafka(consumer, kh, pub)
	}
	return app
}
