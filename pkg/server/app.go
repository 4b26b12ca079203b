package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"PriceAnomaly/internal/domain/repository"
	"PriceAnomaly/pkg/cache"
	"PriceAnomaly/pkg/config"
	xhttp "PriceAnomaly/pkg/http"
	pkgkafka "PriceAnomaly/pkg/kafka"
	applogger "PriceAnomaly/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	httpServer *xhttp.Server
	cache      cache.Service

	consumer  *pkgkafka.Consumer
	kh        pkgkafka.MessageHandler
	publisher repository.ResultPublisher
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, logger *applogger.Logger, httpServer *xhttp.Server, c cache.Service) *App {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &App{cfg: cfg, logger: logger, httpServer: httpServer, cache: c}
}

// SetKafka enables the asynchronous request path.
func (a *App) SetKafka(consumer *pkgkafka.Consumer, kh pkgkafka.MessageHandler, pub repository.ResultPublisher) {
	a.consumer = consumer
	a.kh = kh
	a.publisher = pub
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			a.logger.Error("kafka consumer start error", applogger.Error(err))
			a.closeResources()
			return err
		}
		a.logger.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		a.shutdown(context.Background())
		return err
	}

	sig := <-sigCh
	a.logger.Info("shutdown signal received", applogger.String("signal", sig.String()))
	a.shutdown(context.Background())
	return nil
}

// shutdown stops intake first, then closes the backends the handlers use.
func (a *App) shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.logger.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	a.closeResources()
	a.logger.Info("shutdown complete")
}

func (a *App) closeResources() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("kafka publisher close error", applogger.Error(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}
}
