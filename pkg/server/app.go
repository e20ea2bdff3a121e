package server

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"EquityLens/internal/analytics"
	"EquityLens/internal/handler/api"
	"EquityLens/internal/repository"
	icache "EquityLens/internal/service/cache"
	"EquityLens/internal/usecase"
	pkgch "EquityLens/pkg/clickhouse"
	"EquityLens/pkg/config"
	xhttp "EquityLens/pkg/http"
	pkgkafka "EquityLens/pkg/kafka"
	applogger "EquityLens/pkg/logger"

	"github.com/labstack/echo/v4"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	importer    *usecase.DatasetImporter
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient   *pkgch.Client
	httpServer *xhttp.Server
	BarProc    *usecase.BarProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	importer *usecase.DatasetImporter,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:      cfg,
		importer: importer,
		consumer: consumer,
		kh:       kh,
		chClient: chClient,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// init app logger (console info by default)
	l, _ := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})

	// Setup Echo HTTP server using pkg/http and register routes via handler
	var httpHandler xhttp.Handler
	if a.chClient != nil {
		store := repository.NewCHBarStore(a.chClient)
		store.SetLogger(l)

		var c icache.BytesCache
		if a.cfg.Analysis.Redis.Enabled {
			c = icache.NewRedisCache(icache.RedisConfig{
				Addr:     a.cfg.Analysis.Redis.Addr,
				Password: a.cfg.Analysis.Redis.Password,
				DB:       a.cfg.Analysis.Redis.DB,
			})
		} else {
			c = icache.NewTTLCache()
		}

		windows := analytics.Windows{
			Short: a.cfg.Analysis.ShortWindow,
			Long:  a.cfg.Analysis.LongWindow,
		}
		analyze := usecase.NewAnalyzeUseCase(store, windows, c, a.cfg.Analysis.CacheTTL)
		batch := usecase.NewBatchAnalyzeUseCase(store, windows)
		bars := usecase.NewBarsUseCase(store)

		se := api.NewSummaryEchoHandler(l, analyze, batch, bars)
		se.SetHealthCheck(func(c echo.Context) error {
			return a.chClient.Health(c.Request().Context())
		})
		httpHandler = se
	}

	serverOpts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestLogger(l),
	}
	if !a.cfg.Metrics.Enabled {
		serverOpts = append(serverOpts, xhttp.WithMetricsPath(""))
	} else if a.cfg.Metrics.Path != "" {
		serverOpts = append(serverOpts, xhttp.WithMetricsPath(a.cfg.Metrics.Path))
	}
	a.httpServer = xhttp.NewServer(httpHandler, serverOpts...)

	// Import dataset on start if configured
	if a.importer != nil && a.cfg.Dataset.ImportOnStart && a.cfg.Dataset.Path != "" {
		go func() {
			n, err := a.importer.ImportFile(ctx, a.cfg.Dataset.Path)
			if err != nil {
				l.Error("dataset import error", applogger.Error(err))
				return
			}
			l.Info("dataset import complete",
				applogger.String("path", a.cfg.Dataset.Path),
				applogger.Int("bars", n),
			)
		}()
	}

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		log.Printf("failed to create logger: %v", err)
		return err
	}
	l.Info("shutting down...")

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close bar processor resources (publisher/storage)
	if a.BarProc != nil {
		a.BarProc.Close()
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
