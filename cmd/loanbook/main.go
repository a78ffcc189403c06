package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"loanbook/internal/amqp"
	"loanbook/internal/backend"
	"loanbook/internal/cache"
	"loanbook/internal/cli"
	apphttp "loanbook/internal/http"
	applog "loanbook/internal/log"
	"loanbook/internal/metrics"
	"loanbook/internal/report"
	"loanbook/internal/report/charts"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid loan source configuration", applog.FieldError, err, applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}

	src, err := backend.NewFactory(logger).CreateSource(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize loan source", applog.FieldError, err, applog.FieldSource, backendCfg.Type)
		os.Exit(1)
	}

	// The book is loaded once and stays immutable for the process lifetime.
	book, err := backend.LoadBook(ctx, src.Source, logger)
	if closeErr := src.Close(); closeErr != nil {
		logger.Warn("Failed to close loan source", applog.FieldError, closeErr)
	}
	if err != nil {
		logger.Error("Failed to load loan book", applog.FieldError, err, applog.FieldSource, backendCfg.Type, applog.FieldOperation, applog.OpLoad)
		os.Exit(1)
	}

	engine := metrics.NewEngine(metrics.WithLogger(logger.WithComponent(applog.ComponentMetrics)))

	composerOpts := []report.Option{report.WithLogger(logger.WithComponent(applog.ComponentReport))}
	if cfg.ReportDebugDir != "" {
		composerOpts = append(composerOpts, report.WithDebugDir(cfg.ReportDebugDir))
	}
	caches := cache.NewManager(logger)
	if cfg.ReportCacheSize > 0 {
		panels := cache.NewLRUCache[[3]report.Panel](cfg.ReportCacheSize, cfg.ReportCacheTTL)
		caches.Register(panels)
		caches.StartCleanup(cfg.ReportCacheTTL)
		composerOpts = append(composerOpts, report.WithPanelCache(panels))
	}
	composer := report.NewComposer(charts.New(), composerOpts...)

	opts := apphttp.Options{
		Addr:            ":" + cfg.Port,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		IdleTimeout:     cfg.IdleTimeout,
		ReportRateLimit: cfg.ReportRateLimit,
		Logger:          logger,
	}

	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			// Report events are optional; serve without them.
			logger.Warn("AMQP unavailable, report events disabled",
				applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeNetwork)
		} else {
			opts.Publisher = amqpClient
			logger.Info("Report events enabled", "exchange", cfg.AMQPExchange, "routing_key", cfg.AMQPRoutingKey)
		}
	}

	srv := apphttp.NewServer(book, engine, composer, opts)

	done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) error {
		err := srv.Shutdown(ctx)
		caches.Stop()
		if amqpClient != nil {
			if closeErr := amqpClient.Close(); closeErr != nil {
				logger.Warn("Failed to close AMQP client", applog.FieldError, closeErr)
			}
		}
		return err
	})

	logger.Info("Starting loanbook server",
		"port", cfg.Port,
		applog.FieldSource, backendCfg.Type,
		applog.FieldBookSize, book.Len(),
		applog.FieldOperation, applog.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
