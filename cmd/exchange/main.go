package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/efreitasn/exchangesim/internal/config"
	"github.com/efreitasn/exchangesim/internal/engine"
	"github.com/efreitasn/exchangesim/internal/handler"
	"github.com/efreitasn/exchangesim/internal/metrics"
	"github.com/efreitasn/exchangesim/internal/notify"
	"github.com/efreitasn/exchangesim/internal/service"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	envFile := flag.String("env-file", ".env", "Optional file of environment variables to load")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		slog.Error("failed to load env file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3487"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	m := metrics.New()

	// Notification channels.
	var sms notify.Sender
	if cfg.SMSEnabled() {
		sms = notify.NewSMSClient(notify.SMSConfig{
			BaseURL:    cfg.SMSGatewayURL,
			AccountSID: cfg.SMSAccountSID,
			AuthToken:  cfg.SMSAuthToken,
			From:       cfg.SMSFrom,
			Rate:       cfg.SMSRate,
			Burst:      cfg.SMSBurst,
			Timeout:    cfg.WebhookTimeout,
		})
	} else {
		logger.Info("sms gateway not configured, sms notices disabled")
	}
	dispatcher := notify.NewDispatcher(notify.Config{
		Workers:   cfg.NotifyWorkers,
		QueueSize: cfg.NotifyQueueSize,
		Timeout:   cfg.WebhookTimeout,
		Webhook:   notify.NewWebhookClient(cfg.WebhookTimeout),
		SMS:       sms,
		Metrics:   m,
		Logger:    logger,
	})

	// Engine.
	book := engine.NewOrderBook(engine.Config{
		Workers:   cfg.MatchWorkers,
		QueueSize: cfg.MatchQueueSize,
		Notifier:  dispatcher,
		Metrics:   m,
		Logger:    logger,
	})

	snapshotSvc := service.NewSnapshotService(book, service.SnapshotConfig{
		UploadURL: cfg.SnapshotUploadURL,
		Auth:      cfg.SnapshotUploadAuth,
		Owner:     service.Party{Name: cfg.SnapshotOwnerName, Email: cfg.SnapshotOwnerEmail},
		Signer:    service.Party{Name: cfg.SnapshotSignerName, Email: cfg.SnapshotSignerEmail},
		Timeout:   cfg.WebhookTimeout,
	})

	// Router.
	router := handler.NewRouter(handler.Services{
		Intake:   service.NewIntakeService(book, logger),
		Chart:    service.NewChartService(book),
		Book:     service.NewBookService(book),
		Snapshot: snapshotSvc,
		Admin:    book,
		Metrics:  m.Handler(),
	}, logger)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop intake, drain queued matches, then drain
	// the notices those matches produced.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	book.Close()
	dispatcher.Close()

	logger.Info("server stopped")
}
