package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"campus_sync/internal/api"
	"campus_sync/internal/config"
	"campus_sync/internal/fetcher"
	"campus_sync/internal/publisher"
	"campus_sync/internal/scheduler"
	"campus_sync/internal/service"
	"campus_sync/internal/source/centers"
	"campus_sync/internal/source/faculties"
	"campus_sync/internal/source/news"
	"campus_sync/internal/source/rectorat"
	"campus_sync/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single sync pass and exit")
	resync := flag.String("resync", "", "refresh one card given as <category>/<id> and exit")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cardCache, err := api.NewCardCache(cfg.HTTP.CacheEntries, cfg.HTTP.CacheTTL)
	if err != nil {
		logger.Error("failed to create card cache", "error", err)
		os.Exit(1)
	}

	pubs := []publisher.CardPublisher{cardCache}
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		pubs = append(pubs, rabbitMQ)
	} else {
		logger.Info("rabbitmq url not set, card notifications disabled")
	}
	notifier := publisher.NewFanout(pubs...)
	defer notifier.Close()

	// Initialize stores
	cardStore := postgres.NewCardStore(db)
	videoStore := postgres.NewVideoStore(db)
	syncStateStore := postgres.NewSyncStateStore(db)
	txManager := postgres.NewTransactionManager(db)

	httpFetcher := fetcher.New(fetcher.Config{
		UserAgent:      cfg.Fetcher.UserAgent,
		Timeout:        cfg.Fetcher.Timeout,
		MaxAttempts:    cfg.Fetcher.Retry.MaxAttempts,
		InitialBackoff: cfg.Fetcher.Retry.InitialBackoff,
		MaxBackoff:     cfg.Fetcher.Retry.MaxBackoff,
	}, logger)

	sources := []service.Source{
		news.New(news.Config{
			BaseURL:        cfg.Sources.NewsURL,
			MaxConcurrency: cfg.Sync.MaxConcurrency,
		}, httpFetcher, logger),
		rectorat.New(rectorat.Config{
			BaseURL:      cfg.Sources.RectoratURL,
			DefaultImage: cfg.Sync.DefaultImage,
		}, httpFetcher, logger),
		centers.New(centers.Config{
			BaseURL:      cfg.Sources.CentersURL,
			DefaultImage: cfg.Sync.DefaultImage,
		}, httpFetcher, logger),
	}
	if cfg.Sources.FacultiesEnabled {
		sources = append(sources, faculties.New(httpFetcher, logger))
	}

	syncService := service.NewSyncService(
		sources,
		cardStore,
		syncStateStore,
		txManager,
		notifier,
		logger,
		service.Config{
			MaxConcurrency: cfg.Sync.MaxConcurrency,
			UploadPrefix:   cfg.Sync.UploadPrefix,
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if *resync != "" {
		if err := runResync(ctx, syncService, *resync, cfg.Sync.RunTimeout, logger); err != nil {
			logger.Error("resync failed", "target", *resync, "error", err)
			os.Exit(1)
		}
		return
	}

	if *once {
		runCtx, runCancel := context.WithTimeout(ctx, cfg.Sync.RunTimeout)
		defer runCancel()
		stats, err := syncService.Sync(runCtx)
		if err != nil {
			logger.Error("sync failed", "error", err)
			os.Exit(1)
		}
		for _, st := range stats {
			if st.Err != "" {
				os.Exit(1)
			}
		}
		return
	}

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(cardStore, videoStore, syncService, cardCache, logger)
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewRouter(handler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	sched, err := scheduler.NewScheduler(syncService, cfg.Sync.Schedule, cfg.Sync.RunTimeout, logger)
	if err != nil {
		logger.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}

	logger.Info("starting campus syncer",
		"sources", len(sources),
		"schedule", cfg.Sync.Schedule,
		"max_concurrency", cfg.Sync.MaxConcurrency,
	)

	schedErr := sched.Start(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", "error", err)
	}

	if schedErr != nil && !errors.Is(schedErr, context.Canceled) {
		logger.Error("scheduler error", "error", schedErr)
		os.Exit(1)
	}
}

func runResync(ctx context.Context, svc *service.SyncService, target string, timeout time.Duration, logger *slog.Logger) error {
	category, id, ok := strings.Cut(target, "/")
	if !ok || category == "" || id == "" {
		return fmt.Errorf("invalid resync target %q, want <category>/<id>", target)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	card, action, err := svc.Resync(ctx, category, id)
	if err != nil {
		return err
	}
	logger.Info("card resynced", "id", card.ID, "action", action.String())
	return nil
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
