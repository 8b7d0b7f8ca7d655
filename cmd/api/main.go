package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/lens-lookup-service/internal/adapter/chromedp_browser"
	"github.com/user/lens-lookup-service/internal/adapter/memory"
	redis_adapter "github.com/user/lens-lookup-service/internal/adapter/redis"
	"github.com/user/lens-lookup-service/internal/delivery/http/handler"
	"github.com/user/lens-lookup-service/internal/delivery/http/router"
	"github.com/user/lens-lookup-service/internal/entity"
	"github.com/user/lens-lookup-service/internal/repository"
	"github.com/user/lens-lookup-service/internal/usecase"
	"github.com/user/lens-lookup-service/pkg/config"
	"github.com/user/lens-lookup-service/pkg/logger"
	"github.com/user/lens-lookup-service/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		// The logger isn't configured yet.
		zap.NewExample().Fatal("could not load config", zap.Error(err))
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("could not build logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	// --- Metrics ---
	m := metrics.New(prometheus.DefaultRegisterer)

	// --- Result cache ---
	var cache repository.ResultCacheRepository
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("unable to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer rdb.Close()
		cache = redis_adapter.NewResultCache(rdb)
	default:
		cache = memory.NewResultCache(cfg.CacheMaxEntries, cfg.CacheTTL())
	}
	log.Info("result cache ready", zap.String("backend", cfg.CacheBackend), zap.Duration("ttl", cfg.CacheTTL()))

	// --- Browser ---
	profile := entity.DefaultSiteProfile()
	profile.DetailPagePattern = regexp.MustCompile(cfg.DetailPagePattern)

	launcher := chromedp_browser.NewLauncher(
		chromedp_browser.LaunchConfig{ChromePath: cfg.ChromePath, Headless: cfg.Headless},
		chromedp_browser.NewProfileRotator(cfg.ProxyList(), nil),
		log.Named("browser"),
	)
	sessions := usecase.NewSessionProvider(launcher, cfg.SessionMode == config.SessionModeShared, log, m)

	// --- Use Cases ---
	pacer := usecase.RandomPacer{}
	humanizer := usecase.NewHumanizer(pacer, log)
	searcher := usecase.NewSearchUseCase(usecase.SearchDeps{
		Cache:          cache,
		Sessions:       sessions,
		Pipeline:       usecase.NewNavigationPipeline(profile, humanizer, pacer, log, m),
		Extraction:     usecase.NewExtractionLoop(profile, pacer, log, m),
		Profile:        profile,
		CacheTTL:       cfg.CacheTTL(),
		MaxConcurrency: cfg.MaxConcurrency,
		Logger:         log,
		Metrics:        m,
	})

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(searcher, log)
	httpRouter := router.New(apiHandler, log, m, prometheus.DefaultGatherer)

	// A full search visits several pages and can run well past a minute.
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      180 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("could not start server", zap.Error(err))
		}
	}()
	log.Info("server started",
		zap.String("addr", cfg.Addr()),
		zap.String("session_mode", cfg.SessionMode),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	if released, err := sessions.Release(ctx); err != nil {
		log.Error("failed to close shared browser", zap.Error(err))
	} else if released {
		log.Info("shared browser closed")
	}

	log.Info("server exiting")
}
