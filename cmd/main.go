package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/api"
	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/config"
	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/db"
	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/matcher"
	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/scheduler"
	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/scraper"
	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/store"
	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()
	log := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── storage ──

	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalw("postgres connection failed", "err", err)
	}
	defer pool.Close()

	st := store.New(pool)
	if err := st.InitSchema(ctx); err != nil {
		log.Fatalw("schema init failed", "err", err)
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			// Cache is an optimization, not a dependency.
			log.Warnw("redis unavailable, listing cache disabled", "err", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	// ── pipeline ──

	profile, err := matcher.LoadProfile(cfg.ProfilePath)
	if err != nil {
		log.Fatalw("profile load failed", "path", cfg.ProfilePath, "err", err)
	}

	gate := scraper.NewIntervalGate(scraper.RequestSpacing)
	registry := scraper.NewRegistry(
		scraper.NewAdzuna(cfg.AdzunaAppID, cfg.AdzunaAppKey, cfg.AdzunaCountry, log),
		scraper.NewRemoteOK(cache, log),
		scraper.NewArbeitnow(log),
		scraper.NewHimalayas(gate, log),
		scraper.NewWorkingNomads(cache, log),
		scraper.NewRemotive(gate, log),
		scraper.NewWeWorkRemotely(gate, log),
	)
	orch := scraper.NewOrchestrator(registry, gate, log)
	w := worker.New(orch, st, profile, log)

	sched := scheduler.New(w, cfg.ScrapeIntervalHours, log)
	if err := sched.Start(ctx); err != nil {
		log.Fatalw("scheduler start failed", "err", err)
	}
	defer sched.Stop()

	// ── http ──

	router := api.NewRouter(st, w, registry, log)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infow("http server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("http server failed", "err", err)
		}
	}()

	<-ctx.Done()
	log.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("http shutdown failed", "err", err)
	}
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	return logger
}
