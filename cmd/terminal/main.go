package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pixelfood/internal/config"
	"pixelfood/internal/infra"
	"pixelfood/internal/middleware"
	"pixelfood/internal/repository"
	"pixelfood/internal/router"
	"pixelfood/internal/service"
	"pixelfood/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger — dev: pretty, prod: JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	breaker := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	client := infra.NewBackendClient(cfg.BackendURL, time.Duration(cfg.BackendTimeoutSeconds)*time.Second, breaker)

	// Redis backs the receipt queue, and the session when SESSION_STORE=redis.
	var rdb *redis.Client
	if cfg.SessionStore == "redis" || cfg.SMTPHost != "" {
		rdb, err = infra.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			if cfg.SessionStore == "redis" {
				log.Fatal().Err(err).Msg("failed to connect to redis")
			}
			log.Warn().Err(err).Msg("redis unavailable, receipts will not be mailed")
			rdb = nil
		}
	}

	store, err := sessionStore(cfg, rdb)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open session store")
	}

	session := service.NewAuthSession(cfg.TerminalID, store, client)
	go func() {
		if err := session.Resolve(ctx); err != nil {
			log.Error().Err(err).Msg("session resolved as anonymous")
		}
	}()

	// Receipt mailing runs in the worker pool when Redis is available.
	var queue service.ReciboQueue
	if rdb != nil {
		mailer := infra.NewMailer(cfg)
		queue = worker.NewDispatcher(rdb)
		pool := worker.NewPool(rdb, map[string]worker.Processor{
			worker.JobRecibo: worker.NewEmailWorker(mailer, cfg.BusinessName, cfg.ReceiptStoragePath),
		})
		// Receipts parked by a previous run get one more round.
		if n, err := worker.Requeue(ctx, rdb, worker.QueueRecibos, 100); err != nil {
			log.Warn().Err(err).Msg("requeue of parked receipts failed")
		} else if n > 0 {
			log.Info().Int("jobs", n).Msg("parked receipts requeued")
		}
		go func() { _ = pool.Run(ctx, cfg.WorkerPoolSize) }()
	}

	limiter := middleware.APILimiter(1000, time.Minute) // 1000 req/min per IP
	go limiter.RunPurge(ctx)

	r := router.New(cfg, router.Deps{
		Client:  client,
		Session: session,
		Store:   store,
		Queue:   queue,
		Limiter: limiter,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("terminal", cfg.TerminalID).Msgf("Pixel Food terminal listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down terminal…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("terminal exited")
}

// sessionStore picks the durable session storage named by SESSION_STORE.
func sessionStore(cfg *config.Config, rdb *redis.Client) (repository.SessionStore, error) {
	switch cfg.SessionStore {
	case "redis":
		return repository.NewRedisSessionStore(rdb), nil
	case "postgres":
		db, err := infra.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return repository.NewGormSessionStore(db), nil
	case "memory", "":
		log.Warn().Msg("session store in memory: a restart signs the terminal out")
		return repository.NewMemorySessionStore(), nil
	default:
		return nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
	}
}
